// Package gitsource acquires a remote repository as the ingestion source.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// Clone fetches repoURL into targetPath with a depth-1 checkout. Any
// existing checkout at targetPath is removed first so every ingestion run
// starts from a fresh clone.
func Clone(ctx context.Context, repoURL, targetPath string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if repoURL == "" {
		return errors.New("repository URL is empty")
	}
	if targetPath == "" {
		return errors.New("clone target path is empty")
	}
	if err := os.RemoveAll(targetPath); err != nil {
		return fmt.Errorf("cleaning clone directory: %w", err)
	}
	logger.Info("cloning repository",
		zap.String("url", repoURL),
		zap.String("target", targetPath))
	if _, err := git.PlainCloneContext(ctx, targetPath, false, &git.CloneOptions{
		URL:   repoURL,
		Depth: 1,
	}); err != nil {
		return fmt.Errorf("cloning %s: %w", repoURL, err)
	}
	return nil
}
