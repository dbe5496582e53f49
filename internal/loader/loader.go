// Package loader reads source files from a directory tree and prepares
// them for chunking.
package loader

import (
	"crypto/sha1"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"infraguard/internal/domain"
	"infraguard/internal/redact"
)

// Loader recursively walks a directory and loads every file matching the
// configured suffix. File contents are passed through secret redaction and
// the originating path is attached as provenance.
type Loader struct {
	suffix string
	logger *zap.Logger
}

// New creates a Loader for files ending in suffix (e.g. ".tf"). The match
// is case-insensitive.
func New(suffix string, logger *zap.Logger) *Loader {
	if suffix == "" {
		suffix = ".tf"
	}
	suffix = strings.ToLower(suffix)
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{suffix: suffix, logger: logger}
}

// Load returns every matching document under dir. A missing directory or a
// directory with no matching files yields an empty slice, not an error;
// the caller decides whether that is terminal. Per-file read failures are
// logged and skipped.
func (l *Loader) Load(dir string) ([]domain.Document, error) {
	if _, err := os.Stat(dir); err != nil {
		l.logger.Warn("source directory not found", zap.String("dir", dir))
		return nil, nil
	}

	var documents []domain.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			l.logger.Warn("skipping unreadable entry", zap.String("path", path), zap.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), l.suffix) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			l.logger.Warn("could not read file", zap.String("path", path), zap.Error(err))
			return nil
		}
		documents = append(documents, domain.Document{
			ID:      hashString(path),
			Path:    path,
			Content: redact.Secrets(string(data)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.logger.Info("scanned directory",
		zap.String("dir", dir),
		zap.Int("documents", len(documents)))
	return documents, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
