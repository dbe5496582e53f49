package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"infraguard/internal/config"
	"infraguard/internal/domain"
	"infraguard/internal/embedding/gemini"
	"infraguard/internal/embedding/openai"
	"infraguard/internal/generation"
	"infraguard/internal/gitsource"
	"infraguard/internal/loader"
	"infraguard/internal/prompt"
	"infraguard/internal/service"
	"infraguard/internal/splitter"
	"infraguard/internal/tui"
	"infraguard/internal/vectorstore"
	"infraguard/internal/vectorstore/memory"
	"infraguard/internal/vectorstore/qdrant"
	"infraguard/internal/vectorstore/sqlite"
)

var (
	cfgPath string
	verbose bool
	modeArg string

	cfg    *config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "infraguard",
	Short: "Retrieval-augmented chat assistant for infrastructure-as-code",
	Long: `infraguard answers questions about a Terraform codebase.

Run "infraguard ingest" once to build the local vector index from your
configuration files (or from a cloned repository), then run "infraguard"
to chat with it. The architect mode explains and diagrams the
infrastructure; the auditor mode reviews it for security issues.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfgPath == "" {
			cfg, _, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// The interactive chat owns the terminal; only batch commands log.
		if cmd.Name() == "ingest" {
			zcfg := zap.NewProductionConfig()
			if verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err = zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
		} else {
			logger = zap.NewNop()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector index from the configured source",
	Long: `Loads every matching file from the source directory (cloning the
configured repository first, if one is set), redacts credential-like
values, splits the documents into overlapping chunks, embeds them and
replaces the vector index contents. Exits non-zero when no documents are
found or when embedding or persistence fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context())
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to YAML config file (default: ./config.yaml, then ~/.config/infraguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&modeArg, "mode", "", "Operating mode: architect or auditor (default from config)")
	rootCmd.AddCommand(ingestCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runIngest(ctx context.Context) error {
	dir := cfg.Source.Dir
	if cfg.Source.RepoURL != "" {
		if err := gitsource.Clone(ctx, cfg.Source.RepoURL, cfg.Source.ClonePath, logger); err != nil {
			return err
		}
		dir = cfg.Source.ClonePath
	}

	embedder, err := buildEmbedder(ctx)
	if err != nil {
		return err
	}
	store, err := buildStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.New(
		loader.New(cfg.Source.Suffix, logger),
		splitter.New(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap),
		embedder, store, nil, logger)

	stats, err := svc.Ingest(ctx, dir)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d documents as %d chunks into %s\n", stats.Documents, stats.Chunks, cfg.Index.Path)
	return nil
}

func runChat(ctx context.Context) error {
	if cfg.APIKey == "" {
		return errors.New("GOOGLE_API_KEY is not set; add it to your environment or .env file")
	}
	if cfg.Index.Type == "sqlite" && !sqlite.Exists(cfg.Index.Path) {
		return fmt.Errorf("no vector index found at %s; run \"infraguard ingest\" first", cfg.Index.Path)
	}

	mode, err := prompt.ModeByName(firstNonEmpty(modeArg, cfg.Mode))
	if err != nil {
		return err
	}

	embedder, err := buildEmbedder(ctx)
	if err != nil {
		return err
	}
	store, err := buildStore()
	if err != nil {
		return err
	}
	defer store.Close()

	generator, err := generation.NewGemini(ctx, generation.Config{
		APIKey:  cfg.APIKey,
		Model:   cfg.Generation.Model,
		Timeout: time.Duration(cfg.Generation.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return err
	}

	svc := service.New(
		loader.New(cfg.Source.Suffix, logger),
		splitter.New(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap),
		embedder, store, generator, logger)

	m := tui.New(svc, mode)
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func buildEmbedder(ctx context.Context) (domain.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "gemini", "":
		if cfg.APIKey == "" {
			return nil, errors.New("GOOGLE_API_KEY is not set; add it to your environment or .env file")
		}
		return gemini.NewEmbedder(ctx, gemini.Config{APIKey: cfg.APIKey, Model: cfg.Embedding.Model})
	case "openai":
		if cfg.Embedding.OpenAI == nil {
			return nil, errors.New("openai embedder config missing")
		}
		return openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedding.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedding.OpenAI.APIKeyEnv,
			Model:     cfg.Embedding.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedding.OpenAI.TimeoutSecs) * time.Second,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Embedding.Provider)
	}
}

func buildStore() (vectorstore.Storage, error) {
	switch cfg.Index.Type {
	case "sqlite", "":
		return sqlite.Open(cfg.Index.Path)
	case "qdrant":
		if cfg.Index.Qdrant == nil {
			return nil, errors.New("qdrant config missing")
		}
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Index.Qdrant.URL,
			APIKey:     cfg.Index.Qdrant.APIKey,
			Collection: cfg.Index.Qdrant.Collection,
			Timeout:    time.Duration(cfg.Index.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "memory":
		return memory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Index.Type)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
