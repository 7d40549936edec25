package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"december/cmd/december/chat"
	"december/internal/articulation"
	"december/internal/catalog"
	"december/internal/config"
	"december/internal/logging"
	"december/internal/perception"
	"december/internal/session"
	"december/internal/store"
)

var (
	// Global flags
	configPath string
	verbose    bool
	dbPath     string
	maxRounds  int
	asJSON     bool
)

// rootCmd is the base command; without arguments it starts the chat UI.
var rootCmd = &cobra.Command{
	Use:   "december",
	Short: "december - deterministic request classifier for a coding assistant",
	Long: `december routes each user request to one of three dispositions:

  implement  enough information is present; proceed, stating assumptions
  clarify    a critical requirement is missing or ambiguous; ask first
  explain    the request is conceptual; answer, change nothing

Classification is a fixed decision procedure over a static requirement
taxonomy. Run without arguments to start the interactive chat interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		return logging.Initialize(logging.Options{
			Level:      level,
			JSON:       cfg.Logging.Format == "json",
			Categories: cfg.Logging.Categories,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "december.yaml", "Project config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Override the SQLite database path")
	rootCmd.PersistentFlags().IntVar(&maxRounds, "max-rounds", 0, "Override the clarification round budget")

	classifyCmd.Flags().BoolVar(&asJSON, "json", false, "Emit the classification as JSON")

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(respondCmd)
	rootCmd.AddCommand(examplesCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig loads the project config plus user overrides and flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	user, err := config.LoadUserConfig(config.DefaultUserConfigPath())
	if err != nil {
		return nil, err
	}
	user.Apply(cfg)

	if dbPath != "" {
		cfg.Store.DatabasePath = dbPath
	}
	if maxRounds > 0 {
		cfg.Classifier.MaxClarificationRounds = maxRounds
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runtime bundles the wired components behind every command.
type runtime struct {
	cfg        *config.Config
	store      *store.LocalStore
	classifier *perception.Classifier
	session    *session.Session
	catalog    *catalog.Catalog
}

func (r *runtime) Close() {
	if r.store != nil {
		r.store.Close()
	}
}

// buildRuntime wires config, store, taxonomy, classifier, session, and the
// optional catalog.
func buildRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	local, err := store.NewLocalStore(cfg.Store.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	taxonomy, err := perception.NewTaxonomy()
	if err != nil {
		local.Close()
		return nil, fmt.Errorf("failed to compile taxonomy: %w", err)
	}
	taxonomy.SetStore(local)
	if err := taxonomy.HydrateFromStore(); err != nil {
		logging.BootDebug("exemplar hydration skipped: %v", err)
	}

	classifier := perception.NewClassifier(taxonomy, perception.Options{
		MinConfidence: cfg.Classifier.MinConfidence,
		LearnedBoost:  cfg.Classifier.LearnedBoost,
	})

	sess := session.New(classifier,
		session.WithRecorder(local),
		session.WithMaxRounds(cfg.Classifier.MaxClarificationRounds),
	)

	r := &runtime{cfg: cfg, store: local, classifier: classifier, session: sess}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.GetLoadTimeout())
	defer cancel()
	if cat, err := catalog.Load(loadCtx, cfg.Catalog.ManifestPath); err == nil {
		r.catalog = cat
	} else {
		logging.BootDebug("catalog unavailable: %v", err)
	}

	return r, nil
}

// runChat starts the interactive interface.
func runChat(ctx context.Context) error {
	rt, err := buildRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var watcher *catalog.Watcher
	if rt.catalog != nil && rt.cfg.Catalog.Watch {
		watcher, err = catalog.Watch(ctx, rt.catalog)
		if err != nil {
			return fmt.Errorf("failed to watch catalog: %w", err)
		}
		defer watcher.Close()
	}

	model, err := chat.New(rt.session, articulation.NewEmitter(), rt.catalog)
	if err != nil {
		return err
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
