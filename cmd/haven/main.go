package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"haven/internal/config"
	"haven/internal/intent"
	"haven/internal/llm"
	"haven/internal/profile"
	"haven/internal/respond"
	"haven/internal/scheduler"
	"haven/internal/store"
)

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "haven",
	Short: "haven - conversational journaling assistant",
	Long: `haven classifies journal input by intent, routes it to a response
strategy, and periodically aggregates entries into a behavioral profile
that personalizes later replies.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// respondCmd runs one classify-and-respond cycle
var respondCmd = &cobra.Command{
	Use:   "respond [text]",
	Short: "Classify input and print the routed reply",
	Long: `Classifies the input text by intent and dispatches it to the matching
response strategy. With --user, the stored profile summary is injected
into the strategy prompt as personalization context.

Example:
  haven respond --user 42f1... "締め切りが近くて焦っている"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRespond,
}

// researchCmd triggers the explicit deep-research follow-up
var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run a deep-research follow-up on a prior answer",
	Long: `Bypasses intent classification and runs the deep-research strategy on
the DEEP tier. When --prior is given, the query is reframed around the
answer to deepen.

Example:
  haven research --query "転職市場の動向" --prior "$(cat prior.txt)"`,
	RunE: runResearch,
}

// profileCmd groups the profile subcommands
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Build and inspect user profiles",
}

var profileBuildCmd = &cobra.Command{
	Use:   "build [user-id]",
	Short: "Aggregate recent entries and persist the profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileBuild,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [user-id]",
	Short: "Print the stored profile document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileSummaryCmd = &cobra.Command{
	Use:   "summary [user-id]",
	Short: "Print the profile's context summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileSummary,
}

// daemonCmd runs the periodic rebuild scheduler
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the profile rebuild scheduler until interrupted",
	RunE:  runDaemon,
}

var (
	respondUser   string
	researchQuery string
	researchPrior string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "haven.yaml", "Config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	respondCmd.Flags().StringVarP(&respondUser, "user", "u", "", "User ID for personalization context")
	researchCmd.Flags().StringVarP(&researchQuery, "query", "q", "", "Original query (required)")
	researchCmd.Flags().StringVar(&researchPrior, "prior", "", "Prior answer to deepen")
	_ = researchCmd.MarkFlagRequired("query")

	profileCmd.AddCommand(profileBuildCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSummaryCmd)

	rootCmd.AddCommand(respondCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(daemonCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --db override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.DatabasePath = dbPath
	}
	return cfg, nil
}

// openStore opens the SQLite store at the configured path.
func openStore(cfg *config.Config) (*store.Store, error) {
	st, err := store.New(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// newRouter builds the classifier and strategy set from the config.
func newRouter(cfg *config.Config) *respond.Router {
	resolver := llm.NewResolver(cfg.TierConfigs())
	classifier := intent.NewClassifier(resolver, logger)
	return respond.NewRouter(classifier, resolver, logger)
}

func runRespond(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	req := respond.Request{Input: strings.Join(args, " ")}

	if respondUser != "" {
		st, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		raw, err := st.LoadProfile(cmd.Context(), respondUser)
		switch {
		case errors.Is(err, store.ErrNotFound):
			logger.Debug("no stored profile", zap.String("user_id", respondUser))
		case err != nil:
			return fmt.Errorf("failed to load profile: %w", err)
		default:
			var p profile.Profile
			if err := json.Unmarshal(raw, &p); err != nil {
				return fmt.Errorf("failed to decode profile: %w", err)
			}
			req.ProfileSummary = profile.ContextSummary(&p)
		}
	}

	result := newRouter(cfg).Respond(cmd.Context(), req)

	fmt.Printf("[%s %.2f]\n%s\n", result.Intent, result.Confidence, result.Response)
	return nil
}

func runResearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reply := newRouter(cfg).DeepResearch(cmd.Context(), respond.Request{
		Input:         researchQuery,
		PriorResponse: researchPrior,
	})

	fmt.Println(reply)
	return nil
}

func runProfileBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	agg := profile.NewAggregator(st, logger)
	p, err := agg.BuildAndSave(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to build profile: %w", err)
	}

	fmt.Printf("profile built: %d entries over %d days\n", p.LogCount, p.PeriodDays)
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	raw, err := st.LoadProfile(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no profile stored for user %s", args[0])
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}

	var buf json.RawMessage = raw
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format profile: %w", err)
	}

	fmt.Println(string(pretty))
	return nil
}

func runProfileSummary(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	raw, err := st.LoadProfile(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no profile stored for user %s", args[0])
		}
		return fmt.Errorf("failed to load profile: %w", err)
	}

	var p profile.Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("failed to decode profile: %w", err)
	}

	summary := profile.ContextSummary(&p)
	if summary == "" {
		fmt.Println("(not enough entries for a summary)")
		return nil
	}
	fmt.Println(summary)
	return nil
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	agg := profile.NewAggregator(st, logger)
	sched := scheduler.New(st, agg, cfg.Scheduler.CronSpec, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := sched.Start(ctx); err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("shutting down")
	sched.Stop()
	return nil
}
