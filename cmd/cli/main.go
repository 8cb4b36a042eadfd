package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/winback/message-service/config"
	"github.com/winback/message-service/internal/appstore"
	"github.com/winback/message-service/internal/http/ratelimit"
	"github.com/winback/message-service/internal/reconcile"
	"github.com/winback/message-service/internal/types"
)

var (
	cfgFile     string
	envFlag     string
	jsonOutput  bool
	verboseFlag bool

	cfg    *config.Config
	logger *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "message-service",
	Short: "Message Service CLI - App Store retention message management",
	Long: `A CLI tool for managing App Store win-back retention messages: upload,
list and delete messages, configure default messages per product and locale,
and reconcile whole CSV or XLSX sheets against the remote state.`,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFlag, "environment", "", "target environment: PRODUCTION or SANDBOX (default from config)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config is optional for some commands, don't fail here
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes the logger
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}

	logger = initLogger()
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.WarnLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}
	if verboseFlag {
		level = zerolog.DebugLevel
	}

	// Always use console format for CLI unless json logging is configured
	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stderr
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

// targetEnvironment resolves the environment from the flag, falling back
// to the config.
func targetEnvironment() (types.Environment, error) {
	name := envFlag
	if name == "" && cfg != nil {
		name = cfg.API.Environment
	}
	if name == "" {
		return types.EnvironmentProduction, nil
	}
	env, ok := types.ParseEnvironment(name)
	if !ok {
		return "", fmt.Errorf("unknown environment %q (use PRODUCTION or SANDBOX)", name)
	}
	return env, nil
}

func rateLimitConfig() ratelimit.Config {
	if cfg == nil {
		return ratelimit.DefaultConfig()
	}
	return cfg.RateLimit.Resolve()
}

// newRemoteClient builds an App Store client for the resolved environment.
func newRemoteClient() (*appstore.Client, types.Environment, error) {
	env, err := targetEnvironment()
	if err != nil {
		return nil, "", err
	}
	if cfg == nil {
		return nil, "", fmt.Errorf("no configuration loaded")
	}
	token, err := cfg.APIToken()
	if err != nil {
		return nil, "", err
	}

	client := appstore.NewClient(
		env,
		appstore.StaticTokenSource(token),
		rateLimitConfig(),
		cfg.API.BaseURL,
		*logger,
	)
	return client, env, nil
}

// newImporter builds a reconciliation importer with terminal progress
// reporting.
func newImporter(dryRun bool, overrides map[types.TargetField]string, products []string) (*reconcile.Importer, error) {
	client, env, err := newRemoteClient()
	if err != nil {
		return nil, err
	}

	opts := reconcile.ImportOptions{
		Environment: env,
		DryRun:      dryRun,
		Overrides:   overrides,
		Products:    products,
		Logger:      *logger,
	}
	if !jsonOutput {
		opts.OnProgress = renderProgress
	}
	return reconcile.NewImporter(client, opts), nil
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
