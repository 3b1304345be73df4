package commands

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sessiongate/internal/app"
	"sessiongate/internal/logging"
)

var (
	configPath string
	home       string
	platform   string
	storage    string
	logLevel   string
	logFormat  string
	solveLimit time.Duration
	manual     bool

	wire *app.Wire
)

func Execute() error {
	return execute(newRootCmd())
}

// execute runs root and releases the wire even when the command failed;
// cobra skips post-run hooks on error.
func execute(root *cobra.Command) error {
	err := root.Execute()
	return errors.Join(err, closeWire())
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sessiongate",
		Short:        "Establish a bot-checked session with the platform",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			// The process exits right after one command, so metrics are
			// not collected here.
			wire, err = app.NewWire(cfg, app.Deps{
				Logger: logger,
				In:     cmd.InOrStdin(),
				Out:    cmd.ErrOrStderr(),
			})
			return err
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (default $SESSIONGATE_CONFIG)")
	pf.StringVar(&home, "home", "", "state dir (default ~/.sessiongate)")
	pf.StringVar(&platform, "platform", "", "platform base URL (e.g. http://127.0.0.1:8080)")
	pf.StringVar(&storage, "storage", "", "storage backend: file, sqlite or memory")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&logFormat, "log-format", "", "text or json")
	pf.DurationVar(&solveLimit, "solve-timeout", 0, "give up on a challenge after this long")
	pf.BoolVar(&manual, "manual", false, "paste Turnstile tokens instead of opening the widget page")

	root.AddCommand(initCmd(), statusCmd(), logoutCmd(), deviceCmd())
	return root
}

// closeWire releases the wire built by PersistentPreRunE.
func closeWire() error {
	if wire == nil {
		return nil
	}
	err := wire.Close()
	wire = nil
	return err
}

// loadConfig layers defaults, the config file, the environment and flags.
func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg := app.DefaultConfig()

	path := configPath
	if path == "" {
		path = os.Getenv(app.EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := app.LoadConfigFile(&cfg, path); err != nil {
			return app.Config{}, err
		}
	}
	if err := app.ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return app.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("home") {
		cfg.Home = home
	}
	if flags.Changed("platform") {
		cfg.PlatformURL = platform
	}
	if flags.Changed("storage") {
		cfg.Storage.Backend = storage
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("solve-timeout") {
		cfg.Solve.Timeout = solveLimit
	}
	if flags.Changed("manual") {
		cfg.Solve.Manual = manual
	}

	if err := cfg.ResolveHome(); err != nil {
		return app.Config{}, err
	}
	return cfg, cfg.Validate()
}
