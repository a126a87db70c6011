// Package cli defines the inkwell command tree.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iw2rmb/inkwell/internal/config"
	"github.com/iw2rmb/inkwell/internal/logger"
)

// App holds state shared by all commands.
type App struct {
	ConfigPath string
	Debug      bool
	APIBase    string

	cfg     *config.Config
	cfgFrom string
	log     *log.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "inkwell",
		Short:        "Terminal markdown editor with inline word suggestions",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Sign in and start editing
  inkwell

  # Ask the suggestion service directly
  inkwell suggest hel --limit 5

  # Forget the stored session
  inkwell logout
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load(cmd.ErrOrStderr())
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("INKWELL_CONFIG", ""), "Path to config file (default: XDG config dir)")
	cmd.PersistentFlags().BoolVar(&app.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&app.APIBase, "api-base", "", "Suggestion service base URL (overrides config and INKWELL_API_BASE_URL)")

	cmd.AddCommand(newSuggestCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// load resolves configuration: file, then environment, then flags.
func (a *App) load(stderr io.Writer) error {
	level := log.WarnLevel
	if a.Debug {
		level = log.DebugLevel
	}
	a.log = logger.New("inkwell", stderr, level)

	cfg, from, err := config.Load(a.ConfigPath, a.log)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.APIBase != "" {
		cfg.Suggest.APIBaseURL = a.APIBase
	}
	if a.Debug {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg
	a.cfgFrom = from
	a.log.Debug("config loaded", "path", from, "transport", cfg.Suggest.Transport)
	return nil
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		return 1
	}
	return 0
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
