// Package cli implements mailibctl, the operator command line that works
// directly against a mailib data directory.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mailib/mailib-server/internal/di"
	"github.com/mailib/mailib-server/internal/logger"
)

type app struct {
	flagConfig  string
	flagNoColor bool
	flagOutput  string

	viper    *viper.Viper
	settings *Settings
	logOut   io.Writer
}

// NewRootCmd builds the mailibctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{viper: viper.New(), logOut: os.Stderr}

	root := &cobra.Command{
		Use:   "mailibctl",
		Short: "Operate a mailib data directory",
		Long: `mailibctl resolves and searches books, repairs partial imports and
rebuilds the search index of a mailib data directory.

Stop the server first: the database and cache allow a single writer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.flagConfig, "config", "", "Config file path (default: ~/.config/mailibctl/config.yml)")
	root.PersistentFlags().BoolVar(&a.flagNoColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().StringVarP(&a.flagOutput, "output", "o", "", "Output format: text, json or yaml")
	root.PersistentFlags().String("data-path", "", "mailib data directory")
	root.PersistentFlags().String("fantlab-url", "", "Fantlab API base URL")
	root.PersistentFlags().String("log-level", "", "Log level for service logs on stderr")

	_ = a.viper.BindPFlag("data_path", root.PersistentFlags().Lookup("data-path"))
	_ = a.viper.BindPFlag("fantlab_url", root.PersistentFlags().Lookup("fantlab-url"))
	_ = a.viper.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if a.flagNoColor {
			color.NoColor = true
		}
		s, err := LoadSettings(a.viper, a.flagConfig)
		if err != nil {
			return err
		}
		if a.flagOutput != "" {
			s.Output = a.flagOutput
		}
		if !validOutput(s.Output) {
			return fmt.Errorf("unknown output format %q (want text, json or yaml)", s.Output)
		}
		a.settings = s
		return nil
	}

	root.AddCommand(
		a.newResolveCmd(),
		a.newSearchCmd(),
		a.newReconcileCmd(),
		a.newReindexCmd(),
		a.newCacheCmd(),
		a.newTokenCmd(),
		a.newUsersCmd(),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// withContainer opens the data directory, runs fn and closes everything again.
func (a *app) withContainer(fn func(i do.Injector) error) (err error) {
	cfg, err := a.settings.serverConfig()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{
		Writer: a.logOut,
		Format: "pretty",
		Level:  logger.ParseLevel(a.settings.LogLevel),
	})

	injector := di.NewToolContainer(cfg, log)
	defer func() {
		if report := injector.Shutdown(); report != nil && !report.Succeed && err == nil {
			err = fmt.Errorf("close data directory: %w", report)
		}
	}()

	return fn(injector)
}

// ok prints a green success line.
func ok(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}

func printField(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "  %-14s %s\n", color.CyanString(label+":"), value)
}
