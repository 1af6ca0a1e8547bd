package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/compozy/autopush/pkg/version"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "autopush",
	Short: "Keep git working trees committed and pushed",
	Long: `autopush commits local changes with a generated message, rebases them onto
the upstream branch and pushes, without ever prompting for input.`,
	Version:       version.Summary(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default .autopush.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func Execute() error {
	return rootCmd.Execute()
}

// ExitError carries a process exit code for a run whose outcome was already
// reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
