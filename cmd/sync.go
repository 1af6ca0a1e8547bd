package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/compozy/autopush/internal/domain"
	"github.com/compozy/autopush/internal/orchestrator"
)

// containerLoader builds the dependency container after flag parsing.
type containerLoader func() (*container, error)

// syncFlags maps sync flags to configuration keys.
var syncFlags = map[string]string{
	"branch":          "branch",
	"remote-name":     "remote_name",
	"log-file":        "log_file",
	"ssh-key":         "ssh_key_path",
	"push-pending":    "push_pending",
	"command-timeout": "command_timeout",
	"network-timeout": "network_timeout",
	"probe-timeout":   "probe_timeout",
	"author-name":     "author_name",
	"author-email":    "author_email",
}

// NewSyncCmd creates the sync command
func NewSyncCmd(load containerLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [PATH] [REMOTE]",
		Short: "Commit local changes and push them to the remote",
		Long: `Commit every local change in the working tree at PATH, rebase onto the
upstream branch of REMOTE and push.

A clean tree exits without touching the network. When the remote cannot be
reached the commit is kept locally and pushed by a later run. A rebase that
fails is aborted so the working tree is left as it was.`,
		Args: cobra.MaximumNArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindFlags(cmd, syncFlags)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load()
			if err != nil {
				return err
			}
			req, err := c.syncRequest(args)
			if err != nil {
				return err
			}
			outcome := c.syncOrch.Run(cmd.Context(), req)
			printOutcome(cmd.OutOrStdout(), outcome)
			if code := outcome.ExitCode(); code != 0 {
				return &ExitError{Code: code, Err: outcome.Err}
			}
			return nil
		},
	}
	cmd.Flags().String("branch", "", "Branch to push; must be the checked-out branch (default: current branch)")
	cmd.Flags().String("remote-name", domain.DefaultRemoteName, "Name of the remote to reconcile and push to")
	cmd.Flags().String("log-file", "", "Log file path (default: <log_dir>/<remote slug>.log)")
	cmd.Flags().String("ssh-key", "", "Private key for SSH remotes (default ~/.ssh/id_ed25519)")
	cmd.Flags().Bool("push-pending", false, "Push local commits ahead of upstream even when the tree is clean")
	cmd.Flags().Duration("command-timeout", 0, "Timeout for local git commands")
	cmd.Flags().Duration("network-timeout", 0, "Timeout for pull and push")
	cmd.Flags().Duration("probe-timeout", 0, "Timeout for the connectivity probe")
	cmd.Flags().String("author-name", "", "Commit author name")
	cmd.Flags().String("author-email", "", "Commit author email")
	return cmd
}

// bindFlags binds the changed flags to viper so they override the file and
// environment.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// syncRequest merges positional arguments over the configured repository.
func (c *container) syncRequest(args []string) (orchestrator.SyncRequest, error) {
	path := c.cfg.RepositoryPath
	remote := c.cfg.Remote
	if len(args) > 0 {
		path = args[0]
	}
	if len(args) > 1 {
		remote = args[1]
	}
	if strings.TrimSpace(remote) == "" {
		return orchestrator.SyncRequest{}, fmt.Errorf("remote is required: pass REMOTE or set remote in the config")
	}
	return orchestrator.SyncRequest{
		RepositoryPath: path,
		RemoteURL:      remote,
		Options:        c.syncOptions(),
	}, nil
}

func printOutcome(w io.Writer, outcome domain.RunOutcome) {
	fmt.Fprintf(w, "Status:\t%s\n", outcome.Status)
	if outcome.Branch != "" {
		fmt.Fprintf(w, "Branch:\t%s\n", outcome.Branch)
	}
	if outcome.Committed() {
		fmt.Fprintf(w, "Commit:\t%s\n", outcome.Changes.Headline())
	}
	if !outcome.Changes.IsEmpty() {
		fmt.Fprintf(w, "Changes:\n%s\n", outcome.Changes.Summary(orchestrator.SummaryLimit))
	}
	if outcome.Kind != domain.KindNone {
		fmt.Fprintf(w, "Failure:\t%s at %s (%s)\n", outcome.Kind, outcome.Stage, outcome.Kind.Category())
		if outcome.Err != nil {
			fmt.Fprintf(w, "Error:\t%v\n", outcome.Err)
		}
	}
	if outcome.Kind == domain.KindPushAuthRequired || outcome.Kind == domain.KindAuthNotConfigured {
		fmt.Fprintln(w, "Hint:\tconfigure an SSH key or a git credential helper, then run again")
	}
}
