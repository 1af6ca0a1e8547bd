package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"
)

// gitCLI is the exec-based implementation of the GitRepository interface.
type gitCLI struct {
	binary string
	opts   CommandOptions
}

// NewGitCLI creates a GitRepository that shells out to git inside opts.Dir.
// A zero timeout leaves the matching commands bounded only by ctx.
func NewGitCLI(opts CommandOptions) GitRepository {
	return &gitCLI{binary: "git", opts: opts}
}

// environment returns the process environment with non-interactive git
// settings and the strategy-specific variables appended.
func (g *gitCLI) environment() []string {
	env := append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"GCM_INTERACTIVE=never",
		"LC_ALL=C",
		"LANG=C",
	)
	keys := make([]string, 0, len(g.opts.Env))
	for k := range g.opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, fmt.Sprintf("%s=%s", k, g.opts.Env[k]))
	}
	return env
}

// identityArgs returns the -c overrides for the commit identity, if any.
func (g *gitCLI) identityArgs() []string {
	var args []string
	if g.opts.AuthorName != "" {
		args = append(args, "-c", "user.name="+g.opts.AuthorName)
	}
	if g.opts.AuthorEmail != "" {
		args = append(args, "-c", "user.email="+g.opts.AuthorEmail)
	}
	return args
}

// executeCommand runs git with a timeout and classifies any failure.
func (g *gitCLI) executeCommand(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	full := append(g.identityArgs(), args...)
	cmd := exec.CommandContext(ctx, g.binary, full...)
	cmd.Dir = g.opts.Dir
	cmd.Env = g.environment()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.String(), nil
	}
	cmdErr := &CommandError{
		Args:     args,
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Err:      err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		cmdErr.Class = ClassTimeout
		cmdErr.Err = fmt.Errorf("command timed out after %v: %w", timeout, context.DeadlineExceeded)
		return cmdErr.Stdout, cmdErr
	}
	cmdErr.Class = Classify(cmdErr.Stdout + "\n" + cmdErr.Stderr)
	return cmdErr.Stdout, cmdErr
}

// Version returns the raw `git --version` output.
func (g *gitCLI) Version(ctx context.Context) (string, error) {
	out, err := g.executeCommand(ctx, g.opts.CommandTimeout, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ConfigValue returns the effective value of a config key, or "" when unset.
func (g *gitCLI) ConfigValue(ctx context.Context, key string) (string, error) {
	out, err := g.executeCommand(ctx, g.opts.CommandTimeout, "config", "--get", key)
	if err != nil {
		var cmdErr *CommandError
		// git config exits 1 when the key is not set
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Status returns porcelain status output listing every untracked file.
func (g *gitCLI) Status(ctx context.Context) (string, error) {
	out, err := g.executeCommand(ctx, g.opts.CommandTimeout, "status", "--porcelain", "--untracked-files=all")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

// AddAll stages every change, honoring ignore rules.
func (g *gitCLI) AddAll(ctx context.Context) error {
	_, err := g.executeCommand(ctx, g.opts.CommandTimeout, "add", "-A")
	return err
}

// Commit creates a commit with the given message.
func (g *gitCLI) Commit(ctx context.Context, message string) error {
	_, err := g.executeCommand(ctx, g.opts.CommandTimeout, "commit", "-m", message)
	return err
}

// AheadOfUpstream counts local commits not yet on the tracked upstream.
func (g *gitCLI) AheadOfUpstream(ctx context.Context) (int, error) {
	out, err := g.executeCommand(ctx, g.opts.CommandTimeout, "rev-list", "--count", "@{u}..HEAD")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("failed to parse ahead count %q: %w", out, err)
	}
	return n, nil
}

// PullRebase rebases local commits onto remote/branch.
func (g *gitCLI) PullRebase(ctx context.Context, remote, branch string) (string, error) {
	out, err := g.executeCommand(ctx, g.opts.NetworkTimeout, "pull", "--rebase", remote, branch)
	return strings.TrimSpace(out), err
}

// AbortRebase restores the pre-rebase state. It is a no-op when no rebase is
// in progress.
func (g *gitCLI) AbortRebase(ctx context.Context) error {
	_, err := g.executeCommand(ctx, g.opts.CommandTimeout, "rebase", "--abort")
	if err != nil && ClassOf(err) == ClassNoRebase {
		return nil
	}
	return err
}

// Push pushes branch to remote and sets upstream tracking.
func (g *gitCLI) Push(ctx context.Context, remote, branch string) (string, error) {
	out, err := g.executeCommand(ctx, g.opts.NetworkTimeout, "push", "-u", remote, branch)
	return strings.TrimSpace(out), err
}
