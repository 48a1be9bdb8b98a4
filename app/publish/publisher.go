// Package publish ships the built output tree.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type Publisher interface {
	Prepare(ctx context.Context) error
	Publish(ctx context.Context, message string) error
}

// Noop publishes nothing; the output tree stays where it was written.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Prepare(_ context.Context) error {
	return nil
}

func (n *Noop) Publish(_ context.Context, _ string) error {
	return nil
}

// ErrNothingToCommit is returned by a command runner when the index holds no changes.
var ErrNothingToCommit = errors.New("nothing to commit")

// CommandRunner executes an external command inside dir.
type CommandRunner func(ctx context.Context, dir string, name string, args ...string) error

// Git keeps the content directory as a checkout of repoURL and pushes each run's changes.
type Git struct {
	repoURL string
	dir     string
	run     CommandRunner
}

func NewGit(repoURL, dir string) *Git {
	return &Git{repoURL: repoURL, dir: dir, run: execCommand}
}

// Prepare clones the repository, or fast-forwards an existing checkout.
func (g *Git) Prepare(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(g.dir, ".git")); err == nil {
		if err := g.run(ctx, g.dir, "git", "pull", "--ff-only"); err != nil {
			return fmt.Errorf("failed to pull %s: %w", g.dir, err)
		}
		slog.Debug("Repository updated", "dir", g.dir)
		return nil
	}

	if g.repoURL == "" {
		return fmt.Errorf("no repository configured for %s", g.dir)
	}

	parent := filepath.Dir(g.dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", parent, err)
	}
	if err := g.run(ctx, parent, "git", "clone", "--depth", "1", g.repoURL, g.dir); err != nil {
		return fmt.Errorf("failed to clone %s: %w", g.repoURL, err)
	}

	slog.Debug("Repository cloned", "repo", g.repoURL, "dir", g.dir)
	return nil
}

// Publish commits everything below the checkout and pushes it. A clean tree is not an error.
func (g *Git) Publish(ctx context.Context, message string) error {
	if err := g.run(ctx, g.dir, "git", "add", "-A"); err != nil {
		return fmt.Errorf("failed to stage changes: %w", err)
	}

	err := g.run(ctx, g.dir, "git", "commit", "-m", message)
	if errors.Is(err, ErrNothingToCommit) {
		slog.Info("Nothing to publish", "dir", g.dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to commit changes: %w", err)
	}

	if err := g.run(ctx, g.dir, "git", "push"); err != nil {
		return fmt.Errorf("failed to push changes: %w", err)
	}

	slog.Info("Published changes", "dir", g.dir, "message", message)
	return nil
}

func execCommand(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		out := strings.TrimSpace(output.String())
		if strings.Contains(out, "nothing to commit") {
			return ErrNothingToCommit
		}
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, out)
	}

	return nil
}
