// Package gitops hands successful mutations off to version control.
//
// The committed data files are the system of record for the community
// repository; after the intake controller accepts an event, the changed
// artifacts are committed and pushed. Every step is best-effort: a
// failed push leaves the files on disk for the next run to pick up, and
// rejection paths never reach this package at all.
package gitops

import (
	"log/slog"
	"os/exec"
	"strings"
)

// Runner executes one git invocation in a directory. Tests inject a
// recording implementation.
type Runner func(dir string, args ...string) error

// Publisher commits and pushes changed artifacts.
type Publisher struct {
	dir   string
	name  string
	email string
	run   Runner
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithRunner overrides the git runner.
func WithRunner(run Runner) Option {
	return func(p *Publisher) { p.run = run }
}

// New creates a Publisher for the repository at dir, committing with
// the given identity.
func New(dir, name, email string, opts ...Option) *Publisher {
	p := &Publisher{dir: dir, name: name, email: email, run: execRunner}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish stages the given paths, commits with message, and pushes.
//
// Individual step failures are logged and skipped rather than
// propagated: "nothing to commit" and an offline push are both normal
// here, and the data files themselves are already written.
func (p *Publisher) Publish(message string, paths ...string) {
	steps := [][]string{
		{"config", "user.name", p.name},
		{"config", "user.email", p.email},
		append([]string{"add"}, paths...),
		{"commit", "-m", message},
		{"push"},
	}
	for _, args := range steps {
		if err := p.run(p.dir, args...); err != nil {
			slog.Warn("git step failed", "args", strings.Join(args, " "), "error", err)
		}
	}
}

func execRunner(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		slog.Debug("git output", "args", strings.Join(args, " "), "output", string(out))
	}
	return err
}
