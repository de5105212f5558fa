// Package runner invokes the external agent CLI that refine and
// solve-unsolved delegate to. The agent call is an opaque contract: issuelet
// renders a workflow prompt, hands it to the configured command, and inspects
// the filesystem afterwards.
package runner

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/issuelet/issuelet/pkg/config"
	"github.com/issuelet/issuelet/pkg/logger"
)

// Runner executes the external agent CLI
type Runner struct {
	command    string
	args       []string
	maxRetries int
	timeout    time.Duration
	stdout     io.Writer
	stderr     io.Writer
}

// Option is a function that configures a Runner
type Option func(*Runner) error

// WithAgentConfig applies the agent section of the issuelet configuration
func WithAgentConfig(cfg config.AgentConfig) Option {
	return func(r *Runner) error {
		if cfg.Command != "" {
			r.command = cfg.Command
		}
		if cfg.Args != nil {
			r.args = cfg.Args
		}
		if cfg.MaxRetries > 0 {
			r.maxRetries = cfg.MaxRetries
		}
		r.timeout = cfg.Timeout
		return nil
	}
}

// WithOutput redirects the agent's stdout and stderr
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) error {
		r.stdout = stdout
		r.stderr = stderr
		return nil
	}
}

// NewRunner creates a runner for the external agent CLI
func NewRunner(opts ...Option) (*Runner, error) {
	r := &Runner{
		command:    "claude",
		args:       []string{"-p"},
		maxRetries: 2,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if r.command == "" {
		return nil, errors.New("agent command must not be empty")
	}

	return r, nil
}

// RunRequest describes one delegation to the agent CLI
type RunRequest struct {
	Prompt       string
	SystemPrompt string // optional, from an agent definition
	Model        string // optional model hint
	Dir          string // working directory for the agent, empty for inherit
}

// Run executes the agent CLI once, retrying on failure up to the configured
// attempt budget. Every attempt of a run shares one run id in the logs.
func (r *Runner) Run(ctx context.Context, req *RunRequest) error {
	if req.Prompt == "" {
		return errors.New("prompt must not be empty")
	}

	runID := uuid.New().String()
	log := logger.G(ctx).WithField("run_id", runID).WithField("command", r.command)

	err := retry.Do(
		func() error {
			return r.runOnce(ctx, req)
		},
		retry.Attempts(uint(r.maxRetries+1)),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).WithField("attempt", n+1).Warn("agent run failed, retrying")
		}),
	)
	if err != nil {
		return errors.Wrapf(err, "agent run %s failed", runID)
	}

	log.Debug("agent run finished")
	return nil
}

func (r *Runner) runOnce(ctx context.Context, req *RunRequest) error {
	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	args := append([]string{}, r.args...)
	if req.SystemPrompt != "" {
		args = append(args, "--system-prompt", req.SystemPrompt)
	}
	if req.Model != "" {
		args = append(args, "--model", req.Model)
	}
	args = append(args, req.Prompt)

	cmd := exec.CommandContext(runCtx, r.command, args...)
	cmd.Dir = req.Dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "'%s' exited with an error", r.command)
	}
	return nil
}
