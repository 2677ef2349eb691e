package batch

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Unit is one step of a batch.
type Unit interface {
	Name() string
	Run(ctx context.Context) error
}

// FuncUnit runs a function in-process.
type FuncUnit struct {
	UnitName string
	Fn       func(ctx context.Context) error
}

func (u FuncUnit) Name() string                  { return u.UnitName }
func (u FuncUnit) Run(ctx context.Context) error { return u.Fn(ctx) }

// CommandUnit runs a command as an isolated subprocess and waits for it.
type CommandUnit struct {
	UnitName string
	Path     string
	Args     []string
	Dir      string
	Env      []string
	Stdout   io.Writer
	Stderr   io.Writer
}

func (u CommandUnit) Name() string { return u.UnitName }

func (u CommandUnit) Run(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, u.Path, u.Args...)
	cmd.Dir = u.Dir
	if len(u.Env) > 0 {
		cmd.Env = append(os.Environ(), u.Env...)
	}
	cmd.Stdout = u.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = u.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s: %w", u.Path, strings.Join(u.Args, " "), err)
	}
	return nil
}

type State string

const (
	StateInit State = "init"
	StateRun  State = "run"
	StateHalt State = "halt"
	StateDone State = "done"
)

// Result describes a finished batch.
type Result struct {
	State    State
	Ran      []string
	Failed   string
	Err      error
	Duration time.Duration
}

// Runner executes units strictly in order and stops at the first failure.
// Work already done by earlier units is left in place.
type Runner struct {
	units  []Unit
	logger *zap.Logger
}

func NewRunner(units []Unit, logger *zap.Logger) *Runner {
	return &Runner{
		units:  units,
		logger: logger,
	}
}

// Units returns the registered units in run order.
func (r *Runner) Units() []Unit {
	return r.units
}

func (r *Runner) Run(ctx context.Context) *Result {
	res := &Result{State: StateInit}
	startTime := time.Now()

	if len(r.units) == 0 {
		r.logger.Info("No zone units configured")
		res.State = StateDone
		return res
	}

	r.logger.Info("Starting batch", zap.Int("units", len(r.units)))

	for _, u := range r.units {
		if err := ctx.Err(); err != nil {
			res.State = StateHalt
			res.Err = err
			break
		}

		res.State = StateRun
		res.Ran = append(res.Ran, u.Name())
		r.logger.Info("Running unit", zap.String("unit", u.Name()))

		unitStart := time.Now()
		if err := u.Run(ctx); err != nil {
			r.logger.Error("Unit failed, stopping batch",
				zap.String("unit", u.Name()),
				zap.Duration("duration", time.Since(unitStart)),
				zap.Error(err))
			res.State = StateHalt
			res.Failed = u.Name()
			res.Err = fmt.Errorf("unit %s: %w", u.Name(), err)
			break
		}

		r.logger.Info("Unit completed",
			zap.String("unit", u.Name()),
			zap.Duration("duration", time.Since(unitStart)))
	}

	res.Duration = time.Since(startTime)
	if res.State == StateHalt {
		return res
	}

	res.State = StateDone
	r.logger.Info("All units completed",
		zap.Int("units", len(res.Ran)),
		zap.Duration("duration", res.Duration))
	return res
}
