package launcher

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/bryanchriswhite/screenfreeze/internal/errs"
	"github.com/bryanchriswhite/screenfreeze/internal/logger"
)

// Exec runs a program in the foreground with the caller's environment
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New returns an Exec inheriting the process's standard streams
func New() *Exec {
	return &Exec{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run starts argv[0] with the remaining arguments and waits for it to exit.
// A non-zero exit is reported through the code, not as an error.
func (e *Exec) Run(ctx context.Context, argv []string) (int, error) {
	if len(argv) == 0 {
		return -1, errs.New(errs.ChildSpawnFailed, "no executable given")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.WithComponent("launcher").Debug().
			Str("executable", argv[0]).
			Int("exit_code", exitErr.ExitCode()).
			Msg("Command exited with non-zero status")
		return exitErr.ExitCode(), nil
	}
	if err != nil {
		return -1, errs.Wrap(err, errs.ChildSpawnFailed, "Failed to execute %s", argv[0])
	}

	return 0, nil
}
