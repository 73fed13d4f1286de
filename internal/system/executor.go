package system

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/zaguiini/create-sandbox/internal/logging"
)

// outputTailBytes bounds how much command output a CommandError keeps.
const outputTailBytes = 4096

// osExecutor implements CommandExecutor using real OS operations.
type osExecutor struct{}

func (e *osExecutor) Run(ctx context.Context, c Command) error {
	cmd := e.command(ctx, c)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logging.Debug("running command", "cmd", c.String(), "dir", c.Dir)
	if err := cmd.Run(); err != nil {
		return commandError(c, out.Bytes(), err)
	}
	return nil
}

func (e *osExecutor) Output(ctx context.Context, c Command) ([]byte, error) {
	cmd := e.command(ctx, c)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.Debug("running command", "cmd", c.String(), "dir", c.Dir)
	out, err := cmd.Output()
	if err != nil {
		return out, commandError(c, stderr.Bytes(), err)
	}
	return out, nil
}

func (e *osExecutor) command(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	return cmd
}

func commandError(c Command, output []byte, err error) *CommandError {
	if len(output) > outputTailBytes {
		output = output[len(output)-outputTailBytes:]
	}

	cmdErr := &CommandError{
		Command: c.String(),
		Dir:     c.Dir,
		Output:  output,
		Err:     err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}

	logging.Debug("command failed", "cmd", cmdErr.Command, "dir", c.Dir, "exitCode", cmdErr.ExitCode, "error", err)
	return cmdErr
}
