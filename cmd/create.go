package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zaguiini/create-sandbox/internal/errors"
	"github.com/zaguiini/create-sandbox/internal/logging"
	"github.com/zaguiini/create-sandbox/internal/sandbox"
	"github.com/zaguiini/create-sandbox/internal/tui"
)

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req := sandbox.Request{Location: args[0]}
	if len(args) > 1 {
		req.DirectoryName = args[1]
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	interactive := isTerminal(out) && !noProgress && !jsonOutput

	logging.Debug("starting create-sandbox",
		"source", req.Location,
		"directory", req.DirectoryName,
		"buildScript", cfg.BuildScript,
		"interactive", interactive)

	var result *sandbox.Result
	run := func(ctx context.Context, observer sandbox.Observer) error {
		var err error
		result, err = sandbox.NewWorkflow(cfg, sandbox.WithObserver(observer)).Run(ctx, req)
		return err
	}

	if interactive {
		progress := tui.NewProgress(fmt.Sprintf("Creating a sandbox for %s", req.Location), out)
		err = progress.Run(ctx, func(ctx context.Context) error {
			return run(ctx, progress)
		})
	} else {
		err = run(ctx, sandbox.NewLogObserver())
	}

	if errors.Is(err, tui.ErrInterrupted) {
		return errors.New(errors.KindGeneral, errors.ExitGeneralError, "interrupted")
	}
	if err != nil {
		return err
	}

	logRunRecord(result)

	return logging.NextSteps(out, result.Layout.SandboxName, result.StartCommand(), interactive)
}

// logRunRecord writes the outcome of a successful run as structured log
// records when --json is set.
func logRunRecord(result *sandbox.Result) {
	if !jsonOutput {
		logging.Debug("sandbox created",
			"sandbox", result.Layout.SandboxDirectory,
			"companionLinked", result.CompanionLinked,
			"steps", len(result.Steps))
		return
	}

	for _, w := range result.Warnings {
		logging.Warn("warning", "message", w)
	}
	logging.Info("sandbox created",
		"sandbox", result.Layout.SandboxDirectory,
		"source", result.Layout.SourceDirectory,
		"acquisition", result.Acquisition.String(),
		"packageManager", result.Manifest.PackageManager.String(),
		"companionLinked", result.CompanionLinked,
		"start", result.StartCommand())
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
