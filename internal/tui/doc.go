// Package tui provides terminal user interface components for create-sandbox.
//
// This package uses the Bubble Tea framework to show the provisioning
// workflow as it runs.
//
// # Progress
//
// Progress implements sandbox.Observer and renders one line per step: a
// spinner while the step runs, then a check mark with its duration or a
// cross when it failed. Warnings are listed below the steps.
//
//	progress := tui.NewProgress("Creating widget-sandbox", os.Stdout)
//	err := progress.Run(ctx, func(ctx context.Context) error {
//	    _, err := sandbox.NewWorkflow(cfg, sandbox.WithObserver(progress)).Run(ctx, req)
//	    return err
//	})
//
// Pressing ctrl+c cancels the context passed to the function and Run
// returns ErrInterrupted.
//
// # Dependencies
//
// Uses the Charm libraries:
//   - github.com/charmbracelet/bubbletea - TUI framework
//   - github.com/charmbracelet/bubbles - spinner component
//   - github.com/charmbracelet/lipgloss - Styling
package tui
