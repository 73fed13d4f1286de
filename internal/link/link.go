// Package link wires a source package into a sandbox app through the
// package manager's link mechanism.
package link

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/zaguiini/create-sandbox/internal/errors"
	"github.com/zaguiini/create-sandbox/internal/logging"
	"github.com/zaguiini/create-sandbox/internal/manifest"
	"github.com/zaguiini/create-sandbox/internal/pkgmanager"
	"github.com/zaguiini/create-sandbox/internal/system"
)

// Step names one link operation.
type Step string

const (
	StepRegisterSource    Step = "link-source"
	StepRegisterFramework Step = "link-framework"
	StepRegisterCompanion Step = "link-companion"
	StepConsume           Step = "link-consume"
)

// Steps lists the link operations in execution order.
var Steps = []Step{StepRegisterSource, StepRegisterFramework, StepRegisterCompanion, StepConsume}

// Registration is the outcome of registering the renderer companion.
type Registration int

const (
	// Registered means the companion is linkable and will be consumed.
	Registered Registration = iota
	// Absent means the source does not ship the companion. This is expected
	// and not an error.
	Absent
)

func (r Registration) String() string {
	if r == Absent {
		return "absent"
	}
	return "registered"
}

// Target describes the two sides of the link graph.
type Target struct {
	PackageName      string
	SourceDirectory  string
	SandboxDirectory string
}

// Result reports what was linked into the sandbox.
type Result struct {
	Companion Registration

	// Consumed lists the names linked into the sandbox, in order.
	Consumed []string
}

// CompanionLinked reports whether the renderer companion was consumed.
func (r *Result) CompanionLinked() bool {
	return r.Companion == Registered
}

// Tracker runs fn as the named step. It lets callers observe each link
// operation. A nil Tracker runs the steps directly.
type Tracker func(step Step, fn func() error) error

// Wirer performs the link operations.
type Wirer struct {
	exec system.CommandExecutor
	fs   system.FileSystem
}

// NewWirer creates a Wirer. Nil arguments fall back to the defaults.
func NewWirer(exec system.CommandExecutor, fs system.FileSystem) *Wirer {
	if exec == nil {
		exec = system.DefaultExecutor()
	}
	if fs == nil {
		fs = system.DefaultFS()
	}
	return &Wirer{exec: exec, fs: fs}
}

// Wire registers the source package, the framework copy installed in the
// source, and the renderer companion if present, then consumes them by name
// inside the sandbox. Only a failed companion registration is tolerated.
func (w *Wirer) Wire(ctx context.Context, pm pkgmanager.Manager, target Target, track Tracker) (*Result, error) {
	if track == nil {
		track = func(_ Step, fn func() error) error { return fn() }
	}

	err := track(StepRegisterSource, func() error {
		return w.register(ctx, pm, target.SourceDirectory, target.PackageName)
	})
	if err != nil {
		return nil, err
	}

	err = track(StepRegisterFramework, func() error {
		dir := dependencyDir(target.SourceDirectory, manifest.FrameworkPackage)
		return w.register(ctx, pm, dir, manifest.FrameworkPackage)
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	err = track(StepRegisterCompanion, func() error {
		reg, err := w.registerCompanion(ctx, pm, target.SourceDirectory)
		result.Companion = reg
		return err
	})
	if err != nil {
		return nil, err
	}

	names := []string{target.PackageName, manifest.FrameworkPackage}
	if result.CompanionLinked() {
		names = append(names, manifest.RendererPackage)
	}

	err = track(StepConsume, func() error {
		cmd := pm.LinkConsume(target.SandboxDirectory, names)
		if err := w.exec.Run(ctx, cmd); err != nil {
			return errors.LinkFailed("consume "+strings.Join(names, " "), err).
				WithHint(fmt.Sprintf("cd %s && %s", shellquote.Join(target.SandboxDirectory), cmd.String()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Consumed = names
	return result, nil
}

func (w *Wirer) register(ctx context.Context, pm pkgmanager.Manager, dir, name string) error {
	cmd := pm.Link(dir)
	if err := w.exec.Run(ctx, cmd); err != nil {
		return errors.LinkFailed(fmt.Sprintf("register %s", name), err).
			WithHint(fmt.Sprintf("cd %s && %s", shellquote.Join(dir), cmd.String()))
	}
	logging.Debug("registered link", "package", name, "dir", dir)
	return nil
}

// registerCompanion tries to register the renderer companion installed in
// sourceDir. A missing directory or a failing command means Absent. Only
// cancellation of ctx is an error.
func (w *Wirer) registerCompanion(ctx context.Context, pm pkgmanager.Manager, sourceDir string) (Registration, error) {
	dir := dependencyDir(sourceDir, manifest.RendererPackage)
	if !w.fs.IsDir(dir) {
		logging.Debug("renderer companion not installed", "dir", dir)
		return Absent, nil
	}

	if err := w.exec.Run(ctx, pm.Link(dir)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Absent, errors.LinkFailed("register "+manifest.RendererPackage, ctxErr)
		}
		logging.Debug("renderer companion not linkable", "dir", dir, "error", err)
		return Absent, nil
	}

	logging.Debug("registered link", "package", manifest.RendererPackage, "dir", dir)
	return Registered, nil
}

// dependencyDir returns the install directory of name under dir. Symlinked
// entries are left unresolved so the package manager follows them.
func dependencyDir(dir, name string) string {
	return filepath.Join(dir, "node_modules", name)
}
