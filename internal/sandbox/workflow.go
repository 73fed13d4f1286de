package sandbox

import (
	"context"
	"fmt"
	"log/slog"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/zaguiini/create-sandbox/internal/config"
	"github.com/zaguiini/create-sandbox/internal/errors"
	"github.com/zaguiini/create-sandbox/internal/link"
	"github.com/zaguiini/create-sandbox/internal/logging"
	"github.com/zaguiini/create-sandbox/internal/manifest"
	"github.com/zaguiini/create-sandbox/internal/pkgmanager"
	"github.com/zaguiini/create-sandbox/internal/source"
	"github.com/zaguiini/create-sandbox/internal/system"
)

// Request describes one provisioning run.
type Request struct {
	// Location is the repository URL or local path of the source package (required).
	Location string

	// DirectoryName overrides the directory name derived from Location.
	DirectoryName string

	// WorkDir holds the source and sandbox directories. Empty means the
	// current directory.
	WorkDir string
}

// Result describes a run. When Run fails it reports how far the run got.
type Result struct {
	Source      source.RepositorySource
	Layout      source.Layout
	Acquisition source.Acquisition

	// Manifest is set once the source package has been inspected.
	Manifest *manifest.Manifest

	// PackageManagerVersion is the reported yarn version when yarn was probed.
	PackageManagerVersion string

	// CompanionLinked reports whether react-dom was linked into the sandbox.
	CompanionLinked bool

	// Steps lists the steps that were started, in order.
	Steps []Step

	Warnings []string
	State    State
}

// StartCommand returns the command that starts the sandbox app.
func (r *Result) StartCommand() string {
	if r.Manifest == nil {
		return pkgmanager.NPM.StartCommand()
	}
	return r.Manifest.PackageManager.StartCommand()
}

// Workflow provisions a sandbox app linked to a source package.
type Workflow struct {
	cfg      *config.Config
	exec     system.CommandExecutor
	fs       system.FileSystem
	cloner   source.Cloner
	observer Observer
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithExecutor sets the executor for external commands.
func WithExecutor(exec system.CommandExecutor) Option {
	return func(w *Workflow) { w.exec = exec }
}

// WithFileSystem sets the filesystem used for existence checks and manifest reads.
func WithFileSystem(fs system.FileSystem) Option {
	return func(w *Workflow) { w.fs = fs }
}

// WithCloner sets the repository cloner.
func WithCloner(c source.Cloner) Option {
	return func(w *Workflow) { w.cloner = c }
}

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(w *Workflow) { w.observer = o }
}

// NewWorkflow creates a Workflow. A nil cfg uses config.Default().
func NewWorkflow(cfg *config.Config, opts ...Option) *Workflow {
	if cfg == nil {
		cfg = config.Default()
	}
	w := &Workflow{
		cfg:      cfg,
		exec:     system.DefaultExecutor(),
		fs:       system.DefaultFS(),
		cloner:   source.GitCloner{},
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// run carries the state of a single Run call.
type run struct {
	*Workflow
	exec   system.CommandExecutor
	log    *slog.Logger
	result *Result
}

// Run provisions the sandbox described by req. Steps run strictly in order
// and the first failure stops the run without undoing completed steps.
// Every returned error is a *errors.SandboxError.
func (w *Workflow) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{State: StateIdle}

	src, err := source.NewRepositorySource(req.Location, req.DirectoryName)
	if err != nil {
		return result, errors.Wrap(errors.KindValidation, errors.ExitGeneralError, "invalid source", err)
	}
	workDir := req.WorkDir
	if workDir == "" {
		workDir = "."
	}
	layout, err := source.NewLayout(workDir, src, w.cfg.SandboxSuffix)
	if err != nil {
		return result, errors.Wrap(errors.KindValidation, errors.ExitGeneralError, "invalid directory layout", err)
	}
	result.Source = src
	result.Layout = layout

	logging.Debug("starting sandbox run",
		"location", src.Location,
		"source", layout.SourceDirectory,
		"sandbox", layout.SandboxDirectory,
		"timeout", w.cfg.Timeout.Duration)

	r := &run{
		Workflow: w,
		exec:     system.WithTimeout(w.exec, w.cfg.Timeout.Duration),
		log:      logging.With("sandbox", layout.SandboxName),
		result:   result,
	}

	if err := r.acquire(ctx); err != nil {
		return result, err
	}
	if err := r.validate(ctx); err != nil {
		return result, err
	}
	if err := r.generate(ctx); err != nil {
		return result, err
	}
	if err := r.install(ctx); err != nil {
		return result, err
	}
	if err := r.build(ctx); err != nil {
		return result, err
	}
	if err := r.installPeers(ctx); err != nil {
		return result, err
	}
	if err := r.link(ctx); err != nil {
		return result, err
	}

	r.advance(StateDone)
	return result, nil
}

// step runs fn as the named step, notifying the observer and converting
// any error into a SandboxError.
func (r *run) step(step Step, fn func() error) error {
	r.result.Steps = append(r.result.Steps, step)
	r.observer.StepStarted(step)
	r.log.Debug("step started", "step", string(step))

	err := fn()
	if err != nil {
		var sandboxErr *errors.SandboxError
		if !errors.As(err, &sandboxErr) {
			err = errors.Wrap(errors.KindGeneral, errors.ExitGeneralError, fmt.Sprintf("%s failed", step), err)
		}
		r.log.Debug("step failed", "step", string(step), "error", err)
	}

	r.observer.StepFinished(step, err)
	return err
}

func (r *run) advance(to State) {
	r.log.Debug("state transition", "from", r.result.State.String(), "to", to.String())
	r.result.State = to
}

func (r *run) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.result.Warnings = append(r.result.Warnings, msg)
	r.observer.Warning(msg)
}

// commandContext bounds work that does not go through the executor, such
// as the clone, with the configured timeout.
func (r *run) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := r.cfg.Timeout.Duration; d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func (r *run) acquire(ctx context.Context) error {
	err := r.step(StepAcquire, func() error {
		ctx, cancel := r.commandContext(ctx)
		defer cancel()

		how, err := source.NewAcquirer(r.fs, r.cloner).Acquire(ctx, r.result.Source, r.result.Layout)
		if err != nil {
			return err
		}
		r.result.Acquisition = how
		r.log.Debug("source acquired", "dir", r.result.Layout.SourceDirectory, "how", how.String())
		return nil
	})
	if err != nil {
		return err
	}
	r.advance(StateSourceAcquired)
	return nil
}

func (r *run) validate(ctx context.Context) error {
	err := r.step(StepValidate, func() error {
		m, err := manifest.NewInspector(r.fs).Inspect(r.result.Layout.SourceDirectory)
		if err != nil {
			return err
		}
		r.result.Manifest = m

		if m.PackageName == "" {
			return errors.MissingPackageName(m.Path).
				WithHint(fmt.Sprintf("add a \"name\" field to %s", m.Path))
		}
		if m.FrameworkVersion == "" {
			return errors.NotAFrameworkProject(manifest.FrameworkPackage)
		}

		if m.PackageManager == pkgmanager.Yarn {
			version, err := pkgmanager.Probe(ctx, r.exec, pkgmanager.Yarn)
			if err != nil {
				return errors.PackageManagerUnavailable(pkgmanager.Yarn.String(), err).
					WithHint(shellquote.Join("npm", "install", "--global", "yarn"))
			}
			r.result.PackageManagerVersion = version
		}

		r.checkBuildScript(m)
		return nil
	})
	if err != nil {
		return err
	}
	r.advance(StateValidated)
	return nil
}

// checkBuildScript warns when the manifest declares scripts but not the
// configured build script. The package manager still gets to decide.
func (r *run) checkBuildScript(m *manifest.Manifest) {
	script := r.cfg.BuildScript
	if len(m.Scripts) == 0 || m.HasScript(script) {
		return
	}
	if suggestion := suggestScript(script, m.Scripts); suggestion != "" {
		r.warn("%s does not declare a %q script; did you mean %q?", manifest.FileName, script, suggestion)
		return
	}
	r.warn("%s does not declare a %q script", manifest.FileName, script)
}

func (r *run) generate(ctx context.Context) error {
	err := r.step(StepGenerate, func() error {
		cmd, err := r.generatorCommand()
		if err != nil {
			return errors.ConfigError("invalid generator", err)
		}
		if err := r.exec.Run(ctx, cmd); err != nil {
			return errors.GenerationFailed(r.result.Layout.SandboxName, err).
				WithHint(generatorHint(cmd))
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.advance(StateSandboxGenerated)
	return nil
}

// generatorCommand builds `<generator> <sandboxName> [--use-npm]`. Yarn is
// the generator's default, so no flag is passed for it.
func (r *run) generatorCommand() (system.Command, error) {
	argv, err := r.cfg.GeneratorArgv()
	if err != nil {
		return system.Command{}, err
	}

	args := make([]string, 0, len(argv)+1)
	args = append(args, argv[1:]...)
	args = append(args, r.result.Layout.SandboxName)
	if r.result.Manifest.PackageManager == pkgmanager.NPM {
		args = append(args, "--use-npm")
	}

	return system.Command{
		Name: argv[0],
		Args: args,
		Dir:  r.result.Layout.WorkDir,
		Env:  []string{"npm_config_yes=true"},
	}, nil
}

func generatorHint(cmd system.Command) string {
	if cmd.Name != "npx" || len(cmd.Args) == 0 {
		return fmt.Sprintf("make sure `%s` runs on its own", cmd.String())
	}
	return shellquote.Join("npx", "clear-npx-cache") + "\n" +
		shellquote.Join("npm", "uninstall", "-g", cmd.Args[0])
}

func (r *run) install(ctx context.Context) error {
	pm := r.result.Manifest.PackageManager
	dir := r.result.Layout.SourceDirectory

	err := r.step(StepInstall, func() error {
		cmd := pm.Install(dir)
		if err := r.exec.Run(ctx, cmd); err != nil {
			return errors.InstallFailed(dir, err).WithHint(inDir(dir, cmd))
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.advance(StateDependenciesInstalled)
	return nil
}

func (r *run) build(ctx context.Context) error {
	pm := r.result.Manifest.PackageManager
	dir := r.result.Layout.SourceDirectory

	err := r.step(StepBuild, func() error {
		cmd := pm.RunScript(dir, r.cfg.BuildScript)
		if err := r.exec.Run(ctx, cmd); err != nil {
			return errors.BuildFailed(dir, err).WithHint(inDir(dir, cmd))
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.advance(StateBuilt)
	return nil
}

func (r *run) installPeers(ctx context.Context) error {
	m := r.result.Manifest
	if len(m.PeerDependencies) == 0 {
		r.log.Debug("no peer dependencies to install")
		return nil
	}
	dir := r.result.Layout.SandboxDirectory

	err := r.step(StepPeerInstall, func() error {
		cmd := m.PackageManager.Add(dir, m.PeerDependencies)
		if err := r.exec.Run(ctx, cmd); err != nil {
			return errors.PeerInstallFailed(dir, err).WithHint(inDir(dir, cmd))
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.advance(StatePeerDependenciesInstalled)
	return nil
}

func (r *run) link(ctx context.Context) error {
	target := link.Target{
		PackageName:      r.result.Manifest.PackageName,
		SourceDirectory:  r.result.Layout.SourceDirectory,
		SandboxDirectory: r.result.Layout.SandboxDirectory,
	}

	res, err := link.NewWirer(r.exec, r.fs).Wire(ctx, r.result.Manifest.PackageManager, target,
		func(step link.Step, fn func() error) error {
			return r.step(Step(step), fn)
		})
	if err != nil {
		return err
	}

	r.result.CompanionLinked = res.CompanionLinked()
	r.advance(StateLinked)
	return nil
}

// inDir renders "cd <dir> && <cmd>" for remediation hints.
func inDir(dir string, cmd system.Command) string {
	return "cd " + shellquote.Join(dir) + " && " + cmd.String()
}
