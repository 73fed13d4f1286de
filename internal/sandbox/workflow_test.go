package sandbox

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaguiini/create-sandbox/internal/config"
	sberrors "github.com/zaguiini/create-sandbox/internal/errors"
	"github.com/zaguiini/create-sandbox/internal/logging"
	"github.com/zaguiini/create-sandbox/internal/source"
	"github.com/zaguiini/create-sandbox/internal/system"
	"github.com/zaguiini/create-sandbox/internal/testutil"
)

const (
	workDir    = "/work"
	sourceDir  = "/work/widget"
	sandboxDir = "/work/widget-sandbox"
	location   = "https://github.com/acme/widget.git"
)

// fakeCloner materializes a fixture project when asked to clone.
type fakeCloner struct {
	t       *testing.T
	fs      *system.MockFS
	fixture string
	opts    []testutil.ProjectOption
	calls   int
	ctxs    []context.Context
}

func (c *fakeCloner) Clone(ctx context.Context, _, dir string) error {
	c.calls++
	c.ctxs = append(c.ctxs, ctx)
	testutil.AddProject(c.t, c.fs, dir, c.fixture, c.opts...)
	return nil
}

type event struct {
	kind string
	step Step
	err  error
}

type recordingObserver struct {
	events   []event
	warnings []string
}

func (o *recordingObserver) StepStarted(step Step) {
	o.events = append(o.events, event{kind: "start", step: step})
}

func (o *recordingObserver) StepFinished(step Step, err error) {
	o.events = append(o.events, event{kind: "finish", step: step, err: err})
}

func (o *recordingObserver) Warning(msg string) {
	o.warnings = append(o.warnings, msg)
}

type harness struct {
	fs       *system.MockFS
	exec     *system.MockExecutor
	cloner   *fakeCloner
	observer *recordingObserver
	cfg      *config.Config
}

// newHarness prepares a run whose clone produces the given fixture project.
func newHarness(t *testing.T, fixture string, opts ...testutil.ProjectOption) *harness {
	fs := system.NewMockFS()
	return &harness{
		fs:       fs,
		exec:     system.NewMockExecutor(),
		cloner:   &fakeCloner{t: t, fs: fs, fixture: fixture, opts: opts},
		observer: &recordingObserver{},
		cfg:      config.Default(),
	}
}

func (h *harness) run(ctx context.Context) (*Result, error) {
	w := NewWorkflow(h.cfg,
		WithExecutor(h.exec),
		WithFileSystem(h.fs),
		WithCloner(h.cloner),
		WithObserver(h.observer),
	)
	return w.Run(ctx, Request{Location: location, WorkDir: workDir})
}

func (h *harness) commandsIn(dir string) []system.Command {
	var cmds []system.Command
	for _, c := range h.exec.Commands {
		if c.Dir == dir {
			cmds = append(cmds, c)
		}
	}
	return cmds
}

func TestRun_HappyPath(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react", "react-dom"))

	result, err := h.run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []Step{
		StepAcquire,
		StepValidate,
		StepGenerate,
		StepInstall,
		StepBuild,
		StepRegisterSource,
		StepRegisterFramework,
		StepRegisterCompanion,
		StepConsume,
	}, result.Steps)
	assert.Equal(t, []string{
		"/work: npx create-react-app widget-sandbox --use-npm",
		"/work/widget: npm install",
		"/work/widget: npm build",
		"/work/widget: npm link",
		"/work/widget/node_modules/react: npm link",
		"/work/widget/node_modules/react-dom: npm link",
		"/work/widget-sandbox: npm link tiny-button react react-dom",
	}, h.exec.CommandLines())

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, source.Cloned, result.Acquisition)
	assert.Equal(t, 1, h.cloner.calls)
	assert.True(t, result.CompanionLinked)
	assert.Equal(t, "npm start", result.StartCommand())
	assert.Equal(t, "widget-sandbox", result.Layout.SandboxName)
	assert.Empty(t, result.Warnings)
}

func TestRun_GeneratorEnvironment(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react"))

	_, err := h.run(context.Background())
	require.NoError(t, err)

	gen := h.commandsIn(workDir)
	require.Len(t, gen, 1)
	assert.Equal(t, "npx", gen[0].Name)
	assert.Contains(t, gen[0].Env, "npm_config_yes=true")
}

func TestRun_YarnProjectWithPeers(t *testing.T) {
	h := newHarness(t, testutil.ReactLibrary, testutil.WithYarnLock(), testutil.WithInstalled("react", "react-dom"))
	h.exec.AddResponse("yarn --version", []byte("1.22.19\n"), nil)

	result, err := h.run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "1.22.19", result.PackageManagerVersion)
	assert.Equal(t, "yarn start", result.StartCommand())
	assert.Contains(t, result.Steps, StepPeerInstall)
	assert.Equal(t, StateDone, result.State)

	probe := h.commandsIn("")
	require.Len(t, probe, 1)
	assert.Equal(t, []string{"--version"}, probe[0].Args)

	gen := h.commandsIn(workDir)
	require.Len(t, gen, 1)
	assert.Equal(t, []string{"create-react-app", "widget-sandbox"}, gen[0].Args, "yarn is the generator default")

	sandboxCmds := h.commandsIn(sandboxDir)
	require.Len(t, sandboxCmds, 2)
	assert.Equal(t, "yarn", sandboxCmds[0].Name)
	assert.Equal(t, []string{"add", "lodash@~4.17.0", "axios@~1.2.0"}, sandboxCmds[0].Args)
	assert.Equal(t, []string{"link", "@acme/widget", "react", "react-dom"}, sandboxCmds[1].Args)

	var order []Step
	for _, s := range result.Steps {
		if s == StepBuild || s == StepPeerInstall || s == StepRegisterSource {
			order = append(order, s)
		}
	}
	assert.Equal(t, []Step{StepBuild, StepPeerInstall, StepRegisterSource}, order)
}

func TestRun_NPMPeerInstallVerb(t *testing.T) {
	h := newHarness(t, testutil.ReactPeerOrder, testutil.WithInstalled("react"))

	_, err := h.run(context.Background())
	require.NoError(t, err)

	sandboxCmds := h.commandsIn(sandboxDir)
	require.NotEmpty(t, sandboxCmds)
	assert.Equal(t, "npm", sandboxCmds[0].Name)
	assert.Equal(t, []string{"install", "axios@~1.2.0", "lodash@~4.17.0"}, sandboxCmds[0].Args)
}

func TestRun_ConflictingSandbox(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact)
	h.fs.AddDir(sandboxDir)
	testutil.AddProject(t, h.fs, sourceDir, testutil.MinimalReact)

	result, err := h.run(context.Background())

	require.Error(t, err)
	assert.True(t, sberrors.IsKind(err, sberrors.KindConflictingSandbox))
	assert.Equal(t, sberrors.ExitConflictingSandbox, sberrors.GetExitCode(err))
	assert.Contains(t, sberrors.HintOf(err), "rm -rf "+sandboxDir)

	assert.Equal(t, StateIdle, result.State)
	assert.Equal(t, []Step{StepAcquire}, result.Steps)
	assert.Zero(t, h.cloner.calls)
	assert.Empty(t, h.exec.Commands)
	assert.False(t, h.fs.Probed(sourceDir))
	assert.False(t, h.fs.Probed(sourceDir+"/package.json"))
}

func TestRun_ReusesExistingSource(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact)
	testutil.AddProject(t, h.fs, sourceDir, testutil.MinimalReact, testutil.WithInstalled("react"))

	result, err := h.run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, h.cloner.calls)
	assert.Equal(t, source.Reused, result.Acquisition)
	assert.Equal(t, StateDone, result.State)
}

func TestRun_ValidationFailures(t *testing.T) {
	tests := []struct {
		name     string
		fixture  string
		wantKind sberrors.Kind
	}{
		{"missing package name", testutil.NoName, sberrors.KindMissingPackageName},
		{"not a react project", testutil.NotReact, sberrors.KindNotAFrameworkProject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.fixture)

			result, err := h.run(context.Background())

			require.Error(t, err)
			assert.True(t, sberrors.IsKind(err, tt.wantKind), "got %v", err)
			assert.Equal(t, sberrors.ExitInvalidProject, sberrors.GetExitCode(err))
			assert.Equal(t, StateSourceAcquired, result.State)
			assert.Equal(t, []Step{StepAcquire, StepValidate}, result.Steps)
			assert.Empty(t, h.exec.Commands, "generation must never be reached")
		})
	}
}

func TestRun_InvalidManifest(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact)
	h.fs.AddFile(sourceDir+"/package.json", []byte(`{"name":`))

	_, err := h.run(context.Background())

	assert.True(t, sberrors.IsKind(err, sberrors.KindInvalidManifest), "got %v", err)
}

func TestRun_YarnUnavailable(t *testing.T) {
	h := newHarness(t, testutil.ReactLibrary, testutil.WithYarnLock())
	h.exec.AddResponse("yarn --version", nil, errors.New(`exec: "yarn": executable file not found in $PATH`))

	result, err := h.run(context.Background())

	require.Error(t, err)
	assert.True(t, sberrors.IsKind(err, sberrors.KindPackageManagerUnavailable))
	assert.Equal(t, sberrors.ExitPackageManagerUnavailable, sberrors.GetExitCode(err))
	assert.Contains(t, sberrors.HintOf(err), "npm install --global yarn")
	assert.Equal(t, StateSourceAcquired, result.State)
	assert.Len(t, h.exec.Commands, 1, "only the probe runs")
}

func TestRun_NPMProjectSkipsYarnProbe(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react"))
	h.exec.AddResponse("yarn", nil, errors.New("yarn must not run"))

	_, err := h.run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, h.commandsIn(""))
}

func TestRun_GenerationFailed(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact)
	h.exec.AddResponse("npx create-react-app", nil, errors.New("exit status 1"))

	result, err := h.run(context.Background())

	require.Error(t, err)
	assert.True(t, sberrors.IsKind(err, sberrors.KindGenerationFailed))
	assert.Equal(t, sberrors.ExitGenerationFailed, sberrors.GetExitCode(err))
	hint := sberrors.HintOf(err)
	assert.Contains(t, hint, "npx clear-npx-cache")
	assert.Contains(t, hint, "npm uninstall -g create-react-app")
	assert.Equal(t, StateValidated, result.State)
	assert.Len(t, h.exec.Commands, 1)
}

func TestRun_StepFailuresHaltInPlace(t *testing.T) {
	tests := []struct {
		name      string
		failDir   string
		failVerb  string
		wantKind  sberrors.Kind
		wantState State
		wantHint  string
	}{
		{"install", sourceDir, "install", sberrors.KindInstallFailed, StateSandboxGenerated, "cd /work/widget && npm install"},
		{"build", sourceDir, "build", sberrors.KindBuildFailed, StateDependenciesInstalled, "cd /work/widget && npm build"},
		{"peer install", sandboxDir, "install", sberrors.KindPeerInstallFailed, StateBuilt, "cd /work/widget-sandbox && npm install"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, testutil.ReactPeerOrder, testutil.WithInstalled("react"))
			cause := errors.New("exit status 1")
			h.exec.OnRun = func(_ context.Context, c system.Command) {
				if c.Dir == tt.failDir && len(c.Args) > 0 && c.Args[0] == tt.failVerb {
					h.exec.DefaultResponse = system.MockResponse{Err: cause}
				} else {
					h.exec.DefaultResponse = system.MockResponse{}
				}
			}

			result, err := h.run(context.Background())

			require.Error(t, err)
			assert.True(t, sberrors.IsKind(err, tt.wantKind), "got %v", err)
			assert.ErrorIs(t, err, cause)
			assert.Contains(t, sberrors.HintOf(err), tt.wantHint)
			assert.Equal(t, tt.wantState, result.State)
			assert.NotContains(t, result.Steps, StepRegisterSource)
		})
	}
}

func TestRun_CompanionRegistrationFails(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react", "react-dom"))
	h.exec.OnRun = func(_ context.Context, c system.Command) {
		if c.Dir == sourceDir+"/node_modules/react-dom" {
			h.exec.DefaultResponse = system.MockResponse{Err: errors.New("exit status 1")}
		} else {
			h.exec.DefaultResponse = system.MockResponse{}
		}
	}

	result, err := h.run(context.Background())

	require.NoError(t, err)
	assert.False(t, result.CompanionLinked)
	assert.Equal(t, StateDone, result.State)
	assert.Contains(t, result.Steps, StepRegisterCompanion)

	last, ok := h.exec.LastCommand()
	require.True(t, ok)
	assert.Equal(t, sandboxDir, last.Dir)
	assert.Equal(t, []string{"link", "tiny-button", "react"}, last.Args)
}

func TestRun_LinkFailure(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react"))
	h.exec.AddResponse("npm link tiny-button react", nil, errors.New("exit status 1"))

	result, err := h.run(context.Background())

	require.Error(t, err)
	assert.True(t, sberrors.IsKind(err, sberrors.KindLinkFailed))
	assert.Equal(t, sberrors.ExitLinkFailed, sberrors.GetExitCode(err))
	assert.Equal(t, StateBuilt, result.State)
}

func TestRun_CustomBuildScript(t *testing.T) {
	h := newHarness(t, testutil.DevOnlyReact, testutil.WithInstalled("react"))
	h.cfg.BuildScript = "bundle"

	result, err := h.run(context.Background())

	require.NoError(t, err)
	assert.Contains(t, h.exec.CommandLines(), "/work/widget: npm bundle")
	assert.Empty(t, result.Warnings)
}

func TestRun_UndeclaredBuildScriptWarns(t *testing.T) {
	h := newHarness(t, testutil.ReactLibrary, testutil.WithInstalled("react"))
	h.cfg.BuildScript = "bld"

	result, err := h.run(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], `did you mean "build"?`)
	assert.Equal(t, result.Warnings, h.observer.warnings)
	assert.Contains(t, h.exec.CommandLines(), "/work/widget: npm bld", "the run still proceeds")
}

func TestRun_Timeout(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react"))
	h.cfg.Timeout = config.Duration{Duration: time.Minute}

	var withoutDeadline []string
	h.exec.OnRun = func(ctx context.Context, c system.Command) {
		if _, ok := ctx.Deadline(); !ok {
			withoutDeadline = append(withoutDeadline, c.String())
		}
	}

	_, err := h.run(context.Background())

	require.NoError(t, err)
	assert.Empty(t, withoutDeadline)
	require.Len(t, h.cloner.ctxs, 1)
	_, ok := h.cloner.ctxs[0].Deadline()
	assert.True(t, ok, "clone is bounded by the timeout")
}

func TestRun_NoTimeoutByDefault(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react"))

	var withDeadline int
	h.exec.OnRun = func(ctx context.Context, _ system.Command) {
		if _, ok := ctx.Deadline(); ok {
			withDeadline++
		}
	}

	_, err := h.run(context.Background())

	require.NoError(t, err)
	assert.Zero(t, withDeadline)
}

func TestRun_Cancelled(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react"))
	ctx, cancel := context.WithCancel(context.Background())
	h.exec.OnRun = func(_ context.Context, c system.Command) {
		if c.Name == "npx" {
			cancel()
		}
	}

	result, err := h.run(ctx)

	require.Error(t, err)
	assert.True(t, sberrors.IsKind(err, sberrors.KindGenerationFailed))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateValidated, result.State)
}

func TestRun_InvalidRequest(t *testing.T) {
	tests := map[string]Request{
		"empty location":    {Location: ""},
		"bad directory":     {Location: location, DirectoryName: "../escape"},
		"unusable fallback": {Location: "https://"},
	}

	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, testutil.MinimalReact)
			w := NewWorkflow(h.cfg, WithExecutor(h.exec), WithFileSystem(h.fs), WithCloner(h.cloner))

			result, err := w.Run(context.Background(), req)

			require.Error(t, err)
			assert.True(t, sberrors.IsKind(err, sberrors.KindValidation))
			assert.Empty(t, result.Steps)
			assert.Zero(t, h.cloner.calls)
		})
	}
}

func TestRun_ObserverSeesEveryStep(t *testing.T) {
	h := newHarness(t, testutil.NotReact)

	_, err := h.run(context.Background())
	require.Error(t, err)

	events := h.observer.events
	require.Len(t, events, 4)
	assert.Equal(t, event{kind: "start", step: StepAcquire}, events[0])
	assert.Equal(t, event{kind: "finish", step: StepAcquire}, events[1])
	assert.Equal(t, "start", events[2].kind)
	assert.Equal(t, StepValidate, events[3].step)
	assert.Equal(t, err, events[3].err)
}

func TestRun_ExplicitDirectoryName(t *testing.T) {
	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react"))
	w := NewWorkflow(h.cfg, WithExecutor(h.exec), WithFileSystem(h.fs), WithCloner(h.cloner))

	result, err := w.Run(context.Background(), Request{Location: location, DirectoryName: "button", WorkDir: workDir})

	require.NoError(t, err)
	assert.Equal(t, "/work/button", result.Layout.SourceDirectory)
	assert.Equal(t, "/work/button-sandbox", result.Layout.SandboxDirectory)
	assert.Contains(t, h.exec.CommandLines(), "/work: npx create-react-app button-sandbox --use-npm")
}

func TestRun_DebugLogsCarrySandboxName(t *testing.T) {
	var buf bytes.Buffer
	logging.Setup(true, false, &buf)
	t.Cleanup(func() { logging.Setup(false, false, os.Stderr) })

	h := newHarness(t, testutil.MinimalReact, testutil.WithInstalled("react"))
	_, err := h.run(context.Background())

	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "step started")
	assert.Contains(t, output, "step=generate")
	assert.Contains(t, output, "sandbox=widget-sandbox")
}
