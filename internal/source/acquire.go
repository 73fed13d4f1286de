package source

import (
	"context"

	"github.com/go-git/go-git/v5"
	shellquote "github.com/kballard/go-shellquote"

	"github.com/zaguiini/create-sandbox/internal/errors"
	"github.com/zaguiini/create-sandbox/internal/logging"
	"github.com/zaguiini/create-sandbox/internal/system"
)

// Cloner copies a repository into a local directory.
type Cloner interface {
	Clone(ctx context.Context, location, dir string) error
}

// GitCloner clones with go-git. It handles remote URLs as well as local
// repository paths.
type GitCloner struct{}

// Clone performs a full clone of location into dir.
func (GitCloner) Clone(ctx context.Context, location, dir string) error {
	logging.Debug("cloning repository", "location", location, "dir", dir)

	_, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:      location,
		Progress: logging.DebugWriter("clone"),
	})
	return err
}

// Acquisition describes how the source directory came to exist.
type Acquisition int

const (
	// Cloned means the repository was cloned during this run.
	Cloned Acquisition = iota
	// Reused means an existing source directory was used as is.
	Reused
)

func (a Acquisition) String() string {
	if a == Reused {
		return "reused"
	}
	return "cloned"
}

// Acquirer ensures the source directory exists before the sandbox is built.
type Acquirer struct {
	fs     system.FileSystem
	cloner Cloner
}

// NewAcquirer creates an Acquirer. Nil arguments fall back to the OS
// filesystem and GitCloner.
func NewAcquirer(fs system.FileSystem, cloner Cloner) *Acquirer {
	if fs == nil {
		fs = system.DefaultFS()
	}
	if cloner == nil {
		cloner = GitCloner{}
	}
	return &Acquirer{fs: fs, cloner: cloner}
}

// Acquire makes layout.SourceDirectory available. An existing sandbox
// directory is a conflict and is reported before the source directory is
// looked at. An existing source directory is reused without network access.
func (a *Acquirer) Acquire(ctx context.Context, src RepositorySource, layout Layout) (Acquisition, error) {
	if a.fs.Exists(layout.SandboxDirectory) {
		return 0, errors.ConflictingSandbox(layout.SandboxDirectory).
			WithHint(shellquote.Join("rm", "-rf", layout.SandboxDirectory))
	}

	if a.fs.Exists(layout.SourceDirectory) {
		logging.Debug("reusing existing source directory", "dir", layout.SourceDirectory)
		return Reused, nil
	}

	if err := a.cloner.Clone(ctx, src.Location, layout.SourceDirectory); err != nil {
		return 0, errors.CloneFailed(src.Location, err)
	}
	return Cloned, nil
}
