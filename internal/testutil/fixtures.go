package testutil

import (
	"embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/zaguiini/create-sandbox/internal/system"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

// Manifest fixture names.
const (
	ReactLibrary   = "react_library.json"
	ReactPeerOrder = "react_peer_order.json"
	DevOnlyReact   = "dev_only_react.json"
	MinimalReact   = "minimal_react.json"
	NoName         = "no_name.json"
	NotReact       = "not_react.json"
)

// LoadFixture loads a JSON fixture file by name.
func LoadFixture(name string) ([]byte, error) {
	return fixturesFS.ReadFile("fixtures/" + name)
}

// MustFixture loads a fixture or fails the test.
func MustFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := LoadFixture(name)
	if err != nil {
		t.Fatalf("Failed to load fixture %s: %v", name, err)
	}
	return data
}

// projectOptions controls which files a fixture project gets.
type projectOptions struct {
	yarnLock     bool
	dependencies []string
}

// ProjectOption customizes a fixture project.
type ProjectOption func(*projectOptions)

// WithYarnLock adds a yarn.lock at the project root.
func WithYarnLock() ProjectOption {
	return func(o *projectOptions) { o.yarnLock = true }
}

// WithInstalled adds node_modules/<name> directories for the given packages.
func WithInstalled(names ...string) ProjectOption {
	return func(o *projectOptions) { o.dependencies = append(o.dependencies, names...) }
}

func applyOptions(opts []ProjectOption) projectOptions {
	var o projectOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AddProject places a fixture project at dir in the mock filesystem.
func AddProject(t *testing.T, fs *system.MockFS, dir, fixture string, opts ...ProjectOption) {
	t.Helper()
	o := applyOptions(opts)

	fs.AddDir(dir)
	fs.AddFile(filepath.Join(dir, "package.json"), MustFixture(t, fixture))
	if o.yarnLock {
		fs.AddFile(filepath.Join(dir, "yarn.lock"), []byte("# yarn lockfile v1\n"))
	}
	for _, name := range o.dependencies {
		fs.AddDir(filepath.Join(dir, "node_modules", name))
	}
}

// WriteProject writes a fixture project to dir on disk and returns dir.
func WriteProject(t *testing.T, dir, fixture string, opts ...ProjectOption) string {
	t.Helper()
	o := applyOptions(opts)

	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create project dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "package.json"), MustFixture(t, fixture), 0644); err != nil {
		t.Fatalf("Failed to write package.json: %v", err)
	}
	if o.yarnLock {
		if err := os.WriteFile(filepath.Join(dir, "yarn.lock"), []byte("# yarn lockfile v1\n"), 0644); err != nil {
			t.Fatalf("Failed to write yarn.lock: %v", err)
		}
	}
	for _, name := range o.dependencies {
		if err := os.MkdirAll(filepath.Join(dir, "node_modules", name), 0755); err != nil {
			t.Fatalf("Failed to create node_modules/%s: %v", name, err)
		}
	}
	return dir
}
