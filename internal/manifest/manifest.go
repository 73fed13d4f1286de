// Package manifest reads a package's package.json and lockfile signal and
// derives what the sandbox workflow needs to know about it.
package manifest

import (
	"path/filepath"
	"strings"

	"github.com/mailru/easyjson"

	"github.com/zaguiini/create-sandbox/internal/errors"
	"github.com/zaguiini/create-sandbox/internal/logging"
	"github.com/zaguiini/create-sandbox/internal/pkgmanager"
	"github.com/zaguiini/create-sandbox/internal/system"
)

const (
	// FileName is the package manifest file at a project root.
	FileName = "package.json"

	// FrameworkPackage is the framework a sandboxable package must depend on.
	FrameworkPackage = "react"

	// RendererPackage is the framework's DOM renderer companion.
	RendererPackage = "react-dom"
)

// Manifest is the information derived from a source directory.
type Manifest struct {
	// Path is the manifest file that was read.
	Path string

	// PackageName is the declared package name; empty when absent.
	PackageName string

	// FrameworkVersion is the declared framework range; empty when the
	// package does not depend on the framework.
	FrameworkVersion string

	// PackageManager is yarn when a yarn lockfile exists, npm otherwise.
	PackageManager pkgmanager.Manager

	// PeerDependencies are normalized name@range specifiers in declaration
	// order, excluding the framework and its renderer.
	PeerDependencies []string

	// Scripts lists the declared script names in declaration order.
	Scripts []string
}

// HasScript reports whether the manifest declares the named script.
func (m *Manifest) HasScript(name string) bool {
	for _, s := range m.Scripts {
		if s == name {
			return true
		}
	}
	return false
}

// Inspector reads manifests through a FileSystem.
type Inspector struct {
	fs system.FileSystem
}

// NewInspector creates an Inspector. A nil fs uses the OS filesystem.
func NewInspector(fs system.FileSystem) *Inspector {
	if fs == nil {
		fs = system.DefaultFS()
	}
	return &Inspector{fs: fs}
}

// Inspect reads dir/package.json and the yarn lockfile signal.
// Missing package name or framework version are not errors here; the
// caller decides which preconditions are fatal.
func (i *Inspector) Inspect(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)

	data, err := i.fs.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidManifest(path, err)
	}

	var pkg packageJSON
	if err := easyjson.Unmarshal(data, &pkg); err != nil {
		return nil, errors.InvalidManifest(path, err)
	}

	m := &Manifest{
		Path:             path,
		PackageName:      strings.TrimSpace(pkg.Name),
		FrameworkVersion: frameworkVersion(&pkg),
		PackageManager:   i.packageManager(dir),
		PeerDependencies: normalizePeerDependencies(pkg.PeerDependencies),
		Scripts:          pkg.Scripts,
	}

	logging.Debug("manifest inspected",
		"path", path,
		"name", m.PackageName,
		"framework", m.FrameworkVersion,
		"packageManager", m.PackageManager,
		"peers", m.PeerDependencies)

	return m, nil
}

// packageManager selects yarn when the lockfile exists at the root.
func (i *Inspector) packageManager(dir string) pkgmanager.Manager {
	if i.fs.Exists(filepath.Join(dir, pkgmanager.LockfileName)) {
		return pkgmanager.Yarn
	}
	return pkgmanager.NPM
}

// frameworkVersion resolves peer, then regular, then dev dependency.
func frameworkVersion(pkg *packageJSON) string {
	for _, deps := range [][]dependency{pkg.PeerDependencies, pkg.Dependencies, pkg.DevDependencies} {
		if v, ok := lookup(deps, FrameworkPackage); ok {
			return v
		}
	}
	return ""
}

// normalizePeerDependencies drops the framework and its renderer and
// rewrites a leading ^ or ~ range operator to ~.
func normalizePeerDependencies(deps []dependency) []string {
	specs := make([]string, 0, len(deps))
	for _, d := range deps {
		if d.Name == FrameworkPackage || d.Name == RendererPackage {
			continue
		}
		specs = append(specs, d.Name+"@"+pinRange(d.Version))
	}
	return specs
}

// pinRange narrows caret ranges to tilde ranges.
func pinRange(version string) string {
	if strings.HasPrefix(version, "^") {
		return "~" + version[1:]
	}
	return version
}
