// Package source turns the user's source argument into local directories
// and makes sure the source package is present on disk.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/zaguiini/create-sandbox/internal/config"
)

// RepositorySource identifies where the package under development comes from.
type RepositorySource struct {
	// Location is a repository URL or a local path.
	Location string

	// DirectoryName is the local directory the source is acquired into.
	DirectoryName string
}

// NewRepositorySource builds a RepositorySource. An empty directoryName is
// derived from the final path segment of location without its extension.
func NewRepositorySource(location, directoryName string) (RepositorySource, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return RepositorySource{}, fmt.Errorf("source location is required")
	}

	if directoryName == "" {
		directoryName = FallbackDirectoryName(location)
	}

	if err := config.ValidateDirectoryName(directoryName); err != nil {
		return RepositorySource{}, err
	}

	return RepositorySource{Location: location, DirectoryName: directoryName}, nil
}

// FallbackDirectoryName returns the last path segment of location with its
// extension removed: "https://github.com/acme/widget.git" -> "widget".
// A colon also separates segments, so a location that ends in a port yields
// the port.
func FallbackDirectoryName(location string) string {
	trimmed := strings.TrimRight(location, `/\`)

	// scp-like git locations: git@host:org/repo.git
	if i := strings.LastIndexAny(trimmed, `/\:`); i >= 0 {
		trimmed = trimmed[i+1:]
	}

	if ext := filepath.Ext(trimmed); ext != "" && ext != trimmed {
		trimmed = strings.TrimSuffix(trimmed, ext)
	}
	return trimmed
}

// Layout holds the two directories a run works with.
type Layout struct {
	// WorkDir is the absolute directory both directories live in.
	WorkDir string

	// SourceDirectory holds the cloned or existing package.
	SourceDirectory string

	// SandboxName is the name passed to the app generator.
	SandboxName string

	// SandboxDirectory holds the generated consumer app.
	SandboxDirectory string
}

// NewLayout resolves the directories of src under workDir. The sandbox is
// named after the directory plus suffix.
func NewLayout(workDir string, src RepositorySource, suffix string) (Layout, error) {
	absWork, err := filepath.Abs(workDir)
	if err != nil {
		return Layout{}, fmt.Errorf("invalid working directory: %w", err)
	}

	sourceDir, err := securejoin.SecureJoin(absWork, src.DirectoryName)
	if err != nil {
		return Layout{}, fmt.Errorf("invalid source directory %q: %w", src.DirectoryName, err)
	}

	sandboxName := src.DirectoryName + suffix
	if err := config.ValidateDirectoryName(sandboxName); err != nil {
		return Layout{}, err
	}
	sandboxDir, err := securejoin.SecureJoin(absWork, sandboxName)
	if err != nil {
		return Layout{}, fmt.Errorf("invalid sandbox directory %q: %w", sandboxName, err)
	}

	return Layout{
		WorkDir:          absWork,
		SourceDirectory:  sourceDir,
		SandboxName:      sandboxName,
		SandboxDirectory: sandboxDir,
	}, nil
}
