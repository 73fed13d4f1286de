package errors

import (
	"errors"
	"fmt"
)

// Exit codes for create-sandbox
const (
	ExitSuccess                   = 0
	ExitGeneralError              = 1
	ExitConflictingSandbox        = 2
	ExitCloneFailed               = 3
	ExitInvalidProject            = 4
	ExitPackageManagerUnavailable = 5
	ExitGenerationFailed          = 6
	ExitInstallFailed             = 7
	ExitBuildFailed               = 8
	ExitLinkFailed                = 9
	ExitConfigError               = 10
)

// Kind names the step-level failure category of a SandboxError.
type Kind string

const (
	KindGeneral                   Kind = "General"
	KindConflictingSandbox        Kind = "ConflictingSandbox"
	KindCloneFailed               Kind = "CloneFailed"
	KindInvalidManifest           Kind = "InvalidManifest"
	KindMissingPackageName        Kind = "MissingPackageName"
	KindNotAFrameworkProject      Kind = "NotAFrameworkProject"
	KindPackageManagerUnavailable Kind = "PackageManagerUnavailable"
	KindGenerationFailed          Kind = "GenerationFailed"
	KindInstallFailed             Kind = "InstallFailed"
	KindBuildFailed               Kind = "BuildFailed"
	KindPeerInstallFailed         Kind = "PeerInstallFailed"
	KindLinkFailed                Kind = "LinkFailed"
	KindConfig                    Kind = "Config"
	KindValidation                Kind = "Validation"
)

// SandboxError is the base error type for create-sandbox
type SandboxError struct {
	Kind    Kind
	Code    int
	Message string
	// Hint is an optional remediation shown to the operator.
	Hint  string
	Cause error
}

func (e *SandboxError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SandboxError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the exit code for this error
func (e *SandboxError) ExitCode() int {
	return e.Code
}

// WithHint returns the error with its remediation hint set.
func (e *SandboxError) WithHint(hint string) *SandboxError {
	e.Hint = hint
	return e
}

// New creates a new SandboxError
func New(kind Kind, code int, message string) *SandboxError {
	return &SandboxError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a SandboxError
func Wrap(kind Kind, code int, message string, cause error) *SandboxError {
	return &SandboxError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Workflow error constructors

// ConflictingSandbox returns an error for a sandbox directory left by a prior run
func ConflictingSandbox(dir string) *SandboxError {
	return New(KindConflictingSandbox, ExitConflictingSandbox,
		fmt.Sprintf("sandbox directory already exists: %s", dir))
}

// CloneFailed returns an error for a failed repository clone
func CloneFailed(location string, cause error) *SandboxError {
	return Wrap(KindCloneFailed, ExitCloneFailed, fmt.Sprintf("failed to clone %s", location), cause)
}

// InvalidManifest returns an error for a missing or malformed package manifest
func InvalidManifest(path string, cause error) *SandboxError {
	return Wrap(KindInvalidManifest, ExitInvalidProject, fmt.Sprintf("cannot read package manifest %s", path), cause)
}

// MissingPackageName returns an error for a manifest without a package name
func MissingPackageName(path string) *SandboxError {
	return New(KindMissingPackageName, ExitInvalidProject,
		fmt.Sprintf("package manifest %s does not declare a package name", path))
}

// NotAFrameworkProject returns an error for a package that does not depend on the framework
func NotAFrameworkProject(framework string) *SandboxError {
	return New(KindNotAFrameworkProject, ExitInvalidProject,
		fmt.Sprintf("not a %s project: no %s entry in peerDependencies, dependencies or devDependencies", framework, framework))
}

// PackageManagerUnavailable returns an error when the selected package manager is not installed
func PackageManagerUnavailable(manager string, cause error) *SandboxError {
	return Wrap(KindPackageManagerUnavailable, ExitPackageManagerUnavailable,
		fmt.Sprintf("%s is required by this project but is not installed", manager), cause)
}

// GenerationFailed returns an error for a failed sandbox application generation
func GenerationFailed(name string, cause error) *SandboxError {
	return Wrap(KindGenerationFailed, ExitGenerationFailed, fmt.Sprintf("failed to generate sandbox app %s", name), cause)
}

// InstallFailed returns an error for a failed dependency installation
func InstallFailed(dir string, cause error) *SandboxError {
	return Wrap(KindInstallFailed, ExitInstallFailed, fmt.Sprintf("dependency install failed in %s", dir), cause)
}

// BuildFailed returns an error for a failed package build
func BuildFailed(dir string, cause error) *SandboxError {
	return Wrap(KindBuildFailed, ExitBuildFailed, fmt.Sprintf("build failed in %s", dir), cause)
}

// PeerInstallFailed returns an error for a failed peer dependency installation
func PeerInstallFailed(dir string, cause error) *SandboxError {
	return Wrap(KindPeerInstallFailed, ExitInstallFailed, fmt.Sprintf("peer dependency install failed in %s", dir), cause)
}

// LinkFailed returns an error for a failed link registration or consumption
func LinkFailed(op string, cause error) *SandboxError {
	return Wrap(KindLinkFailed, ExitLinkFailed, fmt.Sprintf("link %s failed", op), cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *SandboxError {
	return Wrap(KindConfig, ExitConfigError, message, cause)
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *SandboxError {
	return New(KindValidation, ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var sandboxErr *SandboxError
	if errors.As(err, &sandboxErr) {
		return sandboxErr.ExitCode()
	}
	return ExitGeneralError
}

// KindOf returns the Kind of the first SandboxError in err's chain,
// or KindGeneral when there is none.
func KindOf(err error) Kind {
	var sandboxErr *SandboxError
	if errors.As(err, &sandboxErr) {
		return sandboxErr.Kind
	}
	return KindGeneral
}

// IsKind reports whether err's chain holds a SandboxError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HintOf returns the remediation hint carried by err, if any.
func HintOf(err error) string {
	var sandboxErr *SandboxError
	if errors.As(err, &sandboxErr) {
		return sandboxErr.Hint
	}
	return ""
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
