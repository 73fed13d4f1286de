// Package errors provides typed errors with exit codes for create-sandbox.
//
// # Error Types
//
// SandboxError is the base error type. It carries the failure kind, the
// process exit code and an optional remediation hint:
//
//	type SandboxError struct {
//	    Kind    Kind   // Failure category (ConflictingSandbox, CloneFailed, ...)
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Hint    string // Remediation command, if any
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess                   = 0
//	ExitGeneralError              = 1
//	ExitConflictingSandbox        = 2
//	ExitCloneFailed               = 3
//	ExitInvalidProject            = 4  // manifest, package name, framework
//	ExitPackageManagerUnavailable = 5
//	ExitGenerationFailed          = 6
//	ExitInstallFailed             = 7  // install and peer install
//	ExitBuildFailed               = 8
//	ExitLinkFailed                = 9
//	ExitConfigError               = 10
//
// # Error Constructors
//
//	errors.ConflictingSandbox("/work/widget-sandbox")
//	errors.CloneFailed(url, err)
//	errors.InstallFailed(dir, err).WithHint("cd widget && yarn install")
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
