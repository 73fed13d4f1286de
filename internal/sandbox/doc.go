// Package sandbox provisions a sandbox app that consumes a locally developed
// React package through package manager links.
//
// # Workflow
//
// Workflow sequences every step of a run:
//
//	w := sandbox.NewWorkflow(cfg, sandbox.WithObserver(sandbox.NewLogObserver()))
//	result, err := w.Run(ctx, sandbox.Request{
//	    Location: "https://github.com/acme/widget.git",
//	})
//
// # Provisioning Flow
//
// The Workflow.Run method:
//  1. Acquires the source directory (fails if the sandbox directory exists,
//     reuses an existing source directory, clones otherwise)
//  2. Inspects package.json and checks the package name, the react
//     dependency and, for yarn projects, that yarn is installed
//  3. Generates <directory>-sandbox with the app generator
//  4. Installs and builds the source package
//  5. Installs peer dependencies into the sandbox, when there are any
//  6. Registers the package, its react and (if present) its react-dom as
//     links and consumes them in the sandbox
//
// The run moves through the States in order and stops at the first failure.
// Nothing is rolled back: the returned error carries a remediation hint and
// the Result reports the last state reached.
//
// # Timeouts
//
// A non-zero config Timeout bounds each external command and the clone.
// Cancelling the context passed to Run stops the command in flight.
package sandbox
