// Package testutil provides test fixtures and utilities.
//
// This package contains embedded package.json fixtures and helpers that
// place them on disk or in a system.MockFS.
//
// # Fixtures
//
// Manifest fixtures are embedded using go:embed:
//
//	fixtures/react_library.json    // peer deps incl. react, react-dom, lodash, axios
//	fixtures/react_peer_order.json // peer deps in the documented order
//	fixtures/dev_only_react.json   // react only as a devDependency
//	fixtures/minimal_react.json    // react as a regular dependency, no peers
//	fixtures/no_name.json          // missing package name
//	fixtures/not_react.json        // no react dependency at all
//
// # Usage in Tests
//
//	fs := system.NewMockFS()
//	testutil.AddProject(t, fs, "/work/widget", testutil.ReactLibrary, testutil.WithYarnLock())
//
//	dir := testutil.WriteProject(t, t.TempDir(), testutil.DevOnlyReact)
package testutil
