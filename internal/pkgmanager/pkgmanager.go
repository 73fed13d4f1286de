// Package pkgmanager knows the command shapes of the npm and yarn clients.
package pkgmanager

import (
	"context"
	"strings"

	"github.com/zaguiini/create-sandbox/internal/logging"
	"github.com/zaguiini/create-sandbox/internal/system"
)

// Manager identifies a Node.js package manager client.
type Manager string

const (
	NPM  Manager = "npm"
	Yarn Manager = "yarn"
)

// LockfileName is the file whose presence at a project root selects yarn.
const LockfileName = "yarn.lock"

// String returns the executable name of the manager.
func (m Manager) String() string {
	return string(m)
}

// Install returns `<pm> install` in dir.
func (m Manager) Install(dir string) system.Command {
	return system.Command{Name: m.String(), Args: []string{"install"}, Dir: dir}
}

// RunScript returns `<pm> <script>` in dir.
func (m Manager) RunScript(dir, script string) system.Command {
	return system.Command{Name: m.String(), Args: []string{script}, Dir: dir}
}

// Add returns `npm install <specs…>` or `yarn add <specs…>` in dir.
func (m Manager) Add(dir string, specs []string) system.Command {
	verb := "add"
	if m == NPM {
		verb = "install"
	}
	return system.Command{Name: m.String(), Args: append([]string{verb}, specs...), Dir: dir}
}

// Link returns `<pm> link` in dir, registering the package found there.
func (m Manager) Link(dir string) system.Command {
	return system.Command{Name: m.String(), Args: []string{"link"}, Dir: dir}
}

// LinkConsume returns `<pm> link <names…>` in dir.
func (m Manager) LinkConsume(dir string, names []string) system.Command {
	return system.Command{Name: m.String(), Args: append([]string{"link"}, names...), Dir: dir}
}

// StartCommand is the command that starts the generated app.
func (m Manager) StartCommand() string {
	return m.String() + " start"
}

// Probe checks that the manager's executable runs by asking for its
// version. Any failure means the manager is not installed.
func Probe(ctx context.Context, exec system.CommandExecutor, m Manager) (string, error) {
	out, err := exec.Output(ctx, system.Command{Name: m.String(), Args: []string{"--version"}})
	if err != nil {
		return "", err
	}
	version := strings.TrimSpace(string(out))
	logging.Debug("package manager available", "manager", m.String(), "version", version)
	return version, nil
}
