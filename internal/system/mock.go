package system

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"
)

// MockFS implements FileSystem for testing.
type MockFS struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	// Probes records every path queried, in order.
	Probes []string

	// Error injection
	ReadFileErr error
	StatErr     error
}

// NewMockFS creates a new MockFS with an empty filesystem.
func NewMockFS() *MockFS {
	return &MockFS{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFS) AddFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
	// Ensure parent directories exist
	dir := filepath.Dir(path)
	for dir != "." && dir != "/" {
		m.dirs[dir] = true
		dir = filepath.Dir(dir)
	}
}

// AddDir adds a directory to the mock filesystem.
func (m *MockFS) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[path] = true
}

// Probed reports whether path was queried.
func (m *MockFS) Probed(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.Probes {
		if p == path {
			return true
		}
	}
	return false
}

func (m *MockFS) record(path string) {
	m.Probes = append(m.Probes, path)
}

func (m *MockFS) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(path)
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MockFS) Stat(path string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(path)
	if m.StatErr != nil {
		return nil, m.StatErr
	}

	if data, ok := m.files[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), size: int64(len(data)), mode: 0644}, nil
	}
	if _, ok := m.dirs[path]; ok {
		return &mockFileInfo{name: filepath.Base(path), isDir: true, mode: fs.ModeDir | 0755}, nil
	}
	return nil, fs.ErrNotExist
}

func (m *MockFS) Exists(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(path)
	_, fileOk := m.files[path]
	_, dirOk := m.dirs[path]
	return fileOk || dirOk
}

func (m *MockFS) IsDir(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(path)
	_, ok := m.dirs[path]
	return ok
}

// mockFileInfo implements fs.FileInfo for testing.
type mockFileInfo struct {
	name  string
	size  int64
	mode  fs.FileMode
	isDir bool
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return time.Time{} }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() interface{}   { return nil }

// MockExecutor implements CommandExecutor for testing.
type MockExecutor struct {
	mu sync.Mutex

	// Commands records all executed commands for verification.
	Commands []Command

	// Responses maps command patterns to responses.
	// Keys are matched against the full command line first,
	// then "name arg1", then "name".
	Responses map[string]MockResponse

	// DefaultResponse is used when no matching response is found.
	DefaultResponse MockResponse

	// OnRun, if set, is called for every command before a response is chosen.
	OnRun func(ctx context.Context, c Command)
}

// MockResponse defines the response for a command.
type MockResponse struct {
	Output []byte
	Err    error
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{
		Commands:  make([]Command, 0),
		Responses: make(map[string]MockResponse),
	}
}

// AddResponse adds a response for a specific command pattern.
func (m *MockExecutor) AddResponse(pattern string, output []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses[pattern] = MockResponse{Output: output, Err: err}
}

func (m *MockExecutor) Run(ctx context.Context, c Command) error {
	_, err := m.Output(ctx, c)
	return err
}

func (m *MockExecutor) Output(ctx context.Context, c Command) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, c)
	if m.OnRun != nil {
		m.OnRun(ctx, c)
	}

	if err := ctx.Err(); err != nil {
		return nil, &CommandError{Command: c.String(), Dir: c.Dir, Err: err}
	}

	keys := []string{c.String()}
	if len(c.Args) > 0 {
		keys = append(keys, c.Name+" "+c.Args[0])
	}
	keys = append(keys, c.Name)

	for _, key := range keys {
		if resp, ok := m.Responses[key]; ok {
			return resp.Output, resp.Err
		}
	}

	return m.DefaultResponse.Output, m.DefaultResponse.Err
}

// CommandLines returns "dir: command" strings for every recorded command.
func (m *MockExecutor) CommandLines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	lines := make([]string, 0, len(m.Commands))
	for _, c := range m.Commands {
		lines = append(lines, c.Dir+": "+c.String())
	}
	return lines
}

// LastCommand returns the most recently executed command.
func (m *MockExecutor) LastCommand() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return Command{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// Reset clears all recorded commands.
func (m *MockExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = make([]Command, 0)
}
