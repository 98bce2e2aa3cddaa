package mocker

import (
	"os"
	"path/filepath"
)

const (
	DefaultDir  = "mock"
	DefaultPort = "8888"
)

// Config is read once at startup and not changed afterwards.
type Config struct {
	// Dir holds the handler files. Relative paths are resolved against the
	// working directory.
	Dir  string
	Port string

	// Watch caches the routing table and reloads it on file changes instead
	// of reading the directory on every request.
	Watch bool
	// CORS adds cross-origin headers and answers preflight requests.
	CORS bool
	// MetricsAddress, when set, serves prometheus metrics on a separate
	// listener.
	MetricsAddress string
	// Debug logs every request.
	Debug bool
}

func DefaultConfig() Config {
	return Config{
		Dir:  DefaultDir,
		Port: DefaultPort,
	}
}

func (c Config) Address() string {
	return ":" + c.Port
}

// Directory returns the absolute handler directory.
func (c Config) Directory() (string, error) {
	dir := c.Dir
	if dir == "" {
		dir = DefaultDir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, dir), nil
}
