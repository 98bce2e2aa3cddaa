package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// mockDir writes files (name -> content) into a fresh directory.
func mockDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		writeFile(t, dir, name, content)
	}
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func useTestLogger(t *testing.T) {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t)))
}

func mustLoad(t *testing.T, dir string) *Table {
	t.Helper()
	table, err := Load(dir)
	require.NoError(t, err)
	t.Cleanup(func() { table.Close() })
	return table
}

func invoke(t *testing.T, table *Table, path string, params interface{}) interface{} {
	t.Helper()
	h, ok := table.Lookup(path)
	require.True(t, ok, "no route for %s", path)
	v, err := h.Invoke(params)
	require.NoError(t, err)
	return v
}
