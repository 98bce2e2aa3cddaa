package loader

import (
	"io"
	"sort"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Table maps exact URL paths to handlers. It owns the script states its
// handlers were loaded from; those are released when the last reference is
// closed.
type Table struct {
	routes  map[string]Handler
	sources map[string]string
	closers []io.Closer

	refs     *atomic.Int64
	once     sync.Once
	closeErr error
}

func NewTable() *Table {
	return &Table{
		routes:  make(map[string]Handler),
		sources: make(map[string]string),
		refs:    atomic.NewInt64(1),
	}
}

// Set registers h under path. A later Set for the same path wins.
func (t *Table) Set(path string, h Handler, source string) {
	if prev, ok := t.sources[path]; ok {
		zap.L().Debug("route overridden",
			zap.String("path", path),
			zap.String("previous", prev),
			zap.String("source", source))
	}
	t.routes[path] = h
	t.sources[path] = source
}

func (t *Table) Lookup(path string) (Handler, bool) {
	h, ok := t.routes[path]
	return h, ok
}

// Source returns the file that defined path.
func (t *Table) Source(path string) string {
	return t.sources[path]
}

func (t *Table) Len() int {
	return len(t.routes)
}

func (t *Table) Paths() []string {
	out := make([]string, 0, len(t.routes))
	for p := range t.routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (t *Table) own(c io.Closer) {
	t.closers = append(t.closers, c)
}

// Retain adds a reference; every Retain needs a matching Close.
func (t *Table) Retain() *Table {
	t.refs.Inc()
	return t
}

func (t *Table) Close() error {
	if t.refs.Dec() > 0 {
		return nil
	}
	t.once.Do(func() {
		for _, c := range t.closers {
			t.closeErr = multierr.Append(t.closeErr, c.Close())
		}
		t.closers = nil
	})
	return t.closeErr
}
