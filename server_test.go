package mocker

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/kildevaeld/mocker/loader"
	panicmw "github.com/kildevaeld/mocker/middlewares/panic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type providerFunc func() (*loader.Table, error)

func (fn providerFunc) Routes() (*loader.Table, error) {
	return fn()
}

func TestMocker_PanicIsInternalServerError(t *testing.T) {
	var handled error
	m := NewWithOptions(providerFunc(func() (*loader.Table, error) {
		table := loader.NewTable()
		table.Set("/panic", loader.DynamicHandler(func(interface{}) (interface{}, error) {
			panic("handler exploded")
		}), "test")
		return table, nil
	}), &Options{
		HandleError: func(w http.ResponseWriter, r *http.Request, err error) { handled = err },
	})
	m.Use(panicmw.New())

	rec := get(m, "/panic")

	assertError(t, rec, http.StatusInternalServerError, "Internal Server Error")
	require.Error(t, handled)
	assert.Contains(t, handled.Error(), "handler exploded")
}

func TestMocker_ProviderError(t *testing.T) {
	cause := errors.New("disk on fire")
	var handled error
	m := NewWithOptions(providerFunc(func() (*loader.Table, error) {
		return nil, cause
	}), &Options{
		HandleError: func(w http.ResponseWriter, r *http.Request, err error) { handled = err },
	})

	assertError(t, get(m, "/anything"), http.StatusNotFound, "Not found")
	assert.True(t, errors.Is(handled, cause))
	assert.True(t, errors.Is(handled, ErrNotFound))
}

func TestMocker_BadMiddleware(t *testing.T) {
	m := New(loader.Dir(t.TempDir()))
	m.Use("not a middleware")

	assertError(t, get(m, "/"), http.StatusInternalServerError, "Internal Server Error")
}

func TestMocker_CORS(t *testing.T) {
	dir := mockDir(t, map[string]string{"foo.json": `{"/foo": {}}`})
	m := newTestServer(t, Config{Dir: dir, CORS: true})

	req := newRequest(http.MethodGet, "/foo")
	req.Header.Set("Origin", "http://localhost:3000")
	rec := serve(m, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = newRequest(http.MethodOptions, "/foo")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = serve(m, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestMocker_WatchMode(t *testing.T) {
	dir := mockDir(t, map[string]string{"api.json": `{"/v": {"v": 1}}`})
	m := newTestServer(t, Config{Dir: dir, Watch: true})

	assert.Equal(t, `{"v":1}`, get(m, "/v").Body.String())

	writeFile(t, dir, "api.json", `{"/v": {"v": 2}}`)
	assert.Eventually(t, func() bool {
		return get(m, "/v").Body.String() == `{"v":2}`
	}, 2*time.Second, 10*time.Millisecond)

	writeFile(t, dir, "broken.json", `{`)
	assert.Eventually(t, func() bool {
		return get(m, "/v").Code == http.StatusNotFound
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMocker_WatchModeNeedsDirectory(t *testing.T) {
	_, err := NewFromConfig(Config{Dir: t.TempDir() + "/missing", Watch: true})

	var loadErr *loader.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestMocker_ServeAndShutdown(t *testing.T) {
	dir := mockDir(t, map[string]string{"foo.json": `{"/foo": {"a": 1}}`})
	m := newTestServer(t, Config{Dir: dir, MetricsAddress: "127.0.0.1:0"})

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Serve(l) }()

	res, err := http.Get("http://" + l.Addr().String() + "/foo")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(body))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	assert.Equal(t, http.ErrServerClosed, <-done)
}

func TestMocker_ServeOnlyOnce(t *testing.T) {
	dir := mockDir(t, map[string]string{"foo.json": `{"/foo": {}}`})
	m := newTestServer(t, Config{Dir: dir})

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		go func() { done <- m.Serve(l) }()
	}

	select {
	case err := <-done:
		assert.Equal(t, ErrAlreadyRunning, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second Serve did not return")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	assert.Equal(t, http.ErrServerClosed, <-done)
}
