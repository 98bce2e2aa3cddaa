package mocker

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/kildevaeld/mocker/httpcontext"
	"github.com/kildevaeld/mocker/loader"
	"github.com/kildevaeld/mocker/middlewares/cache"
	"github.com/kildevaeld/mocker/middlewares/cors"
	"github.com/kildevaeld/mocker/middlewares/logger"
	"github.com/kildevaeld/mocker/middlewares/metrics"
	"github.com/kildevaeld/mocker/middlewares/panic"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Serve and Listen when the server is
// already serving.
var ErrAlreadyRunning = errors.New("already running")

type Options struct {
	Debug bool
	// HandleError is called after an error response has been written.
	HandleError func(w http.ResponseWriter, r *http.Request, err error)
}

// Mocker serves the routes of a loader.Provider. Middlewares run in the
// order they were added, the route dispatcher last.
type Mocker struct {
	routes    loader.Provider
	listening *atomic.Bool

	s       *http.Server
	metrics *http.Server

	m        []interface{}
	once     sync.Once
	chain    httpcontext.HandlerFunc
	chainErr error
	o        *Options
}

func New(routes loader.Provider) *Mocker {
	return NewWithOptions(routes, nil)
}

func NewWithOptions(routes loader.Provider, o *Options) *Mocker {
	if o == nil {
		o = &Options{}
	}
	v := &Mocker{
		routes:    routes,
		listening: atomic.NewBool(false),
		s:         &http.Server{},
		o:         o,
	}

	v.s.Handler = v

	return v
}

// NewFromConfig builds the server the command line asks for.
func NewFromConfig(cfg Config) (*Mocker, error) {
	dir, err := cfg.Directory()
	if err != nil {
		return nil, err
	}

	var routes loader.Provider = loader.Dir(dir)
	if cfg.Watch {
		if routes, err = loader.NewWatcher(dir); err != nil {
			return nil, err
		}
	}

	v := NewWithOptions(routes, &Options{Debug: cfg.Debug})
	v.s.Addr = cfg.Address()

	if cfg.MetricsAddress != "" {
		reg := prometheus.NewRegistry()
		m, err := metrics.New(reg)
		if err != nil {
			return nil, err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(reg))
		v.metrics = &http.Server{Addr: cfg.MetricsAddress, Handler: mux}
		v.Use(m.Collect())
	}

	if cfg.Debug {
		v.Use(logger.Logger())
	}

	v.Use(panic.New(), cache.NewCacheControl(nil))

	if cfg.CORS {
		v.Use(cors.CORS())
	}

	return v, nil
}

func (v *Mocker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v.once.Do(func() {
		v.chain, v.chainErr = v.compose()
	})

	if v.chainErr != nil {
		v.handleError(w, r, v.chainErr)
		return
	}

	if err := httpcontext.Run(w, r, v.chain); err != nil {
		v.handleError(w, r, err)
		return
	}
}

// Listen serves on addr, or on the configured port when addr is empty.
func (v *Mocker) Listen(addr string) error {
	if addr != "" {
		v.s.Addr = addr
	}
	l, err := net.Listen("tcp", v.s.Addr)
	if err != nil {
		return err
	}
	return v.Serve(l)
}

func (v *Mocker) Serve(l net.Listener) error {
	if !v.listening.CompareAndSwap(false, true) {
		l.Close()
		return ErrAlreadyRunning
	}

	if v.metrics != nil {
		go func() {
			if err := v.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				zap.L().Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	if v.o.Debug {
		zap.L().Debug("listening on", zap.String("addr", l.Addr().String()))
	}
	return v.s.Serve(l)
}

func (v *Mocker) compose() (httpcontext.HandlerFunc, error) {
	handlers := make([]interface{}, 0, len(v.m)+1)
	handlers = append(handlers, v.m...)
	handlers = append(handlers, dispatch(v.routes))
	return httpcontext.Compose(handlers)
}

func (v *Mocker) Close() error {
	err := v.s.Close()
	if v.metrics != nil {
		err = multierr.Append(err, v.metrics.Close())
	}
	return multierr.Append(err, v.closeRoutes())
}

func (v *Mocker) Shutdown(ctx context.Context) error {
	err := v.s.Shutdown(ctx)
	if v.metrics != nil {
		err = multierr.Append(err, v.metrics.Shutdown(ctx))
	}
	return multierr.Append(err, v.closeRoutes())
}

func (v *Mocker) closeRoutes() error {
	if c, ok := v.routes.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Use appends middlewares. It has no effect once the first request was
// served.
func (v *Mocker) Use(handlers ...interface{}) *Mocker {
	v.m = append(v.m, handlers...)
	return v
}

func (v *Mocker) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *httpcontext.HTTPError
	if errors.As(err, &httpErr) {
		httpcontext.WriteError(w, httpErr.StatusCode(), httpErr.Message)
	} else {
		httpcontext.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}

	zap.L().Debug("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))

	if v.o.HandleError != nil {
		v.o.HandleError(w, r, err)
	}
}
