package httpcontext

import (
	"fmt"
	"io"
	"net/http"

	"github.com/kildevaeld/strong"
)

func handlerToMiddleware(r HandlerFunc) MiddlewareHandler {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx *Context) error {

			if err := r(ctx); err != nil {
				return err
			}

			if next != nil {
				return next(ctx)
			}

			return nil

		}
	}
}

func cWrapper(fn func(ctx *Context, next HandlerFunc) error) MiddlewareHandler {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx *Context) error {
			return fn(ctx, next)
		}
	}
}

func httpHandlerToHandler(fn http.HandlerFunc) HandlerFunc {

	return func(ctx *Context) error {

		writer := newwriterWrapper(ctx)
		defer writer.Close()

		fn(writer, ctx.Request())

		return nil

	}
}

func ToMiddlewareHandler(handler interface{}) (MiddlewareHandler, error) {
	switch h := handler.(type) {
	case func(*Context) error:
		return handlerToMiddleware(h), nil
	case HandlerFunc:
		return handlerToMiddleware(h), nil
	case MiddlewareHandler:
		return h, nil
	case func(HandlerFunc) HandlerFunc:
		return h, nil
	case func(ctx *Context, next HandlerFunc) error:
		return cWrapper(h), nil
	case func(http.ResponseWriter, *http.Request):
		return handlerToMiddleware(httpHandlerToHandler(h)), nil
	case http.HandlerFunc:
		return handlerToMiddleware(httpHandlerToHandler(h)), nil
	}

	return nil, fmt.Errorf("middleware is of wrong type '%T'", handler)
}

func ToHandler(handler interface{}) (HandlerFunc, error) {

	switch h := handler.(type) {
	case HandlerFunc:
		return h, nil
	case func(*Context) error:
		return h, nil
	case Handler:
		return h.ServeHTTPContext, nil
	case func(http.ResponseWriter, *http.Request):
		return httpHandlerToHandler(h), nil
	case http.HandlerFunc:
		return httpHandlerToHandler(h), nil
	case http.Handler:
		return httpHandlerToHandler(h.ServeHTTP), nil
	default:
		return nil, fmt.Errorf("handler is of wrong type '%T'", handler)
	}
}

// Compose wraps the last handler in the ones before it. The first handler
// ends up outermost.
func Compose(handlers []interface{}) (HandlerFunc, error) {
	if len(handlers) == 0 {
		return nil, fmt.Errorf("no handlers to compose")
	}

	last := handlers[len(handlers)-1]

	routeHandler, err := ToHandler(last)
	if err != nil {
		return nil, err
	}

	var middleware MiddlewareHandler

	for i := len(handlers) - 2; i >= 0; i-- {
		if middleware, err = ToMiddlewareHandler(handlers[i]); err != nil {
			return nil, err
		}
		routeHandler = middleware(routeHandler)
	}

	return routeHandler, nil
}

// Run executes handler against a pooled context and writes the response it
// produced. Errors are returned unwritten; the caller decides how to answer.
func Run(w http.ResponseWriter, r *http.Request, handler HandlerFunc) error {

	ctx := Acquire(w, r)
	defer Release(ctx)

	err := handler(ctx)

	if err != nil {
		if err == ErrHandled {
			return nil
		}
		return err
	}

	status := ctx.StatusCode()
	hasBody := ctx.Body() != nil

	if !hasBody && status <= 0 {
		WriteError(w, strong.StatusNotFound, "Not found")
		return nil
	} else if status <= 0 {
		status = strong.StatusOK
	}

	w.WriteHeader(status)
	if hasBody {
		// Headers are gone at this point; a failed copy means the client left.
		io.Copy(w, ctx.Body())
	}

	return nil
}
