package panic

import (
	"fmt"

	"github.com/kildevaeld/mocker/httpcontext"
	"go.uber.org/zap"
)

// New turns a panic further down the chain into an error, which the server
// answers with 500.
func New() httpcontext.MiddlewareHandler {
	return func(next httpcontext.HandlerFunc) httpcontext.HandlerFunc {
		return func(ctx *httpcontext.Context) (err error) {
			defer func() {
				if e := recover(); e != nil {
					if errerr, ok := e.(error); ok {
						err = fmt.Errorf("panic: %w", errerr)
					} else {
						err = fmt.Errorf("panic: %v", e)
					}
					zap.L().Error("recovered from panic",
						zap.String("path", ctx.Request().URL.Path),
						zap.Error(err))
				}
			}()
			err = next(ctx)
			return err
		}
	}
}
