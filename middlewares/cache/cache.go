package cache

import (
	"fmt"

	"github.com/kildevaeld/mocker/httpcontext"
	"github.com/kildevaeld/strong"
)

type CacheControl struct {
	MaxAge  int
	Private bool
	// NoStore forbids caching altogether and wins over MaxAge.
	NoStore bool
}

// NoStore is what the mock server sends: handler files can change between
// any two requests.
var NoStore = CacheControl{NoStore: true}

func (c CacheControl) String() string {
	if c.NoStore {
		return "no-store"
	}
	scope := "public"
	if c.Private {
		scope = "private"
	}
	return fmt.Sprintf("%s, max-age=%d", scope, c.MaxAge)
}

// NewCacheControl sets Cache-Control before the rest of the chain runs, so
// error responses carry it too. A nil options means NoStore.
func NewCacheControl(options *CacheControl) httpcontext.MiddlewareHandler {
	if options == nil {
		options = &NoStore
	}
	value := options.String()

	return func(next httpcontext.HandlerFunc) httpcontext.HandlerFunc {
		return func(ctx *httpcontext.Context) error {
			ctx.Header().Set(strong.HeaderCacheControl, value)
			return next(ctx)
		}
	}
}
