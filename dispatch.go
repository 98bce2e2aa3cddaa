package mocker

import (
	"github.com/kildevaeld/mocker/httpcontext"
	"github.com/kildevaeld/mocker/loader"
	"github.com/kildevaeld/strong"
	"go.uber.org/zap"
)

// dispatch answers one request from the routing table the provider hands
// out. Every outcome is either a JSON body on ctx or an HTTPError.
func dispatch(routes loader.Provider) httpcontext.HandlerFunc {
	return func(ctx *httpcontext.Context) error {
		table, err := routes.Routes()
		if err != nil {
			return ErrNotFound.Wrap(err)
		}
		defer table.Close()

		// Paths match the raw request path, percent escapes included.
		req := ctx.Request()
		path := req.URL.EscapedPath()
		handler, ok := table.Lookup(path)
		if !ok {
			return ErrNotFound
		}

		var params interface{}
		switch req.Method {
		case strong.GET:
			params = queryParams(req.URL)
		case strong.POST:
			if err := ctx.RequestBody().Decode(&params); err != nil {
				return ErrBadRequestBody.Wrap(err)
			}
		default:
			return ErrMethodNotAllowed
		}

		data, err := handler.Invoke(params)
		if err != nil {
			zap.L().Debug("handler failed",
				zap.String("path", path),
				zap.String("source", table.Source(path)),
				zap.Error(err))
			return ErrBadResponseData.Wrap(err)
		}
		if !isStructured(data) {
			return ErrBadResponseData
		}

		if err := ctx.JSON(data); err != nil {
			return ErrBadResponseData.Wrap(err)
		}
		return nil
	}
}
