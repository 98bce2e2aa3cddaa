package mocker

import (
	"net/http"

	"github.com/kildevaeld/mocker/httpcontext"
	"github.com/kildevaeld/strong"
)

// Malformed request bodies answer 500 rather than 400; clients of the mock
// server depend on that.
var (
	ErrNotFound         = httpcontext.NewHTTPError(strong.StatusNotFound, "Not found")
	ErrMethodNotAllowed = httpcontext.NewHTTPError(http.StatusMethodNotAllowed, "Request method not supported")
	ErrBadRequestBody   = httpcontext.NewHTTPError(strong.StatusInternalServerError, "Wrong request data")
	ErrBadResponseData  = httpcontext.NewHTTPError(strong.StatusInternalServerError, "Wrong response data")
)
