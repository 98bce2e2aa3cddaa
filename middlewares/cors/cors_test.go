package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kildevaeld/mocker/httpcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, mw httpcontext.MiddlewareHandler, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	reached := false
	rec := httptest.NewRecorder()
	err := httpcontext.Run(rec, req, mw(func(ctx *httpcontext.Context) error {
		reached = true
		return ctx.JSON(map[string]bool{"ok": true})
	}))
	require.NoError(t, err)
	return rec, reached
}

func TestCORS_SimpleRequestEchoesOrigin(t *testing.T) {
	mw := CORS()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://a.test")
	rec, reached := serve(t, mw, req)

	assert.True(t, reached)
	assert.Equal(t, "http://a.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	// The origin of one request must not leak into the next.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://b.test")
	rec, _ = serve(t, mw, req)
	assert.Equal(t, "http://b.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, _ = serve(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	mw := CORSWithConfig(CORSConfig{
		AllowOrigins:     []string{"http://a.test"},
		AllowCredentials: true,
		MaxAge:           600,
	})

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://a.test")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom")
	rec, reached := serve(t, mw, req)

	assert.False(t, reached)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://a.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET,POST", rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "X-Custom", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
}
