package httpcontext

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/kildevaeld/strong"
)

type writerWrapper struct {
	ctx    *Context
	writer *bytes.Buffer
}

func (w *writerWrapper) Write(bs []byte) (int, error) {
	return w.writer.Write(bs)
}

func (w *writerWrapper) Header() http.Header {
	return w.ctx.Header()
}

func (w *writerWrapper) WriteHeader(status int) {
	w.ctx.SetStatusCode(status)
}

func (w *writerWrapper) Close() error {
	w.ctx.SetBody(bufferBody{w.writer})
	return nil
}

func newwriterWrapper(ctx *Context) *writerWrapper {
	return &writerWrapper{
		ctx, bytes.NewBuffer(nil),
	}
}

// WriteError answers with a plain-text body. Error responses are never
// cacheable and always carry their exact byte length.
func WriteError(w http.ResponseWriter, status int, message string) {
	h := w.Header()
	h.Set(strong.HeaderCacheControl, "no-store")
	h.Set(strong.HeaderContentType, MIMETextPlainCharsetUTF8)
	h.Set(strong.HeaderContentLength, strconv.Itoa(len(message)))
	w.WriteHeader(status)
	io.WriteString(w, message)
}
