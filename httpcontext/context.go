package httpcontext

import (
	"bytes"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"
	"sync"

	"github.com/kildevaeld/strong"
)

const (
	MIMEApplicationJSONCharsetUTF8 = "application/json; charset=utf-8"
	MIMETextPlainCharsetUTF8       = "text/plain; charset=utf-8"
)

var (
	requestPool sync.Pool
	contextPool sync.Pool
)

func init() {
	requestPool = sync.Pool{
		New: func() interface{} {
			return &RequestBody{}
		},
	}

	contextPool = sync.Pool{
		New: func() interface{} {
			return &Context{}
		},
	}
}

type RequestBody struct {
	reader      io.ReadCloser
	contentType string
	done        bool
}

func (r *RequestBody) Read(bs []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	read, err := r.reader.Read(bs)
	if err == io.EOF {
		r.done = true
	}
	return read, err
}

func (r *RequestBody) Close() error {
	r.done = true
	if r.reader == nil {
		return nil
	}
	return r.reader.Close()
}

// ReadAll buffers the body until the client signals end of stream.
func (r *RequestBody) ReadAll() ([]byte, error) {
	if r.reader == nil {
		r.done = true
		return nil, nil
	}
	bs, err := ioutil.ReadAll(r.reader)
	r.done = true
	return bs, err
}

// Decode reads the whole body and decodes it with the decoder registered for
// the request content type.
func (r *RequestBody) Decode(v interface{}) error {
	if r.done {
		return io.EOF
	}

	bs, err := r.ReadAll()
	defer r.Close()
	if err != nil {
		return err
	}

	return GetDecoder(r.contentType).Decode(bs, v)
}

func (r *RequestBody) reset() *RequestBody {
	r.done = false
	r.reader = nil
	r.contentType = ""
	return r
}

type bufferBody struct {
	*bytes.Buffer
}

func (bufferBody) Close() error { return nil }

type Context struct {
	req     *http.Request
	reqBody *RequestBody
	res     http.ResponseWriter

	body   io.ReadCloser
	status int
}

func (c *Context) Request() *http.Request {
	return c.req
}

func (c *Context) SetContentType(contentType string) *Context {
	c.res.Header().Set(strong.HeaderContentType, contentType)
	return c
}

func (c *Context) SetBody(v io.ReadCloser) *Context {
	if c.body != nil {
		c.body.Close()
	}
	c.body = v
	return c
}

func (c *Context) Body() io.ReadCloser {
	return c.body
}

func (c *Context) SetStatusCode(status int) *Context {
	c.status = status
	return c
}

func (c *Context) StatusCode() int {
	return c.status
}

func (c *Context) RequestBody() *RequestBody {
	if c.reqBody == nil {
		c.reqBody = requestPool.Get().(*RequestBody)
		c.reqBody.reader = c.req.Body
		c.reqBody.contentType = c.req.Header.Get(strong.HeaderContentType)
	}
	return c.reqBody
}

// JSON serializes v compactly. Nothing is touched when serialization fails,
// so the caller is free to answer with an error instead.
func (c *Context) JSON(v interface{}) error {
	bs, err := GetEncoder(strong.MIMEApplicationJSON).Encode(v)
	if err != nil {
		return err
	}

	c.SetContentType(MIMEApplicationJSONCharsetUTF8)
	return c.bytes(bs)
}

func (c *Context) bytes(bs []byte) error {
	if c.body != nil {
		c.body.Close()
	}
	c.Header().Set(strong.HeaderContentLength, strconv.Itoa(len(bs)))
	c.body = bufferBody{bytes.NewBuffer(bs)}
	return nil
}

func (c *Context) Header() http.Header {
	return c.res.Header()
}

func (c *Context) reset() *Context {
	c.req = nil
	if c.reqBody != nil {
		c.reqBody.Close()
		requestPool.Put(c.reqBody.reset())
	}
	c.reqBody = nil
	c.res = nil
	c.status = 0

	if c.body != nil {
		c.body.Close()
	}
	c.body = nil
	return c
}

func Acquire(w http.ResponseWriter, r *http.Request) *Context {
	ctx := contextPool.Get().(*Context)
	ctx.res = w
	ctx.req = r
	return ctx
}

func Release(ctx *Context) {
	contextPool.Put(ctx.reset())
}
