package httpcontext

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"strings"

	"github.com/kildevaeld/strong"
	"github.com/vmihailenco/msgpack"
)

var errTrailingContent = errors.New("json: trailing content after value")

// JsonEncoding decodes exactly one JSON value and encodes without escaping
// HTML characters.
type JsonEncoding struct {
}

func (j *JsonEncoding) Decode(bs []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(bs))
	if err := dec.Decode(v); err != nil {
		return err
	}
	var extra interface{}
	if err := dec.Decode(&extra); err != io.EOF {
		return errTrailingContent
	}
	return nil
}

func (j *JsonEncoding) Encode(v interface{}) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

type MsgPackEncoding struct {
}

func (m *MsgPackEncoding) Decode(bs []byte, v interface{}) error {
	return msgpack.Unmarshal(bs, v)
}

var (
	encoders map[string]Encoder
	decoders map[string]Decoder

	defaultEncoding = &JsonEncoding{}
)

func init() {
	encoders = make(map[string]Encoder)
	decoders = make(map[string]Decoder)

	decoders[strong.MIMEApplicationJSON] = defaultEncoding
	encoders[strong.MIMEApplicationJSON] = defaultEncoding

	// Responses are always JSON; msgpack is accepted for request bodies only.
	msgPackDecoder := &MsgPackEncoding{}
	decoders[strong.MIMEApplicationMsgpack] = msgPackDecoder
	decoders["application/x-msgpack"] = msgPackDecoder

}

type Decoder interface {
	Decode(bs []byte, v interface{}) error
}

type Encoder interface {
	Encode(v interface{}) ([]byte, error)
}

// GetDecoder looks a decoder up by media type, ignoring parameters such as
// charset. Unknown and empty content types get the JSON decoder.
func GetDecoder(contentType string) Decoder {
	if d, ok := decoders[mediaType(contentType)]; ok {
		return d
	}
	return defaultEncoding
}

func GetEncoder(contentType string) Encoder {
	if e, ok := encoders[mediaType(contentType)]; ok {
		return e
	}
	return defaultEncoding
}

func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
