package mocker

import (
	"encoding/json"
	"net/url"
	"reflect"
	"strings"
)

// queryParams turns the query string into a mapping of string values. A key
// given more than once maps to a list of its values in order. Pairs are
// split on "&" only, and a value that does not unescape is kept as written.
func queryParams(u *url.URL) map[string]interface{} {
	params := make(map[string]interface{})
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key, value = unescapeQuery(key), unescapeQuery(value)

		switch prev := params[key].(type) {
		case nil:
			params[key] = value
		case string:
			params[key] = []interface{}{prev, value}
		case []interface{}:
			params[key] = append(prev, value)
		}
	}
	return params
}

func unescapeQuery(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	return strings.ReplaceAll(s, "+", " ")
}

// isStructured reports whether v serializes to a JSON object or array.
func isStructured(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case json.RawMessage:
		for _, c := range x {
			switch c {
			case ' ', '\t', '\n', '\r':
				continue
			case '{', '[':
				return true
			}
			return false
		}
		return false
	case []byte:
		return false
	case json.Marshaler:
		return true
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return !rv.IsNil()
	case reflect.Array, reflect.Struct:
		return true
	}
	return false
}
