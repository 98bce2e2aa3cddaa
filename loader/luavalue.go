package loader

import (
	"errors"
	"math"
	"strconv"

	"github.com/aarzilli/golua/lua"
)

// ErrCircular is returned for a table that contains itself.
var ErrCircular = errors.New("lua: circular table")

var errSkip = errors.New("lua: value has no JSON form")

// invalidValue stands in for a static value that cannot be serialized. It
// fails at response time, the same as a function returning such a value.
type invalidValue struct {
	err error
}

func (v invalidValue) MarshalJSON() ([]byte, error) {
	return nil, v.err
}

// luaToGo converts the value at the absolute stack index idx. Tables keyed
// exactly 1..n become slices, other tables become maps with string keys.
// Functions and userdata are dropped from maps and become nil in slices.
func luaToGo(L *lua.State, idx int) (interface{}, error) {
	v, err := toGo(L, idx, map[uintptr]bool{})
	if err == errSkip {
		return nil, nil
	}
	return v, err
}

func toGo(L *lua.State, idx int, seen map[uintptr]bool) (interface{}, error) {
	switch L.Type(idx) {
	case lua.LUA_TNIL:
		return nil, nil
	case lua.LUA_TBOOLEAN:
		return L.ToBoolean(idx), nil
	case lua.LUA_TNUMBER:
		return L.ToNumber(idx), nil
	case lua.LUA_TSTRING:
		return L.ToString(idx), nil
	case lua.LUA_TTABLE:
		return tableToGo(L, idx, seen)
	}
	return nil, errSkip
}

type tableEntry struct {
	key   string
	index int
	value interface{}
	skip  bool
}

func tableToGo(L *lua.State, idx int, seen map[uintptr]bool) (interface{}, error) {
	ptr := L.ToPointer(idx)
	if seen[ptr] {
		return nil, ErrCircular
	}
	seen[ptr] = true
	defer delete(seen, ptr)

	var entries []tableEntry
	isArray := true

	L.PushNil()
	for L.Next(idx) != 0 {
		entry := tableEntry{}

		switch L.Type(-2) {
		case lua.LUA_TSTRING:
			entry.key = L.ToString(-2)
			isArray = false
		case lua.LUA_TNUMBER:
			n := L.ToNumber(-2)
			entry.key = strconv.FormatFloat(n, 'f', -1, 64)
			if n >= 1 && n == math.Trunc(n) && n <= math.MaxInt32 {
				entry.index = int(n)
			} else {
				isArray = false
			}
		default:
			isArray = false
			L.Pop(1)
			continue
		}

		v, err := toGo(L, L.GetTop(), seen)
		if err == errSkip {
			entry.skip = true
		} else if err != nil {
			L.Pop(2)
			return nil, err
		}
		entry.value = v
		entries = append(entries, entry)

		L.Pop(1)
	}

	// Keys are unique, so n integer keys all within 1..n cover it exactly.
	if isArray && len(entries) > 0 {
		out := make([]interface{}, len(entries))
		for _, e := range entries {
			if e.index > len(entries) {
				isArray = false
				break
			}
			if !e.skip {
				out[e.index-1] = e.value
			}
		}
		if isArray {
			return out, nil
		}
	}

	out := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		if e.skip {
			continue
		}
		out[e.key] = e.value
	}
	return out, nil
}
