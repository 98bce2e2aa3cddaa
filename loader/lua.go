package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/aarzilli/golua/lua"
	"github.com/stevedonovan/luar"
	"go.uber.org/zap"
)

var errClosed = errors.New("lua state closed")

// LuaFactory creates the state each Lua handler file runs in. Replace it to
// preload extra modules.
var LuaFactory = func() *lua.State {
	L := luar.Init()
	L.OpenLibs()
	return L
}

// luaModule is one handler file running in its own state. Lua states are not
// safe for concurrent use, so every call holds mu.
type luaModule struct {
	mu    sync.Mutex
	path  string
	state *lua.State
	refs  []int
}

// loadLua runs the file, which must return a table of path -> value or
// function(params).
func loadLua(path string, t *Table) error {
	m, err := openLua(path)
	if err != nil {
		return err
	}
	t.own(m)
	return m.register(t)
}

func openLua(path string) (m *luaModule, err error) {
	L := LuaFactory()

	defer func() {
		if e := recover(); e != nil {
			err = fmt.Errorf("%v", e)
		}
		if err != nil {
			L.Close()
			m = nil
		}
	}()

	registerExtensions(L, path)
	setPackagePath(L, filepath.Dir(path))

	L.SetTop(0)
	if err = L.DoFile(path); err != nil {
		return nil, err
	}
	if L.GetTop() == 0 || !L.IsTable(-1) {
		return nil, errors.New("lua handler file must return a table of routes")
	}

	return &luaModule{path: path, state: L}, nil
}

func registerExtensions(L *lua.State, path string) {
	file := filepath.Base(path)
	luar.Register(L, "mock", luar.Map{
		"log": func(msg string) {
			zap.L().Info(msg, zap.String("file", file))
		},
	})
}

// setPackagePath lets handler files require helpers that live next to them.
func setPackagePath(L *lua.State, dir string) {
	L.GetGlobal("package")
	L.GetField(-1, "path")
	current := L.ToString(-1)
	L.Pop(1)
	L.PushString(filepath.Join(dir, "?.lua") + ";" + current)
	L.SetField(-2, "path")
	L.Pop(1)
}

// register walks the routes table left on the stack by openLua.
func (m *luaModule) register(t *Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	L := m.state
	idx := L.GetTop()
	defer L.SetTop(0)

	L.PushNil()
	for L.Next(idx) != 0 {
		if L.Type(-2) != lua.LUA_TSTRING {
			L.Pop(1)
			continue
		}
		route := L.ToString(-2)

		if L.IsFunction(-1) {
			L.PushValue(-1)
			ref := L.Ref(lua.LUA_REGISTRYINDEX)
			m.refs = append(m.refs, ref)
			t.Set(route, DynamicHandler(m.caller(ref)), m.path)
		} else {
			value, err := luaToGo(L, L.GetTop())
			if err != nil {
				value = invalidValue{err}
			}
			t.Set(route, StaticHandler(value), m.path)
		}
		L.Pop(1)
	}
	return nil
}

func (m *luaModule) caller(ref int) Func {
	return func(params interface{}) (interface{}, error) {
		return m.call(ref, params)
	}
}

func (m *luaModule) call(ref int, params interface{}) (result interface{}, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	L := m.state
	if L == nil {
		return nil, errClosed
	}

	defer func() {
		if e := recover(); e != nil {
			result, err = nil, fmt.Errorf("%s: %v", filepath.Base(m.path), e)
		}
	}()

	base := L.GetTop()
	defer L.SetTop(base)

	L.RawGeti(lua.LUA_REGISTRYINDEX, ref)
	luar.GoToLua(L, params)
	if err := L.Call(1, 1); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(m.path), err)
	}

	return luaToGo(L, L.GetTop())
}

func (m *luaModule) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return nil
	}
	m.state.Close()
	m.state = nil
	m.refs = nil
	return nil
}
