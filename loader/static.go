package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// loadJSON reads an object of path -> value. Values are kept as raw JSON so
// key order and number text survive untouched.
func loadJSON(path string, t *Table) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var routes map[string]json.RawMessage
	if err := json.Unmarshal(bs, &routes); err != nil {
		return err
	}
	for _, route := range sortedKeys(routes) {
		buf := bytes.NewBuffer(nil)
		if err := json.Compact(buf, routes[route]); err != nil {
			return fmt.Errorf("route %q: %w", route, err)
		}
		t.Set(route, StaticHandler(json.RawMessage(buf.Bytes())), path)
	}
	return nil
}

func loadYAML(path string, t *Table) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var routes map[string]interface{}
	if err := yaml.Unmarshal(bs, &routes); err != nil {
		return err
	}
	for _, route := range sortedKeys(routes) {
		t.Set(route, StaticHandler(stringKeys(routes[route])), path)
	}
	return nil
}

// stringKeys rewrites the map[interface{}]interface{} that YAML produces for
// mappings with non-string keys, so every mapping encodes as a JSON object.
func stringKeys(v interface{}) interface{} {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, val := range x {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case map[string]interface{}:
		for k, val := range x {
			x[k] = stringKeys(val)
		}
		return x
	case []interface{}:
		for i, val := range x {
			x[i] = stringKeys(val)
		}
		return x
	}
	return v
}

func loadTOML(path string, t *Table) error {
	bs, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var routes map[string]interface{}
	if err := toml.Unmarshal(bs, &routes); err != nil {
		return err
	}
	for _, route := range sortedKeys(routes) {
		t.Set(route, StaticHandler(routes[route]), path)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
