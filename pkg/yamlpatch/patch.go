// Package yamlpatch applies RFC 6902 JSON patches to YAML-shaped documents such as helm values.
package yamlpatch

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"gopkg.in/yaml.v3"
)

// Patch applies each patch in order to values and returns the patched copy.
// values itself is left untouched.
func Patch(values map[string]interface{}, patches ...string) (map[string]interface{}, error) {
	doc, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshalling values: %w", err)
	}

	for i, p := range patches {
		if p == "" {
			continue
		}

		patch, err := jsonpatch.DecodePatch([]byte(p))
		if err != nil {
			return nil, fmt.Errorf("decoding patch %d: %w", i, err)
		}

		doc, err = patch.Apply(doc)
		if err != nil {
			return nil, fmt.Errorf("applying patch %d: %w", i, err)
		}
	}

	var res map[string]interface{}
	if err := json.Unmarshal(doc, &res); err != nil {
		return nil, err
	}

	return normalize(res).(map[string]interface{}), nil
}

// normalize turns whole float64s coming out of encoding/json back into ints
// so that replica counts and ports are not rendered as 2.0
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k := range t {
			t[k] = normalize(t[k])
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	case float64:
		if t == float64(int64(t)) {
			return int(t)
		}
		return t
	default:
		return t
	}
}

// Merge deep-merges src onto dst, with src winning on conflicts. Lists are replaced, not merged.
func Merge(dst, src map[string]interface{}) map[string]interface{} {
	res := map[string]interface{}{}
	for k, v := range dst {
		res[k] = v
	}
	for k, v := range src {
		srcMap, ok := v.(map[string]interface{})
		if !ok {
			res[k] = v
			continue
		}
		dstMap, ok := res[k].(map[string]interface{})
		if !ok {
			res[k] = srcMap
			continue
		}
		res[k] = Merge(dstMap, srcMap)
	}
	return res
}

func Marshal(values map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(values); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
