package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
	"trimPrefix": func(prefix, s string) string {
		return strings.TrimPrefix(s, prefix)
	},
}

func Render(name, text string, data interface{}) (string, error) {
	tpl := template.New(name).Option("missingkey=error").Funcs(funcs)
	tpl, err := tpl.Parse(text)
	if err != nil {
		return "", err
	}
	buf := &bytes.Buffer{}
	if err := tpl.Execute(buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderValues renders every string leaf of values as a template against data.
// Maps and lists are walked recursively, other scalars are kept as-is.
func RenderValues(values map[string]interface{}, data interface{}) (map[string]interface{}, error) {
	res := map[string]interface{}{}

	for k, v := range values {
		r, err := renderValue(k, v, data)
		if err != nil {
			return nil, err
		}
		res[k] = r
	}

	return res, nil
}

func renderValue(key string, v interface{}, data interface{}) (interface{}, error) {
	switch t := v.(type) {
	case map[string]interface{}:
		return RenderValues(t, data)
	case []interface{}:
		items := make([]interface{}, len(t))
		for i := range t {
			r, err := renderValue(fmt.Sprintf("%s[%d]", key, i), t[i], data)
			if err != nil {
				return nil, err
			}
			items[i] = r
		}
		return items, nil
	case string:
		return Render(fmt.Sprintf("%s: %q", key, t), t, data)
	case int, int64, float64, bool, nil:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported type: value=%v, type=%T", t, t)
	}
}
