package yamlpatch_test

import (
	"strings"
	"testing"

	"github.com/kylelemons/godebug/diff"
	"github.com/variantdev/docship/pkg/yamlpatch"
)

func render(t *testing.T, values map[string]interface{}) string {
	t.Helper()
	out, err := yamlpatch.Marshal(values)
	if err != nil {
		t.Fatal(err)
	}
	return strings.TrimSpace(string(out))
}

func TestPatch_AddIngressAnnotation(t *testing.T) {
	values := map[string]interface{}{
		"replicaCount": 2,
		"ingress": []interface{}{
			map[string]interface{}{"host": "docs.expo.io"},
		},
	}

	patched, err := yamlpatch.Patch(values,
		`[{"op": "add", "path": "/ingress/0/tls", "value": true}]`,
		`[{"op": "replace", "path": "/replicaCount", "value": 3}]`,
	)
	if err != nil {
		t.Fatal(err)
	}

	expected := `
ingress:
- host: docs.expo.io
  tls: true
replicaCount: 3
`
	if d := diff.Diff(strings.TrimSpace(expected), render(t, patched)); d != "" {
		t.Fatalf("\n%s", d)
	}

	if values["replicaCount"] != 2 {
		t.Errorf("input values were modified: %v", values)
	}
}

func TestPatch_Invalid(t *testing.T) {
	if _, err := yamlpatch.Patch(map[string]interface{}{}, `[{"op": "remove", "path": "/nope"}]`); err == nil {
		t.Fatal("expected error")
	}
	if _, err := yamlpatch.Patch(map[string]interface{}{}, `not json`); err == nil {
		t.Fatal("expected error")
	}
}

func TestMerge(t *testing.T) {
	dst := map[string]interface{}{
		"image": map[string]interface{}{"repository": "gcr.io/x", "tag": "abc"},
		"ingress": []interface{}{
			map[string]interface{}{"host": "a"},
		},
	}
	src := map[string]interface{}{
		"image":     map[string]interface{}{"pullPolicy": "Always"},
		"ingress":   []interface{}{},
		"resources": map[string]interface{}{"limits": map[string]interface{}{"cpu": "1"}},
	}

	expected := `
image:
  pullPolicy: Always
  repository: gcr.io/x
  tag: abc
ingress: []
resources:
  limits:
    cpu: "1"
`
	if d := diff.Diff(strings.TrimSpace(expected), render(t, yamlpatch.Merge(dst, src))); d != "" {
		t.Fatalf("\n%s", d)
	}
}
