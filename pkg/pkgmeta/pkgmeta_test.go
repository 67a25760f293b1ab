package pkgmeta

import (
	"testing"

	"github.com/twpayne/go-vfs/vfst"
)

func TestVersion(t *testing.T) {
	fs, clean, err := vfst.NewTestFS(map[string]interface{}{
		"/repo/package.json":     `{"name": "expo-docs", "version": "33.0.0"}`,
		"/repo/bad/package.json": `{"name": "expo-docs"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer clean()

	got, err := Version(fs, "/repo/package.json")
	if err != nil {
		t.Fatal(err)
	}
	if got != "v33.0.0" {
		t.Errorf("unexpected version: expected=%s, got=%s", "v33.0.0", got)
	}

	if _, err := Version(fs, "/repo/bad/package.json"); err == nil {
		t.Error("expected error for a manifest without version")
	}

	if _, err := Version(fs, "/repo/missing.json"); err == nil {
		t.Error("expected error for a missing manifest")
	}
}
