package chartsource

import (
	"errors"
	"testing"

	"github.com/twpayne/go-vfs/vfst"
)

type recordingGetter struct {
	gets [][2]string
	err  error
}

func (g *recordingGetter) Get(dst, src string) error {
	g.gets = append(g.gets, [2]string{dst, src})
	return g.err
}

func TestResolve_LocalChart(t *testing.T) {
	fs, clean, err := vfst.NewTestFS(map[string]interface{}{
		"/repo/deploy/charts/docs/Chart.yaml": "name: docs\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer clean()

	g := &recordingGetter{}
	r := New(FS(fs), WithGetter(g), Home("/cache"))

	got, err := r.Resolve("/repo/deploy/charts/docs")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/repo/deploy/charts/docs" {
		t.Errorf("unexpected dir: %s", got)
	}
	if len(g.gets) != 0 {
		t.Errorf("local chart should not be fetched: %v", g.gets)
	}
}

func TestResolve_RemoteChart(t *testing.T) {
	fs, clean, err := vfst.NewTestFS(map[string]interface{}{
		"/cache/.keep": "",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer clean()

	g := &recordingGetter{}
	r := New(FS(fs), WithGetter(g), Home("/cache"))

	src := "git::https://github.com/expo/charts.git//docs?ref=v1"
	got, err := r.Resolve(src)
	if err != nil {
		t.Fatal(err)
	}

	expected := "/cache/git_https_github.com_expo_charts.git_docs_ref_v1"
	if got != expected {
		t.Errorf("unexpected dir: expected=%s, got=%s", expected, got)
	}
	if len(g.gets) != 1 || g.gets[0][1] != src {
		t.Errorf("unexpected fetches: %v", g.gets)
	}
}

func TestResolve_FetchError(t *testing.T) {
	fs, clean, err := vfst.NewTestFS(map[string]interface{}{})
	if err != nil {
		t.Fatal(err)
	}
	defer clean()

	r := New(FS(fs), WithGetter(&recordingGetter{err: errors.New("no route")}))

	if _, err := r.Resolve("https://example.com/chart.tgz"); err == nil {
		t.Fatal("expected error")
	}
}
