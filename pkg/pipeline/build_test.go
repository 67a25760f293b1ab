package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/twpayne/go-vfs/vfst"
	"github.com/variantdev/docship/pkg/rocker"
)

func TestImageBuild(t *testing.T) {
	fs, clean, err := vfst.NewTestFS(map[string]interface{}{
		"/repo/package.json": `{"name": "expo-docs", "version": "33.0.0"}`,
		"/repo/gatsby/.intermediate-representation/index.json": "{}",
		"/repo/gatsby/public/index.html":                       "<html></html>",
		"/repo/gatsby/src/index.js":                            "",
	})
	if err != nil {
		t.Fatal(err)
	}
	defer clean()

	builder := &fakeBuilder{}
	b := &ImageBuild{
		Builder:     builder,
		FS:          fs,
		CacheDirs:   []string{"/repo/gatsby/.intermediate-representation", "/repo/gatsby/public"},
		PackageJSON: "/repo/package.json",
		Rockerfile:  "./deploy/docker/deploy.Rockerfile",
		Image: ImageCoordinates{
			Repository: "gcr.io/exponentjs/exponent-docs-v2",
			Tag:        "0123456789abcdef",
		},
	}

	res, err := b.Build(context.Background(), BuildContext{Branch: "master"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != Succeeded {
		t.Errorf("unexpected outcome: %s", res.Outcome)
	}

	for _, dir := range b.CacheDirs {
		if _, err := fs.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("expected %s to be removed, got %v", dir, err)
		}
	}
	if _, err := fs.Stat("/repo/gatsby/src/index.js"); err != nil {
		t.Errorf("expected sources to be kept: %v", err)
	}

	expected := []rocker.BuildOptions{
		{
			Rockerfile: "./deploy/docker/deploy.Rockerfile",
			Context:    ".",
			Vars: map[string]string{
				"ImageName":   "gcr.io/exponentjs/exponent-docs-v2",
				"ImageTag":    "0123456789abcdef",
				"DocsVersion": "v33.0.0",
			},
			Pull: true,
			Push: true,
		},
	}
	if d := cmp.Diff(expected, builder.opts); d != "" {
		t.Errorf("unexpected build options: %s", d)
	}
}

func TestImageBuild_Errors(t *testing.T) {
	fs, clean, err := vfst.NewTestFS(map[string]interface{}{
		"/repo/package.json": `{"name": "expo-docs", "version": "33.0.0"}`,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer clean()

	builderErr := errors.New("rocker build failed")
	b := &ImageBuild{
		Builder:     &fakeBuilder{err: builderErr},
		FS:          fs,
		PackageJSON: "/repo/package.json",
		Image:       ImageCoordinates{Repository: "gcr.io/exponentjs/exponent-docs-v2", Tag: "abc"},
	}

	_, err = b.Build(context.Background(), BuildContext{Branch: "master"})

	var buildErr *BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected BuildError, got %v", err)
	}
	if buildErr.Image != "gcr.io/exponentjs/exponent-docs-v2:abc" {
		t.Errorf("unexpected image: %s", buildErr.Image)
	}
	if !errors.Is(err, builderErr) {
		t.Errorf("expected the builder error to be wrapped: %v", err)
	}

	builder := &fakeBuilder{}
	b.Builder = builder
	b.PackageJSON = "/repo/missing.json"

	if _, err := b.Build(context.Background(), BuildContext{Branch: "master"}); !errors.As(err, &buildErr) {
		t.Errorf("expected BuildError for a missing manifest, got %v", err)
	}
	if len(builder.opts) != 0 {
		t.Error("builder must not run without a version")
	}
}
