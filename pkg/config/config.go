// Package config loads docship.yaml, the pipeline's settings.
// Every setting is optional and defaults to the values the docs pipeline has always used.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/twpayne/go-vfs"
	"github.com/variantdev/docship/pkg/pipeline"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "docship.yaml"

type Config struct {
	Name        string `yaml:"name"`
	ShortName   string `yaml:"shortname"`
	Description string `yaml:"description"`

	// Mainline is the branch that deploys to staging and may be released
	Mainline string `yaml:"mainline"`
	AllowPRs bool   `yaml:"allowPRs"`

	// CommitEnv names the environment variable holding the triggering commit
	CommitEnv string `yaml:"commitEnv"`

	Image       ImageSpec       `yaml:"image"`
	Deploy      DeploySpec      `yaml:"deploy"`
	Hosts       HostsSpec       `yaml:"hosts"`
	Release     ReleaseSpec     `yaml:"release"`
	SearchIndex SearchIndexSpec `yaml:"searchIndex"`
	GitHub      GitHubSpec      `yaml:"github"`
	Metrics     MetricsSpec     `yaml:"metrics"`
}

type ImageSpec struct {
	Repository   string   `yaml:"repository"`
	Rockerfile   string   `yaml:"rockerfile"`
	Context      string   `yaml:"context"`
	CacheDirs    []string `yaml:"cacheDirs"`
	PackageJSON  string   `yaml:"packageJSON"`
	BuilderQueue string   `yaml:"builderQueue"`

	// Verify checks the registry for the image before deploying a tag
	Verify              bool   `yaml:"verify"`
	RegistryUserEnv     string `yaml:"registryUserEnv"`
	RegistryPasswordEnv string `yaml:"registryPasswordEnv"`
}

type DeploySpec struct {
	ClusterName    string                 `yaml:"clusterName"`
	Chart          string                 `yaml:"chart"`
	ReleasePrefix  string                 `yaml:"releasePrefix"`
	ProjectName    string                 `yaml:"projectName"`
	DeploymentType string                 `yaml:"deploymentType"`
	Timeout        string                 `yaml:"timeout"`
	Values         map[string]interface{} `yaml:"values"`
	ValuesPatches  []string               `yaml:"valuesPatches"`
}

type HostsSpec struct {
	Production    string `yaml:"production"`
	Staging       string `yaml:"staging"`
	PreviewDomain string `yaml:"previewDomain"`
	PreviewPrefix string `yaml:"previewPrefix"`
}

type ReleaseSpec struct {
	TagPrefix string `yaml:"tagPrefix"`
	Remote    string `yaml:"remote"`
}

type SearchIndexSpec struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type GitHubSpec struct {
	// Repository is "owner/name". Empty derives it from the push URL of the release remote
	Repository string `yaml:"repository"`
	TokenEnv   string `yaml:"tokenEnv"`
	BaseURL    string `yaml:"baseURL"`
}

type MetricsSpec struct {
	// Pushgateway disables metrics when empty
	Pushgateway string `yaml:"pushgateway"`
	Job         string `yaml:"job"`

	// Labels are attached to every counter
	Labels map[string]string `yaml:"labels"`
	// Buckets overrides the step and pipeline duration histogram buckets, in seconds
	Buckets []float64 `yaml:"buckets"`
}

func Default() *Config {
	return &Config{
		Name:        "📚 Docs",
		ShortName:   "docs",
		Description: "Docs Build/Deploy",
		Mainline:    "master",
		AllowPRs:    true,
		CommitEnv:   "BUILDKITE_COMMIT",
		Image: ImageSpec{
			Repository:          "gcr.io/exponentjs/exponent-docs-v2",
			Rockerfile:          "./deploy/docker/deploy.Rockerfile",
			Context:             ".",
			CacheDirs:           []string{"./gatsby/.intermediate-representation", "./gatsby/public"},
			PackageJSON:         "./package.json",
			BuilderQueue:        "builder",
			RegistryUserEnv:     "DOCKER_REGISTRY_USER",
			RegistryPasswordEnv: "DOCKER_REGISTRY_PASSWORD",
		},
		Deploy: DeploySpec{
			ClusterName:    "exp-central",
			Chart:          "./deploy/charts/docs",
			ReleasePrefix:  "docs-",
			ProjectName:    "docs",
			DeploymentType: "k8s",
		},
		Hosts: HostsSpec{
			Production:    "docs.expo.io",
			Staging:       "staging.docs.expo.io",
			PreviewDomain: "pr.exp.host",
			PreviewPrefix: "docs-pr-",
		},
		Release: ReleaseSpec{
			TagPrefix: "docs/release-",
			Remote:    "origin",
		},
		SearchIndex: SearchIndexSpec{
			Command: "yarn",
			Args:    []string{"run", "update-search-index", "--"},
		},
		GitHub: GitHubSpec{
			Repository: "expo/expo",
			TokenEnv:   "GITHUB_TOKEN",
		},
		Metrics: MetricsSpec{
			Job: "docship",
		},
	}
}

// Load reads the config at path over the defaults. A missing file yields the defaults.
func Load(fs vfs.FS, path string) (*Config, error) {
	bs, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return Parse(path, bs)
}

func Parse(path string, bs []byte) (*Config, error) {
	var raw interface{}
	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if raw == nil {
		return Default(), nil
	}

	if err := validate(path, raw); err != nil {
		return nil, err
	}

	c := Default()

	if err := yaml.NewDecoder(bytes.NewReader(bs)).Decode(c); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	return c, nil
}

func validate(path string, doc interface{}) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validating %s: %w", path, err)
	}

	if result.Valid() {
		return nil
	}

	var msgs []string
	for _, e := range result.Errors() {
		msgs = append(msgs, "- "+e.String())
	}

	return fmt.Errorf("%s is invalid:\n%s", path, strings.Join(msgs, "\n"))
}

func (c *Config) Resolver() *pipeline.Resolver {
	return &pipeline.Resolver{
		Mainline:       c.Mainline,
		ProductionHost: c.Hosts.Production,
		StagingHost:    c.Hosts.Staging,
		PreviewPrefix:  c.Hosts.PreviewPrefix,
		PreviewDomain:  c.Hosts.PreviewDomain,
	}
}

func (c *Config) Planner() *pipeline.Planner {
	p := pipeline.NewPlanner(c.Resolver(), c.ShortName)
	p.AllowPRs = c.AllowPRs
	p.BuilderQueue = c.Image.BuilderQueue
	return p
}
