// Package dockerregistry provides a minimal Docker Registry API v2 client,
// just enough to tell whether an image tag has been pushed.
//
// Some code in this package is derived from heroku/docker-registry-client:
// https://github.com/heroku/docker-registry-client
// See transport.go for specific attributions.
package dockerregistry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var manifestMediaTypes = []string{
	"application/vnd.docker.distribution.manifest.v2+json",
	"application/vnd.docker.distribution.manifest.list.v2+json",
	"application/vnd.oci.image.manifest.v1+json",
	"application/vnd.oci.image.index.v1+json",
}

// Client handles Docker Registry API v2 requests.
type Client struct {
	baseURL  *url.URL
	username string
	password string
	client   *http.Client
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for the registry client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// New creates a new registry client for the given base URL.
// If username and password are non-empty, they will be used for token authentication.
func New(baseURL, username, password string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	c := &Client{
		baseURL:  u,
		username: username,
		password: password,
	}
	for _, opt := range opts {
		opt(c)
	}

	transport := http.DefaultTransport
	if c.client != nil && c.client.Transport != nil {
		transport = c.client.Transport
	}
	c.client = &http.Client{
		Transport: WrapTransport(transport, username, password),
	}
	return c, nil
}

// SplitImage splits "gcr.io/exponentjs/exponent-docs-v2" into the registry base URL
// and the repository path within it. Images without a registry host resolve to Docker Hub.
func SplitImage(image string) (string, string) {
	parts := strings.SplitN(image, "/", 2)
	if len(parts) == 2 && (strings.ContainsAny(parts[0], ".:") || parts[0] == "localhost") {
		return "https://" + parts[0], parts[1]
	}
	if len(parts) == 1 {
		return "https://registry-1.docker.io", "library/" + image
	}
	return "https://registry-1.docker.io", image
}

// HasTag reports whether repository:tag has a manifest in the registry
func (c *Client) HasTag(ctx context.Context, repository, tag string) (bool, error) {
	req, err := http.NewRequest(http.MethodHead, c.url("/v2/%s/manifests/%s", repository, tag), nil)
	if err != nil {
		return false, err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", strings.Join(manifestMediaTypes, ", "))

	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("checking %s:%s: unexpected status code: %d", repository, tag, resp.StatusCode)
	}
}

func (c *Client) url(pathFormat string, args ...interface{}) string {
	path := fmt.Sprintf(pathFormat, args...)
	u := *c.baseURL
	u.Path = path
	return u.String()
}
