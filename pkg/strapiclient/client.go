// Package strapiclient provides the main entry point for creating Strapi
// content API clients.
package strapiclient

import (
	"fmt"
	"strings"

	"github.com/cmsflow-io/strapi/internal/client"
	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// New creates a client for the configured server. Content types are
// resolved eagerly, so misregistrations surface here rather than on first
// use.
func New(config *strapi.Config) (strapi.Client, error) {
	if config == nil {
		return nil, strapi.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL must be set", strapi.ErrConfigRequired)
	}

	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	config.BaseURL = baseURL

	impl, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return impl, nil
}

// NewWithToken creates a client authenticated with a pre-provisioned API
// token.
func NewWithToken(baseURL, token string, contentTypes ...strapi.ContentTypeSpec) (strapi.Client, error) {
	return New(&strapi.Config{
		BaseURL:      baseURL,
		Token:        token,
		ContentTypes: contentTypes,
	})
}
