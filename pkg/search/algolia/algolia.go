// Package algolia implements the search.Provider interface on top of
// Algolia.
package algolia

import (
	"context"
	"errors"
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"

	searchpkg "github.com/cmsflow-io/strapi/pkg/search"
)

// ErrCredentialsRequired is returned when the application id or API key is
// missing.
var ErrCredentialsRequired = errors.New("algolia: applicationId and apiKey are required")

// Config holds Algolia credentials.
type Config struct {
	ApplicationID string
	APIKey        string
}

// Provider is an Algolia-backed search provider.
type Provider struct {
	client *search.Client
}

// New creates a provider. Credentials are validated for presence only; the
// first index operation surfaces bad keys.
func New(config Config) (*Provider, error) {
	if config.ApplicationID == "" || config.APIKey == "" {
		return nil, ErrCredentialsRequired
	}

	return &Provider{client: search.NewClient(config.ApplicationID, config.APIKey)}, nil
}

// object maps a record to Algolia's wire shape: the object id moves to the
// "objectID" key Algolia expects.
func object(record searchpkg.Record) map[string]any {
	out := make(map[string]any, len(record))

	for key, value := range record {
		if key == searchpkg.ObjectIDKey {
			continue
		}

		out[key] = value
	}

	out["objectID"] = record.ObjectID()

	return out
}

// Create implements search.Provider.
func (p *Provider) Create(ctx context.Context, index string, record searchpkg.Record) error {
	_, err := p.client.InitIndex(index).SaveObject(object(record), ctx)
	if err != nil {
		return fmt.Errorf("algolia: saving object %q: %w", record.ObjectID(), err)
	}

	return nil
}

// Update implements search.Provider. Missing records are created.
func (p *Provider) Update(ctx context.Context, index string, record searchpkg.Record) error {
	_, err := p.client.InitIndex(index).PartialUpdateObject(object(record), opt.CreateIfNotExists(true), ctx)
	if err != nil {
		return fmt.Errorf("algolia: updating object %q: %w", record.ObjectID(), err)
	}

	return nil
}

// Delete implements search.Provider.
func (p *Provider) Delete(ctx context.Context, index, objectID string) error {
	_, err := p.client.InitIndex(index).DeleteObject(objectID, ctx)
	if err != nil {
		return fmt.Errorf("algolia: deleting object %q: %w", objectID, err)
	}

	return nil
}

// CreateMany implements search.Provider.
func (p *Provider) CreateMany(ctx context.Context, index string, records []searchpkg.Record) error {
	objects := make([]map[string]any, 0, len(records))
	for _, record := range records {
		objects = append(objects, object(record))
	}

	_, err := p.client.InitIndex(index).SaveObjects(objects, ctx)
	if err != nil {
		return fmt.Errorf("algolia: saving %d objects: %w", len(objects), err)
	}

	return nil
}

// DeleteMany implements search.Provider.
func (p *Provider) DeleteMany(ctx context.Context, index string, objectIDs []string) error {
	_, err := p.client.InitIndex(index).DeleteObjects(objectIDs, ctx)
	if err != nil {
		return fmt.Errorf("algolia: deleting %d objects: %w", len(objectIDs), err)
	}

	return nil
}

// Clear implements search.Provider.
func (p *Provider) Clear(ctx context.Context, index string) error {
	_, err := p.client.InitIndex(index).ClearObjects(ctx)
	if err != nil {
		return fmt.Errorf("algolia: clearing index %q: %w", index, err)
	}

	return nil
}
