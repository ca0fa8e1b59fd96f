// Package search mirrors CMS entries into an external search index. A
// Syncer applies entry lifecycle events (delivered over NATS) to a
// Provider, and can rebuild whole indexes from the content API.
package search

import (
	"context"
	"errors"

	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// ObjectIDKey is the record key carrying the index object id.
const ObjectIDKey = "objectId"

var (
	ErrProviderRequired    = errors.New("search provider is required")
	ErrClientRequired      = errors.New("content client is required")
	ErrNilEntity           = errors.New("entity is nil")
	ErrUnknownSearchConfig = errors.New("content type has no search configuration")
)

// Record is one sanitised index document. It always carries ObjectIDKey,
// "id", and "contentType" in addition to the selected entity fields.
type Record map[string]any

// ObjectID returns the record's index object id.
func (r Record) ObjectID() string {
	s, _ := r[ObjectIDKey].(string)

	return s
}

// TransformFunc rewrites one field value before indexing.
type TransformFunc func(value any) any

// ContentTypeConfig configures indexing for one content type.
type ContentTypeConfig struct {
	// Name is the content-type name as registered with the client.
	Name string

	// Index overrides the index name derived from Name.
	Index string

	// IDPrefix prefixes entity ids when forming object ids, so several
	// content types can share one index without colliding.
	IDPrefix string

	// Fields picks the entity fields to index. Empty means all fields.
	Fields []string

	// ExcludedFields omits fields when Fields is empty.
	ExcludedFields []string

	// Transforms rewrite field values (dotted paths allowed) before the
	// pick/omit step.
	Transforms map[string]TransformFunc
}

// IndexName returns the target index, applying the shared prefix.
func (c ContentTypeConfig) IndexName(prefix string) string {
	if c.Index != "" {
		return prefix + c.Index
	}

	return prefix + c.Name
}

// Config configures the search subsystem.
type Config struct {
	// Prefix is prepended to every index name ("dev_", "prod_").
	Prefix string

	// ContentTypes lists the indexed content types.
	ContentTypes []ContentTypeConfig
}

// MakeObjectID forms the index object id for an entity id.
func MakeObjectID(id any, prefix string) string {
	return prefix + strapi.FormatID(id)
}

// Provider is a search index backend.
type Provider interface {
	// Create creates or replaces one record.
	Create(ctx context.Context, index string, record Record) error

	// Update partially updates one record, creating it when absent.
	Update(ctx context.Context, index string, record Record) error

	// Delete removes one record by object id.
	Delete(ctx context.Context, index, objectID string) error

	// CreateMany creates or replaces records in bulk.
	CreateMany(ctx context.Context, index string, records []Record) error

	// DeleteMany removes records by object id in bulk.
	DeleteMany(ctx context.Context, index string, objectIDs []string) error

	// Clear removes every record from the index.
	Clear(ctx context.Context, index string) error
}
