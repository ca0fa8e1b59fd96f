package strapi

import (
	"context"
	"regexp"
	"time"
)

// Client is the interface for interacting with a Strapi-compatible content
// API.
type Client interface {
	// Login authenticates against the users-permissions local provider
	// and stores the returned JWT for subsequent requests.
	Login(ctx context.Context, identifier, password string) (*AuthResponse, error)

	// AuthenticatedUser returns the user from the last successful Login,
	// or nil when no login has happened.
	AuthenticatedUser() map[string]any

	// GetEndpoint resolves the request path for a registered entity,
	// without issuing a request. id and params are optional.
	GetEndpoint(entity, id string, params *Params) (string, error)

	// ContentType returns the resolved registration for an entity name.
	ContentType(entity string) (*ContentType, error)

	// FetchSingle fetches a single-type entry (about-page style content
	// with exactly one entry and no id in the path).
	FetchSingle(ctx context.Context, entity string, params *Params) (Entity, error)

	// FetchByID fetches one entry of a collection type by id.
	FetchByID(ctx context.Context, entity, id string, params *Params) (Entity, error)

	// FetchFirst fetches the first matching entry of a collection type,
	// or nil when nothing matches.
	FetchFirst(ctx context.Context, entity string, params *Params) (Entity, error)

	// FetchMany fetches one page of entries with the given parameters.
	FetchMany(ctx context.Context, entity string, params *Params) (*Collection, error)

	// FetchManyPagePaginated fetches the numbered page.
	FetchManyPagePaginated(ctx context.Context, entity string, params *Params, page, pageSize int) (*Collection, error)

	// FetchManyOffsetPaginated fetches the offset window.
	FetchManyOffsetPaginated(ctx context.Context, entity string, params *Params, start, limit int) (*Collection, error)

	// FetchAll traverses the whole collection window by window and
	// returns every matching entry.
	FetchAll(ctx context.Context, entity string, params *Params, opts TraversalOptions) ([]Entity, error)

	// Create creates an entry.
	Create(ctx context.Context, entity string, data map[string]any, params *Params) (Entity, error)

	// Update updates an entry by id.
	Update(ctx context.Context, entity, id string, data map[string]any, params *Params) (Entity, error)

	// Delete deletes an entry by id and returns the deleted entry as the
	// server reported it.
	Delete(ctx context.Context, entity, id string, params *Params) (Entity, error)
}

// ContentTypeSpec registers one content type with the client.
type ContentTypeSpec struct {
	// Name is the singular content-type name ("restaurant"). Required.
	Name string `json:"name" yaml:"name"`

	// Path overrides the request path segment derived from Name. Single
	// types, irregular plurals, and custom routes set it; collection
	// types usually leave it empty.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// ContentType is a resolved content-type registration.
type ContentType struct {
	// ID is the fully qualified uid ("api::restaurant.restaurant").
	ID string `json:"id"`

	// SingularName is the singular form of the name.
	SingularName string `json:"singularName"`

	// PluralName is the path segment requests use.
	PluralName string `json:"pluralName"`
}

// Config holds configuration for creating a client.
type Config struct {
	// BaseURL is the server origin, e.g. "https://cms.example.com".
	// Required.
	BaseURL string

	// Prefix is the API mount path. Empty means "/api".
	Prefix string

	// ContentTypes registers the entities the client may address.
	// Requests for anything else fail before any network activity.
	ContentTypes []ContentTypeSpec

	// Token is a pre-provisioned API token sent as a bearer credential.
	// Login overwrites it.
	Token string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Logger receives debug/error output. Nil disables logging.
	Logger Logger

	// Debug enables request/response logging through Logger.
	Debug bool

	// RequestTimeout bounds a single HTTP request. Zero means no
	// per-request timeout beyond context deadlines.
	RequestTimeout time.Duration

	// RetryMax is the number of transport-level retries per request.
	// Zero means no retries.
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// DisableDateParsing turns off date normalisation.
	DisableDateParsing bool

	// DatePattern overrides the date-property name pattern. Nil means
	// DatePropertyPattern.
	DatePattern *regexp.Regexp
}
