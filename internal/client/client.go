// Package client implements the strapi.Client interface: the content-type
// registry, endpoint resolution, request execution, and pagination
// traversal over the internal HTTP transport.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/gertd/go-pluralize"

	"github.com/cmsflow-io/strapi/internal/constants"
	internalhttp "github.com/cmsflow-io/strapi/internal/http"
	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// fullyQualifiedPattern matches content-type uids ("api::post.post",
// "plugin::users-permissions.user").
var fullyQualifiedPattern = regexp.MustCompile(`^.+::.+\..+$`)

var plural = pluralize.NewClient()

// Client implements strapi.Client.
type Client struct {
	http       *internalhttp.Client
	tokens     *internalhttp.TokenStore
	normaliser *strapi.Normaliser
	prefix     string
	registry   map[string]registration
	logger     strapi.Logger

	userMu sync.RWMutex
	user   map[string]any
}

// registration is one resolved content-type entry.
type registration struct {
	contentType strapi.ContentType

	// single marks single types: no id in the path, one entry total.
	single bool
}

// New creates a client from the configuration. Content types are resolved
// eagerly; an empty name or a duplicate fails construction.
func New(config *strapi.Config) (*Client, error) {
	if config == nil {
		return nil, strapi.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: BaseURL must be set", strapi.ErrConfigRequired)
	}

	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	registry, err := buildRegistry(config.ContentTypes)
	if err != nil {
		return nil, err
	}

	prefix := config.Prefix
	if prefix == "" {
		prefix = constants.DefaultAPIPrefix
	}

	prefix = "/" + strings.Trim(prefix, "/")

	tokens := internalhttp.NewTokenStore(config.Token)

	var httpOpts []internalhttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, internalhttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, internalhttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, internalhttp.WithUserAgent(config.UserAgent))
	}

	if config.RequestTimeout > 0 {
		httpOpts = append(httpOpts, internalhttp.WithRequestTimeout(config.RequestTimeout))
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin <= 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax <= 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		httpOpts = append(httpOpts, internalhttp.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	var normOpts []strapi.NormaliserOption

	if config.DisableDateParsing {
		normOpts = append(normOpts, strapi.WithoutDateParsing())
	}

	if config.DatePattern != nil {
		normOpts = append(normOpts, strapi.WithDatePattern(config.DatePattern))
	}

	return &Client{
		http:       internalhttp.NewClient(config.BaseURL, tokens, httpOpts...),
		tokens:     tokens,
		normaliser: strapi.NewNormaliser(normOpts...),
		prefix:     prefix,
		registry:   registry,
		logger:     config.Logger,
	}, nil
}

func buildRegistry(specs []strapi.ContentTypeSpec) (map[string]registration, error) {
	registry := make(map[string]registration, len(specs))

	for _, spec := range specs {
		reg, err := resolveContentType(spec)
		if err != nil {
			return nil, err
		}

		name := reg.contentType.SingularName
		if _, exists := registry[name]; exists {
			return nil, fmt.Errorf("%w: %q", strapi.ErrDuplicateContentType, name)
		}

		registry[name] = reg
	}

	return registry, nil
}

// resolveContentType derives the uid, singular name, and path segment from
// a registration. A fully qualified uid keeps its last dot segment as the
// singular name; a plain name derives "api::name.name". An explicit Path
// marks a single type and overrides the derived plural segment.
func resolveContentType(spec strapi.ContentTypeSpec) (registration, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return registration{}, strapi.ErrContentTypeNameRequired
	}

	uid := name
	singular := name

	if fullyQualifiedPattern.MatchString(name) {
		singular = name[strings.LastIndex(name, ".")+1:]
	} else {
		uid = constants.ContentTypeUIDPrefix + name + "." + name
	}

	reg := registration{
		contentType: strapi.ContentType{
			ID:           uid,
			SingularName: singular,
			PluralName:   plural.Plural(singular),
		},
	}

	if spec.Path != "" {
		reg.contentType.PluralName = strings.Trim(spec.Path, "/")
		reg.single = true
	}

	return reg, nil
}

// resolve looks an entity name up in the registry. It accepts the
// registered singular name or the full uid.
func (c *Client) resolve(entity string) (registration, error) {
	name := entity
	if fullyQualifiedPattern.MatchString(entity) {
		name = entity[strings.LastIndex(entity, ".")+1:]
	}

	reg, ok := c.registry[name]
	if !ok {
		return registration{}, fmt.Errorf("%w: %q", strapi.ErrUnknownContentType, entity)
	}

	return reg, nil
}

// endpoint builds the request path plus encoded query for an entity.
func (c *Client) endpoint(reg registration, id string, params *strapi.Params) (path, query string) {
	path = c.prefix + "/" + reg.contentType.PluralName
	if id != "" {
		path += "/" + id
	}

	return path, params.Encode()
}

// ContentType implements strapi.Client.
func (c *Client) ContentType(entity string) (*strapi.ContentType, error) {
	reg, err := c.resolve(entity)
	if err != nil {
		return nil, err
	}

	contentType := reg.contentType

	return &contentType, nil
}

// GetEndpoint implements strapi.Client.
func (c *Client) GetEndpoint(entity, id string, params *strapi.Params) (string, error) {
	reg, err := c.resolve(entity)
	if err != nil {
		return "", err
	}

	path, query := c.endpoint(reg, id, params)

	return path + query, nil
}

// requestItem executes a request and normalises the single-item envelope.
func (c *Client) requestItem(ctx context.Context, method, path, query string, body any) (strapi.Entity, error) {
	resp, err := c.http.Do(ctx, &internalhttp.Request{Method: method, Path: path, Query: query, Body: body})
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}

	return c.normaliser.Item(envelope)
}

// requestCollection executes a GET and normalises the array envelope.
func (c *Client) requestCollection(ctx context.Context, path, query string) (*strapi.Collection, error) {
	resp, err := c.http.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	envelope, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, err
	}

	return c.normaliser.Array(envelope)
}

func decodeEnvelope(body []byte) (*strapi.Response, error) {
	var envelope strapi.Response

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("parsing response envelope: %w", err)
	}

	return &envelope, nil
}

// FetchSingle implements strapi.Client.
func (c *Client) FetchSingle(ctx context.Context, entity string, params *strapi.Params) (strapi.Entity, error) {
	reg, err := c.resolve(entity)
	if err != nil {
		return nil, err
	}

	path, query := c.endpoint(reg, "", params)

	return c.requestItem(ctx, "GET", path, query, nil)
}

// FetchByID implements strapi.Client.
func (c *Client) FetchByID(ctx context.Context, entity, id string, params *strapi.Params) (strapi.Entity, error) {
	reg, err := c.resolve(entity)
	if err != nil {
		return nil, err
	}

	path, query := c.endpoint(reg, id, params)

	return c.requestItem(ctx, "GET", path, query, nil)
}

// FetchFirst implements strapi.Client. It requests page 1 with page size 1
// and returns the single entry, or nil when nothing matches.
func (c *Client) FetchFirst(ctx context.Context, entity string, params *strapi.Params) (strapi.Entity, error) {
	page, err := c.FetchManyPagePaginated(ctx, entity, params, 1, 1)
	if err != nil {
		return nil, err
	}

	return page.First(), nil
}

// FetchMany implements strapi.Client.
func (c *Client) FetchMany(ctx context.Context, entity string, params *strapi.Params) (*strapi.Collection, error) {
	reg, err := c.resolve(entity)
	if err != nil {
		return nil, err
	}

	path, query := c.endpoint(reg, "", params)

	return c.requestCollection(ctx, path, query)
}

// FetchManyPagePaginated implements strapi.Client.
func (c *Client) FetchManyPagePaginated(ctx context.Context, entity string, params *strapi.Params, page, pageSize int) (*strapi.Collection, error) {
	return c.FetchMany(ctx, entity, withPagination(params, strapi.PageRequest{Page: page, PageSize: pageSize}))
}

// FetchManyOffsetPaginated implements strapi.Client.
func (c *Client) FetchManyOffsetPaginated(ctx context.Context, entity string, params *strapi.Params, start, limit int) (*strapi.Collection, error) {
	return c.FetchMany(ctx, entity, withPagination(params, strapi.OffsetRequest{Start: start, Limit: limit}))
}

// FetchAll implements strapi.Client. Any pagination in params is ignored;
// the traversal sets its own offset windows.
func (c *Client) FetchAll(ctx context.Context, entity string, params *strapi.Params, opts strapi.TraversalOptions) ([]strapi.Entity, error) {
	if _, err := c.resolve(entity); err != nil {
		return nil, err
	}

	fetcher := strapi.PageFetcherFunc(func(ctx context.Context, start, limit int) (*strapi.Collection, error) {
		return c.FetchManyOffsetPaginated(ctx, entity, params, start, limit)
	})

	return strapi.TraverseAll(ctx, fetcher, opts)
}

// withPagination returns a shallow copy of params carrying the pagination
// request, leaving the caller's value untouched.
func withPagination(params *strapi.Params, req strapi.PaginationRequest) *strapi.Params {
	merged := strapi.Params{}
	if params != nil {
		merged = *params
	}

	merged.Pagination = req

	return &merged
}

// Create implements strapi.Client.
func (c *Client) Create(ctx context.Context, entity string, data map[string]any, params *strapi.Params) (strapi.Entity, error) {
	reg, err := c.resolve(entity)
	if err != nil {
		return nil, err
	}

	path, query := c.endpoint(reg, "", params)

	return c.requestItem(ctx, "POST", path, query, map[string]any{"data": data})
}

// Update implements strapi.Client. Single types update without an id.
func (c *Client) Update(ctx context.Context, entity, id string, data map[string]any, params *strapi.Params) (strapi.Entity, error) {
	reg, err := c.resolve(entity)
	if err != nil {
		return nil, err
	}

	if reg.single {
		id = ""
	}

	path, query := c.endpoint(reg, id, params)

	return c.requestItem(ctx, "PUT", path, query, map[string]any{"data": data})
}

// Delete implements strapi.Client.
func (c *Client) Delete(ctx context.Context, entity, id string, params *strapi.Params) (strapi.Entity, error) {
	reg, err := c.resolve(entity)
	if err != nil {
		return nil, err
	}

	if reg.single {
		id = ""
	}

	path, query := c.endpoint(reg, id, params)

	return c.requestItem(ctx, "DELETE", path, query, nil)
}

// Login implements strapi.Client. On success the returned JWT replaces the
// stored bearer token for all subsequent requests.
func (c *Client) Login(ctx context.Context, identifier, password string) (*strapi.AuthResponse, error) {
	body := map[string]string{
		"identifier": identifier,
		"password":   password,
	}

	resp, err := c.http.Post(ctx, c.prefix+constants.LoginPath, "", body)
	if err != nil {
		return nil, err
	}

	var auth strapi.AuthResponse

	err = json.Unmarshal(resp.Body, &auth)
	if err != nil {
		return nil, fmt.Errorf("parsing login response: %w", err)
	}

	c.tokens.Set(auth.JWT)

	c.userMu.Lock()
	c.user = auth.User
	c.userMu.Unlock()

	if c.logger != nil {
		c.logger.Info("authenticated", map[string]any{"identifier": identifier})
	}

	return &auth, nil
}

// AuthenticatedUser implements strapi.Client.
func (c *Client) AuthenticatedUser() map[string]any {
	c.userMu.RLock()
	defer c.userMu.RUnlock()

	return c.user
}
