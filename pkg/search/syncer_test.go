package search_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsflow-io/strapi/pkg/search"
	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// providerCall records one provider invocation.
type providerCall struct {
	op       string
	index    string
	objectID string
	records  []search.Record
}

// MockProvider records every call for assertions.
type MockProvider struct {
	calls []providerCall
}

func (p *MockProvider) Create(ctx context.Context, index string, record search.Record) error {
	p.calls = append(p.calls, providerCall{op: "create", index: index, records: []search.Record{record}})

	return nil
}

func (p *MockProvider) Update(ctx context.Context, index string, record search.Record) error {
	p.calls = append(p.calls, providerCall{op: "update", index: index, records: []search.Record{record}})

	return nil
}

func (p *MockProvider) Delete(ctx context.Context, index, objectID string) error {
	p.calls = append(p.calls, providerCall{op: "delete", index: index, objectID: objectID})

	return nil
}

func (p *MockProvider) CreateMany(ctx context.Context, index string, records []search.Record) error {
	p.calls = append(p.calls, providerCall{op: "createMany", index: index, records: records})

	return nil
}

func (p *MockProvider) DeleteMany(ctx context.Context, index string, objectIDs []string) error {
	p.calls = append(p.calls, providerCall{op: "deleteMany", index: index})

	return nil
}

func (p *MockProvider) Clear(ctx context.Context, index string) error {
	p.calls = append(p.calls, providerCall{op: "clear", index: index})

	return nil
}

// stubClient serves canned entities for FetchAll and fails every other
// operation; the syncer only traverses.
type stubClient struct {
	strapi.Client

	entities map[string][]strapi.Entity
	fetched  []string
}

func (c *stubClient) FetchAll(ctx context.Context, entity string, params *strapi.Params, opts strapi.TraversalOptions) ([]strapi.Entity, error) {
	c.fetched = append(c.fetched, entity)

	return c.entities[entity], nil
}

func newTestSyncer(t *testing.T, client strapi.Client, provider search.Provider, config search.Config) *search.Syncer {
	t.Helper()

	syncer, err := search.NewSyncer(client, provider, config, nil)
	require.NoError(t, err)

	return syncer
}

func postConfig() search.Config {
	return search.Config{
		Prefix: "dev_",
		ContentTypes: []search.ContentTypeConfig{
			{Name: "post", IDPrefix: "post-"},
		},
	}
}

func TestNewSyncer_Validation(t *testing.T) {
	t.Parallel()

	_, err := search.NewSyncer(nil, &MockProvider{}, search.Config{}, nil)
	require.ErrorIs(t, err, search.ErrClientRequired)

	_, err = search.NewSyncer(&stubClient{}, nil, search.Config{}, nil)
	require.ErrorIs(t, err, search.ErrProviderRequired)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSyncer_Apply(t *testing.T) {
	t.Parallel()

	t.Run("create of a published entry indexes it", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		syncer := newTestSyncer(t, &stubClient{}, provider, postConfig())

		err := syncer.Apply(context.Background(), search.LifecycleEvent{
			Action: search.ActionCreate,
			Model:  "post",
			Entry:  map[string]any{"id": float64(1), "title": "Root", "publishedAt": "2023-04-01T10:30:00.000Z"},
		})
		require.NoError(t, err)

		require.Len(t, provider.calls, 1)
		assert.Equal(t, "create", provider.calls[0].op)
		assert.Equal(t, "dev_post", provider.calls[0].index)
		assert.Equal(t, "post-1", provider.calls[0].records[0].ObjectID())
	})

	t.Run("create of a draft is a no-op", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		syncer := newTestSyncer(t, &stubClient{}, provider, postConfig())

		err := syncer.Apply(context.Background(), search.LifecycleEvent{
			Action: search.ActionCreate,
			Model:  "post",
			Entry:  map[string]any{"id": float64(1), "publishedAt": nil},
		})
		require.NoError(t, err)
		assert.Empty(t, provider.calls)
	})

	t.Run("entry without publishedAt is treated as published", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		syncer := newTestSyncer(t, &stubClient{}, provider, postConfig())

		err := syncer.Apply(context.Background(), search.LifecycleEvent{
			Action: search.ActionCreate,
			Model:  "post",
			Entry:  map[string]any{"id": float64(1), "title": "Root"},
		})
		require.NoError(t, err)
		require.Len(t, provider.calls, 1)
		assert.Equal(t, "create", provider.calls[0].op)
	})

	t.Run("update of a published entry re-indexes it", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		syncer := newTestSyncer(t, &stubClient{}, provider, postConfig())

		err := syncer.Apply(context.Background(), search.LifecycleEvent{
			Action: search.ActionUpdate,
			Model:  "post",
			Entry:  map[string]any{"id": float64(1), "publishedAt": "2023-04-01T10:30:00.000Z"},
		})
		require.NoError(t, err)
		require.Len(t, provider.calls, 1)
		assert.Equal(t, "create", provider.calls[0].op)
	})

	t.Run("unpublishing update removes the entry", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		syncer := newTestSyncer(t, &stubClient{}, provider, postConfig())

		err := syncer.Apply(context.Background(), search.LifecycleEvent{
			Action: search.ActionUpdate,
			Model:  "post",
			Entry:  map[string]any{"id": float64(1), "publishedAt": nil},
		})
		require.NoError(t, err)
		require.Len(t, provider.calls, 1)
		assert.Equal(t, "delete", provider.calls[0].op)
		assert.Equal(t, "post-1", provider.calls[0].objectID)
	})

	t.Run("delete removes the entry", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		syncer := newTestSyncer(t, &stubClient{}, provider, postConfig())

		err := syncer.Apply(context.Background(), search.LifecycleEvent{
			Action: search.ActionDelete,
			Model:  "post",
			Entry:  map[string]any{"id": float64(1)},
		})
		require.NoError(t, err)
		require.Len(t, provider.calls, 1)
		assert.Equal(t, "delete", provider.calls[0].op)
	})

	t.Run("unconfigured model fails", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		syncer := newTestSyncer(t, &stubClient{}, provider, postConfig())

		err := syncer.Apply(context.Background(), search.LifecycleEvent{
			Action: search.ActionCreate,
			Model:  "ghost",
			Entry:  map[string]any{"id": float64(1)},
		})
		require.ErrorIs(t, err, search.ErrUnknownSearchConfig)
		assert.Empty(t, provider.calls)
	})

	t.Run("unknown action fails", func(t *testing.T) {
		t.Parallel()

		provider := &MockProvider{}
		syncer := newTestSyncer(t, &stubClient{}, provider, postConfig())

		err := syncer.Apply(context.Background(), search.LifecycleEvent{
			Action: "publish",
			Model:  "post",
			Entry:  map[string]any{"id": float64(1)},
		})
		require.Error(t, err)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestSyncer_Rebuild(t *testing.T) {
	t.Parallel()

	config := search.Config{
		Prefix: "dev_",
		ContentTypes: []search.ContentTypeConfig{
			{Name: "post", IDPrefix: "post-", Fields: []string{"title"}},
			{Name: "page"},
		},
	}

	t.Run("rebuilds every configured type", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{entities: map[string][]strapi.Entity{
			"post": {
				{"id": float64(1), "title": "Root", "secret": "x"},
				{"id": float64(2), "title": "Node", "secret": "y"},
			},
			"page": {
				{"id": float64(9), "headline": "Welcome"},
			},
		}}
		provider := &MockProvider{}
		syncer := newTestSyncer(t, client, provider, config)

		err := syncer.Rebuild(context.Background(), nil, nil, strapi.TraversalOptions{})
		require.NoError(t, err)

		assert.Equal(t, []string{"post", "page"}, client.fetched)

		// Per type: clear, then createMany.
		require.Len(t, provider.calls, 4)
		assert.Equal(t, "clear", provider.calls[0].op)
		assert.Equal(t, "dev_post", provider.calls[0].index)
		assert.Equal(t, "createMany", provider.calls[1].op)
		require.Len(t, provider.calls[1].records, 2)
		assert.Equal(t, "post-1", provider.calls[1].records[0].ObjectID())
		assert.Equal(t, "Root", provider.calls[1].records[0]["title"])
		assert.NotContains(t, provider.calls[1].records[0], "secret")

		assert.Equal(t, "clear", provider.calls[2].op)
		assert.Equal(t, "dev_page", provider.calls[2].index)
		assert.Equal(t, "createMany", provider.calls[3].op)
	})

	t.Run("rebuilds only the named types", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{entities: map[string][]strapi.Entity{
			"page": {{"id": float64(9)}},
		}}
		provider := &MockProvider{}
		syncer := newTestSyncer(t, client, provider, config)

		err := syncer.Rebuild(context.Background(), []string{"page"}, nil, strapi.TraversalOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"page"}, client.fetched)
	})

	t.Run("empty name list rebuilds nothing", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{}
		provider := &MockProvider{}
		syncer := newTestSyncer(t, client, provider, config)

		err := syncer.Rebuild(context.Background(), []string{}, nil, strapi.TraversalOptions{})
		require.NoError(t, err)
		assert.Empty(t, client.fetched)
		assert.Empty(t, provider.calls)
	})

	t.Run("empty collection clears without indexing", func(t *testing.T) {
		t.Parallel()

		client := &stubClient{}
		provider := &MockProvider{}
		syncer := newTestSyncer(t, client, provider, config)

		err := syncer.Rebuild(context.Background(), []string{"post"}, nil, strapi.TraversalOptions{})
		require.NoError(t, err)
		require.Len(t, provider.calls, 1)
		assert.Equal(t, "clear", provider.calls[0].op)
	})
}
