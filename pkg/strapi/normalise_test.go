package strapi_test

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsflow-io/strapi/pkg/strapi"
)

func envelope(t *testing.T, data string) *strapi.Response {
	t.Helper()

	var resp strapi.Response

	err := json.Unmarshal([]byte(`{"data":`+data+`}`), &resp)
	require.NoError(t, err)

	return &resp
}

func TestNormaliseItem_WrappedAttributes(t *testing.T) {
	t.Parallel()

	resp := envelope(t, `{
		"id": 1,
		"attributes": {
			"title": "Root",
			"rating": 4.5,
			"createdAt": "2023-04-01T10:30:00.000Z"
		}
	}`)

	entity, err := strapi.NormaliseItem(resp)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, entity["id"], 0)
	assert.Equal(t, "Root", entity["title"])
	assert.InDelta(t, 4.5, entity["rating"], 0)

	created, ok := entity.Time("createdAt")
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 4, 1, 10, 30, 0, 0, time.UTC), created.UTC())
}

func TestNormaliseItem_FlatItem(t *testing.T) {
	t.Parallel()

	resp := envelope(t, `{
		"id": "doc-abc",
		"title": "Flat",
		"publishedAt": null
	}`)

	entity, err := strapi.NormaliseItem(resp)
	require.NoError(t, err)

	assert.Equal(t, "doc-abc", entity["id"])
	assert.Equal(t, "Flat", entity["title"])
	assert.Nil(t, entity["publishedAt"])
}

func TestNormaliseItem_MissingID(t *testing.T) {
	t.Parallel()

	resp := envelope(t, `{"attributes": {"title": "orphan"}}`)

	_, err := strapi.NormaliseItem(resp)
	require.Error(t, err)

	normErr := &strapi.NormalisationError{}
	require.ErrorAs(t, err, &normErr)
	assert.Contains(t, normErr.Reason, "no id")
}

func TestNormaliseItem_NullData(t *testing.T) {
	t.Parallel()

	resp := envelope(t, `null`)

	_, err := strapi.NormaliseItem(resp)
	require.Error(t, err)

	normErr := &strapi.NormalisationError{}
	require.ErrorAs(t, err, &normErr)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNormaliseItem_Relations(t *testing.T) {
	t.Parallel()

	t.Run("null relation", func(t *testing.T) {
		t.Parallel()

		resp := envelope(t, `{
			"id": 1,
			"attributes": {
				"title": "Root",
				"parent": {"data": null}
			}
		}`)

		entity, err := strapi.NormaliseItem(resp)
		require.NoError(t, err)
		require.Contains(t, entity, "parent")
		assert.Nil(t, entity["parent"])
	})

	t.Run("single relation", func(t *testing.T) {
		t.Parallel()

		resp := envelope(t, `{
			"id": 1,
			"attributes": {
				"title": "Node",
				"parent": {
					"data": {
						"id": 2,
						"attributes": {"title": "Root", "updatedAt": "2023-04-02T08:00:00.000Z"}
					}
				}
			}
		}`)

		entity, err := strapi.NormaliseItem(resp)
		require.NoError(t, err)

		parent, ok := entity["parent"].(strapi.Entity)
		require.True(t, ok)
		assert.InDelta(t, 2.0, parent["id"], 0)
		assert.Equal(t, "Root", parent["title"])

		_, ok = parent.Time("updatedAt")
		assert.True(t, ok, "nested date fields should be parsed")
	})

	t.Run("many relation", func(t *testing.T) {
		t.Parallel()

		resp := envelope(t, `{
			"id": 1,
			"attributes": {
				"title": "Root",
				"children": {
					"data": [
						{"id": 2, "attributes": {"title": "Node"}},
						{"id": 3, "attributes": {"title": "Leaf"}}
					]
				}
			}
		}`)

		entity, err := strapi.NormaliseItem(resp)
		require.NoError(t, err)

		children, ok := entity["children"].([]strapi.Entity)
		require.True(t, ok)
		require.Len(t, children, 2)
		assert.Equal(t, "Node", children[0]["title"])
		assert.Equal(t, "Leaf", children[1]["title"])
	})

	t.Run("relation item without id", func(t *testing.T) {
		t.Parallel()

		resp := envelope(t, `{
			"id": 1,
			"attributes": {
				"parent": {"data": {"attributes": {"title": "broken"}}}
			}
		}`)

		_, err := strapi.NormaliseItem(resp)
		require.Error(t, err)

		normErr := &strapi.NormalisationError{}
		require.ErrorAs(t, err, &normErr)
		assert.Contains(t, normErr.Path, "parent")
	})

	t.Run("plain object without data key is not a relation", func(t *testing.T) {
		t.Parallel()

		resp := envelope(t, `{
			"id": 1,
			"attributes": {
				"seo": {"description": "kept as-is"}
			}
		}`)

		entity, err := strapi.NormaliseItem(resp)
		require.NoError(t, err)

		seo, ok := entity["seo"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "kept as-is", seo["description"])
	})
}

func TestNormalise_DateHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		field      string
		value      string
		wantParsed bool
	}{
		{name: "createdAt parses", field: "createdAt", value: "2023-04-01T10:30:00.000Z", wantParsed: true},
		{name: "publishedOn parses", field: "publishedOn", value: "2023-04-01T10:30:00Z", wantParsed: true},
		{name: "releaseDate parses", field: "releaseDate", value: "2023-04-01T10:30+02:00", wantParsed: true},
		{name: "title never parses", field: "title", value: "2023-04-01T10:30:00.000Z", wantParsed: false},
		{name: "non-ISO value passes through", field: "createdAt", value: "yesterday", wantParsed: false},
		{name: "embedded date passes through", field: "createdAt", value: "on 2023-04-01T10:30:00Z sharp", wantParsed: false},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			raw, err := json.Marshal(map[string]any{
				"id":         1,
				"attributes": map[string]any{testCase.field: testCase.value},
			})
			require.NoError(t, err)

			entity, err := strapi.NormaliseItem(&strapi.Response{Data: raw})
			require.NoError(t, err)

			_, parsed := entity[testCase.field].(time.Time)
			assert.Equal(t, testCase.wantParsed, parsed)

			if !testCase.wantParsed {
				assert.Equal(t, testCase.value, entity[testCase.field])
			}
		})
	}
}

func TestNormaliser_Options(t *testing.T) {
	t.Parallel()

	t.Run("date parsing disabled", func(t *testing.T) {
		t.Parallel()

		normaliser := strapi.NewNormaliser(strapi.WithoutDateParsing())
		resp := envelope(t, `{"id": 1, "attributes": {"createdAt": "2023-04-01T10:30:00.000Z"}}`)

		entity, err := normaliser.Item(resp)
		require.NoError(t, err)
		assert.Equal(t, "2023-04-01T10:30:00.000Z", entity["createdAt"])
	})

	t.Run("custom date pattern", func(t *testing.T) {
		t.Parallel()

		normaliser := strapi.NewNormaliser(strapi.WithDatePattern(regexp.MustCompile(`^when$`)))
		resp := envelope(t, `{
			"id": 1,
			"attributes": {
				"when": "2023-04-01T10:30:00.000Z",
				"createdAt": "2023-04-01T10:30:00.000Z"
			}
		}`)

		entity, err := normaliser.Item(resp)
		require.NoError(t, err)

		_, whenParsed := entity["when"].(time.Time)
		assert.True(t, whenParsed)

		_, createdParsed := entity["createdAt"].(time.Time)
		assert.False(t, createdParsed)
	})
}

func TestNormaliseArray(t *testing.T) {
	t.Parallel()

	var resp strapi.Response

	err := json.Unmarshal([]byte(`{
		"data": [
			{"id": 1, "attributes": {"title": "Root"}},
			{"id": 2, "attributes": {"title": "Node"}},
			{"id": 3, "attributes": {"title": "Leaf"}}
		],
		"meta": {"pagination": {"start": 0, "limit": 3, "total": 3}}
	}`), &resp)
	require.NoError(t, err)

	collection, err := strapi.NormaliseArray(&resp)
	require.NoError(t, err)
	require.Equal(t, 3, collection.Len())
	assert.Equal(t, "Root", collection.Items[0]["title"])
	assert.Equal(t, "Leaf", collection.Items[2]["title"])

	total, ok := collection.Pagination.TotalCount()
	require.True(t, ok)
	assert.Equal(t, 3, total)
}

func TestNormaliseArray_BadItem(t *testing.T) {
	t.Parallel()

	resp := envelope(t, `[{"id": 1}, "not an object"]`)

	_, err := strapi.NormaliseArray(resp)
	require.Error(t, err)

	normErr := &strapi.NormalisationError{}
	require.ErrorAs(t, err, &normErr)
	assert.Equal(t, "[1]", normErr.Path)
}

func TestNormalise_Dispatch(t *testing.T) {
	t.Parallel()

	item, err := strapi.Normalise(envelope(t, `{"id": 1}`))
	require.NoError(t, err)
	_, isEntity := item.(strapi.Entity)
	assert.True(t, isEntity)

	arr, err := strapi.Normalise(envelope(t, `[{"id": 1}]`))
	require.NoError(t, err)
	_, isCollection := arr.(*strapi.Collection)
	assert.True(t, isCollection)
}
