package strapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsflow-io/strapi/pkg/strapi"
)

func TestPagination_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("page scheme", func(t *testing.T) {
		t.Parallel()

		var pagination strapi.Pagination

		err := json.Unmarshal([]byte(`{"page": 2, "pageSize": 25, "pageCount": 4, "total": 100}`), &pagination)
		require.NoError(t, err)
		require.NotNil(t, pagination.Page)
		assert.Nil(t, pagination.Offset)
		assert.Equal(t, 2, pagination.Page.Page)
		assert.Equal(t, 25, pagination.Page.PageSize)

		total, ok := pagination.TotalCount()
		require.True(t, ok)
		assert.Equal(t, 100, total)
	})

	t.Run("offset scheme", func(t *testing.T) {
		t.Parallel()

		var pagination strapi.Pagination

		err := json.Unmarshal([]byte(`{"start": 50, "limit": 25, "total": 60}`), &pagination)
		require.NoError(t, err)
		require.NotNil(t, pagination.Offset)
		assert.Nil(t, pagination.Page)
		assert.Equal(t, 50, pagination.Offset.Start)
		assert.Equal(t, 25, pagination.Offset.Limit)
	})

	t.Run("offset scheme without total", func(t *testing.T) {
		t.Parallel()

		var pagination strapi.Pagination

		err := json.Unmarshal([]byte(`{"start": 0, "limit": 25}`), &pagination)
		require.NoError(t, err)
		require.NotNil(t, pagination.Offset)

		_, ok := pagination.TotalCount()
		assert.False(t, ok)
	})
}

func TestPagination_TotalCount_NilSafe(t *testing.T) {
	t.Parallel()

	var pagination *strapi.Pagination

	total, ok := pagination.TotalCount()
	assert.False(t, ok)
	assert.Zero(t, total)
}

func TestFormatID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   any
		want string
	}{
		{name: "numeric id from JSON", id: float64(42), want: "42"},
		{name: "large numeric id keeps digits", id: float64(9007199254740991), want: "9007199254740991"},
		{name: "document id", id: "clkgylmcc000008lcdd868feh", want: "clkgylmcc000008lcdd868feh"},
		{name: "int", id: 7, want: "7"},
		{name: "int64", id: int64(8), want: "8"},
		{name: "json number", id: json.Number("12"), want: "12"},
		{name: "nil", id: nil, want: ""},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, strapi.FormatID(testCase.id))
		})
	}
}

func TestEntityAccessors(t *testing.T) {
	t.Parallel()

	entity := strapi.Entity{"id": float64(3), "title": "Root", "rating": 4.5}

	assert.Equal(t, "3", entity.IDString())
	assert.Equal(t, "Root", entity.String("title"))
	assert.Empty(t, entity.String("rating"), "non-string fields read as empty")

	_, ok := entity.Time("title")
	assert.False(t, ok)
}

func TestCollection_FirstAndLen(t *testing.T) {
	t.Parallel()

	var empty *strapi.Collection

	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.First())

	collection := &strapi.Collection{Items: []strapi.Entity{{"id": float64(1)}}}
	assert.Equal(t, 1, collection.Len())
	require.NotNil(t, collection.First())
}
