package strapiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsflow-io/strapi/pkg/strapi"
	"github.com/cmsflow-io/strapi/pkg/strapiclient"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := strapiclient.New(nil)
	require.ErrorIs(t, err, strapi.ErrConfigRequired)

	_, err = strapiclient.New(&strapi.Config{})
	require.ErrorIs(t, err, strapi.ErrConfigRequired)
}

func TestNew_NormalisesBaseURL(t *testing.T) {
	t.Parallel()

	config := &strapi.Config{BaseURL: "cms.example.com/"}

	_, err := strapiclient.New(config)
	require.NoError(t, err)
	assert.Equal(t, "https://cms.example.com", config.BaseURL)
}

func TestNew_EndToEnd(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/api/posts/1", request.URL.Path)
		assert.Equal(t, "Bearer api-token", request.Header.Get("Authorization"))
		_, _ = writer.Write([]byte(`{"data": {"id": 1, "attributes": {"title": "Root"}}, "meta": {}}`))
	}))
	defer server.Close()

	client, err := strapiclient.NewWithToken(server.URL, "api-token", strapi.ContentTypeSpec{Name: "post"})
	require.NoError(t, err)

	entity, err := client.FetchByID(context.Background(), "post", "1", nil)
	require.NoError(t, err)
	assert.Equal(t, "Root", entity["title"])
}

func TestNew_PropagatesRegistrationErrors(t *testing.T) {
	t.Parallel()

	_, err := strapiclient.New(&strapi.Config{
		BaseURL:      "https://cms.example.com",
		ContentTypes: []strapi.ContentTypeSpec{{Name: "post"}, {Name: "post"}},
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "duplicate"))
}
