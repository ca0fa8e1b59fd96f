// Package strapiclient creates strapi.Client instances.
//
// Basic usage:
//
//	client, err := strapiclient.New(&strapi.Config{
//		BaseURL: "https://cms.example.com",
//		Token:   os.Getenv("STRAPI_TOKEN"),
//		ContentTypes: []strapi.ContentTypeSpec{
//			{Name: "restaurant"},
//			{Name: "category"},
//			{Name: "homepage", Path: "homepage"},
//		},
//	})
//	if err != nil {
//		return err
//	}
//
//	restaurants, err := client.FetchAll(ctx, "restaurant", nil, strapi.TraversalOptions{
//		Timeout: 30 * time.Second,
//	})
package strapiclient
