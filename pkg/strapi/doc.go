// Package strapi defines the public surface of the Strapi content API
// client: the Client interface, normalised entity and collection types, the
// query parameter builder, the response normaliser, and the pagination
// traversal engine.
//
// Create clients with the strapiclient package:
//
//	client, err := strapiclient.New(&strapi.Config{
//		BaseURL: "https://cms.example.com",
//		ContentTypes: []strapi.ContentTypeSpec{
//			{Name: "restaurant"},
//			{Name: "homepage", Path: "homepage"},
//		},
//	})
//
// Entries come back as flat Entity maps: the v4 {id, attributes} wrapper is
// flattened, {data: ...} relation wrappers are unwrapped recursively, and
// ISO-8601 strings on date-named properties are parsed to time.Time.
package strapi
