package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/cmsflow-io/strapi/pkg/strapi"
	"github.com/cmsflow-io/strapi/pkg/strapiclient"
)

// Output formats.
const (
	OutputFormatTable = "table"
	OutputFormatJSON  = "json"
	OutputFormatYAML  = "yaml"
)

// CreateClient builds a client from flags, environment, and the persisted
// configuration, in that order of precedence.
func CreateClient() (strapi.Client, error) {
	config := loadConfig()

	server := viper.GetString("server")
	if server == "" {
		server = config.Server
	}

	if server == "" {
		return nil, ErrServerRequired
	}

	token := viper.GetString("token")
	if token == "" {
		token = config.Token
	}

	prefix := viper.GetString("prefix")
	if prefix == "" {
		prefix = config.Prefix
	}

	clientConfig := &strapi.Config{
		BaseURL:      server,
		Prefix:       prefix,
		Token:        token,
		ContentTypes: config.ContentTypes,
	}

	if viper.GetBool("verbose") {
		clientConfig.Logger = &stderrLogger{}
		clientConfig.Debug = true
	}

	return strapiclient.New(clientConfig)
}

// stderrLogger writes structured log lines to stderr.
type stderrLogger struct{}

func (l *stderrLogger) Debug(msg string, fields map[string]any) { l.log("DEBUG", msg, fields) }
func (l *stderrLogger) Info(msg string, fields map[string]any)  { l.log("INFO", msg, fields) }
func (l *stderrLogger) Warn(msg string, fields map[string]any)  { l.log("WARN", msg, fields) }
func (l *stderrLogger) Error(msg string, fields map[string]any) { l.log("ERROR", msg, fields) }

func (l *stderrLogger) log(level, msg string, fields map[string]any) {
	var parts []string
	for key, value := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", key, value))
	}

	fmt.Fprintf(os.Stderr, "[%s] %s %s\n", level, msg, strings.Join(parts, " "))
}

// parseData parses the --data argument: inline JSON, or @file to read a
// JSON document from disk.
func parseData(raw string) (map[string]any, error) {
	if strings.HasPrefix(raw, "@") {
		content, err := os.ReadFile(strings.TrimPrefix(raw, "@")) // #nosec G304 -- user-supplied data file
		if err != nil {
			return nil, fmt.Errorf("reading data file: %w", err)
		}

		raw = string(content)
	}

	var data map[string]any

	err := json.Unmarshal([]byte(raw), &data)
	if err != nil {
		return nil, fmt.Errorf("parsing data as JSON: %w", err)
	}

	return data, nil
}

// buildParams assembles query parameters from the shared list flags.
func buildParams(sort, fields, locale []string, filter, populate, publicationState string) (*strapi.Params, error) {
	params := strapi.NewParams()

	if len(sort) > 0 {
		params.WithSort(sort...)
	}

	if len(fields) > 0 {
		params.WithFields(fields...)
	}

	if len(locale) > 0 {
		params.WithLocale(locale...)
	}

	if publicationState != "" {
		params.WithPublicationState(publicationState)
	}

	if filter != "" {
		var filters map[string]any

		err := json.Unmarshal([]byte(filter), &filters)
		if err != nil {
			return nil, fmt.Errorf("parsing --filter as JSON: %w", err)
		}

		params.WithFilters(filters)
	}

	if populate != "" {
		if strings.HasPrefix(populate, "{") || strings.HasPrefix(populate, "[") {
			var tree any

			err := json.Unmarshal([]byte(populate), &tree)
			if err != nil {
				return nil, fmt.Errorf("parsing --populate as JSON: %w", err)
			}

			params.WithPopulate(tree)
		} else if strings.Contains(populate, ",") {
			params.WithPopulate(strings.Split(populate, ","))
		} else {
			params.WithPopulate(populate)
		}
	}

	return params, nil
}
