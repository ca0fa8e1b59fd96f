package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cmsflow-io/strapi/internal/constants"
	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// renderEntity writes one entity in the selected output format.
func renderEntity(entity strapi.Entity) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", constants.JSONIndent)

		return encoder.Encode(entity)
	case OutputFormatYAML:
		return yaml.NewEncoder(os.Stdout).Encode(map[string]any(entity))
	default:
		table := tablewriter.NewWriter(os.Stdout)
		table.Header("Field", "Value")

		for _, key := range sortedKeys(entity) {
			_ = table.Append(key, cellValue(entity[key]))
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// renderEntities writes a list of entities. Table output uses the union of
// the entities' fields as columns, id first.
func renderEntities(entities []strapi.Entity, pagination *strapi.Pagination) error {
	switch viper.GetString("output") {
	case OutputFormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", constants.JSONIndent)

		return encoder.Encode(entities)
	case OutputFormatYAML:
		plain := make([]map[string]any, 0, len(entities))
		for _, entity := range entities {
			plain = append(plain, map[string]any(entity))
		}

		return yaml.NewEncoder(os.Stdout).Encode(plain)
	default:
		columns := unionColumns(entities)

		header := make([]any, 0, len(columns))
		for _, column := range columns {
			header = append(header, column)
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header(header...)

		for _, entity := range entities {
			row := make([]any, 0, len(columns))
			for _, column := range columns {
				row = append(row, cellValue(entity[column]))
			}

			_ = table.Append(row...)
		}

		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		if total, ok := pagination.TotalCount(); ok {
			fmt.Printf("\n%d of %d entries\n", len(entities), total)
		}

		return nil
	}
}

func sortedKeys(entity strapi.Entity) []string {
	keys := make([]string, 0, len(entity))
	for key := range entity {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// unionColumns collects every field name present across the entities, with
// "id" pinned to the first column.
func unionColumns(entities []strapi.Entity) []string {
	seen := map[string]bool{"id": true}
	columns := []string{"id"}

	for _, entity := range entities {
		for _, key := range sortedKeys(entity) {
			if !seen[key] {
				seen[key] = true

				columns = append(columns, key)
			}
		}
	}

	return columns
}

// cellValue renders a field for table display, truncating long values and
// summarising nested structures.
func cellValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case strapi.Entity:
		return fmt.Sprintf("{%s}", strapi.FormatID(v.ID()))
	case []strapi.Entity:
		return fmt.Sprintf("[%d related]", len(v))
	case map[string]any:
		return fmt.Sprintf("{%d fields}", len(v))
	case []any:
		return fmt.Sprintf("[%d items]", len(v))
	}

	s := fmt.Sprint(value)
	if len(s) > constants.MaxTableCellWidth {
		return s[:constants.MaxTableCellWidth-3] + "..."
	}

	return s
}
