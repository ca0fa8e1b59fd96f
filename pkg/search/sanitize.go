package search

import (
	"strings"

	"github.com/cmsflow-io/strapi/pkg/strapi"
)

// Sanitize turns an entity into an index record: the object id is formed
// from the id prefix, configured transforms run against a copy, then
// fields are picked (or excluded fields omitted). The record always
// carries the object id, the raw entity id, and the content-type name.
func Sanitize(cfg ContentTypeConfig, entity strapi.Entity) (Record, error) {
	if entity == nil {
		return nil, ErrNilEntity
	}

	objectID := MakeObjectID(entity.ID(), cfg.IDPrefix)

	transformed := cloneMap(map[string]any(entity))

	for path, transform := range cfg.Transforms {
		original, ok := lookupPath(transformed, path)
		if !ok || original == nil {
			continue
		}

		setPath(transformed, path, transform(cloneValue(original)))
	}

	var filtered map[string]any

	switch {
	case len(cfg.Fields) > 0:
		filtered = make(map[string]any, len(cfg.Fields))

		for _, field := range cfg.Fields {
			if value, ok := transformed[field]; ok {
				filtered[field] = value
			}
		}
	case len(cfg.ExcludedFields) > 0:
		filtered = transformed

		for _, field := range cfg.ExcludedFields {
			delete(filtered, field)
		}
	default:
		filtered = transformed
	}

	record := Record(filtered)
	record[ObjectIDKey] = objectID
	record["id"] = entity.ID()
	record["contentType"] = cfg.Name

	return record, nil
}

// cloneMap deep-copies the map and slice structure of a decoded entity.
// Scalars are shared, which is safe: transforms receive their own copy.
func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}

	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return cloneMap(value)
	case strapi.Entity:
		return cloneMap(value)
	case []any:
		out := make([]any, len(value))
		for i, element := range value {
			out[i] = cloneValue(element)
		}

		return out
	case []strapi.Entity:
		out := make([]any, len(value))
		for i, element := range value {
			out[i] = cloneMap(element)
		}

		return out
	default:
		return v
	}
}

// lookupPath resolves a dotted path ("author.name") through nested maps.
func lookupPath(m map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")

	var current any = m

	for _, segment := range segments {
		node, ok := asMap(current)
		if !ok {
			return nil, false
		}

		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// setPath writes a value at a dotted path, creating intermediate maps.
func setPath(m map[string]any, path string, value any) {
	segments := strings.Split(path, ".")

	current := m
	for _, segment := range segments[:len(segments)-1] {
		node, ok := asMap(current[segment])
		if !ok {
			node = map[string]any{}
			current[segment] = node
		}

		current = node
	}

	current[segments[len(segments)-1]] = value
}

func asMap(v any) (map[string]any, bool) {
	switch value := v.(type) {
	case map[string]any:
		return value, true
	case strapi.Entity:
		return value, true
	default:
		return nil, false
	}
}
