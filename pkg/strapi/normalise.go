package strapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// DatePropertyPattern is the default pattern used to recognise date
// properties: names ending in "at", "on" or "date", case-insensitively
// (createdAt, publishedAt, expires_on, releaseDate, ...).
var DatePropertyPattern = regexp.MustCompile(`(?i)^.+(at|on|date)$`)

// isoDatePattern matches ISO-8601 timestamps carrying a timezone, with
// optional seconds and fractional seconds. Anchored: a date embedded in a
// longer string is not a date value.
var isoDatePattern = regexp.MustCompile(
	`^\d{4}-[01]\d-[0-3]\dT[0-2]\d:[0-5]\d(:[0-5]\d(\.\d+)?)?([+-][0-2]\d:[0-5]\d|Z)$`)

// defaultMaxDepth bounds relation recursion. Response trees are
// query-result-shaped and shallow; anything deeper is malformed.
const defaultMaxDepth = 32

// Normaliser converts raw response envelopes into flat entities. The zero
// configuration (NewNormaliser with no options) parses date properties
// matching DatePropertyPattern.
type Normaliser struct {
	parseDates  bool
	datePattern *regexp.Regexp
	maxDepth    int
}

// NormaliserOption configures a Normaliser.
type NormaliserOption func(*Normaliser)

// WithoutDateParsing disables date parsing wholesale: date-like strings
// pass through unchanged.
func WithoutDateParsing() NormaliserOption {
	return func(n *Normaliser) {
		n.parseDates = false
	}
}

// WithDatePattern overrides the property-name pattern used to recognise
// date fields.
func WithDatePattern(pattern *regexp.Regexp) NormaliserOption {
	return func(n *Normaliser) {
		n.datePattern = pattern
	}
}

// WithMaxDepth overrides the relation recursion bound.
func WithMaxDepth(depth int) NormaliserOption {
	return func(n *Normaliser) {
		n.maxDepth = depth
	}
}

// NewNormaliser creates a Normaliser.
func NewNormaliser(opts ...NormaliserOption) *Normaliser {
	n := &Normaliser{
		parseDates:  true,
		datePattern: DatePropertyPattern,
		maxDepth:    defaultMaxDepth,
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

var defaultNormaliser = NewNormaliser()

// NormaliseItem normalises a single-item envelope with the default
// Normaliser.
func NormaliseItem(resp *Response) (Entity, error) {
	return defaultNormaliser.Item(resp)
}

// NormaliseArray normalises an array envelope with the default Normaliser.
func NormaliseArray(resp *Response) (*Collection, error) {
	return defaultNormaliser.Array(resp)
}

// Normalise normalises an envelope with the default Normaliser,
// dispatching on the shape of data.
func Normalise(resp *Response) (any, error) {
	return defaultNormaliser.Normalise(resp)
}

// Normalise dispatches on the shape of the envelope's data: an array
// yields a *Collection, anything else an Entity.
func (n *Normaliser) Normalise(resp *Response) (any, error) {
	if isJSONArray(resp.Data) {
		return n.Array(resp)
	}

	return n.Item(resp)
}

// Item normalises a single-item envelope into a flat Entity.
func (n *Normaliser) Item(resp *Response) (Entity, error) {
	data, err := decodeData(resp.Data)
	if err != nil {
		return nil, err
	}

	item, ok := data.(map[string]any)
	if !ok {
		if data == nil {
			return nil, &NormalisationError{Reason: "response data is null"}
		}

		return nil, &NormalisationError{Reason: "response data is not an object"}
	}

	return n.item(item, "", 0)
}

// Array normalises an array envelope into a Collection, attaching the
// envelope's pagination block verbatim.
func (n *Normaliser) Array(resp *Response) (*Collection, error) {
	data, err := decodeData(resp.Data)
	if err != nil {
		return nil, err
	}

	arr, ok := data.([]any)
	if !ok {
		return nil, &NormalisationError{Reason: "response data is not an array"}
	}

	items := make([]Entity, 0, len(arr))

	for i, element := range arr {
		raw, ok := element.(map[string]any)
		if !ok {
			return nil, &NormalisationError{Path: fmt.Sprintf("[%d]", i), Reason: "item is not an object"}
		}

		entity, err := n.item(raw, fmt.Sprintf("[%d]", i), 0)
		if err != nil {
			return nil, err
		}

		items = append(items, entity)
	}

	return &Collection{Items: items, Pagination: resp.Meta.Pagination}, nil
}

// item normalises one raw item: fields come from the attributes wrapper
// when present, otherwise from the item itself minus id and meta.
func (n *Normaliser) item(raw map[string]any, path string, depth int) (Entity, error) {
	if depth > n.maxDepth {
		return nil, &NormalisationError{Path: path, Reason: fmt.Sprintf("relation depth exceeds %d", n.maxDepth)}
	}

	id, ok := raw["id"]
	if !ok {
		return nil, &NormalisationError{Path: path, Reason: "item has no id"}
	}

	out := Entity{"id": id}
	if meta, ok := raw["meta"]; ok {
		out["meta"] = meta
	}

	source := raw

	wrapped := false
	if attrs, ok := raw["attributes"].(map[string]any); ok {
		source = attrs
		wrapped = true
	}

	for key, value := range source {
		if !wrapped && (key == "id" || key == "meta") {
			continue
		}

		normalised, err := n.field(key, value, childPath(path, key), depth)
		if err != nil {
			return nil, err
		}

		out[key] = normalised
	}

	return out, nil
}

// field normalises one field value: relation wrappers are unwrapped and
// recursed into, date-looking strings on date-named properties are parsed,
// everything else passes through unchanged.
func (n *Normaliser) field(key string, value any, path string, depth int) (any, error) {
	if wrapper, ok := value.(map[string]any); ok {
		if data, isRelation := wrapper["data"]; isRelation {
			return n.relation(data, path, depth)
		}
	}

	if n.parseDates && n.datePattern.MatchString(key) {
		if s, ok := value.(string); ok && isoDatePattern.MatchString(s) {
			t, err := parseISODate(s)
			if err == nil {
				return t, nil
			}
		}
	}

	return value, nil
}

func (n *Normaliser) relation(data any, path string, depth int) (any, error) {
	switch d := data.(type) {
	case nil:
		return nil, nil
	case []any:
		related := make([]Entity, 0, len(d))

		for i, element := range d {
			raw, ok := element.(map[string]any)
			if !ok {
				return nil, &NormalisationError{
					Path:   fmt.Sprintf("%s[%d]", path, i),
					Reason: "related item is not an object",
				}
			}

			entity, err := n.item(raw, fmt.Sprintf("%s[%d]", path, i), depth+1)
			if err != nil {
				return nil, err
			}

			related = append(related, entity)
		}

		return related, nil
	case map[string]any:
		return n.item(d, path, depth+1)
	default:
		return nil, &NormalisationError{Path: path, Reason: "relation data is not an object or array"}
	}
}

func decodeData(raw json.RawMessage) (any, error) {
	var data any

	err := json.Unmarshal(raw, &data)
	if err != nil {
		return nil, &NormalisationError{Reason: fmt.Sprintf("decoding response data: %v", err)}
	}

	return data, nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")

	return len(trimmed) > 0 && trimmed[0] == '['
}

func childPath(parent, key string) string {
	if parent == "" {
		return key
	}

	return parent + "." + key
}

var isoDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

func parseISODate(s string) (time.Time, error) {
	var lastErr error

	for _, layout := range isoDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}

		lastErr = err
	}

	return time.Time{}, fmt.Errorf("parsing date value: %w", lastErr)
}
