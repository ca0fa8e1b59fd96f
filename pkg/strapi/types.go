package strapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Entity is one normalised CMS record: a flat field map carrying at least
// "id", plus scalar fields, parsed date fields, and recursively normalised
// relation fields (nil, Entity, or []Entity).
type Entity map[string]any

// ID returns the raw decoded id value. JSON numeric ids decode as float64;
// document ids decode as string.
func (e Entity) ID() any {
	return e["id"]
}

// IDString formats the entity id for use in a request path.
func (e Entity) IDString() string {
	return FormatID(e["id"])
}

// String returns the named field as a string, or "" when absent or not a
// string.
func (e Entity) String(key string) string {
	s, _ := e[key].(string)

	return s
}

// Time returns the named field as a parsed date value, reporting whether
// the field holds one.
func (e Entity) Time(key string) (time.Time, bool) {
	t, ok := e[key].(time.Time)

	return t, ok
}

// FormatID renders an id value (JSON number or string) without a decimal
// exponent.
func FormatID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Collection is one ordered page of entities together with the pagination
// block the server reported for it. A Collection is constructed fresh per
// call and never mutated after return.
type Collection struct {
	Items      []Entity
	Pagination *Pagination
}

// Len returns the number of entities in the collection.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}

	return len(c.Items)
}

// First returns the first entity, or nil when the collection is empty.
func (c *Collection) First() Entity {
	if c.Len() == 0 {
		return nil
	}

	return c.Items[0]
}

// PageInfo is page-based pagination metadata.
type PageInfo struct {
	Page      int  `json:"page"`
	PageSize  int  `json:"pageSize"`
	PageCount *int `json:"pageCount,omitempty"`
	Total     *int `json:"total,omitempty"`
}

// OffsetInfo is offset-based pagination metadata.
type OffsetInfo struct {
	Start int  `json:"start"`
	Limit int  `json:"limit"`
	Total *int `json:"total,omitempty"`
}

// Pagination is the pagination block of a list envelope. Exactly one of
// Page or Offset is set, discriminated by which keys the server sent.
type Pagination struct {
	Page   *PageInfo
	Offset *OffsetInfo
}

// TotalCount returns the reported total and whether the server reported
// one at all. Safe on a nil receiver.
func (p *Pagination) TotalCount() (int, bool) {
	switch {
	case p == nil:
		return 0, false
	case p.Page != nil && p.Page.Total != nil:
		return *p.Page.Total, true
	case p.Offset != nil && p.Offset.Total != nil:
		return *p.Offset.Total, true
	default:
		return 0, false
	}
}

// UnmarshalJSON discriminates the page-based and offset-based schemes by
// key presence.
func (p *Pagination) UnmarshalJSON(data []byte) error {
	var raw struct {
		Page      *int `json:"page"`
		PageSize  *int `json:"pageSize"`
		PageCount *int `json:"pageCount"`
		Start     *int `json:"start"`
		Limit     *int `json:"limit"`
		Total     *int `json:"total"`
	}

	err := json.Unmarshal(data, &raw)
	if err != nil {
		return fmt.Errorf("parsing pagination block: %w", err)
	}

	switch {
	case raw.Page != nil || raw.PageSize != nil:
		p.Page = &PageInfo{
			Page:      intOrZero(raw.Page),
			PageSize:  intOrZero(raw.PageSize),
			PageCount: raw.PageCount,
			Total:     raw.Total,
		}
	case raw.Start != nil || raw.Limit != nil || raw.Total != nil:
		p.Offset = &OffsetInfo{
			Start: intOrZero(raw.Start),
			Limit: intOrZero(raw.Limit),
			Total: raw.Total,
		}
	}

	return nil
}

// MarshalJSON writes back whichever scheme is set.
func (p Pagination) MarshalJSON() ([]byte, error) {
	switch {
	case p.Page != nil:
		return json.Marshal(p.Page)
	case p.Offset != nil:
		return json.Marshal(p.Offset)
	default:
		return []byte("null"), nil
	}
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}

	return *v
}

// Meta is the meta block of a response envelope.
type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Response is the raw wire envelope returned by the API: data is either a
// single item or an array of items, possibly in the legacy wrapped
// {id, attributes} form.
type Response struct {
	Data json.RawMessage `json:"data"`
	Meta Meta            `json:"meta"`
}

// AuthResponse is returned by the users-permissions local login route.
type AuthResponse struct {
	JWT  string         `json:"jwt"`
	User map[string]any `json:"user"`
}
