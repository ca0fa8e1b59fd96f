package strapi

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Params holds the query parameters of a list or fetch request. The zero
// value encodes to an empty string. Filters and Populate accept arbitrary
// nested maps and slices mirroring the API's filter grammar; they encode to
// bracket-style keys (filters[$or][0][title][$eq]=Root).
type Params struct {
	Sort             []string
	Filters          any
	Populate         any
	Fields           []string
	Pagination       PaginationRequest
	PublicationState string
	Locale           []string
}

// NewParams creates an empty parameter set.
func NewParams() *Params {
	return &Params{}
}

// WithSort adds sort expressions ("title", "createdAt:desc").
func (p *Params) WithSort(fields ...string) *Params {
	p.Sort = append(p.Sort, fields...)

	return p
}

// WithFilters sets the filter tree.
func (p *Params) WithFilters(filters any) *Params {
	p.Filters = filters

	return p
}

// WithPopulate sets the relation population selector: "*", a list of
// relation names, or a nested map.
func (p *Params) WithPopulate(populate any) *Params {
	p.Populate = populate

	return p
}

// WithFields restricts the returned fields.
func (p *Params) WithFields(fields ...string) *Params {
	p.Fields = append(p.Fields, fields...)

	return p
}

// WithPagination sets the pagination request (page-based or offset-based).
func (p *Params) WithPagination(req PaginationRequest) *Params {
	p.Pagination = req

	return p
}

// WithPublicationState selects "live" or "preview" entries.
func (p *Params) WithPublicationState(state string) *Params {
	p.PublicationState = state

	return p
}

// WithLocale adds locale selectors.
func (p *Params) WithLocale(locales ...string) *Params {
	p.Locale = append(p.Locale, locales...)

	return p
}

// PaginationRequest is a page-based or offset-based pagination selector.
type PaginationRequest interface {
	paginationPairs() []pair
}

// PageRequest selects a page by number.
type PageRequest struct {
	Page      int
	PageSize  int
	WithCount *bool
}

func (r PageRequest) paginationPairs() []pair {
	pairs := []pair{}
	if r.Page > 0 {
		pairs = append(pairs, pair{"pagination[page]", strconv.Itoa(r.Page)})
	}

	if r.PageSize > 0 {
		pairs = append(pairs, pair{"pagination[pageSize]", strconv.Itoa(r.PageSize)})
	}

	if r.WithCount != nil {
		pairs = append(pairs, pair{"pagination[withCount]", strconv.FormatBool(*r.WithCount)})
	}

	return pairs
}

// OffsetRequest selects a window by offset. Start is always emitted, zero
// included: the traversal engine distinguishes "first window" from "no
// pagination requested".
type OffsetRequest struct {
	Start     int
	Limit     int
	WithCount *bool
}

func (r OffsetRequest) paginationPairs() []pair {
	pairs := []pair{{"pagination[start]", strconv.Itoa(r.Start)}}
	if r.Limit > 0 {
		pairs = append(pairs, pair{"pagination[limit]", strconv.Itoa(r.Limit)})
	}

	if r.WithCount != nil {
		pairs = append(pairs, pair{"pagination[withCount]", strconv.FormatBool(*r.WithCount)})
	}

	return pairs
}

type pair struct {
	key   string
	value string
}

// Encode renders the parameters as a query string with a leading "?", or
// "" when no parameter is set. Keys keep their bracket syntax verbatim;
// only values are escaped. Map keys are emitted in sorted order so the
// output is deterministic.
func (p *Params) Encode() string {
	if p == nil {
		return ""
	}

	pairs := p.pairs()
	if len(pairs) == 0 {
		return ""
	}

	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, kv.key+"="+escapeValue(kv.value))
	}

	return "?" + strings.Join(parts, "&")
}

func (p *Params) pairs() []pair {
	var pairs []pair

	switch len(p.Sort) {
	case 0:
	case 1:
		pairs = append(pairs, pair{"sort", p.Sort[0]})
	default:
		for i, s := range p.Sort {
			pairs = append(pairs, pair{fmt.Sprintf("sort[%d]", i), s})
		}
	}

	if p.Filters != nil {
		pairs = append(pairs, encodeTree("filters", p.Filters)...)
	}

	if p.Populate != nil {
		pairs = append(pairs, encodeTree("populate", p.Populate)...)
	}

	for i, f := range p.Fields {
		pairs = append(pairs, pair{fmt.Sprintf("fields[%d]", i), f})
	}

	if p.Pagination != nil {
		pairs = append(pairs, p.Pagination.paginationPairs()...)
	}

	if p.PublicationState != "" {
		pairs = append(pairs, pair{"publicationState", p.PublicationState})
	}

	switch len(p.Locale) {
	case 0:
	case 1:
		pairs = append(pairs, pair{"locale", p.Locale[0]})
	default:
		for i, l := range p.Locale {
			pairs = append(pairs, pair{fmt.Sprintf("locale[%d]", i), l})
		}
	}

	return pairs
}

// encodeTree flattens a nested filter/populate tree into bracket-keyed
// pairs. Maps nest as [key], slices as [index], leaves render as values.
func encodeTree(prefix string, value any) []pair {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		var pairs []pair
		for _, k := range keys {
			pairs = append(pairs, encodeTree(prefix+"["+k+"]", v[k])...)
		}

		return pairs
	case []any:
		var pairs []pair
		for i, element := range v {
			pairs = append(pairs, encodeTree(fmt.Sprintf("%s[%d]", prefix, i), element)...)
		}

		return pairs
	case []string:
		var pairs []pair
		for i, element := range v {
			pairs = append(pairs, pair{fmt.Sprintf("%s[%d]", prefix, i), element})
		}

		return pairs
	case nil:
		return nil
	default:
		if leaf, ok := leafValue(v); ok {
			return []pair{{prefix, leaf}}
		}

		return encodeReflected(prefix, v)
	}
}

// encodeReflected handles typed maps and slices that are not map[string]any
// or []any (map[string]string, []int, ...).
func encodeReflected(prefix string, value any) []pair {
	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Map:
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]any, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			k := fmt.Sprint(iter.Key().Interface())
			keys = append(keys, k)
			byKey[k] = iter.Value().Interface()
		}

		sort.Strings(keys)

		var pairs []pair
		for _, k := range keys {
			pairs = append(pairs, encodeTree(prefix+"["+k+"]", byKey[k])...)
		}

		return pairs
	case reflect.Slice, reflect.Array:
		var pairs []pair
		for i := 0; i < rv.Len(); i++ {
			pairs = append(pairs, encodeTree(fmt.Sprintf("%s[%d]", prefix, i), rv.Index(i).Interface())...)
		}

		return pairs
	default:
		return []pair{{prefix, fmt.Sprint(value)}}
	}
}

func leafValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return v.UTC().Format("2006-01-02T15:04:05.000Z"), true
	default:
		return "", false
	}
}

// escapeValue percent-encodes a value for the query string. QueryEscape
// renders spaces as "+", which bracket-key servers do not decode; they are
// rewritten to "%20".
func escapeValue(v string) string {
	return strings.ReplaceAll(url.QueryEscape(v), "+", "%20")
}
