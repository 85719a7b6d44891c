package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// PaginationHeader is the response header some list endpoints use to report
// page metadata as a JSON object.
const PaginationHeader = "Pagination"

// PageMetaData is the canonical pagination record for one page of results.
type PageMetaData struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	ItemsPerPage int `json:"itemsPerPage"`
	TotalItems   int `json:"totalItems"`
}

// HasNext reports whether a page after CurrentPage is known to exist.
func (m PageMetaData) HasNext() bool {
	return m.TotalPages > 0 && m.CurrentPage < m.TotalPages
}

// PaginatedResult is one page of decoded items with its metadata.
type PaginatedResult[T any] struct {
	Items    []T          `json:"items"`
	MetaData PageMetaData `json:"metaData"`
}

// Synonym chains, tried in order for each logical field.
var (
	currentPageKeys  = []string{"currentPage", "pageIndex", "pageNumber"}
	totalPagesKeys   = []string{"totalPages"}
	itemsPerPageKeys = []string{"itemsPerPage", "pageSize"}
	totalItemsKeys   = []string{"totalItems", "totalCount"}
)

// fieldSource looks up a top-level integer field by name.
type fieldSource interface {
	intField(key string) (int, bool)
}

type objectSource map[string]any

func (s objectSource) intField(key string) (int, bool) {
	v, ok := s[key]
	if !ok || v == nil {
		return 0, false
	}
	return intValue(v)
}

type gjsonSource struct{ gjson.Result }

func (s gjsonSource) intField(key string) (int, bool) {
	r := s.Get(gjson.Escape(key))
	switch r.Type {
	case gjson.Number:
		return int(r.Int()), true
	case gjson.String:
		return intValue(r.Str)
	default:
		return 0, false
	}
}

// Reconcile produces the page metadata for a list response.
//
// A parseable "pagination" header (looked up case-insensitively) always
// wins. Otherwise the top-level fields of body are used. Missing page
// identity falls back to the requested page and size, missing counts to 0.
// Reconcile never fails.
func Reconcile(body any, header http.Header, requestedPage, requestedSize int) PageMetaData {
	if src, ok := headerSource(header); ok {
		return buildMetaData(src, requestedPage, requestedSize)
	}
	obj, _ := asObject(body)
	return buildMetaData(objectSource(obj), requestedPage, requestedSize)
}

func headerSource(header http.Header) (fieldSource, bool) {
	raw, ok := lookupHeader(header, PaginationHeader)
	if !ok {
		return nil, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || !gjson.Valid(raw) {
		return nil, false
	}
	parsed := gjson.Parse(raw)
	if !parsed.IsObject() {
		// Parsed but carries no fields: requested page and size, zero totals.
		return objectSource(nil), true
	}
	return gjsonSource{parsed}, true
}

func lookupHeader(header http.Header, name string) (string, bool) {
	if header == nil {
		return "", false
	}
	if values, ok := header[http.CanonicalHeaderKey(name)]; ok && len(values) > 0 {
		return values[0], true
	}
	for key, values := range header {
		if strings.EqualFold(key, name) && len(values) > 0 {
			return values[0], true
		}
	}
	return "", false
}

func buildMetaData(src fieldSource, requestedPage, requestedSize int) PageMetaData {
	meta := PageMetaData{
		CurrentPage:  firstInt(src, currentPageKeys, requestedPage),
		TotalPages:   firstInt(src, totalPagesKeys, 0),
		ItemsPerPage: firstInt(src, itemsPerPageKeys, requestedSize),
		TotalItems:   firstInt(src, totalItemsKeys, 0),
	}
	if meta.CurrentPage < 1 {
		meta.CurrentPage = max(requestedPage, 1)
	}
	if meta.ItemsPerPage < 1 {
		meta.ItemsPerPage = max(requestedSize, 1)
	}
	meta.TotalPages = max(meta.TotalPages, 0)
	meta.TotalItems = max(meta.TotalItems, 0)
	return meta
}

func firstInt(src fieldSource, keys []string, fallback int) int {
	for _, key := range keys {
		if v, ok := src.intField(key); ok {
			return v
		}
	}
	return fallback
}

// EncodePaginationHeader renders meta in the form Reconcile reads back.
func EncodePaginationHeader(meta PageMetaData) string {
	return `{"currentPage":` + strconv.Itoa(meta.CurrentPage) +
		`,"totalPages":` + strconv.Itoa(meta.TotalPages) +
		`,"itemsPerPage":` + strconv.Itoa(meta.ItemsPerPage) +
		`,"totalItems":` + strconv.Itoa(meta.TotalItems) + `}`
}
