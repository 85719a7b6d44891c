package outfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryContext(t *testing.T) {
	assert.Empty(t, GetQuery(context.Background()))

	ctx := WithQuery(context.Background(), ".items[].sku")
	assert.Equal(t, ".items[].sku", GetQuery(ctx))
}

func TestCompactContext(t *testing.T) {
	assert.False(t, IsCompact(context.Background()))
	assert.True(t, IsCompact(WithCompact(context.Background(), true)))
	assert.False(t, IsCompact(WithCompact(context.Background(), false)))
}

func TestApplyQuery_ProductPage(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no query keeps the page",
			query: "",
			want:  `{"items":[{"id":"41","name":"Canvas tote","price":12.5,"tags":["bags"]},{"id":"42","name":"Trail runner","price":59.9,"tags":["shoes","sale"]}],"metaData":{"currentPage":2,"totalPages":5,"itemsPerPage":2,"totalItems":9}}`,
		},
		{
			name:  "selected fields",
			query: `.items |= map({"id": .["id"], "name": .["name"]})`,
			want:  `{"items":[{"id":"41","name":"Canvas tote"},{"id":"42","name":"Trail runner"}],"metaData":{"currentPage":2,"totalPages":5,"itemsPerPage":2,"totalItems":9}}`,
		},
		{
			name:  "items only",
			query: ".items // .",
			want:  `[{"id":"41","name":"Canvas tote","price":12.5,"tags":["bags"]},{"id":"42","name":"Trail runner","price":59.9,"tags":["shoes","sale"]}]`,
		},
		{
			name:  "page metadata",
			query: ".metaData | {page: .currentPage, of: .totalPages}",
			want:  `{"page":2,"of":5}`,
		},
		{
			name:  "filter on sale items",
			query: `[.items[] | select(.tags | index("sale")) | .id]`,
			want:  `["42"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyQuery(samplePage(), tt.query)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, marshalString(t, got))
		})
	}
}

func TestApplyQuery_BareSliceIsWrapped(t *testing.T) {
	got, err := ApplyQuery(sampleProducts(), ".items | length")
	require.NoError(t, err)
	assert.EqualValues(t, 2, got)

	got, err = ApplyQuery([]testProduct(nil), ".items")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, marshalString(t, got))
}

func TestApplyQuery_ItemsOnlyOnEntity(t *testing.T) {
	// ".items // ." falls back to the whole value when there is no list.
	product := testProduct{ID: "7", Name: "Mug", Price: 8}
	got, err := ApplyQuery(product, ".items // .")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"7","name":"Mug","price":8}`, marshalString(t, got))
}

func TestApplyQuery_InvalidQuery(t *testing.T) {
	_, err := ApplyQuery(samplePage(), ".items[[[")
	assert.Error(t, err)
}

func TestWriteJSONFiltered(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		compact   bool
		want      string
		multiline bool
	}{
		{name: "compact page", compact: true, want: `{"items":[],"metaData":{"currentPage":1,"totalPages":0,"itemsPerPage":20,"totalItems":0}}`},
		{name: "indented page", want: `{"items":[],"metaData":{"currentPage":1,"totalPages":0,"itemsPerPage":20,"totalItems":0}}`, multiline: true},
		{name: "page size", query: ".metaData.itemsPerPage", compact: true, want: `20`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := productPage{Items: []testProduct{}, MetaData: emptyMeta()}

			var buf bytes.Buffer
			require.NoError(t, WriteJSONFiltered(&buf, page, tt.query, tt.compact))

			out := strings.TrimSpace(buf.String())
			assert.JSONEq(t, tt.want, out)
			assert.Equal(t, tt.multiline, strings.Contains(out, "\n  "))
		})
	}
}

func TestWriteJSONFiltered_RawMessageUnchanged(t *testing.T) {
	raw := json.RawMessage(`{"items":[{"sku":"TOTE-1"}],"metaData":{"currentPage":1}}`)
	original := append([]byte(nil), raw...)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONFiltered(&buf, raw, ".items[0].sku", false))

	assert.Equal(t, `"TOTE-1"`, strings.TrimSpace(buf.String()))
	assert.Equal(t, original, []byte(raw))
}
