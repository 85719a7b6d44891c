package outfmt

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", Text, false},
		{"text", Text, false},
		{"json", JSON, false},
		{"jsonl", JSONL, false},
		{"ndjson", JSONL, false},
		{"yaml", YAML, false},
		{"yml", YAML, false},
		{"csv", Text, true},
		{"Json", Text, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid output format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, mode)
			if tt.input != "ndjson" && tt.input != "yml" && tt.input != "" {
				assert.Equal(t, tt.input, mode.String())
			}
		})
	}
}

func TestModeContext(t *testing.T) {
	tests := []struct {
		mode                   Mode
		structured, lines, yml bool
	}{
		{Text, false, false, false},
		{JSON, true, false, false},
		{JSONL, true, true, false},
		{YAML, true, false, true},
	}

	assert.Equal(t, Text, ModeFromContext(context.Background()))
	for _, tt := range tests {
		ctx := WithMode(context.Background(), tt.mode)
		assert.Equal(t, tt.mode, ModeFromContext(ctx))
		assert.Equal(t, tt.structured, IsJSON(ctx), "IsJSON(%s)", tt.mode)
		assert.Equal(t, tt.lines, IsJSONL(ctx), "IsJSONL(%s)", tt.mode)
		assert.Equal(t, tt.yml, IsYAML(ctx), "IsYAML(%s)", tt.mode)
	}
}

func TestWriteJSON_Product(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testProduct{ID: "7", Name: "Mug", Price: 8.5}))
	assert.Equal(t, "{\n  \"id\": \"7\",\n  \"name\": \"Mug\",\n  \"price\": 8.5\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSONMaybeCompact(&buf, testProduct{ID: "7", Name: "Mug", Price: 8.5}, true))
	assert.Equal(t, "{\"id\":\"7\",\"name\":\"Mug\",\"price\":8.5}\n", buf.String())
}

func TestWriteYAML_ProductPage(t *testing.T) {
	page := productPage{Items: sampleProducts()[:1], MetaData: emptyMeta()}

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, page))

	want := `items:
- id: "41"
  name: Canvas tote
  price: 12.5
  tags:
  - bags
metaData:
  currentPage: 1
  itemsPerPage: 20
  totalItems: 0
  totalPages: 0
`
	assert.Equal(t, want, buf.String())
}
