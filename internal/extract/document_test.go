package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDocumentFactura(t *testing.T) {
	doc := ExtractDocument("FACTURA: FAC-2024-0891\nFecha: 15/09/2024\nTotal: 165.50€")

	assert.Equal(t, DocTypeFactura, doc.Type)
	require.NotNil(t, doc.Number)
	assert.Equal(t, "FAC-2024-0891", *doc.Number)
	require.NotNil(t, doc.Date)
	assert.Equal(t, "2024-09-15", *doc.Date)
	require.NotNil(t, doc.Total)
	assert.InDelta(t, 165.50, *doc.Total, 1e-9)
}

func TestExtractDocumentAlbaran(t *testing.T) {
	doc := ExtractDocument("ALBARÁN\nNº: ALB-2024-1205\n12/09/2024")

	assert.Equal(t, DocTypeAlbaran, doc.Type)
	require.NotNil(t, doc.Number)
	assert.Equal(t, "ALB-2024-1205", *doc.Number)
	require.NotNil(t, doc.Date)
	assert.Equal(t, "2024-09-12", *doc.Date)
}

func TestExtractDocumentDateFormats(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Fecha: 15/09/2024", "2024-09-15"},
		{"2024-09-15", "2024-09-15"},
		{"15-09-2024", "2024-09-15"},
		{"Fecha: 1/2/2024", "2024-02-01"},
		{"2024-2-1", "2024-02-01"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			doc := ExtractDocument(tt.text)
			require.NotNil(t, doc.Date)
			assert.Equal(t, tt.want, *doc.Date)
		})
	}
}

func TestExtractDocumentDateOrderWins(t *testing.T) {
	// Both forms present: the day-first strategy is listed first and wins.
	doc := ExtractDocument("2024-01-31\n15/09/2024")
	require.NotNil(t, doc.Date)
	assert.Equal(t, "2024-09-15", *doc.Date)
}

func TestExtractDocumentNumberFallback(t *testing.T) {
	// No marker keyword: the prefix-plus-digits fallback applies.
	doc := ExtractDocument("recibo HDS-20240891")
	require.NotNil(t, doc.Number)
	assert.Equal(t, "HDS-20240891", *doc.Number)
}

func TestExtractDocumentTotalHeuristics(t *testing.T) {
	t.Run("keyword anchored", func(t *testing.T) {
		doc := ExtractDocument("Tomate 3.80\nTOTAL 69,15")
		require.NotNil(t, doc.Total)
		assert.InDelta(t, 69.15, *doc.Total, 1e-9)
	})

	t.Run("maximum above threshold wins", func(t *testing.T) {
		doc := ExtractDocument("TOTAL: 20.90\nTOTAL: 69.15")
		require.NotNil(t, doc.Total)
		assert.InDelta(t, 69.15, *doc.Total, 1e-9)
	})

	t.Run("amounts at or below ten are ignored", func(t *testing.T) {
		doc := ExtractDocument("TOTAL: 9.50")
		assert.Nil(t, doc.Total)
	})

	t.Run("trailing amount fallback", func(t *testing.T) {
		doc := ExtractDocument("Tomate Cherry 20.90€\nRúcula 22.00€")
		require.NotNil(t, doc.Total)
		assert.InDelta(t, 22.00, *doc.Total, 1e-9)
	})
}

func TestExtractDocumentEmptyInput(t *testing.T) {
	doc := ExtractDocument("")
	assert.Equal(t, DocTypeFactura, doc.Type)
	assert.Nil(t, doc.Number)
	assert.Nil(t, doc.Date)
	assert.Nil(t, doc.Total)
}
