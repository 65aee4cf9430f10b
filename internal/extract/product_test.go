package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findProduct(products []Product, fragment string) *Product {
	for i := range products {
		if strings.Contains(strings.ToLower(products[i].Name), strings.ToLower(fragment)) {
			return &products[i]
		}
	}
	return nil
}

func TestExtractProductsSingleLine(t *testing.T) {
	products := ExtractProducts("Tomate Cherry 5.5 kg 3.80€")
	require.Len(t, products, 1)

	p := products[0]
	assert.Contains(t, p.Name, "Tomate")
	assert.InDelta(t, 5.5, p.Quantity, 1e-9)
	assert.Equal(t, "kg", p.Unit)
	require.NotNil(t, p.UnitPrice)
	assert.InDelta(t, 3.80, *p.UnitPrice, 1e-9)
	assert.Greater(t, p.Confidence, float32(0.7))
}

func TestExtractProductsVegetables(t *testing.T) {
	text := "Tomate Cherry 5.5 kg 3.80€\n" +
		"Rúcula bolsa 10 ud 2.20€\n" +
		"Calabacín 12.5 kg 2.10€"

	products := ExtractProducts(text)
	require.GreaterOrEqual(t, len(products), 2)

	tomate := findProduct(products, "tomate")
	require.NotNil(t, tomate)
	assert.InDelta(t, 5.5, tomate.Quantity, 1e-9)
	assert.Equal(t, "kg", tomate.Unit)
	require.NotNil(t, tomate.UnitPrice)
	assert.InDelta(t, 3.80, *tomate.UnitPrice, 1e-9)
	assert.Greater(t, tomate.Confidence, float32(0.7))
}

func TestExtractProductsMeat(t *testing.T) {
	text := "Solomillo de Ternera 2.5 kg 28.50€\nPechuga de Pollo 3.0 kg 8.90€"

	products := ExtractProducts(text)
	require.GreaterOrEqual(t, len(products), 1)

	solomillo := findProduct(products, "solomillo")
	require.NotNil(t, solomillo)
	assert.InDelta(t, 2.5, solomillo.Quantity, 1e-9)
	assert.Equal(t, "kg", solomillo.Unit)
}

func TestExtractProductsCommaDecimals(t *testing.T) {
	products := ExtractProducts("Queso Manchego 1,5 kg 12,40€")
	require.Len(t, products, 1)
	assert.InDelta(t, 1.5, products[0].Quantity, 1e-9)
	assert.Equal(t, "kg", products[0].Unit)
}

func TestExtractProductsDefaults(t *testing.T) {
	// Food keyword without any numeric token: defaults apply.
	products := ExtractProducts("Lechuga romana")
	require.Len(t, products, 1)
	assert.InDelta(t, 1.0, products[0].Quantity, 1e-9)
	assert.Equal(t, "ud", products[0].Unit)
	assert.Nil(t, products[0].UnitPrice)
}

func TestExtractProductsDeduplicates(t *testing.T) {
	text := "Tomate Cherry 5.5 kg\n" +
		"TOMATE CHERRY 5.5 kg\n" +
		"Tomate cherry extra 5.5 kg"

	products := ExtractProducts(text)

	count := 0
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), "tomate") {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractProductsDeduplicationKeepsHigherConfidence(t *testing.T) {
	// The first line has no price-shaped number in its window; the
	// duplicate two lines below does, so it scores higher and must
	// replace the earlier entry rather than coexist with it. The priced
	// line carries no currency sign so both residue names stay clean and
	// one is a substring of the other.
	text := "Tomate Cherry 5000 g\n" +
		"sin datos\n" +
		"Tomate 2 kg 3.80"

	products := ExtractProducts(text)
	require.Len(t, products, 1)
	assert.Equal(t, "Tomate", products[0].Name)
	assert.InDelta(t, 0.95, products[0].Confidence, 1e-6)
	assert.InDelta(t, 2.0, products[0].Quantity, 1e-9)
	require.NotNil(t, products[0].UnitPrice)

	// Reversed order: the later, lower-confidence duplicate loses and
	// the earlier entry survives untouched.
	products = ExtractProducts("Tomate 2 kg 3.80\n" +
		"sin datos\n" +
		"Tomate Cherry 5000 g")
	require.Len(t, products, 1)
	assert.Equal(t, "Tomate", products[0].Name)
	assert.InDelta(t, 0.95, products[0].Confidence, 1e-6)
}

func TestExtractProductsConfidenceOrdering(t *testing.T) {
	products := ExtractProducts("Tomate Cherry 5.5 kg 3.80€\nXRTQ123 2.0 ud")

	tomate := findProduct(products, "tomate")
	unknown := findProduct(products, "xrtq")
	require.NotNil(t, tomate)
	require.NotNil(t, unknown)

	assert.Greater(t, tomate.Confidence, unknown.Confidence)
	// Descending order in the result.
	for i := 1; i < len(products); i++ {
		assert.LessOrEqual(t, products[i].Confidence, products[i-1].Confidence)
	}
}

func TestExtractProductsConfidenceBounds(t *testing.T) {
	products := ExtractProducts("Tomate Cherry 5.5 kg 3.80€\nPollo 2 kg 5.20€")
	for _, p := range products {
		assert.GreaterOrEqual(t, p.Confidence, float32(0))
		assert.LessOrEqual(t, p.Confidence, float32(0.95))
	}
}

func TestExtractProductsCap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 30; i++ {
		b.WriteString("Producto")
		for j := 0; j <= i; j++ {
			b.WriteByte('A' + byte(j%20))
		}
		b.WriteString(" 2 kg 1.50€\n")
	}
	products := ExtractProducts(b.String())
	assert.LessOrEqual(t, len(products), maxProducts)
}

func TestExtractProductsLotAndExpiry(t *testing.T) {
	products := ExtractProducts("Pollo entero 2 kg LOTE: A-123 CAD 15/09/2024 5.20€")
	require.Len(t, products, 1)

	p := products[0]
	require.NotNil(t, p.Lot)
	assert.Equal(t, "A-123", *p.Lot)
	require.NotNil(t, p.Expiry)
	assert.Equal(t, "2024-09-15", *p.Expiry)
	assert.Contains(t, p.Name, "Pollo")
}

func TestExtractProductsEmptyInput(t *testing.T) {
	assert.Empty(t, ExtractProducts(""))
	assert.Empty(t, ExtractProducts("\n\n"))
}

func TestExtractProductsShortResidueDiscarded(t *testing.T) {
	// After stripping quantity and price tokens nothing usable remains.
	products := ExtractProducts("5 kg 3.80€")
	assert.Empty(t, products)
}
