package extract

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInvoice = `HUERTA DEL SUR S.L.
C/ LAS VEGAS, 45
29010 MALAGA
CIF: B-29123456
TEL: 952123456
pedidos@huertadelsur.es
FACTURA: HDS-2024-0891
Fecha: 15/09/2024

Tomate Cherry 5.5 kg 3.80€
Lechuga Romana 10 ud 0.90€
Pollo entero 2 kg LOTE: A-123 CAD 20/09/2024 5.20€

TOTAL: 165.50€`

func TestExtractInvoice(t *testing.T) {
	res := Extract(sampleInvoice)

	require.NotNil(t, res.Supplier)
	assert.Equal(t, "Huerta Del Sur S.L.", res.Supplier.Name)
	require.NotNil(t, res.Supplier.TaxID)
	assert.Equal(t, "B-29123456", *res.Supplier.TaxID)
	require.NotNil(t, res.Supplier.Email)
	assert.Equal(t, "pedidos@huertadelsur.es", *res.Supplier.Email)
	require.NotNil(t, res.Supplier.Phone)
	assert.Equal(t, "952123456", *res.Supplier.Phone)
	require.NotNil(t, res.Supplier.Address)
	assert.Equal(t, "C/ Las Vegas, 45", *res.Supplier.Address)
	assert.InDelta(t, 0.8, res.Supplier.Confidence, 1e-6)

	assert.Equal(t, DocTypeFactura, res.Document.Type)
	require.NotNil(t, res.Document.Number)
	assert.Equal(t, "HDS-2024-0891", *res.Document.Number)
	require.NotNil(t, res.Document.Date)
	assert.Equal(t, "2024-09-15", *res.Document.Date)
	require.NotNil(t, res.Document.Total)
	assert.InDelta(t, 165.50, *res.Document.Total, 1e-9)

	tomate := findProduct(res.Products, "tomate")
	require.NotNil(t, tomate)
	assert.InDelta(t, 5.5, tomate.Quantity, 1e-9)
	assert.Equal(t, "kg", tomate.Unit)
	require.NotNil(t, tomate.UnitPrice)
	assert.InDelta(t, 3.80, *tomate.UnitPrice, 1e-9)

	lechuga := findProduct(res.Products, "lechuga")
	require.NotNil(t, lechuga)
	assert.InDelta(t, 10, lechuga.Quantity, 1e-9)
	assert.Equal(t, "ud", lechuga.Unit)

	pollo := findProduct(res.Products, "pollo")
	require.NotNil(t, pollo)
	require.NotNil(t, pollo.Lot)
	assert.Equal(t, "A-123", *pollo.Lot)
	require.NotNil(t, pollo.Expiry)
	assert.Equal(t, "2024-09-20", *pollo.Expiry)

	assert.LessOrEqual(t, len(res.Products), maxProducts)
	for i := 1; i < len(res.Products); i++ {
		assert.LessOrEqual(t, res.Products[i].Confidence, res.Products[i-1].Confidence)
	}
}

func TestExtractDeterministic(t *testing.T) {
	first := Extract(sampleInvoice)
	second := Extract(sampleInvoice)
	assert.Equal(t, first, second)
}

func TestExtractConcurrent(t *testing.T) {
	want := Extract(sampleInvoice)

	var wg sync.WaitGroup
	results := make([]Result, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Extract(sampleInvoice)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t\n"} {
		res := Extract(text)
		assert.Nil(t, res.Supplier)
		assert.Equal(t, DocTypeFactura, res.Document.Type)
		assert.Nil(t, res.Document.Number)
		assert.Nil(t, res.Document.Date)
		assert.Nil(t, res.Document.Total)
		assert.NotNil(t, res.Products)
		assert.Empty(t, res.Products)
	}
}
