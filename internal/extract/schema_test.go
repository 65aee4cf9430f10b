package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResultSample(t *testing.T) {
	res := Extract(sampleInvoice)
	assert.NoError(t, ValidateResult(res))
}

func TestValidateResultEmpty(t *testing.T) {
	// Nil supplier serializes to null, which the schema allows.
	assert.NoError(t, ValidateResult(Extract("")))
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildResultSchema()

	valid := `{
		"proveedor": null,
		"documento": {"tipo": "factura", "numero": null, "fecha": null, "total": null},
		"productos": []
	}`
	assert.NoError(t, ValidateJSONAgainstSchema(schema, []byte(valid)))

	cases := map[string]string{
		"unknown document type": `{
			"proveedor": null,
			"documento": {"tipo": "ticket", "numero": null, "fecha": null, "total": null},
			"productos": []
		}`,
		"product confidence above cap": `{
			"proveedor": null,
			"documento": {"tipo": "factura", "numero": null, "fecha": null, "total": null},
			"productos": [{"nombre": "Tomate", "cantidad": 1, "unidad": "ud",
				"precio": null, "precio_total": null, "caducidad": null, "lote": null,
				"confianza": 0.99}]
		}`,
		"malformed date": `{
			"proveedor": null,
			"documento": {"tipo": "factura", "numero": null, "fecha": "15/09/2024", "total": null},
			"productos": []
		}`,
		"missing supplier name": `{
			"proveedor": {"direccion": null, "telefono": null, "email": null, "cif": null, "confianza": 0.6},
			"documento": {"tipo": "factura", "numero": null, "fecha": null, "total": null},
			"productos": []
		}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(payload)))
		})
	}
}

func TestValidateJSONAgainstSchemaRejectsGarbage(t *testing.T) {
	err := ValidateJSONAgainstSchema(BuildResultSchema(), []byte("not json"))
	require.Error(t, err)
}
