package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog_ConEncabezado(t *testing.T) {
	in := "categoria;sku;nombre;precio_unitario;stock_inicial\n" +
		"Granos;ARROZ-1KG;Arroz 1kg;4200,50;30\n" +
		"; SAL ; Sal ;;0\n"
	rows, err := parseCatalog(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Granos", rows[0].category)
	assert.Equal(t, "4200.5", rows[0].unitPrice.String())
	assert.Equal(t, int64(30), rows[0].initialStock)

	assert.Equal(t, defaultCategory, rows[1].category)
	assert.Equal(t, "SAL", rows[1].sku)
	assert.True(t, rows[1].unitPrice.IsZero())
}

func TestParseCatalog_StockInvalido(t *testing.T) {
	in := "Granos;ARROZ;Arroz;1;10\nGranos;FRIJOL;Frijol;1;muchos\n"
	_, err := parseCatalog(strings.NewReader(in))
	assert.ErrorContains(t, err, "fila 2")
}

func TestCategoryIDFor_Estable(t *testing.T) {
	assert.Equal(t, categoryIDFor("Granos"), categoryIDFor("granos"))
	assert.NotEqual(t, categoryIDFor("Granos"), categoryIDFor("Lácteos"))
}
