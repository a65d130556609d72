package rutas

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArmarFiltrosReporteSinParametros(t *testing.T) {
	where, args := armarFiltrosReporte(url.Values{}, "", nil)
	assert.Equal(t, "", where)
	assert.Empty(t, args)
}

func TestArmarFiltrosReporteUnParametro(t *testing.T) {
	q := url.Values{}
	q.Set("id_cadena", "5")

	where, args := armarFiltrosReporte(q, "", nil)
	assert.Equal(t, "WHERE ca.id_cadena = ?", where)
	assert.Equal(t, []interface{}{"5"}, args)
}

func TestArmarFiltrosReporteVariosParametros(t *testing.T) {
	q := url.Values{}
	q.Set("fecha_desde", "2025-01-01")
	q.Set("fecha_hasta", "2025-06-30")
	q.Set("id_region", "2")

	where, args := armarFiltrosReporte(q, "", nil)
	assert.Equal(t, "WHERE v.fecha >= ? AND v.fecha <= ? AND z.id_zona = ?", where)
	assert.Equal(t, []interface{}{"2025-01-01", "2025-06-30", "2"}, args)
}

func TestArmarFiltrosReporteIgnoraVaciosYDesconocidos(t *testing.T) {
	q := url.Values{}
	q.Set("id_cadena", "")
	q.Set("id_sucursal", "9")
	q.Set("orden", "fecha") // parámetro que el reporte no conoce

	where, args := armarFiltrosReporte(q, "", nil)
	assert.Equal(t, "WHERE s.id_sucursal = ?", where)
	assert.Equal(t, []interface{}{"9"}, args)
}

func TestArmarFiltrosReporteCondicionBase(t *testing.T) {
	q := url.Values{}
	q.Set("id_categoria", "4")

	where, args := armarFiltrosReporte(q, "v.id_cliente = ?", []interface{}{int64(77)})
	assert.Equal(t, "WHERE v.id_cliente = ? AND cat.id_categoria = ?", where)
	assert.Equal(t, []interface{}{int64(77), "4"}, args)
}

func TestArmarFiltrosReporteNoInterpolaValores(t *testing.T) {
	q := url.Values{}
	q.Set("id_cadena", "1; DROP TABLE visitas")

	where, args := armarFiltrosReporte(q, "", nil)
	// El valor viaja como parámetro ligado, nunca dentro del SQL
	assert.Equal(t, "WHERE ca.id_cadena = ?", where)
	assert.Equal(t, []interface{}{"1; DROP TABLE visitas"}, args)
}
