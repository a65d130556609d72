package db

import (
	"bytes"
	"database/sql"
	"image"
	"image/png"
	"os"
	"testing"

	"github.com/solvens/logica_visitas/imagenes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const esquemaVisitas = `
CREATE TABLE visitas (
	id_visita   INTEGER PRIMARY KEY AUTOINCREMENT,
	fecha       TEXT    NOT NULL,
	id_repo     INTEGER NOT NULL,
	id_cliente  INTEGER NOT NULL,
	id_sucursal INTEGER NOT NULL
);
CREATE TABLE cargas (
	id_carga    INTEGER PRIMARY KEY AUTOINCREMENT,
	precio      REAL    NOT NULL,
	id_producto INTEGER NOT NULL,
	id_visita   INTEGER NOT NULL REFERENCES visitas(id_visita) ON DELETE CASCADE,
	estado      TEXT    NOT NULL,
	oferta      INTEGER NOT NULL
);
CREATE TABLE imagenes (
	id_imagen   INTEGER PRIMARY KEY AUTOINCREMENT,
	ruta_imagen TEXT    NOT NULL,
	id_visita   INTEGER NOT NULL REFERENCES visitas(id_visita) ON DELETE CASCADE,
	estado      TEXT    NOT NULL
);
`

func abrirDBPrueba(t *testing.T) *DBConnection {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(esquemaVisitas)
	require.NoError(t, err)
	return &DBConnection{DB: conn}
}

func procesadorPrueba(t *testing.T) (*imagenes.Procesador, string) {
	t.Helper()
	dir := t.TempDir()
	almacen, err := imagenes.NuevoAlmacenDisco(dir)
	require.NoError(t, err)
	return imagenes.NuevoProcesador(almacen), dir
}

func fotoPrueba(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 64))))
	return buf.Bytes()
}

func contarFilas(t *testing.T, dbc *DBConnection, tabla string, idVisita int64) int {
	t.Helper()
	var n int
	var err error
	if tabla == "visitas" {
		err = dbc.DB.QueryRow(`SELECT COUNT(*) FROM visitas WHERE id_visita = ?`, idVisita).Scan(&n)
	} else {
		err = dbc.DB.QueryRow(`SELECT COUNT(*) FROM `+tabla+` WHERE id_visita = ?`, idVisita).Scan(&n)
	}
	require.NoError(t, err)
	return n
}

func archivosEnDir(t *testing.T, dir string) int {
	t.Helper()
	entradas, err := os.ReadDir(dir)
	require.NoError(t, err)
	return len(entradas)
}

func TestGuardarVisitaCompleta(t *testing.T) {
	dbc := abrirDBPrueba(t)
	proc, dir := procesadorPrueba(t)

	foto := fotoPrueba(t)
	idVisita, err := GuardarVisita(dbc, proc, CargaVisita{
		IDRepo:     1,
		IDCliente:  2,
		IDSucursal: 3,
		Productos: []ProductoCargado{
			{IDProducto: 10, Precio: 99.90, Oferta: false},
			{IDProducto: 11, Precio: 150.50, Oferta: true},
			{IDProducto: 12, Precio: 20.00, Oferta: false},
		},
		Imagenes: [][]byte{foto, foto},
	})
	require.NoError(t, err)
	require.Greater(t, idVisita, int64(0))

	assert.Equal(t, 1, contarFilas(t, dbc, "visitas", idVisita))
	assert.Equal(t, 3, contarFilas(t, dbc, "cargas", idVisita))
	assert.Equal(t, 2, contarFilas(t, dbc, "imagenes", idVisita))
	assert.Equal(t, 2, archivosEnDir(t, dir))

	// Todas las cargas arrancan pendientes
	var pendientes int
	require.NoError(t, dbc.DB.QueryRow(
		`SELECT COUNT(*) FROM cargas WHERE id_visita = ? AND estado = 'Pendiente'`, idVisita,
	).Scan(&pendientes))
	assert.Equal(t, 3, pendientes)

	// La oferta se guarda como booleano estricto
	var oferta int
	require.NoError(t, dbc.DB.QueryRow(
		`SELECT oferta FROM cargas WHERE id_visita = ? AND id_producto = 11`, idVisita,
	).Scan(&oferta))
	assert.Equal(t, 1, oferta)
}

func TestGuardarVisitaSinImagenes(t *testing.T) {
	dbc := abrirDBPrueba(t)
	proc, dir := procesadorPrueba(t)

	idVisita, err := GuardarVisita(dbc, proc, CargaVisita{
		IDRepo:     1,
		IDCliente:  2,
		IDSucursal: 3,
		Productos:  []ProductoCargado{{IDProducto: 10, Precio: 99.90}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, contarFilas(t, dbc, "cargas", idVisita))
	assert.Equal(t, 0, contarFilas(t, dbc, "imagenes", idVisita))
	assert.Equal(t, 0, archivosEnDir(t, dir))
}

func TestGuardarVisitaSinProductos(t *testing.T) {
	dbc := abrirDBPrueba(t)
	proc, _ := procesadorPrueba(t)

	_, err := GuardarVisita(dbc, proc, CargaVisita{
		IDRepo:     1,
		IDCliente:  2,
		IDSucursal: 3,
	})
	assert.ErrorIs(t, err, ErrSinProductos)

	var visitas int
	require.NoError(t, dbc.DB.QueryRow(`SELECT COUNT(*) FROM visitas`).Scan(&visitas))
	assert.Equal(t, 0, visitas)
}

func TestGuardarVisitaDemasiadasFotos(t *testing.T) {
	dbc := abrirDBPrueba(t)
	proc, _ := procesadorPrueba(t)

	foto := fotoPrueba(t)
	_, err := GuardarVisita(dbc, proc, CargaVisita{
		IDRepo:     1,
		IDCliente:  2,
		IDSucursal: 3,
		Productos:  []ProductoCargado{{IDProducto: 10, Precio: 5}},
		Imagenes:   [][]byte{foto, foto, foto, foto},
	})
	assert.ErrorIs(t, err, ErrDemasiadasFotos)
}

func TestGuardarVisitaRevierteTodoSiFallaUnaImagen(t *testing.T) {
	dbc := abrirDBPrueba(t)
	proc, dir := procesadorPrueba(t)

	foto := fotoPrueba(t)
	_, err := GuardarVisita(dbc, proc, CargaVisita{
		IDRepo:     1,
		IDCliente:  2,
		IDSucursal: 3,
		Productos: []ProductoCargado{
			{IDProducto: 10, Precio: 99.90},
			{IDProducto: 11, Precio: 80.00},
		},
		Imagenes: [][]byte{foto, []byte("basura"), foto},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, imagenes.ErrImagenInvalida)

	// El rollback es total para los datos estructurados
	var visitas, cargas, imgs int
	require.NoError(t, dbc.DB.QueryRow(`SELECT COUNT(*) FROM visitas`).Scan(&visitas))
	require.NoError(t, dbc.DB.QueryRow(`SELECT COUNT(*) FROM cargas`).Scan(&cargas))
	require.NoError(t, dbc.DB.QueryRow(`SELECT COUNT(*) FROM imagenes`).Scan(&imgs))
	assert.Equal(t, 0, visitas)
	assert.Equal(t, 0, cargas)
	assert.Equal(t, 0, imgs)

	// El archivo de la primera imagen se borra al revertir
	assert.Equal(t, 0, archivosEnDir(t, dir))
}
