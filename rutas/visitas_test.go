package rutas

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solvens/logica_visitas/db"
	"github.com/solvens/logica_visitas/imagenes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const esquemaPruebas = `
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
	id_visita   INTEGER NOT NULL,
	estado      TEXT    NOT NULL,
	oferta      INTEGER NOT NULL
);
CREATE TABLE imagenes (
	id_imagen   INTEGER PRIMARY KEY AUTOINCREMENT,
	ruta_imagen TEXT    NOT NULL,
	id_visita   INTEGER NOT NULL,
	estado      TEXT    NOT NULL
);
`

func conexionPrueba(t *testing.T) *db.DBConnection {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(esquemaPruebas)
	require.NoError(t, err)
	return &db.DBConnection{DB: conn}
}

func procesadorDePrueba(t *testing.T) *imagenes.Procesador {
	t.Helper()
	almacen, err := imagenes.NuevoAlmacenDisco(t.TempDir())
	require.NoError(t, err)
	return imagenes.NuevoProcesador(almacen)
}

type formularioVisita struct {
	campos   map[string]string
	imagenes [][]byte
}

func peticionVisita(t *testing.T, f formularioVisita) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for nombre, valor := range f.campos {
		require.NoError(t, mw.WriteField(nombre, valor))
	}
	for i, datos := range f.imagenes {
		parte, err := mw.CreateFormFile("imagenes", "foto.jpg")
		require.NoError(t, err)
		_, err = parte.Write(datos)
		require.NoError(t, err, "imagen %d", i)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/cargar-visita", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func fotoPequeña(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 32, 32))))
	return buf.Bytes()
}

func TestCargarVisitaExitosa(t *testing.T) {
	dbc := conexionPrueba(t)
	handler := CargarVisita(dbc, procesadorDePrueba(t))

	req := peticionVisita(t, formularioVisita{
		campos: map[string]string{
			"id_repo":     "1",
			"id_cliente":  "2",
			"id_sucursal": "3",
			"productos":   `[{"id_prod":10,"precio":99.90,"oferta":false},{"id_prod":11,"precio":45.5,"oferta":true}]`,
		},
		imagenes: [][]byte{fotoPequeña(t)},
	})
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			IDVisita int64 `json:"id_visita"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Greater(t, resp.Data.IDVisita, int64(0))

	var cargas, imgs int
	require.NoError(t, dbc.DB.QueryRow(`SELECT COUNT(*) FROM cargas WHERE id_visita = ?`, resp.Data.IDVisita).Scan(&cargas))
	require.NoError(t, dbc.DB.QueryRow(`SELECT COUNT(*) FROM imagenes WHERE id_visita = ?`, resp.Data.IDVisita).Scan(&imgs))
	assert.Equal(t, 2, cargas)
	assert.Equal(t, 1, imgs)
}

func TestCargarVisitaSinProductos(t *testing.T) {
	dbc := conexionPrueba(t)
	handler := CargarVisita(dbc, procesadorDePrueba(t))

	req := peticionVisita(t, formularioVisita{
		campos: map[string]string{
			"id_repo":     "1",
			"id_cliente":  "2",
			"id_sucursal": "3",
		},
	})
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCargarVisitaProductosVacios(t *testing.T) {
	dbc := conexionPrueba(t)
	handler := CargarVisita(dbc, procesadorDePrueba(t))

	req := peticionVisita(t, formularioVisita{
		campos: map[string]string{
			"id_repo":     "1",
			"id_cliente":  "2",
			"id_sucursal": "3",
			"productos":   `[]`,
		},
	})
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var visitas int
	require.NoError(t, dbc.DB.QueryRow(`SELECT COUNT(*) FROM visitas`).Scan(&visitas))
	assert.Equal(t, 0, visitas)
}

func TestCargarVisitaIdentificadoresInvalidos(t *testing.T) {
	dbc := conexionPrueba(t)
	handler := CargarVisita(dbc, procesadorDePrueba(t))

	req := peticionVisita(t, formularioVisita{
		campos: map[string]string{
			"id_repo":     "cero",
			"id_cliente":  "2",
			"id_sucursal": "3",
			"productos":   `[{"id_prod":10,"precio":1}]`,
		},
	})
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCargarVisitaImagenDemasiadoGrande(t *testing.T) {
	dbc := conexionPrueba(t)
	handler := CargarVisita(dbc, procesadorDePrueba(t))

	grande := make([]byte, imagenes.TamañoMaximo+1)
	req := peticionVisita(t, formularioVisita{
		campos: map[string]string{
			"id_repo":     "1",
			"id_cliente":  "2",
			"id_sucursal": "3",
			"productos":   `[{"id_prod":10,"precio":1}]`,
		},
		imagenes: [][]byte{grande},
	})
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var visitas int
	require.NoError(t, dbc.DB.QueryRow(`SELECT COUNT(*) FROM visitas`).Scan(&visitas))
	assert.Equal(t, 0, visitas)
}

func TestCargarVisitaDemasiadasImagenes(t *testing.T) {
	dbc := conexionPrueba(t)
	handler := CargarVisita(dbc, procesadorDePrueba(t))

	foto := fotoPequeña(t)
	req := peticionVisita(t, formularioVisita{
		campos: map[string]string{
			"id_repo":     "1",
			"id_cliente":  "2",
			"id_sucursal": "3",
			"productos":   `[{"id_prod":10,"precio":1}]`,
		},
		imagenes: [][]byte{foto, foto, foto, foto},
	})
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
