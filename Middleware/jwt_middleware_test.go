package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solvens/logica_visitas/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usarClaveDePrueba(t *testing.T) {
	t.Helper()
	anterior := config.Config.JWTSecret
	config.Config.JWTSecret = "clave-de-prueba"
	t.Cleanup(func() { config.Config.JWTSecret = anterior })
}

func TestJWTAuthMiddlewarePropagaClaims(t *testing.T) {
	usarClaveDePrueba(t)

	token, err := GenerarToken(42, TipoRepositor, "Marta")
	require.NoError(t, err)

	var id int64
	var tipo, nombre string
	handler := JWTAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, tipo, nombre = GetUserFromContext(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cadenas", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, TipoRepositor, tipo)
	assert.Equal(t, "Marta", nombre)
}

func TestJWTAuthMiddlewareSinToken(t *testing.T) {
	usarClaveDePrueba(t)

	handler := JWTAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no debe llegar al handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cadenas", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddlewareTokenInvalido(t *testing.T) {
	usarClaveDePrueba(t)

	handler := JWTAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no debe llegar al handler")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cadenas", nil)
	req.Header.Set("Authorization", "Bearer no.es.un.token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminRechazaRepositor(t *testing.T) {
	usarClaveDePrueba(t)

	token, err := GenerarToken(7, TipoRepositor, "Marta")
	require.NoError(t, err)

	handler := JWTAuthMiddleware(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no debe llegar al handler")
	})))

	req := httptest.NewRequest(http.MethodDelete, "/api/cadenas/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdminAceptaAdmin(t *testing.T) {
	usarClaveDePrueba(t)

	token, err := GenerarToken(1, TipoAdmin, "Ana")
	require.NoError(t, err)

	llego := false
	handler := JWTAuthMiddleware(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		llego = true
	})))

	req := httptest.NewRequest(http.MethodDelete, "/api/cadenas/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, llego)
}
