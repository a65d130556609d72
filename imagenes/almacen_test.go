package imagenes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlmacenDiscoGuardarYEliminar(t *testing.T) {
	dir := t.TempDir()
	almacen, err := NuevoAlmacenDisco(filepath.Join(dir, "img"))
	require.NoError(t, err)

	require.NoError(t, almacen.Guardar("foto.jpg", []byte("contenido")))

	datos, err := os.ReadFile(filepath.Join(dir, "img", "foto.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("contenido"), datos)

	require.NoError(t, almacen.Eliminar("foto.jpg"))
	_, err = os.Stat(filepath.Join(dir, "img", "foto.jpg"))
	assert.True(t, os.IsNotExist(err))
}
