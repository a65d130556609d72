package imagenes

import (
	"fmt"
	"os"
	"path/filepath"
)

// Almacen es el almacenamiento durable de archivos de imagen.
// La capa HTTP sirve los archivos por nombre, por eso los nombres no llevan ruta.
type Almacen interface {
	Guardar(nombre string, datos []byte) error
	Eliminar(nombre string) error
}

// AlmacenDisco guarda las imágenes en un directorio local
type AlmacenDisco struct {
	Dir string
}

func NuevoAlmacenDisco(dir string) (*AlmacenDisco, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("no se pudo crear el directorio de imágenes %s: %w", dir, err)
	}
	return &AlmacenDisco{Dir: dir}, nil
}

func (a *AlmacenDisco) Guardar(nombre string, datos []byte) error {
	ruta := filepath.Join(a.Dir, nombre)
	if err := os.WriteFile(ruta, datos, 0o644); err != nil {
		return fmt.Errorf("error guardando imagen %s: %w", nombre, err)
	}
	return nil
}

func (a *AlmacenDisco) Eliminar(nombre string) error {
	return os.Remove(filepath.Join(a.Dir, nombre))
}
