package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/solvens/logica_visitas/imagenes"
)

// MaxImagenesPorVisita limita la cantidad de fotos por carga
const MaxImagenesPorVisita = 3

var (
	ErrSinProductos    = errors.New("la visita debe incluir al menos un producto")
	ErrDemasiadasFotos = errors.New("una visita admite hasta 3 imágenes")
)

// CargaVisita es todo lo que llega en una carga de visita de un repositor
type CargaVisita struct {
	Fecha      time.Time
	IDRepo     int64
	IDCliente  int64
	IDSucursal int64
	Productos  []ProductoCargado
	Imagenes   [][]byte
}

// GuardarVisita persiste la visita completa en una sola transacción:
// cabecera, un renglón de carga por producto y una fila de imagen por foto
// procesada. Si algo falla se revierte todo y se intenta borrar del almacén
// los archivos ya escritos; un borrado fallido solo se registra en el log.
func GuardarVisita(dbc *DBConnection, proc *imagenes.Procesador, carga CargaVisita) (int64, error) {
	if len(carga.Productos) == 0 {
		return 0, ErrSinProductos
	}
	if len(carga.Imagenes) > MaxImagenesPorVisita {
		return 0, ErrDemasiadasFotos
	}

	fecha := carga.Fecha
	if fecha.IsZero() {
		fecha = time.Now()
	}

	tx, err := dbc.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("no se pudo iniciar la transacción: %w", err)
	}

	var archivosEscritos []string
	revertir := func() {
		tx.Rollback()
		for _, nombre := range archivosEscritos {
			if err := proc.Almacen.Eliminar(nombre); err != nil {
				log.Printf("[GuardarVisita] no se pudo borrar la imagen huérfana %s: %v", nombre, err)
			}
		}
	}

	// A. Cabecera de la visita
	res, err := tx.Exec(
		`INSERT INTO visitas (fecha, id_repo, id_cliente, id_sucursal) VALUES (?, ?, ?, ?)`,
		fecha.Format("2006-01-02"), carga.IDRepo, carga.IDCliente, carga.IDSucursal,
	)
	if err != nil {
		revertir()
		return 0, fmt.Errorf("error al insertar la visita: %w", err)
	}
	idVisita, err := res.LastInsertId()
	if err != nil {
		revertir()
		return 0, fmt.Errorf("error al obtener el id de la visita: %w", err)
	}

	// B. Un renglón de carga por producto, todos arrancan Pendiente
	stmt, err := tx.Prepare(
		`INSERT INTO cargas (precio, id_producto, id_visita, estado, oferta) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		revertir()
		return 0, fmt.Errorf("error al preparar el statement de cargas: %w", err)
	}
	defer stmt.Close()

	for _, p := range carga.Productos {
		oferta := 0
		if p.Oferta {
			oferta = 1
		}
		if _, err := stmt.Exec(p.Precio, p.IDProducto, idVisita, EstadoPendiente, oferta); err != nil {
			revertir()
			return 0, fmt.Errorf("error al insertar carga del producto %d: %w", p.IDProducto, err)
		}
	}

	// C. Procesar y registrar las imágenes en el orden recibido
	for i, raw := range carga.Imagenes {
		nombre, err := proc.Procesar(raw, idVisita)
		if err != nil {
			revertir()
			return 0, fmt.Errorf("error al procesar la imagen %d: %w", i+1, err)
		}
		archivosEscritos = append(archivosEscritos, nombre)

		_, err = tx.Exec(
			`INSERT INTO imagenes (ruta_imagen, id_visita, estado) VALUES (?, ?, ?)`,
			nombre, idVisita, EstadoPendiente,
		)
		if err != nil {
			revertir()
			return 0, fmt.Errorf("error al insertar la imagen %s: %w", nombre, err)
		}
	}

	if err := tx.Commit(); err != nil {
		revertir()
		return 0, fmt.Errorf("error al confirmar la visita: %w", err)
	}

	return idVisita, nil
}
