package rutas

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/solvens/logica_visitas/db"
	"github.com/solvens/logica_visitas/imagenes"
)

// CargarVisita recibe la carga completa de una visita por multipart:
// id_repo, id_cliente, id_sucursal, un campo "productos" con el JSON de las
// observaciones y hasta 3 archivos "imagenes". Todo se persiste en una sola
// transacción; si algo falla no queda nada a medias.
func CargarVisita(dbc *db.DBConnection, proc *imagenes.Procesador) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Error al leer el formulario", err.Error())
			return
		}

		idRepo, err1 := strconv.ParseInt(r.FormValue("id_repo"), 10, 64)
		idCliente, err2 := strconv.ParseInt(r.FormValue("id_cliente"), 10, 64)
		idSucursal, err3 := strconv.ParseInt(r.FormValue("id_sucursal"), 10, 64)
		if err1 != nil || err2 != nil || err3 != nil || idRepo <= 0 || idCliente <= 0 || idSucursal <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Faltan id_repo, id_cliente o id_sucursal", "")
			return
		}

		productosJSON := r.FormValue("productos")
		if productosJSON == "" {
			writeErrorResponse(w, http.StatusBadRequest, "No hay productos", "")
			return
		}
		var productos []db.ProductoCargado
		if err := json.Unmarshal([]byte(productosJSON), &productos); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "El campo productos no es un JSON válido", err.Error())
			return
		}

		var fotos [][]byte
		if r.MultipartForm != nil {
			archivos := r.MultipartForm.File["imagenes"]
			if len(archivos) > db.MaxImagenesPorVisita {
				writeErrorResponse(w, http.StatusBadRequest, "Una visita admite hasta 3 imágenes", "")
				return
			}
			for _, fh := range archivos {
				if fh.Size > imagenes.TamañoMaximo {
					writeErrorResponse(w, http.StatusRequestEntityTooLarge,
						imagenes.ErrImagenMuyGrande.Error(), fh.Filename)
					return
				}
				f, err := fh.Open()
				if err != nil {
					writeErrorResponse(w, http.StatusBadRequest, "No se pudo leer la imagen", err.Error())
					return
				}
				datos, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					writeErrorResponse(w, http.StatusBadRequest, "No se pudo leer la imagen", err.Error())
					return
				}
				fotos = append(fotos, datos)
			}
		}

		idVisita, err := db.GuardarVisita(dbc, proc, db.CargaVisita{
			Fecha:      time.Now(),
			IDRepo:     idRepo,
			IDCliente:  idCliente,
			IDSucursal: idSucursal,
			Productos:  productos,
			Imagenes:   fotos,
		})
		if err != nil {
			switch {
			case errors.Is(err, db.ErrSinProductos), errors.Is(err, db.ErrDemasiadasFotos):
				writeErrorResponse(w, http.StatusBadRequest, err.Error(), "")
			case errors.Is(err, imagenes.ErrImagenInvalida):
				writeErrorResponse(w, http.StatusBadRequest, "Una de las imágenes no se pudo procesar", err.Error())
			default:
				writeErrorResponse(w, http.StatusInternalServerError, "Error al guardar la visita", err.Error())
			}
			return
		}

		writeSuccessResponse(w, "Visita y productos guardados", map[string]interface{}{"id_visita": idVisita})
	}
}

// GET /api/visitas-pendientes — una fila por visita con cargas pendientes
func GetVisitasPendientes(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(`
			SELECT v.id_visita, v.fecha, uRepo.nombre AS repositor, uCliente.nombre AS cliente,
			       s.calle, s.altura, s.localidad
			FROM visitas v
			JOIN sucursales s       ON v.id_sucursal = s.id_sucursal
			JOIN usuarios uRepo     ON v.id_repo     = uRepo.id_usuario
			JOIN usuarios uCliente  ON v.id_cliente  = uCliente.id_usuario
			WHERE EXISTS (
				SELECT 1 FROM cargas c
				WHERE c.id_visita = v.id_visita AND c.estado = 'Pendiente'
			)
			ORDER BY v.fecha DESC`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar visitas pendientes", err.Error())
			return
		}
		defer rows.Close()

		visitas := []map[string]interface{}{}
		for rows.Next() {
			var idVisita int64
			var fecha, repositor, cliente, calle, localidad string
			var altura sql.NullInt64
			if err := rows.Scan(&idVisita, &fecha, &repositor, &cliente, &calle, &altura, &localidad); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer visitas pendientes", err.Error())
				return
			}
			visitas = append(visitas, map[string]interface{}{
				"id_visita": idVisita,
				"fecha":     fecha,
				"repositor": repositor,
				"cliente":   cliente,
				"sucursal":  fmt.Sprintf("%s %d, %s", calle, db.NullToInt(altura), localidad),
			})
		}
		writeSuccessResponse(w, "Visitas pendientes obtenidas", visitas)
	}
}

// cambiarEstadoVisita pasa todas las cargas pendientes de la visita al nuevo
// estado. Una visita ya decidida no tiene cargas pendientes y responde 404.
func cambiarEstadoVisita(dbc *db.DBConnection, nuevoEstado, mensaje string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idDeRuta(r)
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "ID inválido", "")
			return
		}
		res, err := dbc.DB.Exec(
			`UPDATE cargas SET estado = ? WHERE id_visita = ? AND estado = 'Pendiente'`,
			nuevoEstado, id,
		)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al actualizar la visita", err.Error())
			return
		}
		if filas, _ := res.RowsAffected(); filas == 0 {
			writeErrorResponse(w, http.StatusNotFound, "No se encontraron cargas pendientes para esa visita", "")
			return
		}
		writeSuccessResponse(w, fmt.Sprintf("Visita #%d %s correctamente", id, mensaje), nil)
	}
}

// PATCH /api/visitas/{id}/aprobar
func AprobarVisita(dbc *db.DBConnection) http.HandlerFunc {
	return cambiarEstadoVisita(dbc, db.EstadoAprobado, "aprobada")
}

// PATCH /api/visitas/{id}/rechazar
func RechazarVisita(dbc *db.DBConnection) http.HandlerFunc {
	return cambiarEstadoVisita(dbc, db.EstadoRechazado, "rechazada")
}

// POST /api/cargas/estado — cambia el estado de una carga individual (tabla de revisión)
func ActualizarEstadoCarga(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			IDCarga int64  `json:"id_carga"`
			Estado  string `json:"estado"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		if req.IDCarga <= 0 || !estadoValido(req.Estado) {
			writeErrorResponse(w, http.StatusBadRequest, "ID o estado inválido", "")
			return
		}
		res, err := dbc.DB.Exec(`UPDATE cargas SET estado = ? WHERE id_carga = ?`, req.Estado, req.IDCarga)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al actualizar la carga", err.Error())
			return
		}
		if filas, _ := res.RowsAffected(); filas == 0 {
			writeErrorResponse(w, http.StatusNotFound, "Carga no encontrada", "")
			return
		}
		writeSuccessResponse(w, "Estado actualizado", nil)
	}
}

func estadoValido(estado string) bool {
	return estado == db.EstadoPendiente || estado == db.EstadoAprobado || estado == db.EstadoRechazado
}
