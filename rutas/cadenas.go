package rutas

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/solvens/logica_visitas/db"
)

type CadenaRequest struct {
	Nombre string `json:"nombre"`
	IDTipo int64  `json:"id_tipo"`
}

// GET /api/cadenas
func GetCadenas(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(`SELECT id_cadena, nombre, id_tipo FROM cadenas ORDER BY nombre`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar cadenas", err.Error())
			return
		}
		defer rows.Close()

		cadenas := []db.Cadena{}
		for rows.Next() {
			var c db.Cadena
			if err := rows.Scan(&c.IDCadena, &c.Nombre, &c.IDTipo); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer cadenas", err.Error())
				return
			}
			cadenas = append(cadenas, c)
		}
		writeSuccessResponse(w, "Cadenas obtenidas", cadenas)
	}
}

// GET /api/tipos-cadena (canales de venta: supermercado, mayorista, etc.)
func GetTiposCadena(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(`SELECT id_tipo, tipo FROM tipos_cadena ORDER BY tipo`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar tipos de cadena", err.Error())
			return
		}
		defer rows.Close()

		tipos := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var tipo string
			if err := rows.Scan(&id, &tipo); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer tipos de cadena", err.Error())
				return
			}
			tipos = append(tipos, map[string]interface{}{"id_tipo": id, "tipo": tipo})
		}
		writeSuccessResponse(w, "Tipos de cadena obtenidos", tipos)
	}
}

// POST /api/cadenas
func AddCadena(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CadenaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		if req.Nombre == "" || req.IDTipo <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Faltan nombre o tipo de cadena", "")
			return
		}

		var existe int
		err := dbc.DB.QueryRow(`SELECT COUNT(*) FROM cadenas WHERE nombre = ?`, req.Nombre).Scan(&existe)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al validar la cadena", err.Error())
			return
		}
		if existe > 0 {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("La cadena %q ya está registrada", req.Nombre), "")
			return
		}

		res, err := dbc.DB.Exec(`INSERT INTO cadenas (nombre, id_tipo) VALUES (?, ?)`, req.Nombre, req.IDTipo)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al guardar la cadena", err.Error())
			return
		}
		id, _ := res.LastInsertId()
		writeSuccessResponse(w, "Cadena guardada correctamente", map[string]interface{}{"id_cadena": id})
	}
}

// DELETE /api/cadenas/{id}
func DeleteCadena(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idDeRuta(r)
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "ID inválido", "")
			return
		}
		res, err := dbc.DB.Exec(`DELETE FROM cadenas WHERE id_cadena = ?`, id)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al eliminar la cadena", err.Error())
			return
		}
		if filas, _ := res.RowsAffected(); filas == 0 {
			writeErrorResponse(w, http.StatusNotFound, "La cadena no existe", "")
			return
		}
		writeSuccessResponse(w, "Cadena y sucursales eliminadas", nil)
	}
}
