package rutas

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/solvens/logica_visitas/db"
)

type SucursalRequest struct {
	Calle     string `json:"calle"`
	Altura    int    `json:"altura"`
	Localidad string `json:"localidad"`
	IDSubzona int64  `json:"id_subzona"`
	IDCadena  int64  `json:"id_cadena"`
}

// GET /api/subzonas
func GetSubzonas(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(`SELECT id_subzona, nombre FROM subzonas ORDER BY nombre`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar subzonas", err.Error())
			return
		}
		defer rows.Close()

		subzonas := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var nombre string
			if err := rows.Scan(&id, &nombre); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer subzonas", err.Error())
				return
			}
			subzonas = append(subzonas, map[string]interface{}{"id_subzona": id, "nombre": nombre})
		}
		writeSuccessResponse(w, "Subzonas obtenidas", subzonas)
	}
}

// GET /api/sucursales/buscar?id_cadena=N&id_subzona=M
// El filtro por subzona es opcional; se agrega solo si viene en el query.
func BuscarSucursales(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idCadena, ok := idDeQuery(r, "id_cadena")
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "Falta id_cadena", "")
			return
		}

		query := `SELECT id_sucursal, calle, altura, localidad FROM sucursales WHERE id_cadena = ?`
		args := []interface{}{idCadena}
		if idSubzona, ok := idDeQuery(r, "id_subzona"); ok {
			query += ` AND id_subzona = ?`
			args = append(args, idSubzona)
		}

		rows, err := dbc.DB.Query(query, args...)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al buscar sucursales", err.Error())
			return
		}
		defer rows.Close()

		sucursales := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var calle, localidad string
			var altura sql.NullInt64
			if err := rows.Scan(&id, &calle, &altura, &localidad); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer sucursales", err.Error())
				return
			}
			sucursales = append(sucursales, map[string]interface{}{
				"id_sucursal": id,
				"calle":       calle,
				"altura":      db.NullToInt(altura),
				"localidad":   localidad,
			})
		}
		writeSuccessResponse(w, "Sucursales obtenidas", sucursales)
	}
}

// GET /api/sucursales — listado plano para los selectores de filtros
func GetSucursalesLista(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(
			`SELECT id_sucursal, CONCAT(calle, ' ', IFNULL(altura, 'S/N')) AS nombre FROM sucursales ORDER BY calle`,
		)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar sucursales", err.Error())
			return
		}
		defer rows.Close()

		sucursales := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var nombre string
			if err := rows.Scan(&id, &nombre); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer sucursales", err.Error())
				return
			}
			sucursales = append(sucursales, map[string]interface{}{"id_sucursal": id, "nombre": nombre})
		}
		writeSuccessResponse(w, "Sucursales obtenidas", sucursales)
	}
}

// GET /api/mis-sucursales — sucursales abastecidas por el cliente autenticado
func GetMisSucursales(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idCliente, ok := idDeQuery(r, "id_cliente")
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "Falta id_cliente", "")
			return
		}
		rows, err := dbc.DB.Query(`
			SELECT s.id_sucursal, s.calle, s.altura, s.localidad
			FROM sucursales s
			JOIN abastece a ON s.id_sucursal = a.id_sucursal
			WHERE a.id_cliente = ?`, idCliente)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar sucursales del cliente", err.Error())
			return
		}
		defer rows.Close()

		sucursales := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var calle, localidad string
			var altura sql.NullInt64
			if err := rows.Scan(&id, &calle, &altura, &localidad); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer sucursales", err.Error())
				return
			}
			sucursales = append(sucursales, map[string]interface{}{
				"id_sucursal": id,
				"calle":       calle,
				"altura":      db.NullToInt(altura),
				"localidad":   localidad,
			})
		}
		writeSuccessResponse(w, "Sucursales del cliente obtenidas", sucursales)
	}
}

// POST /api/sucursales
func AddSucursal(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SucursalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		if req.Calle == "" || req.IDCadena <= 0 || req.IDSubzona <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Faltan calle, cadena o subzona", "")
			return
		}

		var existe int
		err := dbc.DB.QueryRow(
			`SELECT COUNT(*) FROM sucursales WHERE calle = ? AND altura = ? AND id_cadena = ?`,
			req.Calle, req.Altura, req.IDCadena,
		).Scan(&existe)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al validar la sucursal", err.Error())
			return
		}
		if existe > 0 {
			writeErrorResponse(w, http.StatusBadRequest, "La sucursal ya está registrada", "")
			return
		}

		res, err := dbc.DB.Exec(
			`INSERT INTO sucursales (calle, altura, localidad, id_subzona, id_cadena) VALUES (?, ?, ?, ?, ?)`,
			req.Calle, req.Altura, req.Localidad, req.IDSubzona, req.IDCadena,
		)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al guardar la sucursal", err.Error())
			return
		}
		id, _ := res.LastInsertId()
		writeSuccessResponse(w, "Sucursal guardada", map[string]interface{}{"id_sucursal": id})
	}
}

// DELETE /api/sucursales/{id}
func DeleteSucursal(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idDeRuta(r)
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "ID inválido", "")
			return
		}
		res, err := dbc.DB.Exec(`DELETE FROM sucursales WHERE id_sucursal = ?`, id)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al eliminar la sucursal", err.Error())
			return
		}
		if filas, _ := res.RowsAffected(); filas == 0 {
			writeErrorResponse(w, http.StatusNotFound, "La sucursal no existe", "")
			return
		}
		writeSuccessResponse(w, "Sucursal eliminada correctamente", nil)
	}
}
