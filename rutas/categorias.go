package rutas

import (
	"encoding/json"
	"net/http"

	"github.com/solvens/logica_visitas/db"
)

type CategoriaRequest struct {
	Categoria string `json:"categoria"`
}

func leerCategorias(dbc *db.DBConnection, query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := dbc.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categorias := []map[string]interface{}{}
	for rows.Next() {
		var id int64
		var nombre string
		if err := rows.Scan(&id, &nombre); err != nil {
			return nil, err
		}
		categorias = append(categorias, map[string]interface{}{"id_categoria": id, "categoria": nombre})
	}
	return categorias, rows.Err()
}

// GET /api/categorias
func GetCategorias(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categorias, err := leerCategorias(dbc,
			`SELECT id_categoria, categoria FROM categorias ORDER BY categoria`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar categorías", err.Error())
			return
		}
		writeSuccessResponse(w, "Categorías obtenidas", categorias)
	}
}

// GET /api/categorias/buscar?q=texto
func BuscarCategorias(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		categorias, err := leerCategorias(dbc,
			`SELECT id_categoria, categoria FROM categorias WHERE categoria LIKE ? ORDER BY categoria`,
			"%"+q+"%")
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al buscar categorías", err.Error())
			return
		}
		writeSuccessResponse(w, "Categorías obtenidas", categorias)
	}
}

// POST /api/categorias
func AddCategoria(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CategoriaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		if req.Categoria == "" {
			writeErrorResponse(w, http.StatusBadRequest, "Falta la categoría", "")
			return
		}

		var existe int
		if err := dbc.DB.QueryRow(`SELECT COUNT(*) FROM categorias WHERE categoria = ?`, req.Categoria).Scan(&existe); err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al validar la categoría", err.Error())
			return
		}
		if existe > 0 {
			writeErrorResponse(w, http.StatusBadRequest, "La categoría ya existe", "")
			return
		}

		res, err := dbc.DB.Exec(`INSERT INTO categorias (categoria) VALUES (?)`, req.Categoria)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al guardar la categoría", err.Error())
			return
		}
		id, _ := res.LastInsertId()
		writeSuccessResponse(w, "Categoría creada con éxito", map[string]interface{}{"id_categoria": id})
	}
}

// DELETE /api/categorias/{id}
func DeleteCategoria(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idDeRuta(r)
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "ID inválido", "")
			return
		}
		res, err := dbc.DB.Exec(`DELETE FROM categorias WHERE id_categoria = ?`, id)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al eliminar la categoría", err.Error())
			return
		}
		if filas, _ := res.RowsAffected(); filas == 0 {
			writeErrorResponse(w, http.StatusNotFound, "La categoría no existe", "")
			return
		}
		writeSuccessResponse(w, "Categoría eliminada", nil)
	}
}
