package rutas

import (
	"encoding/json"
	"net/http"

	"github.com/solvens/logica_visitas/db"
)

type ProductoRequest struct {
	IDCliente   int64  `json:"id_cliente"`
	Descripcion string `json:"descripcion"`
	IDCategoria int64  `json:"id_categoria"`
	SKU         string `json:"sku"`
}

// POST /api/productos
func AddProducto(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ProductoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		if req.IDCliente <= 0 || req.Descripcion == "" || req.IDCategoria <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Faltan cliente, descripción o categoría", "")
			return
		}

		res, err := dbc.DB.Exec(
			`INSERT INTO productos (id_cliente, descripcion, id_categoria, sku) VALUES (?, ?, ?, ?)`,
			req.IDCliente, req.Descripcion, req.IDCategoria, req.SKU,
		)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al registrar el producto", err.Error())
			return
		}
		id, _ := res.LastInsertId()
		writeSuccessResponse(w, "Producto registrado con éxito", map[string]interface{}{"id_producto": id})
	}
}

// GET /api/productos/buscar?q=texto — busca por descripción o SKU
func BuscarProductos(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := "%" + r.URL.Query().Get("q") + "%"
		rows, err := dbc.DB.Query(`
			SELECT p.id_producto, p.descripcion, p.sku, u.nombre AS cliente
			FROM productos p
			JOIN usuarios u ON p.id_cliente = u.id_usuario
			WHERE p.descripcion LIKE ? OR p.sku LIKE ?`, q, q)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al buscar productos", err.Error())
			return
		}
		defer rows.Close()

		productos := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var descripcion, sku, cliente string
			if err := rows.Scan(&id, &descripcion, &sku, &cliente); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer productos", err.Error())
				return
			}
			productos = append(productos, map[string]interface{}{
				"id_producto": id,
				"descripcion": descripcion,
				"sku":         sku,
				"cliente":     cliente,
			})
		}
		writeSuccessResponse(w, "Productos obtenidos", productos)
	}
}

// GET /api/productos-cliente?id_cliente=N — productos del cliente para la carga de visitas
func GetProductosCliente(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idCliente, ok := idDeQuery(r, "id_cliente")
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "Falta id_cliente", "")
			return
		}
		rows, err := dbc.DB.Query(
			`SELECT id_producto, descripcion FROM productos WHERE id_cliente = ? ORDER BY descripcion`, idCliente)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar productos del cliente", err.Error())
			return
		}
		defer rows.Close()

		productos := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var descripcion string
			if err := rows.Scan(&id, &descripcion); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer productos", err.Error())
				return
			}
			productos = append(productos, map[string]interface{}{"id_producto": id, "descripcion": descripcion})
		}
		writeSuccessResponse(w, "Productos del cliente obtenidos", productos)
	}
}

// DELETE /api/productos/{id}
func DeleteProducto(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idDeRuta(r)
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "ID inválido", "")
			return
		}
		res, err := dbc.DB.Exec(`DELETE FROM productos WHERE id_producto = ?`, id)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al eliminar el producto", err.Error())
			return
		}
		if filas, _ := res.RowsAffected(); filas == 0 {
			writeErrorResponse(w, http.StatusNotFound, "El producto no existe", "")
			return
		}
		writeSuccessResponse(w, "Producto eliminado correctamente", nil)
	}
}
