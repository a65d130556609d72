package rutas

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/solvens/logica_visitas/db"
	"golang.org/x/crypto/bcrypt"
)

type CrearUsuarioRequest struct {
	Nombre        string  `json:"nombre"`
	IDTipo        int64   `json:"id_tipo"`
	Mail          string  `json:"mail"`
	Usuario       string  `json:"usuario"`
	Clave         string  `json:"clave"`
	SucursalesIDs []int64 `json:"sucursales_ids"`
}

type AbasteceRequest struct {
	IDCliente     int64   `json:"id_cliente"`
	SucursalesIDs []int64 `json:"sucursales_ids"`
}

// esCliente verifica que el id corresponda a un usuario de tipo Cliente
func esCliente(dbc *db.DBConnection, idCliente int64) (bool, error) {
	var existe int
	err := dbc.DB.QueryRow(`
		SELECT COUNT(*) FROM usuarios
		WHERE id_usuario = ?
		  AND id_tipo_usuario = (SELECT id_tipo_usuario FROM tipos_usuario WHERE tipo = 'Cliente')`,
		idCliente).Scan(&existe)
	if err != nil {
		return false, err
	}
	return existe > 0, nil
}

// GET /api/tipos-usuario
func GetTiposUsuario(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(`SELECT id_tipo_usuario, tipo FROM tipos_usuario ORDER BY tipo`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar tipos de usuario", err.Error())
			return
		}
		defer rows.Close()

		tipos := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var tipo string
			if err := rows.Scan(&id, &tipo); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer tipos de usuario", err.Error())
				return
			}
			tipos = append(tipos, map[string]interface{}{"id_tipo_usuario": id, "tipo": tipo})
		}
		writeSuccessResponse(w, "Tipos de usuario obtenidos", tipos)
	}
}

// POST /api/usuarios — crea el usuario y sus asignaciones de sucursal en una transacción
func CrearUsuario(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CrearUsuarioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		if req.Nombre == "" || req.Usuario == "" || req.Clave == "" || req.IDTipo <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Faltan campos obligatorios", "nombre, usuario, clave e id_tipo son requeridos")
			return
		}

		// Validar duplicados antes de abrir la transacción
		var usuarioDup string
		var mailDup sql.NullString
		err := dbc.DB.QueryRow(
			`SELECT usuario, mail FROM usuarios WHERE usuario = ? OR mail = ? LIMIT 1`,
			req.Usuario, req.Mail,
		).Scan(&usuarioDup, &mailDup)
		if err == nil {
			msg := "El registro ya existe"
			if usuarioDup == req.Usuario {
				msg = "El nombre de usuario ya está en uso"
			} else if mailDup.Valid && mailDup.String == req.Mail {
				msg = "El correo electrónico ya está registrado"
			}
			writeErrorResponse(w, http.StatusBadRequest, msg, "")
			return
		} else if err != sql.ErrNoRows {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al validar el usuario", err.Error())
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Clave), bcrypt.DefaultCost)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al proteger la clave", err.Error())
			return
		}

		tx, err := dbc.DB.Begin()
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "No se pudo iniciar la transacción", err.Error())
			return
		}

		res, err := tx.Exec(
			`INSERT INTO usuarios (nombre, id_tipo_usuario, mail, usuario, clave) VALUES (?, ?, ?, ?, ?)`,
			req.Nombre, req.IDTipo, req.Mail, req.Usuario, string(hash),
		)
		if err != nil {
			tx.Rollback()
			writeErrorResponse(w, http.StatusInternalServerError, "Error al crear el usuario", err.Error())
			return
		}
		idUsuario, _ := res.LastInsertId()

		// Si tiene sucursales asignadas (rol Cliente), insertar en abastece
		for _, idSucursal := range req.SucursalesIDs {
			if _, err := tx.Exec(
				`INSERT INTO abastece (id_cliente, id_sucursal) VALUES (?, ?)`,
				idUsuario, idSucursal,
			); err != nil {
				tx.Rollback()
				writeErrorResponse(w, http.StatusInternalServerError, "Error al asignar sucursales", err.Error())
				return
			}
		}

		if err := tx.Commit(); err != nil {
			tx.Rollback()
			writeErrorResponse(w, http.StatusInternalServerError, "Error al confirmar el usuario", err.Error())
			return
		}

		writeSuccessResponse(w, "Usuario y asignaciones creados con éxito", map[string]interface{}{"id_usuario": idUsuario})
	}
}

// PUT /api/abastece — reemplaza las asignaciones de un cliente en una transacción
func ActualizarAbastece(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AbasteceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		if req.IDCliente <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "Falta id_cliente", "")
			return
		}

		tx, err := dbc.DB.Begin()
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "No se pudo iniciar la transacción", err.Error())
			return
		}

		if _, err := tx.Exec(`DELETE FROM abastece WHERE id_cliente = ?`, req.IDCliente); err != nil {
			tx.Rollback()
			writeErrorResponse(w, http.StatusInternalServerError, "Error al limpiar asignaciones anteriores", err.Error())
			return
		}

		for _, idSucursal := range req.SucursalesIDs {
			if _, err := tx.Exec(
				`INSERT INTO abastece (id_cliente, id_sucursal) VALUES (?, ?)`,
				req.IDCliente, idSucursal,
			); err != nil {
				tx.Rollback()
				writeErrorResponse(w, http.StatusInternalServerError, "Error al guardar asignaciones", err.Error())
				return
			}
		}

		if err := tx.Commit(); err != nil {
			tx.Rollback()
			writeErrorResponse(w, http.StatusInternalServerError, "Error al confirmar asignaciones", err.Error())
			return
		}
		writeSuccessResponse(w, "Asignaciones actualizadas", nil)
	}
}

// GET /api/usuarios/buscar?q=texto
func BuscarUsuarios(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := "%" + r.URL.Query().Get("q") + "%"
		rows, err := dbc.DB.Query(`
			SELECT u.id_usuario, u.nombre, u.usuario, t.tipo
			FROM usuarios u
			JOIN tipos_usuario t ON u.id_tipo_usuario = t.id_tipo_usuario
			WHERE u.nombre LIKE ? OR u.usuario LIKE ?`, q, q)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al buscar usuarios", err.Error())
			return
		}
		defer rows.Close()

		usuarios := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var nombre, usuario, tipo string
			if err := rows.Scan(&id, &nombre, &usuario, &tipo); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer usuarios", err.Error())
				return
			}
			usuarios = append(usuarios, map[string]interface{}{
				"id_usuario": id,
				"nombre":     nombre,
				"usuario":    usuario,
				"tipo":       tipo,
			})
		}
		writeSuccessResponse(w, "Usuarios obtenidos", usuarios)
	}
}

// GET /api/clientes — clientes activos para los selectores
func GetClientes(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(`
			SELECT id_usuario, nombre FROM usuarios
			WHERE id_tipo_usuario = (SELECT id_tipo_usuario FROM tipos_usuario WHERE tipo = 'Cliente')
			ORDER BY nombre`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar clientes", err.Error())
			return
		}
		defer rows.Close()

		clientes := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var nombre string
			if err := rows.Scan(&id, &nombre); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer clientes", err.Error())
				return
			}
			clientes = append(clientes, map[string]interface{}{"id_usuario": id, "nombre": nombre})
		}
		writeSuccessResponse(w, "Clientes obtenidos", clientes)
	}
}

// DELETE /api/usuarios/{id}
func DeleteUsuario(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idDeRuta(r)
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "ID inválido", "")
			return
		}
		res, err := dbc.DB.Exec(`DELETE FROM usuarios WHERE id_usuario = ?`, id)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al eliminar el usuario", err.Error())
			return
		}
		if filas, _ := res.RowsAffected(); filas == 0 {
			writeErrorResponse(w, http.StatusNotFound, "El usuario no existe", "")
			return
		}
		writeSuccessResponse(w, "Usuario eliminado con éxito", nil)
	}
}
