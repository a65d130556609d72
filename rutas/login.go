package rutas

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	middlewares "github.com/solvens/logica_visitas/Middleware"
	"github.com/solvens/logica_visitas/db"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Usuario string `json:"usuario"`
	Clave   string `json:"clave"`
}

// Función auxiliar para verificar contraseñas
func verificarContraseña(claveGuardada, claveIntento string) bool {
	if strings.HasPrefix(claveGuardada, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(claveGuardada), []byte(claveIntento)) == nil
	}
	// contraseña en texto plano (legacy)
	return claveGuardada == claveIntento
}

// LoginUsuario valida credenciales y devuelve un JWT con id, tipo y nombre.
// Las claves legacy en texto plano siguen funcionando y se re-hashean al vuelo.
func LoginUsuario(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "Datos inválidos", err.Error())
			return
		}
		if req.Usuario == "" || req.Clave == "" {
			writeErrorResponse(w, http.StatusBadRequest, "Faltan usuario o clave", "")
			return
		}

		var u db.Usuario
		query := `SELECT u.id_usuario, u.nombre, t.tipo, u.usuario, u.clave
		          FROM usuarios u
		          JOIN tipos_usuario t ON u.id_tipo_usuario = t.id_tipo_usuario
		          WHERE u.usuario = ? LIMIT 1`
		err := dbc.DB.QueryRow(query, req.Usuario).Scan(
			&u.IDUsuario, &u.Nombre, &u.TipoUsuario, &u.Usuario, &u.Clave,
		)
		if err == sql.ErrNoRows {
			writeErrorResponse(w, http.StatusUnauthorized, "Usuario o contraseña incorrectos", "")
			return
		} else if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error de base de datos", err.Error())
			return
		}

		if !verificarContraseña(u.Clave, req.Clave) {
			writeErrorResponse(w, http.StatusUnauthorized, "Usuario o contraseña incorrectos", "")
			return
		}

		// Si la clave era legacy, re-hashear y actualizar para futuros logins
		if !strings.HasPrefix(u.Clave, "$2") {
			if hash, err := bcrypt.GenerateFromPassword([]byte(req.Clave), bcrypt.DefaultCost); err == nil {
				if _, err := dbc.DB.Exec(`UPDATE usuarios SET clave = ? WHERE id_usuario = ?`, string(hash), u.IDUsuario); err != nil {
					log.Println("[LoginUsuario] No se pudo actualizar la clave re-hasheada:", err)
				}
			}
		}

		token, err := middlewares.GenerarToken(u.IDUsuario, u.TipoUsuario, u.Nombre)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error generando token", err.Error())
			return
		}

		writeSuccessResponse(w, "Login exitoso", map[string]interface{}{
			"id":     u.IDUsuario,
			"tipo":   u.TipoUsuario,
			"nombre": u.Nombre,
			"token":  token,
		})
	}
}
