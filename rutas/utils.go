package rutas

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// ---------------------------
// ESTRUCTURAS DE RESPUESTA
// ---------------------------
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func writeErrorResponse(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	log.Printf("HTTP %d: %s | %s", status, message, detail)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Message: message, Detail: detail})
}

func writeSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// idDeRuta extrae y valida el parámetro {id} de la URL
func idDeRuta(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// idDeQuery extrae un parámetro numérico del query string
func idDeQuery(r *http.Request, nombre string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get(nombre), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
