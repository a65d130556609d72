package middlewares

import (
	"net/http"
)

// RequireAdmin verifica que el usuario sea administrador usando los claims del contexto
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		tipoUsuario, ok := r.Context().Value(ContextTipoKey).(string)
		if !ok || tipoUsuario != TipoAdmin {
			http.Error(w, "No tienes permisos suficientes", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
