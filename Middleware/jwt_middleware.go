package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/solvens/logica_visitas/config"
)

// Tipos de usuario reconocidos en el token
const (
	TipoAdmin     = "Admin"
	TipoRepositor = "Repositor"
	TipoCliente   = "Cliente"
)

type Claims struct {
	ID     int64  `json:"id"`
	Tipo   string `json:"tipo"`
	Nombre string `json:"nombre"`
	jwt.RegisteredClaims
}

// Claves para contexto
type contextKey string

const (
	ContextUserIDKey contextKey = "userID"
	ContextTipoKey   contextKey = "tipo"
	ContextNombreKey contextKey = "nombre"
)

func claveJWT() []byte {
	return []byte(config.Config.JWTSecret)
}

// GenerarToken crea un JWT firmado para el usuario, válido por 12 horas
func GenerarToken(id int64, tipo, nombre string) (string, error) {
	claims := &Claims{
		ID:     id,
		Tipo:   tipo,
		Nombre: nombre,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(12 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(claveJWT())
}

// Middleware JWT para rutas protegidas
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "Token faltante o inválido", http.StatusUnauthorized)
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
			return claveJWT(), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "Token inválido o expirado", http.StatusUnauthorized)
			return
		}

		if claims.Tipo != TipoAdmin && claims.Tipo != TipoRepositor && claims.Tipo != TipoCliente {
			http.Error(w, "Tipo de usuario no permitido", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserIDKey, claims.ID)
		ctx = context.WithValue(ctx, ContextTipoKey, claims.Tipo)
		ctx = context.WithValue(ctx, ContextNombreKey, claims.Nombre)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recuperar datos del usuario autenticado desde el contexto
func GetUserFromContext(r *http.Request) (id int64, tipo string, nombre string) {
	if val := r.Context().Value(ContextUserIDKey); val != nil {
		id, _ = val.(int64)
	}
	if val := r.Context().Value(ContextTipoKey); val != nil {
		tipo, _ = val.(string)
	}
	if val := r.Context().Value(ContextNombreKey); val != nil {
		nombre, _ = val.(string)
	}
	return
}
