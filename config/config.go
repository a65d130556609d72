package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

type DBConfig struct {
	User     string
	Password string
	DBName   string
	Host     string
	Port     int
}

type Configuration struct {
	DB        DBConfig
	DirImg    string
	JWTSecret string
	Puerto    string
}

var Config Configuration

// LoadConfig carga la configuración desde variables de entorno
func LoadConfig() error {
	// Intentar cargar el archivo .env
	if err := loadEnvFile(".env"); err != nil {
		log.Printf("Advertencia: %v", err)
	}

	var missingVars []string

	Config.DB.User = os.Getenv("DB_USER")
	if Config.DB.User == "" {
		missingVars = append(missingVars, "DB_USER")
	}

	Config.DB.Password = os.Getenv("DB_PASSWORD")
	if Config.DB.Password == "" {
		missingVars = append(missingVars, "DB_PASSWORD")
	}

	Config.DB.DBName = os.Getenv("DB_NAME")
	if Config.DB.DBName == "" {
		missingVars = append(missingVars, "DB_NAME")
	}

	Config.DB.Host = os.Getenv("DB_HOST")
	if Config.DB.Host == "" {
		missingVars = append(missingVars, "DB_HOST")
	}

	portStr := os.Getenv("DB_PORT")
	if portStr == "" {
		missingVars = append(missingVars, "DB_PORT")
	} else {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("DB_PORT no es un número válido: %w", err)
		}
		Config.DB.Port = port
	}

	// Directorio donde se guardan las imágenes de visitas
	Config.DirImg = os.Getenv("IMG_DIR")
	if Config.DirImg == "" {
		Config.DirImg = "IMG"
	}

	Config.JWTSecret = os.Getenv("JWT_SECRET")
	if Config.JWTSecret == "" {
		missingVars = append(missingVars, "JWT_SECRET")
	}

	Config.Puerto = os.Getenv("PORT")
	if Config.Puerto == "" {
		Config.Puerto = "8080"
	}

	// Verificar si faltan variables de entorno
	if len(missingVars) > 0 {
		return fmt.Errorf("faltan las siguientes variables de entorno: %s", strings.Join(missingVars, ", "))
	}

	return nil
}

// loadEnvFile carga variables desde un archivo .env
func loadEnvFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("no se pudo leer el archivo %s: %w", filename, err)
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		// Ignorar comentarios y líneas vacías
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Dividir por el primer signo igual
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Eliminar comillas si existen
		if len(value) >= 2 && (value[0] == '"' && value[len(value)-1] == '"' ||
			value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}

		// No sobrescribir si ya existe
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}

	return nil
}

// GetDBConnectionString devuelve la cadena de conexión para la base de datos
func GetDBConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		Config.DB.User,
		Config.DB.Password,
		Config.DB.Host,
		Config.DB.Port,
		Config.DB.DBName)
}
