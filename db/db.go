package db

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/solvens/logica_visitas/config"

	_ "github.com/go-sql-driver/mysql"
)

type DBConnection struct {
	DB *sql.DB
}

var (
	dbConnInstance *DBConnection
	once           sync.Once
)

// ConnectDB crea y devuelve la conexión a la base de datos usando la configuración cargada
func ConnectDB() (*DBConnection, error) {
	if err := config.LoadConfig(); err != nil {
		return nil, err
	}

	conn, err := sql.Open("mysql", config.GetDBConnectionString())
	if err != nil {
		return nil, fmt.Errorf("error en conexión a la base de datos: %w", err)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error al verificar conexión: %w", err)
	}

	// Configurar pool de conexiones
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	return &DBConnection{DB: conn}, nil
}

// GetDBConnection retorna la instancia singleton de DBConnection
func GetDBConnection() (*DBConnection, error) {
	var err error
	once.Do(func() {
		dbConnInstance, err = ConnectDB()
	})
	return dbConnInstance, err
}

// Close cierra la conexión a la base de datos
func (dbc *DBConnection) Close() {
	if dbc.DB != nil {
		if err := dbc.DB.Close(); err != nil {
			fmt.Printf("Error al cerrar la conexión: %v\n", err)
		}
	}
}

// CheckConnection verifica el estado de la conexión
func (dbc *DBConnection) CheckConnection() error {
	if err := dbc.DB.Ping(); err != nil {
		return fmt.Errorf("error en conexión a la base de datos: %w", err)
	}
	return nil
}
