package main

import (
	"fmt"
	"log"
	"net/http"

	middlewares "github.com/solvens/logica_visitas/Middleware"
	"github.com/solvens/logica_visitas/config"
	"github.com/solvens/logica_visitas/db"
	"github.com/solvens/logica_visitas/imagenes"
	"github.com/solvens/logica_visitas/rutas"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	dbConn, err := db.GetDBConnection()
	if err != nil {
		log.Fatalf("Error al conectar a la base de datos: %v", err)
	}

	if err := dbConn.CheckConnection(); err != nil {
		log.Fatalf("Error verificando la conexión: %v", err)
	}
	fmt.Println("Conexión a la base de datos establecida correctamente")

	almacen, err := imagenes.NuevoAlmacenDisco(config.Config.DirImg)
	if err != nil {
		log.Fatalf("Error preparando el directorio de imágenes: %v", err)
	}
	procesador := imagenes.NuevoProcesador(almacen)

	r := mux.NewRouter()
	setupRoutes(r, dbConn, procesador)

	// Las imágenes procesadas se sirven estáticas
	r.PathPrefix("/img/").Handler(http.StripPrefix("/img/", http.FileServer(http.Dir(config.Config.DirImg))))

	handler := cors.AllowAll().Handler(r)

	port := config.Config.Puerto
	fmt.Printf("Servidor corriendo en http://0.0.0.0:%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}

func setupRoutes(r *mux.Router, dbConn *db.DBConnection, proc *imagenes.Procesador) {
	// Rutas públicas
	r.HandleFunc("/api/login", rutas.LoginUsuario(dbConn)).Methods("POST")

	// Catálogos (lectura, requiere sesión)
	r.Handle("/api/cadenas", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetCadenas(dbConn)))).Methods("GET")
	r.Handle("/api/tipos-cadena", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetTiposCadena(dbConn)))).Methods("GET")
	r.Handle("/api/subzonas", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetSubzonas(dbConn)))).Methods("GET")
	r.Handle("/api/zonas", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetZonas(dbConn)))).Methods("GET")
	r.Handle("/api/categorias", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetCategorias(dbConn)))).Methods("GET")
	r.Handle("/api/categorias/buscar", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.BuscarCategorias(dbConn)))).Methods("GET")
	r.Handle("/api/sucursales", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetSucursalesLista(dbConn)))).Methods("GET")
	r.Handle("/api/sucursales/buscar", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.BuscarSucursales(dbConn)))).Methods("GET")
	r.Handle("/api/mis-sucursales", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetMisSucursales(dbConn)))).Methods("GET")
	r.Handle("/api/productos/buscar", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.BuscarProductos(dbConn)))).Methods("GET")
	r.Handle("/api/productos-cliente", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetProductosCliente(dbConn)))).Methods("GET")
	r.Handle("/api/tipos-usuario", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetTiposUsuario(dbConn)))).Methods("GET")
	r.Handle("/api/usuarios/buscar", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.BuscarUsuarios(dbConn)))).Methods("GET")
	r.Handle("/api/clientes", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetClientes(dbConn)))).Methods("GET")
	r.Handle("/api/filtros-opciones", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetFiltrosOpciones(dbConn)))).Methods("GET")

	// Carga de visitas (repositores)
	r.Handle("/api/cargar-visita", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.CargarVisita(dbConn, proc)))).Methods("POST")

	// Reportes
	r.Handle("/api/reporte-visitas", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.ReporteVisitas(dbConn)))).Methods("GET")
	r.Handle("/api/reporte-visitas-cliente", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.ReporteVisitasCliente(dbConn)))).Methods("GET")
	r.Handle("/api/imagenes-visitas", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetImagenesVisitas(dbConn)))).Methods("GET")
	r.Handle("/api/imagenes-aprobadas-cliente", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetImagenesAprobadasCliente(dbConn)))).Methods("GET")
	r.Handle("/api/visitas-pendientes", middlewares.JWTAuthMiddleware(http.HandlerFunc(rutas.GetVisitasPendientes(dbConn)))).Methods("GET")

	// Administración de catálogos (solo admin)
	r.Handle("/api/cadenas", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.AddCadena(dbConn))))).Methods("POST")
	r.Handle("/api/cadenas/{id}", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.DeleteCadena(dbConn))))).Methods("DELETE")
	r.Handle("/api/sucursales", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.AddSucursal(dbConn))))).Methods("POST")
	r.Handle("/api/sucursales/{id}", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.DeleteSucursal(dbConn))))).Methods("DELETE")
	r.Handle("/api/categorias", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.AddCategoria(dbConn))))).Methods("POST")
	r.Handle("/api/categorias/{id}", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.DeleteCategoria(dbConn))))).Methods("DELETE")
	r.Handle("/api/productos", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.AddProducto(dbConn))))).Methods("POST")
	r.Handle("/api/productos/{id}", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.DeleteProducto(dbConn))))).Methods("DELETE")
	r.Handle("/api/usuarios", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.CrearUsuario(dbConn))))).Methods("POST")
	r.Handle("/api/usuarios/{id}", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.DeleteUsuario(dbConn))))).Methods("DELETE")
	r.Handle("/api/abastece", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.ActualizarAbastece(dbConn))))).Methods("PUT")

	// Revisión de visitas e imágenes (solo admin)
	r.Handle("/api/visitas/{id}/aprobar", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.AprobarVisita(dbConn))))).Methods("PATCH")
	r.Handle("/api/visitas/{id}/rechazar", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.RechazarVisita(dbConn))))).Methods("PATCH")
	r.Handle("/api/cargas/estado", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.ActualizarEstadoCarga(dbConn))))).Methods("POST")
	r.Handle("/api/imagenes/{id}/estado", middlewares.JWTAuthMiddleware(middlewares.RequireAdmin(http.HandlerFunc(rutas.ActualizarEstadoImagen(dbConn))))).Methods("PATCH")
}
