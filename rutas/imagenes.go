package rutas

import (
	"encoding/json"
	"net/http"

	"github.com/solvens/logica_visitas/db"
)

type visitaConImagenes struct {
	IDVisita  int64        `json:"id_visita"`
	Fecha     string       `json:"fecha"`
	Repositor string       `json:"repositor"`
	Cliente   string       `json:"cliente,omitempty"`
	Cadena    string       `json:"cadena"`
	Localidad string       `json:"localidad"`
	Sucursal  string       `json:"sucursal"`
	Estado    string       `json:"estado_carga,omitempty"`
	Imagenes  []imagenItem `json:"imagenes"`
}

type imagenItem struct {
	IDImagen int64  `json:"id_imagen"`
	Ruta     string `json:"ruta"`
	Estado   string `json:"estado"`
}

// GET /api/imagenes-visitas — todas las visitas con imágenes, agrupadas por visita
func GetImagenesVisitas(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(`
			SELECT v.id_visita, v.fecha,
			       uRepo.nombre, uCliente.nombre, ca.nombre, s.localidad,
			       CONCAT(s.calle, ' ', IFNULL(s.altura, 'S/N')),
			       im.id_imagen, im.ruta_imagen, im.estado,
			       IFNULL((SELECT MIN(c.estado) FROM cargas c WHERE c.id_visita = v.id_visita), 'Pendiente')
			FROM visitas v
			JOIN usuarios uRepo    ON v.id_repo     = uRepo.id_usuario
			JOIN usuarios uCliente ON v.id_cliente  = uCliente.id_usuario
			JOIN sucursales s      ON v.id_sucursal = s.id_sucursal
			JOIN cadenas ca        ON s.id_cadena   = ca.id_cadena
			JOIN imagenes im       ON im.id_visita  = v.id_visita
			ORDER BY v.fecha DESC`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar imágenes", err.Error())
			return
		}
		defer rows.Close()

		agrupadas := map[int64]*visitaConImagenes{}
		orden := []int64{}
		for rows.Next() {
			var idVisita, idImagen int64
			var fecha, repositor, cliente, cadena, localidad, sucursal, ruta, estadoImg, estadoCarga string
			if err := rows.Scan(&idVisita, &fecha, &repositor, &cliente, &cadena, &localidad,
				&sucursal, &idImagen, &ruta, &estadoImg, &estadoCarga); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer imágenes", err.Error())
				return
			}
			v, ok := agrupadas[idVisita]
			if !ok {
				v = &visitaConImagenes{
					IDVisita:  idVisita,
					Fecha:     fecha,
					Repositor: repositor,
					Cliente:   cliente,
					Cadena:    cadena,
					Localidad: localidad,
					Sucursal:  sucursal,
					Estado:    estadoCarga,
				}
				agrupadas[idVisita] = v
				orden = append(orden, idVisita)
			}
			v.Imagenes = append(v.Imagenes, imagenItem{IDImagen: idImagen, Ruta: ruta, Estado: estadoImg})
		}

		visitas := make([]*visitaConImagenes, 0, len(orden))
		for _, id := range orden {
			visitas = append(visitas, agrupadas[id])
		}
		writeSuccessResponse(w, "Imágenes de visitas obtenidas", visitas)
	}
}

// GET /api/imagenes-aprobadas-cliente?id_cliente=N — solo visitas del cliente
// y solo imágenes aprobadas. El rol Cliente es precondición (403 si no lo es).
func GetImagenesAprobadasCliente(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idCliente, ok := idDeQuery(r, "id_cliente")
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "Falta id_cliente", "")
			return
		}
		cliente, err := esCliente(dbc, idCliente)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al validar el cliente", err.Error())
			return
		}
		if !cliente {
			writeErrorResponse(w, http.StatusForbidden, "Acceso no autorizado", "")
			return
		}

		rows, err := dbc.DB.Query(`
			SELECT v.id_visita, v.fecha, uRepo.nombre, ca.nombre, s.localidad,
			       CONCAT(s.calle, ' ', IFNULL(s.altura, 'S/N')),
			       im.id_imagen, im.ruta_imagen, im.estado
			FROM visitas v
			JOIN usuarios uRepo ON v.id_repo     = uRepo.id_usuario
			JOIN sucursales s   ON v.id_sucursal = s.id_sucursal
			JOIN cadenas ca     ON s.id_cadena   = ca.id_cadena
			JOIN imagenes im    ON im.id_visita  = v.id_visita
			WHERE v.id_cliente = ? AND im.estado = 'Aprobado'
			ORDER BY v.fecha DESC`, idCliente)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar imágenes", err.Error())
			return
		}
		defer rows.Close()

		agrupadas := map[int64]*visitaConImagenes{}
		orden := []int64{}
		for rows.Next() {
			var idVisita, idImagen int64
			var fecha, repositor, cadena, localidad, sucursal, ruta, estado string
			if err := rows.Scan(&idVisita, &fecha, &repositor, &cadena, &localidad,
				&sucursal, &idImagen, &ruta, &estado); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer imágenes", err.Error())
				return
			}
			v, ok := agrupadas[idVisita]
			if !ok {
				v = &visitaConImagenes{
					IDVisita:  idVisita,
					Fecha:     fecha,
					Repositor: repositor,
					Cadena:    cadena,
					Localidad: localidad,
					Sucursal:  sucursal,
				}
				agrupadas[idVisita] = v
				orden = append(orden, idVisita)
			}
			v.Imagenes = append(v.Imagenes, imagenItem{IDImagen: idImagen, Ruta: ruta, Estado: estado})
		}

		visitas := make([]*visitaConImagenes, 0, len(orden))
		for _, id := range orden {
			visitas = append(visitas, agrupadas[id])
		}
		writeSuccessResponse(w, "Imágenes aprobadas obtenidas", visitas)
	}
}

// PATCH /api/imagenes/{id}/estado — cambia el estado de una imagen individual
func ActualizarEstadoImagen(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idDeRuta(r)
		if !ok {
			writeErrorResponse(w, http.StatusBadRequest, "ID inválido", "")
			return
		}
		var req struct {
			Estado string `json:"estado"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || !estadoValido(req.Estado) {
			writeErrorResponse(w, http.StatusBadRequest, "Estado inválido", "")
			return
		}
		res, err := dbc.DB.Exec(`UPDATE imagenes SET estado = ? WHERE id_imagen = ?`, req.Estado, id)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al actualizar la imagen", err.Error())
			return
		}
		if filas, _ := res.RowsAffected(); filas == 0 {
			writeErrorResponse(w, http.StatusNotFound, "Imagen no encontrada", "")
			return
		}
		writeSuccessResponse(w, "Estado de la imagen actualizado", nil)
	}
}
