package rutas

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/url"

	"github.com/solvens/logica_visitas/db"
)

// consultaBaseReporte une toda la jerarquía de una observación: visita,
// sucursal, cadena, canal, subzona, zona, repositor, carga, producto y
// categoría. Los filtros opcionales se agregan con armarFiltrosReporte.
const consultaBaseReporte = `
	SELECT
		c.id_carga,
		v.fecha,
		ca.nombre        AS cadena,
		s.calle,
		s.altura,
		s.localidad,
		z.nombre         AS region,
		sz.nombre        AS subzona,
		tc.tipo          AS canal,
		uRepo.nombre     AS repositor,
		cat.categoria    AS categoria,
		p.descripcion    AS producto,
		p.sku,
		c.precio,
		c.oferta,
		v.id_visita,
		c.estado
	FROM visitas v
	JOIN sucursales s    ON v.id_sucursal  = s.id_sucursal
	JOIN cadenas ca      ON s.id_cadena    = ca.id_cadena
	JOIN tipos_cadena tc ON ca.id_tipo     = tc.id_tipo
	JOIN subzonas sz     ON s.id_subzona   = sz.id_subzona
	JOIN zonas z         ON sz.id_zona     = z.id_zona
	JOIN usuarios uRepo  ON v.id_repo      = uRepo.id_usuario
	JOIN cargas c        ON v.id_visita    = c.id_visita
	JOIN productos p     ON c.id_producto  = p.id_producto
	JOIN categorias cat  ON p.id_categoria = cat.id_categoria
`

// armarFiltrosReporte compone el WHERE dinámico según los query parámetros
// recibidos. Cada valor presente agrega una condición con parámetro ligado;
// los parámetros ausentes o vacíos se saltean y los desconocidos se ignoran.
// extraWhere se antepone incondicionalmente (con sus propios args). Devuelve
// "" cuando no hay condiciones.
func armarFiltrosReporte(query url.Values, extraWhere string, extraArgs []interface{}) (string, []interface{}) {
	conds := []string{}
	args := []interface{}{}

	if extraWhere != "" {
		conds = append(conds, extraWhere)
		args = append(args, extraArgs...)
	}
	if v := query.Get("fecha_desde"); v != "" {
		conds = append(conds, "v.fecha >= ?")
		args = append(args, v)
	}
	if v := query.Get("fecha_hasta"); v != "" {
		conds = append(conds, "v.fecha <= ?")
		args = append(args, v)
	}
	if v := query.Get("id_cadena"); v != "" {
		conds = append(conds, "ca.id_cadena = ?")
		args = append(args, v)
	}
	if v := query.Get("id_sucursal"); v != "" {
		conds = append(conds, "s.id_sucursal = ?")
		args = append(args, v)
	}
	if v := query.Get("id_canal"); v != "" {
		conds = append(conds, "ca.id_tipo = ?")
		args = append(args, v)
	}
	if v := query.Get("id_region"); v != "" {
		conds = append(conds, "z.id_zona = ?")
		args = append(args, v)
	}
	if v := query.Get("id_categoria"); v != "" {
		conds = append(conds, "cat.id_categoria = ?")
		args = append(args, v)
	}

	if len(conds) == 0 {
		return "", args
	}
	where := "WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

type filaReporte struct {
	IDCarga   int64   `json:"id_carga"`
	Fecha     string  `json:"fecha"`
	Cadena    string  `json:"cadena"`
	Comercio  string  `json:"comercio"`
	Localidad string  `json:"localidad"`
	Region    string  `json:"region"`
	Subzona   string  `json:"subzona"`
	Canal     string  `json:"canal"`
	Repositor string  `json:"repositor"`
	Categoria string  `json:"categoria"`
	Producto  string  `json:"producto"`
	SKU       string  `json:"sku"`
	Precio    float64 `json:"precio"`
	Oferta    bool    `json:"oferta"`
	IDVisita  int64   `json:"id_visita"`
	Estado    string  `json:"estado"`
}

func consultarReporte(dbc *db.DBConnection, where string, args []interface{}) ([]filaReporte, error) {
	rows, err := dbc.DB.Query(consultaBaseReporte+" "+where+" ORDER BY v.fecha DESC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	filas := []filaReporte{}
	for rows.Next() {
		var f filaReporte
		var calle string
		var altura sql.NullInt64
		var oferta int
		if err := rows.Scan(
			&f.IDCarga, &f.Fecha, &f.Cadena, &calle, &altura, &f.Localidad,
			&f.Region, &f.Subzona, &f.Canal, &f.Repositor, &f.Categoria,
			&f.Producto, &f.SKU, &f.Precio, &oferta, &f.IDVisita, &f.Estado,
		); err != nil {
			return nil, err
		}
		f.Comercio = calle
		if altura.Valid {
			f.Comercio = fmt.Sprintf("%s %d", calle, altura.Int64)
		}
		f.Oferta = oferta == 1
		filas = append(filas, f)
	}
	return filas, rows.Err()
}

// GET /api/reporte-visitas — reporte completo con filtros opcionales
func ReporteVisitas(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		where, args := armarFiltrosReporte(r.URL.Query(), "", nil)
		filas, err := consultarReporte(dbc, where, args)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar el reporte", err.Error())
			return
		}
		writeSuccessResponse(w, "Reporte obtenido", filas)
	}
}

// GET /api/reporte-visitas-cliente?id_cliente=N — igual al reporte completo
// pero acotado al cliente. La verificación de rol es una precondición: si el
// id no es de un Cliente se responde 403, no un resultado vacío.
func ReporteVisitasCliente(dbc *db.DBConnection) http.HandlerFunc {
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

		where, args := armarFiltrosReporte(r.URL.Query(), "v.id_cliente = ?", []interface{}{idCliente})
		filas, err := consultarReporte(dbc, where, args)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar el reporte", err.Error())
			return
		}
		writeSuccessResponse(w, "Reporte del cliente obtenido", filas)
	}
}

// GET /api/filtros-opciones — opciones para los selectores del panel de filtros
func GetFiltrosOpciones(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leer := func(query string) ([]map[string]interface{}, error) {
			rows, err := dbc.DB.Query(query)
			if err != nil {
				return nil, err
			}
			defer rows.Close()
			opciones := []map[string]interface{}{}
			for rows.Next() {
				var id int64
				var nombre string
				if err := rows.Scan(&id, &nombre); err != nil {
					return nil, err
				}
				opciones = append(opciones, map[string]interface{}{"id": id, "nombre": nombre})
			}
			return opciones, rows.Err()
		}

		cadenas, err := leer(`SELECT id_cadena, nombre FROM cadenas ORDER BY nombre`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar cadenas", err.Error())
			return
		}
		sucursales, err := leer(`SELECT id_sucursal, CONCAT(calle, ' ', IFNULL(altura, 'S/N')) FROM sucursales ORDER BY calle`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar sucursales", err.Error())
			return
		}
		canales, err := leer(`SELECT id_tipo, tipo FROM tipos_cadena ORDER BY tipo`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar canales", err.Error())
			return
		}
		regiones, err := leer(`SELECT id_zona, nombre FROM zonas ORDER BY nombre`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar regiones", err.Error())
			return
		}
		categorias, err := leer(`SELECT id_categoria, categoria FROM categorias ORDER BY categoria`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar categorías", err.Error())
			return
		}

		writeSuccessResponse(w, "Opciones de filtros obtenidas", map[string]interface{}{
			"cadenas":    cadenas,
			"sucursales": sucursales,
			"canales":    canales,
			"regiones":   regiones,
			"categorias": categorias,
		})
	}
}

// GET /api/zonas
func GetZonas(dbc *db.DBConnection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := dbc.DB.Query(`SELECT id_zona, nombre FROM zonas ORDER BY nombre`)
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "Error al consultar zonas", err.Error())
			return
		}
		defer rows.Close()

		zonas := []map[string]interface{}{}
		for rows.Next() {
			var id int64
			var nombre string
			if err := rows.Scan(&id, &nombre); err != nil {
				writeErrorResponse(w, http.StatusInternalServerError, "Error al leer zonas", err.Error())
				return
			}
			zonas = append(zonas, map[string]interface{}{"id_zona": id, "nombre": nombre})
		}
		writeSuccessResponse(w, "Zonas obtenidas", zonas)
	}
}
