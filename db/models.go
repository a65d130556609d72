package db

import (
	"time"
)

// Estados de revisión de cargas e imágenes
const (
	EstadoPendiente = "Pendiente"
	EstadoAprobado  = "Aprobado"
	EstadoRechazado = "Rechazado"
)

// Visita representa una visita de un repositor a una sucursal por cuenta de un cliente
type Visita struct {
	IDVisita   int64     `json:"id_visita"`
	Fecha      time.Time `json:"fecha"`
	IDRepo     int64     `json:"id_repo"`
	IDCliente  int64     `json:"id_cliente"`
	IDSucursal int64     `json:"id_sucursal"`
}

// ProductoCargado es una observación de precio dentro de una visita
type ProductoCargado struct {
	IDProducto int64   `json:"id_prod"`
	Precio     float64 `json:"precio"`
	Oferta     bool    `json:"oferta"`
}

// Carga es el renglón persistido de una observación, con su estado de revisión
type Carga struct {
	IDCarga    int64   `json:"id_carga"`
	IDVisita   int64   `json:"id_visita"`
	IDProducto int64   `json:"id_producto"`
	Precio     float64 `json:"precio"`
	Oferta     bool    `json:"oferta"`
	Estado     string  `json:"estado"`
}

// Imagen es la fila de metadatos de una foto subida con la visita
type Imagen struct {
	IDImagen   int64  `json:"id_imagen"`
	IDVisita   int64  `json:"id_visita"`
	RutaImagen string `json:"ruta_imagen"`
	Estado     string `json:"estado"`
}

type Usuario struct {
	IDUsuario   int64  `json:"id_usuario"`
	Nombre      string `json:"nombre"`
	TipoUsuario string `json:"tipo_usuario"`
	Mail        string `json:"mail"`
	Usuario     string `json:"usuario"`
	Clave       string `json:"-"`
}

type Cadena struct {
	IDCadena int64  `json:"id_cadena"`
	Nombre   string `json:"nombre"`
	IDTipo   int64  `json:"id_tipo"`
}

type Sucursal struct {
	IDSucursal int64  `json:"id_sucursal"`
	Calle      string `json:"calle"`
	Altura     int    `json:"altura"`
	Localidad  string `json:"localidad"`
	IDSubzona  int64  `json:"id_subzona"`
	IDCadena   int64  `json:"id_cadena"`
}

type Producto struct {
	IDProducto  int64  `json:"id_producto"`
	IDCliente   int64  `json:"id_cliente"`
	Descripcion string `json:"descripcion"`
	IDCategoria int64  `json:"id_categoria"`
	SKU         string `json:"sku"`
}
