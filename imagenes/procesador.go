package imagenes

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math/rand"
	"time"

	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

// TamañoMaximo es el límite por archivo subido (lo aplica el handler HTTP)
const TamañoMaximo = 2 << 20

// LadoMaximo es el lado máximo de la imagen normalizada; nunca se agranda
const LadoMaximo = 1200

const calidadJPEG = 80

var (
	ErrImagenInvalida  = errors.New("la imagen no se pudo decodificar o codificar")
	ErrImagenMuyGrande = errors.New("la imagen supera el tamaño máximo de 2MB")
)

// Procesador normaliza las fotos de visita y las escribe en el almacén
type Procesador struct {
	Almacen Almacen
}

func NuevoProcesador(almacen Almacen) *Procesador {
	return &Procesador{Almacen: almacen}
}

// Procesar decodifica la imagen, la reduce para que ningún lado supere
// LadoMaximo, la recodifica como JPEG calidad 80 y la guarda bajo un nombre
// <fechaUTC>_<idVisita>_<5 dígitos al azar>.jpg. El sufijo evita choques de
// la misma visita en el mismo segundo; no se verifica unicidad.
func (p *Procesador) Procesar(raw []byte, idVisita int64) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		// sharp aceptaba webp; el registro estándar de Go no lo trae
		if decodificada, errWebp := webp.Decode(bytes.NewReader(raw)); errWebp == nil {
			img = decodificada
		} else {
			return "", fmt.Errorf("%w: %v", ErrImagenInvalida, err)
		}
	}

	img = reducir(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: calidadJPEG}); err != nil {
		return "", fmt.Errorf("%w: %v", ErrImagenInvalida, err)
	}

	nombre := nombreArchivo(idVisita)
	if err := p.Almacen.Guardar(nombre, buf.Bytes()); err != nil {
		return "", err
	}
	return nombre, nil
}

// reducir achica la imagen conservando la proporción; si ya entra en el
// límite la devuelve tal cual
func reducir(img image.Image) image.Image {
	bounds := img.Bounds()
	ancho := bounds.Dx()
	alto := bounds.Dy()
	if ancho <= LadoMaximo && alto <= LadoMaximo {
		return img
	}

	nuevoAncho := ancho
	nuevoAlto := alto
	if ancho >= alto {
		nuevoAncho = LadoMaximo
		nuevoAlto = alto * LadoMaximo / ancho
	} else {
		nuevoAlto = LadoMaximo
		nuevoAncho = ancho * LadoMaximo / alto
	}
	if nuevoAncho < 1 {
		nuevoAncho = 1
	}
	if nuevoAlto < 1 {
		nuevoAlto = 1
	}

	reducida := image.NewRGBA(image.Rect(0, 0, nuevoAncho, nuevoAlto))
	xdraw.CatmullRom.Scale(reducida, reducida.Bounds(), img, bounds, xdraw.Over, nil)
	return reducida
}

func nombreArchivo(idVisita int64) string {
	fecha := time.Now().UTC().Format("20060102")
	sufijo := 10000 + rand.Intn(90000)
	return fmt.Sprintf("%s_%d_%05d.jpg", fecha, idVisita, sufijo)
}
