package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"os"

	// Register the container formats the decoder accepts.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// MaxFileBytes caps how much the decoder will read from disk.
const MaxFileBytes = 100 * 1024 * 1024

// DecodeError indicates the source file could not be read or is not a
// supported image. It is the only fatal error in the analysis pipeline.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DecodedImage is the raster plus container-level metadata every analyzer
// consumes. It is immutable once built and owned by a single request.
type DecodedImage struct {
	Path     string
	Format   string // png, jpeg, gif, bmp, webp, tiff
	Mode     string // rgb, rgba, gray, palette
	Width    int
	Height   int
	FileSize int64
	Raw      []byte
	Img      image.Image
	EXIF     map[string]string
	Text     map[string]string // PNG textual chunk key/value pairs
	DPI      [2]float64        // declared horizontal/vertical DPI, zero when absent
}

// DecodeFile reads and decodes an image file into a DecodedImage.
func DecodeFile(path string) (*DecodedImage, error) {
	raw, err := ReadFileBytes(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}

	bounds := img.Bounds()
	decoded := &DecodedImage{
		Path:     path,
		Format:   format,
		Mode:     colorMode(img),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		FileSize: int64(len(raw)),
		Raw:      raw,
		Img:      img,
		EXIF:     extractEXIF(raw),
		Text:     map[string]string{},
	}

	if format == "png" {
		text, dpi := parsePNGChunks(raw)
		decoded.Text = text
		decoded.DPI = dpi
	} else if format == "jpeg" {
		decoded.DPI = jpegDensity(raw, decoded.EXIF)
	}

	return decoded, nil
}

// ReadFileBytes reads a file and returns its content as a byte array.
func ReadFileBytes(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access file: %w", err)
	}
	if info.Size() > MaxFileBytes {
		return nil, fmt.Errorf("file too large (max %d bytes)", MaxFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	return data, nil
}

// colorMode maps the decoded raster type to a coarse color mode tag.
func colorMode(img image.Image) string {
	switch img.(type) {
	case *image.Paletted:
		return "palette"
	case *image.Gray, *image.Gray16:
		return "gray"
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64:
		return "rgba"
	default:
		return "rgb"
	}
}

// ToNRGBA converts any decoded raster to 8-bit NRGBA for pixel math.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Grayscale flattens the image to a row-major float matrix by averaging
// the R, G and B channels.
func Grayscale(img image.Image) [][]float64 {
	src := ToNRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	gray := make([][]float64, h)
	for y := 0; y < h; y++ {
		row := make([]float64, w)
		off := y * src.Stride
		for x := 0; x < w; x++ {
			p := off + x*4
			row[x] = (float64(src.Pix[p]) + float64(src.Pix[p+1]) + float64(src.Pix[p+2])) / 3.0
		}
		gray[y] = row
	}
	return gray
}
