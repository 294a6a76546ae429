package imageio

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

type exifWalker map[string]string

func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if s, err := tag.StringVal(); err == nil {
		w[string(name)] = s
	} else {
		w[string(name)] = tag.String()
	}
	return nil
}

// extractEXIF walks every EXIF tag into a flat string map. Files without
// an EXIF block simply yield an empty map.
func extractEXIF(raw []byte) map[string]string {
	out := exifWalker{}
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return out
	}
	_ = x.Walk(out)
	return out
}

// parsePNGChunks scans the raw PNG stream for textual chunks (tEXt, zTXt,
// iTXt) and the pHYs resolution chunk.
func parsePNGChunks(raw []byte) (map[string]string, [2]float64) {
	text := map[string]string{}
	var dpi [2]float64

	if !bytes.HasPrefix(raw, pngSignature) {
		return text, dpi
	}

	i := len(pngSignature)
	for i+8 <= len(raw) {
		length := int(binary.BigEndian.Uint32(raw[i : i+4]))
		ctype := string(raw[i+4 : i+8])
		start := i + 8
		end := start + length
		if length < 0 || end > len(raw) {
			break
		}
		data := raw[start:end]

		switch ctype {
		case "tEXt":
			if key, val, ok := splitKeyword(data); ok {
				text[key] = string(val)
			}
		case "zTXt":
			if key, rest, ok := splitKeyword(data); ok && len(rest) > 1 {
				// First byte is the compression method, zlib is the
				// only one defined.
				if val, err := inflate(rest[1:]); err == nil {
					text[key] = string(val)
				}
			}
		case "iTXt":
			if key, val, ok := parseITXT(data); ok {
				text[key] = val
			}
		case "pHYs":
			if length >= 9 && data[8] == 1 { // unit: pixels per metre
				dpi[0] = float64(binary.BigEndian.Uint32(data[0:4])) * 0.0254
				dpi[1] = float64(binary.BigEndian.Uint32(data[4:8])) * 0.0254
			}
		case "IEND":
			return text, dpi
		}

		i = end + 4 // skip CRC
	}
	return text, dpi
}

func splitKeyword(data []byte) (string, []byte, bool) {
	idx := bytes.IndexByte(data, 0)
	if idx <= 0 {
		return "", nil, false
	}
	return string(data[:idx]), data[idx+1:], true
}

// parseITXT handles the iTXt layout: keyword, compression flag and
// method, language tag, translated keyword, then the text itself.
func parseITXT(data []byte) (string, string, bool) {
	key, rest, ok := splitKeyword(data)
	if !ok || len(rest) < 2 {
		return "", "", false
	}
	compressed := rest[0] == 1
	rest = rest[2:]

	// Skip language tag and translated keyword.
	for n := 0; n < 2; n++ {
		idx := bytes.IndexByte(rest, 0)
		if idx < 0 {
			return "", "", false
		}
		rest = rest[idx+1:]
	}

	if compressed {
		val, err := inflate(rest)
		if err != nil {
			return "", "", false
		}
		return key, string(val), true
	}
	return key, string(rest), true
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// jpegDensity reads the declared pixel density from the JFIF APP0
// segment, falling back to the EXIF resolution tags.
func jpegDensity(raw []byte, exifTags map[string]string) [2]float64 {
	var dpi [2]float64

	if len(raw) > 20 && raw[0] == 0xFF && raw[1] == 0xD8 &&
		raw[2] == 0xFF && raw[3] == 0xE0 && bytes.Equal(raw[6:11], []byte("JFIF\x00")) {
		units := raw[13]
		x := float64(binary.BigEndian.Uint16(raw[14:16]))
		y := float64(binary.BigEndian.Uint16(raw[16:18]))
		switch units {
		case 1: // dots per inch
			dpi[0], dpi[1] = x, y
		case 2: // dots per centimetre
			dpi[0], dpi[1] = x*2.54, y*2.54
		}
	}

	if dpi[0] == 0 && dpi[1] == 0 {
		dpi[0] = parseRational(exifTags["XResolution"])
		dpi[1] = parseRational(exifTags["YResolution"])
	}
	return dpi
}

// parseRational converts an EXIF rational such as "72/1" to a float.
func parseRational(s string) float64 {
	s = strings.Trim(s, "\"")
	if s == "" {
		return 0
	}
	if num, den, found := strings.Cut(s, "/"); found {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 == nil && err2 == nil && d != 0 {
			return n / d
		}
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
