// Package fingerprint computes compact visual fingerprints of images:
// an average hash, a difference hash, and a file checksum. Hashes from
// two images can be compared with HammingDistance to measure visual
// similarity regardless of re-encoding.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"image"

	"golang.org/x/image/draw"

	"screencheck/pkg/imageio"
)

// HashGridSize is the downscale grid edge; 16x16 yields a 256-bit hash.
const HashGridSize = 16

// HashBits is the number of bits in each hash.
const HashBits = HashGridSize * HashGridSize

// AverageHash downscales the image to a fixed grid, thresholds every
// pixel against the grid mean, and renders the bits as hex.
func AverageHash(img image.Image) string {
	pixels := scaleGray(img, HashGridSize, HashGridSize)

	var mean float64
	for _, p := range pixels {
		mean += p
	}
	mean /= float64(len(pixels))

	bits := make([]bool, len(pixels))
	for i, p := range pixels {
		bits[i] = p > mean
	}
	return bitsToHex(bits)
}

// DifferenceHash compares horizontally adjacent pixels of a
// (grid+1) x grid downscale, making it robust to uniform brightness
// shifts.
func DifferenceHash(img image.Image) string {
	cols := HashGridSize + 1
	pixels := scaleGray(img, cols, HashGridSize)

	bits := make([]bool, 0, HashBits)
	for row := 0; row < HashGridSize; row++ {
		for col := 0; col < HashGridSize; col++ {
			idx := row*cols + col
			bits = append(bits, pixels[idx] > pixels[idx+1])
		}
	}
	return bitsToHex(bits)
}

// HammingDistance counts differing bits between two equal-length hex
// hash strings. It returns -1 when the lengths differ or a character is
// not valid hex.
func HammingDistance(a, b string) int {
	if len(a) != len(b) {
		return -1
	}
	distance := 0
	for i := 0; i < len(a); i++ {
		na, ok1 := hexNibble(a[i])
		nb, ok2 := hexNibble(b[i])
		if !ok1 || !ok2 {
			return -1
		}
		x := na ^ nb
		for x != 0 {
			distance += int(x & 1)
			x >>= 1
		}
	}
	return distance
}

// FileChecksum computes the content digest of the raw file bytes.
func FileChecksum(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// DistinctHexChars counts how many distinct characters appear in a hex
// hash. Low counts indicate low-entropy content such as solid fills.
func DistinctHexChars(hash string) int {
	var seen [256]bool
	count := 0
	for i := 0; i < len(hash); i++ {
		if !seen[hash[i]] {
			seen[hash[i]] = true
			count++
		}
	}
	return count
}

// scaleGray resamples the image to w x h and returns row-major luma
// values using the ITU-R 601 weights.
func scaleGray(img image.Image, w, h int) []float64 {
	src := imageio.ToNRGBA(img)
	small := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(small, small.Bounds(), src, src.Bounds(), draw.Src, nil)

	pixels := make([]float64, 0, w*h)
	for y := 0; y < h; y++ {
		off := y * small.Stride
		for x := 0; x < w; x++ {
			p := off + x*4
			r := float64(small.Pix[p])
			g := float64(small.Pix[p+1])
			b := float64(small.Pix[p+2])
			pixels = append(pixels, 0.299*r+0.587*g+0.114*b)
		}
	}
	return pixels
}

func bitsToHex(bits []bool) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, (len(bits)+3)/4)
	for i := 0; i < len(bits); i += 4 {
		nibble := 0
		for j := 0; j < 4 && i+j < len(bits); j++ {
			nibble <<= 1
			if bits[i+j] {
				nibble |= 1
			}
		}
		out = append(out, digits[nibble])
	}
	return string(out)
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
