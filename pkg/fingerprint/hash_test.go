package fingerprint

import (
	"image"
	"image/color"
	"testing"
)

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x * 255) / (w - 1))
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	return img
}

// texturedImage has enough high-frequency structure for wavelet-based
// matching to produce strong scores.
func texturedImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint8((x*7 + y*3) % 256)
			g := uint8((x * y) % 256)
			b := uint8((x + y*5) % 256)
			img.SetNRGBA(x, y, color.NRGBA{r, g, b, 255})
		}
	}
	return img
}

func solidImage(w, h int, v uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = v
		img.Pix[i+1] = v
		img.Pix[i+2] = v
		img.Pix[i+3] = 255
	}
	return img
}

func TestAverageHash_Deterministic(t *testing.T) {
	a := AverageHash(gradientImage(64, 64))
	b := AverageHash(gradientImage(64, 64))

	if a != b {
		t.Errorf("same image hashed differently: %s vs %s", a, b)
	}
	if len(a) != HashBits/4 {
		t.Errorf("hash length = %d hex chars, want %d", len(a), HashBits/4)
	}
	if HammingDistance(a, b) != 0 {
		t.Errorf("HammingDistance of identical hashes = %d, want 0", HammingDistance(a, b))
	}
}

func TestAverageHash_SolidImage(t *testing.T) {
	// No pixel exceeds the mean in a solid fill, so every bit is zero.
	hash := AverageHash(solidImage(32, 32, 200))

	if DistinctHexChars(hash) != 1 {
		t.Errorf("solid fill produced %d distinct chars, want 1: %s", DistinctHexChars(hash), hash)
	}
	for i := 0; i < len(hash); i++ {
		if hash[i] != '0' {
			t.Fatalf("solid fill hash has nonzero nibble: %s", hash)
		}
	}
}

func TestDifferenceHash_BrightnessInvariant(t *testing.T) {
	// dHash compares neighbors, so a uniform brightness shift must not
	// change it.
	img := gradientImage(64, 64)
	shifted := image.NewNRGBA(img.Rect)
	copy(shifted.Pix, img.Pix)
	for i := 0; i < len(shifted.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			if shifted.Pix[i+c] <= 215 {
				shifted.Pix[i+c] += 40
			} else {
				shifted.Pix[i+c] = 255
			}
		}
	}

	a := DifferenceHash(img)
	b := DifferenceHash(shifted)
	if d := HammingDistance(a, b); d > 20 {
		t.Errorf("brightness shift moved dHash by %d bits", d)
	}
}

func TestHammingDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"ff", "ff", 0},
		{"00", "ff", 8},
		{"0f", "00", 4},
		{"ab", "abc", -1}, // length mismatch
		{"zz", "00", -1},  // not hex
		{"", "", 0},
	}
	for _, c := range cases {
		if got := HammingDistance(c.a, c.b); got != c.want {
			t.Errorf("HammingDistance(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestFileChecksum(t *testing.T) {
	// Known MD5 of the empty input.
	if got := FileChecksum(nil); got != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("FileChecksum(nil) = %s", got)
	}
	if FileChecksum([]byte("a")) == FileChecksum([]byte("b")) {
		t.Error("different inputs produced the same checksum")
	}
}

func TestDistinctHexChars(t *testing.T) {
	if got := DistinctHexChars("0000"); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := DistinctHexChars("0123456789abcdef"); got != 16 {
		t.Errorf("got %d, want 16", got)
	}
	if got := DistinctHexChars(""); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestStore_QueryFindsNearDuplicate(t *testing.T) {
	store := NewStore()
	img := texturedImage(128, 128)
	store.Add("original.png", img)

	if store.Size() != 1 {
		t.Fatalf("Size() = %d, want 1", store.Size())
	}

	match, ok := store.Query(img)
	if !ok {
		t.Fatal("identical image not matched")
	}
	if match.ID != "original.png" {
		t.Errorf("match.ID = %s, want original.png", match.ID)
	}
	if match.Score >= SimilarityThreshold {
		t.Errorf("match.Score = %v, want below %v", match.Score, SimilarityThreshold)
	}
}

func TestStore_EmptyQuery(t *testing.T) {
	store := NewStore()
	if _, ok := store.Query(gradientImage(64, 64)); ok {
		t.Error("empty store reported a match")
	}
}

func TestCompareImages_Identical(t *testing.T) {
	img := texturedImage(128, 128)
	if score := CompareImages(img, img); score >= SimilarityThreshold {
		t.Errorf("identical images scored %v, want below %v", score, SimilarityThreshold)
	}
}
