package compression

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"strings"
	"testing"

	"screencheck/pkg/imageio"
	"screencheck/pkg/models"
)

func newReport() *models.AnalyzerReport { return models.NewAnalyzerReport() }

// blockGridImage is 64x64 with alternating flat 8px-wide column bands
// and a 1px parity dither, so boundary columns carry ~40x the
// adjacent-pixel difference of interior columns.
func blockGridImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(100 + x%2)
			if (x/8)%2 == 0 {
				v = uint8(140 + x%2)
			}
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	return img
}

// dqtStream builds a minimal byte stream containing a SOI marker and one
// DQT segment with the given payload.
func dqtStream(payload []byte) []byte {
	stream := []byte{0xFF, markerSOI, 0xFF, markerDQT}
	length := len(payload) + 2
	stream = append(stream, byte(length>>8), byte(length&0xFF))
	return append(stream, payload...)
}

func TestExtractQuantizationTables_SingleTable(t *testing.T) {
	payload := make([]byte, 65)
	payload[0] = 0x01 // precision 0, table id 1
	for i := 0; i < 64; i++ {
		payload[1+i] = byte(i + 1)
	}

	tables := ExtractQuantizationTables(dqtStream(payload))
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}

	table := tables[0]
	if table.ID != 1 || table.Precision != 0 {
		t.Errorf("ID=%d Precision=%d, want ID=1 Precision=0", table.ID, table.Precision)
	}
	if table.Values[0] != 1 || table.Values[63] != 64 {
		t.Errorf("Values[0]=%d Values[63]=%d, want 1 and 64", table.Values[0], table.Values[63])
	}
	if table.Max() != 64 {
		t.Errorf("Max() = %d, want 64", table.Max())
	}
	if table.Mean() != 32.5 {
		t.Errorf("Mean() = %v, want 32.5", table.Mean())
	}
}

func TestExtractQuantizationTables_MultipleTablesInSegment(t *testing.T) {
	payload := make([]byte, 130)
	payload[0] = 0x00 // table 0
	for i := 0; i < 64; i++ {
		payload[1+i] = 10
	}
	payload[65] = 0x01 // table 1
	for i := 0; i < 64; i++ {
		payload[66+i] = 20
	}

	tables := ExtractQuantizationTables(dqtStream(payload))
	if len(tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(tables))
	}
	if tables[0].ID != 0 || tables[1].ID != 1 {
		t.Errorf("IDs = %d,%d, want 0,1", tables[0].ID, tables[1].ID)
	}
	if tables[0].Values[0] != 10 || tables[1].Values[0] != 20 {
		t.Errorf("Values = %d,%d, want 10,20", tables[0].Values[0], tables[1].Values[0])
	}
}

func TestExtractQuantizationTables_SixteenBitPrecision(t *testing.T) {
	payload := make([]byte, 129)
	payload[0] = 0x12 // precision 1, table id 2
	for i := 0; i < 128; i++ {
		payload[1+i] = byte(i)
	}

	tables := ExtractQuantizationTables(dqtStream(payload))
	if len(tables) != 1 {
		t.Fatalf("got %d tables, want 1", len(tables))
	}
	if tables[0].Precision != 1 || tables[0].ID != 2 {
		t.Errorf("Precision=%d ID=%d, want 1 and 2", tables[0].Precision, tables[0].ID)
	}
	// Only the first 64 stream bytes become coefficient values.
	if tables[0].Values[63] != 63 {
		t.Errorf("Values[63] = %d, want 63", tables[0].Values[63])
	}
}

func TestExtractQuantizationTables_TruncatedSegment(t *testing.T) {
	payload := make([]byte, 30) // shorter than one full table
	payload[0] = 0x00

	if tables := ExtractQuantizationTables(dqtStream(payload)); len(tables) != 0 {
		t.Errorf("got %d tables from truncated segment, want 0", len(tables))
	}
}

func TestExtractQuantizationTables_NoMarker(t *testing.T) {
	if tables := ExtractQuantizationTables([]byte{0xFF, 0xD8, 0x00, 0x01, 0x02}); tables != nil {
		t.Errorf("got %v, want nil", tables)
	}
}

func TestCheckQuantizationTables_FlagsCoarseTables(t *testing.T) {
	payload := make([]byte, 65)
	for i := 0; i < 64; i++ {
		payload[1+i] = 120
	}

	a := New()
	report := newReport()
	a.checkQuantizationTables(&imageio.DecodedImage{Raw: dqtStream(payload)}, report)

	if report.Score != 10 {
		t.Errorf("Score = %d, want 10; flags: %v", report.Score, report.Flags)
	}
	if got := report.Details["qtable_0_max"].(int); got != 120 {
		t.Errorf("qtable_0_max = %d, want 120", got)
	}
}

func TestCheckDoubleCompression_SmoothGradient(t *testing.T) {
	// A horizontal gradient has identical adjacent-pixel differences at
	// boundaries and interiors, so the ratio stays near 1.
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			img.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}

	a := New()
	report := newReport()
	a.checkDoubleCompression(&imageio.DecodedImage{Img: img}, report)

	result := report.Details["double_compression"].(map[string]interface{})
	if result["detected"].(bool) {
		t.Errorf("gradient flagged as double compressed: %v", result)
	}
	ratio := result["boundary_interior_ratio"].(float64)
	if ratio < 0.9 || ratio > 1.1 {
		t.Errorf("boundary_interior_ratio = %v, want near 1", ratio)
	}
	if report.Score != 0 {
		t.Errorf("Score = %d, want 0", report.Score)
	}
}

func TestCheckDoubleCompression_BlockGridArtifacts(t *testing.T) {
	// Alternating flat blocks put large intensity jumps on every 8px
	// column boundary; a 1px dither keeps interior differences small
	// but nonzero.
	a := New()
	report := newReport()
	a.checkDoubleCompression(&imageio.DecodedImage{Img: blockGridImage()}, report)

	result := report.Details["double_compression"].(map[string]interface{})
	if !result["detected"].(bool) {
		t.Fatalf("block grid not detected: %v", result)
	}
	if result["confidence"].(int) != 100 {
		t.Errorf("confidence = %v, want 100", result["confidence"])
	}
	if report.Score != 35 {
		t.Errorf("Score = %d, want 35", report.Score)
	}
}

func TestAnalyze_JPEGRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(x * 4)
			src.SetNRGBA(x, y, color.NRGBA{v, v, v, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	decoded, err := imageio.DecodeJPEG(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}

	report, err := New().Analyze(&imageio.DecodedImage{
		Format:   "jpeg",
		Width:    64,
		Height:   64,
		FileSize: int64(buf.Len()),
		Raw:      buf.Bytes(),
		Img:      decoded,
	})
	if err != nil {
		t.Fatal(err)
	}

	// The standard encoder always writes quantization tables.
	if got := report.Details["quantization_tables_found"].(int); got < 1 {
		t.Errorf("quantization_tables_found = %d, want at least 1", got)
	}
	if _, ok := report.Details["double_compression"]; !ok {
		t.Error("missing double_compression detail")
	}
	if got := report.Details["estimated_quality"].(int); got < 50 || got > 95 {
		t.Errorf("estimated_quality = %d, want within [50,95]", got)
	}
	if len(report.Flags) == 0 {
		t.Error("flags must never be empty")
	}
}

func TestAnalyze_PNGSkipsJPEGChecks(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	report, err := New().Analyze(&imageio.DecodedImage{
		Format: "png", Width: 32, Height: 32, Img: img,
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := report.Details["double_compression"]; ok {
		t.Error("double compression check must not run for PNG input")
	}
	if report.Score != 0 {
		t.Errorf("Score = %d, want 0", report.Score)
	}
	if !strings.Contains(report.Flags[0], "No compression anomalies") {
		t.Errorf("unexpected flags: %v", report.Flags)
	}
}

func TestCheckJPEGGhosting_DetectsHiddenBlockGrid(t *testing.T) {
	// The same 8px block grid, this time inside a PNG raster.
	a := New()
	report := newReport()
	a.checkJPEGGhosting(&imageio.DecodedImage{Img: blockGridImage()}, report)

	if report.Score != 30 {
		t.Errorf("Score = %d, want 30; flags: %v", report.Score, report.Flags)
	}
	ratio := report.Details["png_jpeg_artifact_ratio"].(float64)
	if ratio <= pngArtifactRatio {
		t.Errorf("png_jpeg_artifact_ratio = %v, want above %v", ratio, pngArtifactRatio)
	}
}

func TestCheckJPEGGhosting_SkipsTinyImages(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	a := New()
	report := newReport()
	a.checkJPEGGhosting(&imageio.DecodedImage{Img: img}, report)

	if _, ok := report.Details["png_jpeg_artifact_ratio"]; ok {
		t.Error("ghosting check must skip images at or below 16px")
	}
	if report.Score != 0 {
		t.Errorf("Score = %d, want 0", report.Score)
	}
}
