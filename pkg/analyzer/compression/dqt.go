package compression

import "encoding/binary"

// JPEG markers.
const (
	markerPrefix = 0xFF
	markerSOI    = 0xD8 // Start Of Image
	markerDQT    = 0xDB // Define Quantization Table
)

// QuantizationTable is one table parsed from a JPEG DQT segment.
type QuantizationTable struct {
	ID        int // 0-15
	Precision int // 0 = 8-bit entries, 1 = 16-bit entries
	Values    [64]int
}

// ExtractQuantizationTables scans the raw byte stream for DQT markers
// and parses every table they define. The coefficient values are the
// first 64 bytes of each table entry in stream order.
func ExtractQuantizationTables(data []byte) []QuantizationTable {
	var tables []QuantizationTable

	i := 0
	for i < len(data)-1 {
		if data[i] != markerPrefix || data[i+1] != markerDQT {
			i++
			continue
		}

		i += 2
		if i+2 > len(data) {
			break
		}
		length := int(binary.BigEndian.Uint16(data[i : i+2]))
		end := i + length
		if end > len(data) {
			end = len(data)
		}
		tableData := data[i+2 : end]

		// A single DQT segment may define several tables back to back.
		j := 0
		for j < len(tableData) {
			precisionID := tableData[j]
			precision := int(precisionID>>4) & 0x0F
			id := int(precisionID) & 0x0F
			j++

			size := 64
			if precision != 0 {
				size = 128
			}
			if j+size <= len(tableData) {
				var table QuantizationTable
				table.ID = id
				table.Precision = precision
				for k := 0; k < 64; k++ {
					table.Values[k] = int(tableData[j+k])
				}
				tables = append(tables, table)
			}
			j += size
		}
		i += length
	}

	return tables
}

// Max returns the largest coefficient in the table.
func (t *QuantizationTable) Max() int {
	m := t.Values[0]
	for _, v := range t.Values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Mean returns the average coefficient value.
func (t *QuantizationTable) Mean() float64 {
	sum := 0
	for _, v := range t.Values {
		sum += v
	}
	return float64(sum) / 64
}
