package domain

import "fmt"

// Raw material identifier. The material set is fixed: every collection point
// reports a volume and a price for each of them.
type Material string

const (
	MaterialA Material = "A"
	MaterialB Material = "B"
	MaterialC Material = "C"
	MaterialD Material = "D"
	MaterialE Material = "E"
)

// DefaultSpecialMaterial is the material whose inbound freight is a flat rate.
const DefaultSpecialMaterial = MaterialE

// Materials lists the fixed material set in canonical order.
var Materials = []Material{MaterialA, MaterialB, MaterialC, MaterialD, MaterialE}

// ParseMaterial accepts "A".."E" as well as the spreadsheet form "RawMaterialA".
func ParseMaterial(s string) (Material, error) {
	if len(s) > len("RawMaterial") && s[:len("RawMaterial")] == "RawMaterial" {
		s = s[len("RawMaterial"):]
	}
	for _, m := range Materials {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("parse material: unknown material %q", s)
}

// Label returns the reporting name used for per-material totals.
func (m Material) Label() string { return "RawMaterial" + string(m) }
