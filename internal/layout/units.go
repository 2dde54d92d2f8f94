package layout

import "math"

const mmPerInch = 25.4

// MMToPixels converts a physical length to output pixels at density dpi,
// with scale applied for printer calibration. Halves round up.
func MMToPixels(mm float64, density int, scale float64) int {
	return int(math.Floor(mm/mmPerInch*float64(density)*scale + 0.5))
}
