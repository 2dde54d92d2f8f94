package profiles

// DefaultID is the profile used when no valid selection is stored.
const DefaultID = "Zebra_50x25_203"

func common(p Profile) Profile {
	p.FontFamily = "'Inter','Helvetica',Arial,sans-serif"
	p.QRLevel = "M"
	p.BarcodeFormat = "CODE128"
	if p.QRSize == 0 {
		p.QRSize = 24
	}
	if p.BarcodeHeight == 0 {
		p.BarcodeHeight = 12
	}
	if p.Density == 0 {
		p.Density = 203
	}
	if p.Scale == 0 {
		p.Scale = 1
	}
	return p
}

func a4(rows, cols int, label Size) *Sheet {
	return &Sheet{
		Page:  Size{Width: 210, Height: 297},
		Grid:  Grid{Rows: rows, Cols: cols, GutterX: 2.5},
		Label: label,
	}
}

// catalog lists every profile in display order.
var catalog = []Profile{
	common(Profile{ID: "Zebra_40x20_203", DisplayName: "Zebra 40×20 mm (203dpi)", Width: 40, Height: 20, Margin: Uniform(1)}),
	common(Profile{ID: "Zebra_50x25_203", DisplayName: "Zebra 50×25 mm (203dpi)", Width: 50, Height: 25, Margin: Uniform(1)}),
	common(Profile{ID: "Zebra_58x40_300", DisplayName: "Zebra 58×40 mm (300dpi)", Width: 58, Height: 40, Margin: Uniform(1.5), Density: 300, QRSize: 26, BarcodeHeight: 14}),
	common(Profile{ID: "TSC_40x30_203", DisplayName: "TSC 40×30 mm (203dpi)", Width: 40, Height: 30, Margin: Uniform(1)}),
	common(Profile{ID: "Godex_60x40_203", DisplayName: "Godex 60×40 mm (203dpi)", Width: 60, Height: 40, Margin: Uniform(2), QRSize: 28, BarcodeHeight: 16}),
	common(Profile{ID: "Generic_70x50_300", DisplayName: "Generic 70×50 mm (300dpi)", Width: 70, Height: 50, Margin: Uniform(2), Density: 300, QRSize: 30, BarcodeHeight: 18}),
	common(Profile{ID: "A4_3x8_63.5x38.1", DisplayName: "A4 3×8 (63.5×38.1 mm)", Sheet: a4(8, 3, Size{Width: 63.5, Height: 38.1}), Density: 300, QRSize: 22, BarcodeHeight: 14}),
	common(Profile{ID: "A4_2x7_99.1x67.7", DisplayName: "A4 2×7 (99.1×67.7 mm)", Sheet: a4(7, 2, Size{Width: 99.1, Height: 67.7}), Density: 300, QRSize: 26, BarcodeHeight: 16}),
	common(Profile{ID: "Zebra_50x25_203_cal102", DisplayName: "Zebra 50×25 mm (203dpi, +2% scale)", Width: 50, Height: 25, Margin: Uniform(1), Scale: 1.02}),
}
