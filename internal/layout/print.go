package layout

import (
	_ "embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"strconv"
)

//go:embed print.html
var printSource string

var printTemplate = template.Must(template.New("print").Funcs(template.FuncMap{
	"mm": mm,
}).Parse(printSource))

type printCard struct {
	Card
	Style      template.CSS
	QRSrc      template.URL
	BarcodeSrc template.URL
}

type printPage struct {
	Title     string
	Font      template.CSS
	Layout    Layout
	QRSize    template.CSS
	BarHeight template.CSS
	Cards     []printCard
}

// WriteHTML renders l as a printable page sized to the profile's paper.
// Symbols that failed to encode are left out.
func WriteHTML(w io.Writer, l Layout) error {
	page := printPage{
		Title:     "Label " + l.ProfileID,
		Font:      template.CSS(l.FontFamily),
		Layout:    l,
		QRSize:    template.CSS(mm(l.QRSize * l.Scale)),
		BarHeight: template.CSS(mm(l.BarHeight * l.Scale)),
		Cards:     make([]printCard, len(l.Cards)),
	}

	for i, c := range l.Cards {
		page.Cards[i] = printCard{
			Card: c,
			Style: template.CSS(fmt.Sprintf(
				"left: %s; top: %s; width: %s; height: %s; padding: %s %s %s %s;",
				mm(c.X), mm(c.Y), mm(c.Width), mm(c.Height),
				mm(c.Margin.Top), mm(c.Margin.Right), mm(c.Margin.Bottom), mm(c.Margin.Left),
			)),
			QRSrc:      dataURI(c.QR),
			BarcodeSrc: dataURI(c.Barcode),
		}
	}

	if err := printTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("render print page: %w", err)
	}
	return nil
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "mm"
}

func dataURI(s Symbol) template.URL {
	if !s.OK() {
		return ""
	}
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(s.PNG))
}
