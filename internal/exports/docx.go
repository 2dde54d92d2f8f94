package exports

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/JaimeStill/pestilab/internal/labels"
)

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

	docxBorders = `<w:tblBorders>` +
		`<w:top w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`<w:left w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`<w:right w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="999999"/>` +
		`</w:tblBorders>`

	// A4 landscape in twentieths of a point.
	docxSection = `<w:sectPr><w:pgSz w:w="16838" w:h="11906" w:orient="landscape"/>` +
		`<w:pgMar w:top="720" w:right="720" w:bottom="720" w:left="720" w:header="0" w:footer="0" w:gutter="0"/></w:sectPr>`

	// Page width less both margins, in twips.
	docxTextWidth = 16838 - 2*720
)

// WriteWord writes a .docx with a bold title and one table: a bold header
// row that repeats on each page, then one row per input row.
func WriteWord(w io.Writer, rows []labels.ExportRow, title string) error {
	zw := zip.NewWriter(w)

	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", docxContentTypes},
		{"_rels/.rels", docxRels},
		{"word/document.xml", wordDocument(rows, title)},
	}

	for _, p := range parts {
		if err := writeEntry(zw, p.name, []byte(p.body)); err != nil {
			return err
		}
	}
	return zw.Close()
}

func wordDocument(rows []labels.ExportRow, title string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	b.WriteString(`<w:p><w:r><w:rPr><w:b/><w:sz w:val="28"/></w:rPr>`)
	writeText(&b, title)
	b.WriteString(`</w:r></w:p><w:p/>`)

	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/>`)
	b.WriteString(docxBorders)
	b.WriteString(`</w:tblPr>`)
	writeGrid(&b)

	b.WriteString(`<w:tr><w:trPr><w:tblHeader/></w:trPr>`)
	for _, h := range TableHeader {
		writeCell(&b, h, true)
	}
	b.WriteString(`</w:tr>`)

	for _, r := range rows {
		b.WriteString(`<w:tr>`)
		for _, v := range fields(r) {
			writeCell(&b, v, false)
		}
		b.WriteString(`</w:tr>`)
	}

	b.WriteString(`</w:tbl>`)
	b.WriteString(docxSection)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// writeGrid declares one column per header field, sized in the same
// proportions as the PDF table.
func writeGrid(b *strings.Builder) {
	var total float64
	for _, w := range pdfWidths {
		total += w
	}
	b.WriteString(`<w:tblGrid>`)
	for _, w := range pdfWidths {
		twips := int(w / total * docxTextWidth)
		b.WriteString(`<w:gridCol w:w="` + strconv.Itoa(twips) + `"/>`)
	}
	b.WriteString(`</w:tblGrid>`)
}

func writeCell(b *strings.Builder, value string, bold bool) {
	b.WriteString(`<w:tc><w:p><w:r>`)
	if bold {
		b.WriteString(`<w:rPr><w:b/></w:rPr>`)
	}
	writeText(b, value)
	b.WriteString(`</w:r></w:p></w:tc>`)
}

func writeText(b *strings.Builder, s string) {
	b.WriteString(`<w:t xml:space="preserve">`)
	xml.EscapeText(b, []byte(s))
	b.WriteString(`</w:t>`)
}
