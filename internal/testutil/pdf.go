// Package testutil builds small PDF and workbook fixtures for extractor tests.
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	glyphWidth = 500
	spaceWidth = 250
)

// PDF assembles a minimal single-font PDF
type PDF struct {
	pages []*PDFPage
}

// PDFPage collects drawing operators for one page
type PDFPage struct {
	Width, Height float64
	ops           bytes.Buffer
}

// NewPDF creates an empty document
func NewPDF() *PDF {
	return &PDF{}
}

// AddPage appends a page of the given size in points
func (p *PDF) AddPage(width, height float64) *PDFPage {
	pg := &PDFPage{Width: width, Height: height}
	p.pages = append(p.pages, pg)
	return pg
}

// TextWidth returns the drawn width of s at size
func TextWidth(s string, size float64) float64 {
	w := 0.0
	for _, r := range s {
		if r == ' ' {
			w += spaceWidth
		} else {
			w += glyphWidth
		}
	}
	return w / 1000 * size
}

// Text draws s with its baseline origin at x, y
func (pg *PDFPage) Text(x, y, size float64, s string) *PDFPage {
	fmt.Fprintf(&pg.ops, "BT /F1 %g Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n", size, x, y, escape(s))
	return pg
}

// Lines draws each entry of lines on its own baseline, starting at y and
// moving down by size+2
func (pg *PDFPage) Lines(x, y, size float64, lines ...string) *PDFPage {
	for i, l := range lines {
		pg.Text(x, y-float64(i)*(size+2), size, l)
	}
	return pg
}

// Rect strokes a rectangle
func (pg *PDFPage) Rect(x, y, w, h float64) *PDFPage {
	fmt.Fprintf(&pg.ops, "%g %g %g %g re S\n", x, y, w, h)
	return pg
}

// Grid draws a ruled table whose top-left corner is at x, top. Cells may hold
// several lines separated by "\n".
func (pg *PDFPage) Grid(x, top float64, colWidths []float64, rowHeight, size float64, cells [][]string) *PDFPage {
	total := 0.0
	for _, w := range colWidths {
		total += w
	}
	height := rowHeight * float64(len(cells))

	for r := 0; r <= len(cells); r++ {
		pg.Rect(x, top-float64(r)*rowHeight, total, 0.5)
	}
	cx := x
	for c := 0; c <= len(colWidths); c++ {
		pg.Rect(cx, top-height, 0.5, height)
		if c < len(colWidths) {
			cx += colWidths[c]
		}
	}

	for r, row := range cells {
		cx := x
		for c, cell := range row {
			if c >= len(colWidths) {
				break
			}
			if cell != "" {
				pg.Lines(cx+2, top-float64(r)*rowHeight-size-1, size, strings.Split(cell, "\n")...)
			}
			cx += colWidths[c]
		}
	}
	return pg
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

// Bytes serializes the document with a correct cross-reference table
func (p *PDF) Bytes() []byte {
	var objs []string

	// 1 catalog, 2 page tree, 3 font, then a page and content stream per page
	kids := make([]string, len(p.pages))
	for i := range p.pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objs = append(objs,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(p.pages)),
		fontObject(),
	)
	for i, pg := range p.pages {
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pg.Width, pg.Height, 5+2*i)
		content := pg.ops.String()
		stream := fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content)
		objs = append(objs, page, stream)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func fontObject() string {
	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		if c == ' ' {
			widths = append(widths, fmt.Sprint(spaceWidth))
		} else {
			widths = append(widths, fmt.Sprint(glyphWidth))
		}
	}
	return fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [%s] >>",
		strings.Join(widths, " "))
}

// WriteFile writes the document into dir and returns its path
func (p *PDF) WriteFile(t testing.TB, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, p.Bytes(), 0644); err != nil {
		t.Fatalf("writing pdf fixture: %v", err)
	}
	return path
}
