// Package pdftext reads positioned text and ruling rectangles out of PDF pages
// and rebuilds text lines, bounded text and ruled table grids from them.
package pdftext

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dslipak/pdf"
)

// Glyph is one shown character. X and Y are the baseline origin in points
// from the bottom-left of the page.
type Glyph struct {
	X, Y float64
	W    float64
	Size float64
	S    string
}

// Rect is a drawn rectangle normalized so Min is the lower-left corner
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Page is the extracted content of one page
type Page struct {
	Number int
	Width  float64
	Height float64
	Glyphs []Glyph
	Rects  []Rect
}

// Document is an open PDF file
type Document struct {
	f *os.File
	r *pdf.Reader
}

// Open opens a PDF for reading. The caller must Close it.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close() // nolint:errcheck
		return nil, fmt.Errorf("stat pdf: %w", err)
	}
	r, err := pdf.NewReader(f, st.Size())
	if err != nil {
		f.Close() // nolint:errcheck
		return nil, fmt.Errorf("reading pdf: %w", err)
	}
	return &Document{f: f, r: r}, nil
}

// Close releases the underlying file
func (d *Document) Close() error {
	return d.f.Close()
}

// NumPage returns the page count
func (d *Document) NumPage() int {
	return d.r.NumPage()
}

// Page extracts page n, counting from 1
func (d *Document) Page(n int) (page *Page, err error) {
	if n < 1 || n > d.r.NumPage() {
		return nil, fmt.Errorf("page %d out of range (1-%d)", n, d.r.NumPage())
	}
	p := d.r.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d missing", n)
	}

	// the content stream interpreter panics on malformed operators
	defer func() {
		if r := recover(); r != nil {
			page = nil
			err = fmt.Errorf("page %d: malformed content: %v", n, r)
		}
	}()

	content := p.Content()
	page = &Page{Number: n}
	page.Width, page.Height = mediaBox(p.V)

	for _, t := range content.Text {
		page.Glyphs = append(page.Glyphs, Glyph{X: t.X, Y: t.Y, W: t.W, Size: t.FontSize, S: t.S})
	}
	for _, r := range content.Rect {
		page.Rects = append(page.Rects, Rect{
			MinX: min(r.Min.X, r.Max.X),
			MinY: min(r.Min.Y, r.Max.Y),
			MaxX: max(r.Min.X, r.Max.X),
			MaxY: max(r.Min.Y, r.Max.Y),
		})
	}
	return page, nil
}

// mediaBox returns the page size, following inherited MediaBox entries and
// defaulting to US Letter
func mediaBox(v pdf.Value) (float64, float64) {
	for node := v; !node.IsNull(); node = node.Key("Parent") {
		box := node.Key("MediaBox")
		if box.Len() == 4 {
			return box.Index(2).Float64() - box.Index(0).Float64(),
				box.Index(3).Float64() - box.Index(1).Float64()
		}
	}
	return 612, 792
}

// ErrNoText is returned when a page has no extractable characters
var ErrNoText = errors.New("page has no text")

// Line is a run of glyphs sharing a baseline
type Line struct {
	Y      float64
	Text   string
	Glyphs []Glyph
}

// Lines groups glyphs into lines ordered top to bottom
func Lines(glyphs []Glyph) []Line {
	if len(glyphs) == 0 {
		return nil
	}

	sorted := append([]Glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var lines []Line
	cur := Line{Y: sorted[0].Y}
	for _, g := range sorted {
		if len(cur.Glyphs) > 0 && cur.Y-g.Y > baselineTolerance(g) {
			lines = append(lines, cur)
			cur = Line{Y: g.Y}
		}
		cur.Glyphs = append(cur.Glyphs, g)
	}
	lines = append(lines, cur)

	for i := range lines {
		lines[i].Text = joinGlyphs(lines[i].Glyphs)
	}
	return lines
}

func baselineTolerance(g Glyph) float64 {
	if g.Size > 0 {
		return g.Size * 0.3
	}
	return 2
}

// joinGlyphs orders a line's glyphs by X and inserts a space wherever the
// horizontal gap is wider than a fraction of the font size
func joinGlyphs(glyphs []Glyph) string {
	sorted := append([]Glyph(nil), glyphs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	var b strings.Builder
	var prev *Glyph
	for i := range sorted {
		g := &sorted[i]
		if prev != nil && prev.S != " " && g.S != " " {
			gap := g.X - (prev.X + prev.W)
			size := g.Size
			if size <= 0 {
				size = 10
			}
			if gap > size*0.25 {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		prev = g
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Text returns the page's lines joined by newlines
func (p *Page) Text() string {
	lines := Lines(p.Glyphs)
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Text != "" {
			out = append(out, l.Text)
		}
	}
	return strings.Join(out, "\n")
}

// Lines returns the page's non-empty text lines top to bottom
func (p *Page) Lines() []string {
	var out []string
	for _, l := range Lines(p.Glyphs) {
		if l.Text != "" {
			out = append(out, l.Text)
		}
	}
	return out
}

// TextAbove returns the text of glyphs whose baseline is at or above bottom
func (p *Page) TextAbove(bottom float64) string {
	var kept []Glyph
	for _, g := range p.Glyphs {
		if g.Y >= bottom {
			kept = append(kept, g)
		}
	}
	sub := &Page{Glyphs: kept}
	return sub.Text()
}

// ReadPages opens path and extracts every page
func ReadPages(path string) ([]*Page, error) {
	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close() // nolint:errcheck

	pages := make([]*Page, 0, doc.NumPage())
	for n := 1; n <= doc.NumPage(); n++ {
		p, err := doc.Page(n)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, nil
}
