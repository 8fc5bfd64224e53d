package pdftext

import (
	"errors"
	"sort"
	"strings"

	"github.com/pfrederiksen/gaming-revenue/internal/table"
)

// ErrNoGrid is returned when a page has no ruled table
var ErrNoGrid = errors.New("no ruled table found")

// GridOptions tunes rule detection
type GridOptions struct {
	// LineScale sets the shortest accepted rule to the page dimension divided
	// by LineScale. Larger values accept shorter rules.
	LineScale float64
	// Tolerance is the thickness below which a rectangle counts as a rule, and
	// the distance within which rule positions are merged.
	Tolerance float64
}

// DefaultGridOptions matches the usual ruling of state revenue reports
var DefaultGridOptions = GridOptions{LineScale: 15, Tolerance: 2}

type rule struct {
	horizontal bool
	pos        float64 // Y for horizontal rules, X for vertical
	from, to   float64
}

// Grids finds every ruled table on the page, ordered top to bottom, and fills
// each cell with the text whose center falls inside it. Lines within a cell
// are joined with "\n". Columns are labeled by position.
func (p *Page) Grids(opts GridOptions) ([]*table.Table, error) {
	if opts.LineScale <= 0 {
		opts.LineScale = DefaultGridOptions.LineScale
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultGridOptions.Tolerance
	}

	rules := p.rules(opts)
	groups := connect(rules, opts.Tolerance)

	type grid struct {
		top float64
		tbl *table.Table
	}
	var grids []grid
	for _, g := range groups {
		xs, ys := positionsOf(g, opts.Tolerance)
		if len(xs) < 2 || len(ys) < 2 {
			continue
		}
		grids = append(grids, grid{top: ys[0], tbl: p.fill(xs, ys)})
	}
	if len(grids) == 0 {
		return nil, ErrNoGrid
	}

	sort.SliceStable(grids, func(i, j int) bool { return grids[i].top > grids[j].top })
	out := make([]*table.Table, len(grids))
	for i, g := range grids {
		out[i] = g.tbl
	}
	return out, nil
}

// rules turns drawn rectangles into horizontal and vertical rules. Thin
// rectangles are rules themselves; larger ones contribute their four edges.
func (p *Page) rules(opts GridOptions) []rule {
	minH := p.Width / opts.LineScale
	minV := p.Height / opts.LineScale

	var out []rule
	addH := func(y, x0, x1 float64) {
		if x1-x0 >= minH {
			out = append(out, rule{horizontal: true, pos: y, from: x0, to: x1})
		}
	}
	addV := func(x, y0, y1 float64) {
		if y1-y0 >= minV {
			out = append(out, rule{horizontal: false, pos: x, from: y0, to: y1})
		}
	}

	for _, r := range p.Rects {
		w, h := r.MaxX-r.MinX, r.MaxY-r.MinY
		switch {
		case h <= opts.Tolerance && w > opts.Tolerance:
			addH((r.MinY+r.MaxY)/2, r.MinX, r.MaxX)
		case w <= opts.Tolerance && h > opts.Tolerance:
			addV((r.MinX+r.MaxX)/2, r.MinY, r.MaxY)
		case w > opts.Tolerance && h > opts.Tolerance:
			addH(r.MinY, r.MinX, r.MaxX)
			addH(r.MaxY, r.MinX, r.MaxX)
			addV(r.MinX, r.MinY, r.MaxY)
			addV(r.MaxX, r.MinY, r.MaxY)
		}
	}
	return out
}

// connect groups rules into tables: a horizontal and a vertical rule that
// cross belong to the same table
func connect(rules []rule, tol float64) [][]rule {
	parent := make([]int, len(rules))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i, a := range rules {
		if !a.horizontal {
			continue
		}
		for j, b := range rules {
			if b.horizontal {
				continue
			}
			if b.pos >= a.from-tol && b.pos <= a.to+tol && a.pos >= b.from-tol && a.pos <= b.to+tol {
				parent[find(i)] = find(j)
			}
		}
	}

	byRoot := make(map[int][]rule)
	var roots []int
	for i, r := range rules {
		root := find(i)
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], r)
	}
	groups := make([][]rule, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, byRoot[root])
	}
	return groups
}

// positionsOf returns merged vertical rule Xs ascending and horizontal rule Ys
// descending (top first)
func positionsOf(rules []rule, tol float64) ([]float64, []float64) {
	var xs, ys []float64
	for _, r := range rules {
		if r.horizontal {
			ys = append(ys, r.pos)
		} else {
			xs = append(xs, r.pos)
		}
	}
	xs = merge(xs, tol)
	ys = merge(ys, tol)
	for i, j := 0, len(ys)-1; i < j; i, j = i+1, j-1 {
		ys[i], ys[j] = ys[j], ys[i]
	}
	return xs, ys
}

// merge sorts values and collapses runs closer than tol to their mean
func merge(vals []float64, tol float64) []float64 {
	if len(vals) == 0 {
		return nil
	}
	sort.Float64s(vals)
	var out []float64
	sum, n := vals[0], 1.0
	for _, v := range vals[1:] {
		if v-sum/n <= tol {
			sum += v
			n++
			continue
		}
		out = append(out, sum/n)
		sum, n = v, 1
	}
	return append(out, sum/n)
}

// fill places glyphs into the cells bounded by xs (ascending) and ys (descending)
func (p *Page) fill(xs, ys []float64) *table.Table {
	rows, cols := len(ys)-1, len(xs)-1
	cells := make([][][]Glyph, rows)
	for r := range cells {
		cells[r] = make([][]Glyph, cols)
	}

	for _, g := range p.Glyphs {
		cx := g.X + g.W/2
		cy := g.Y + g.Size*0.3
		c := sort.SearchFloat64s(xs, cx) - 1
		if c < 0 || c >= cols {
			continue
		}
		r := -1
		for i := 0; i < rows; i++ {
			if cy <= ys[i] && cy > ys[i+1] {
				r = i
				break
			}
		}
		if r < 0 {
			continue
		}
		cells[r][c] = append(cells[r][c], g)
	}

	records := make([][]string, rows)
	for r := range cells {
		records[r] = make([]string, cols)
		for c, glyphs := range cells[r] {
			var parts []string
			for _, l := range Lines(glyphs) {
				if l.Text != "" {
					parts = append(parts, l.Text)
				}
			}
			records[r][c] = strings.Join(parts, "\n")
		}
	}
	return table.FromRecords(records, -1)
}
