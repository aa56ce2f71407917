package dataset

// Table is an immutable tabular dataset with raw string cells.
// Filtered views share the header and column kinds of the table they were
// selected from and remember each row's position in the original upload.
type Table struct {
	header  []string
	index   map[string]int
	rows    [][]string
	source  []int
	numeric []bool
	opt     ParseOptions
}

func newTable(header []string, rows [][]string, opt ParseOptions) *Table {
	t := &Table{
		header: header,
		index:  make(map[string]int, len(header)),
		rows:   rows,
		source: make([]int, len(rows)),
		opt:    opt,
	}
	for i, h := range header {
		t.index[h] = i
	}
	for i := range rows {
		t.source[i] = i
	}
	t.numeric = t.inferNumeric()
	return t
}

// Columns returns a copy of the header.
func (t *Table) Columns() []string {
	out := make([]string, len(t.header))
	copy(out, t.header)
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Index looks up a column by exact name.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Cell returns the raw text of a cell.
func (t *Table) Cell(row, col int) string {
	return t.rows[row][col]
}

// Float parses a cell as a number. Empty and non-numeric cells report false.
func (t *Table) Float(row, col int) (float64, bool) {
	return parseNumeric(t.rows[row][col], t.opt)
}

// Row returns a copy of the row's cells.
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

// SourceIndex is the row's 0-based position in the originally parsed table.
func (t *Table) SourceIndex(i int) int { return t.source[i] }

// NumericColumns lists numeric columns in header order.
func (t *Table) NumericColumns() []string {
	var out []string
	for i, h := range t.header {
		if t.numeric[i] {
			out = append(out, h)
		}
	}
	return out
}

// Select returns a view holding the given rows (by position in t), in the
// given order. The receiver is not modified.
func (t *Table) Select(rows []int) *Table {
	sel := &Table{
		header:  t.header,
		index:   t.index,
		numeric: t.numeric,
		opt:     t.opt,
		rows:    make([][]string, len(rows)),
		source:  make([]int, len(rows)),
	}
	for i, r := range rows {
		sel.rows[i] = t.rows[r]
		sel.source[i] = t.source[r]
	}
	return sel
}

// Where selects the rows for which keep returns true.
func (t *Table) Where(keep func(row int) bool) *Table {
	var rows []int
	for i := range t.rows {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.Select(rows)
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n > len(t.rows) {
		n = len(t.rows)
	}
	if n < 0 {
		n = 0
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.Select(rows)
}

// Floats collects the numeric values of a column, skipping empty and
// non-numeric cells.
func (t *Table) Floats(col int) []float64 {
	out := make([]float64, 0, len(t.rows))
	for i := range t.rows {
		if x, ok := t.Float(i, col); ok {
			out = append(out, x)
		}
	}
	return out
}

func (t *Table) inferNumeric() []bool {
	kinds := make([]bool, len(t.header))
	for j := range t.header {
		seen := false
		numeric := true
		for i := range t.rows {
			v := t.rows[i][j]
			if isBlank(v) {
				continue
			}
			seen = true
			if _, ok := parseNumeric(v, t.opt); !ok {
				numeric = false
				break
			}
		}
		kinds[j] = seen && numeric
	}
	return kinds
}
