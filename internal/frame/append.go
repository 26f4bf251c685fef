package frame

// Append unions next onto acc row-wise.
//
//   - a blank (no rows, or only blank cells) next leaves acc unchanged
//   - a real next onto a blank acc replaces acc
//   - otherwise columns entirely blank within one side are dropped from that
//     side, the rows are concatenated over the union of columns, and the
//     dropped columns are restored as blank across the whole result
//
// Values are never converted, so a numeric column on one side is not turned
// into text because the other side had nothing in it.
func Append(acc, next *Table) *Table {
	if next.IsBlank() {
		return acc
	}
	if acc.IsBlank() {
		return next.Clone()
	}

	order := unionColumns(acc.Columns, next.Columns)
	accKeep := filledColumns(acc)
	nextKeep := filledColumns(next)

	out := New(order...)
	for _, r := range acc.Rows {
		out.Rows = append(out.Rows, project(r, accKeep))
	}
	for _, r := range next.Rows {
		out.Rows = append(out.Rows, project(r, nextKeep))
	}

	// restore every dropped or absent column as blank
	for _, r := range out.Rows {
		for _, c := range order {
			if _, ok := r[c]; !ok {
				r[c] = nil
			}
		}
	}
	return out
}

func filledColumns(t *Table) []string {
	var out []string
	for _, c := range t.Columns {
		if !t.AllBlank(c) {
			out = append(out, c)
		}
	}
	return out
}

func project(r Row, cols []string) Row {
	cp := make(Row, len(cols))
	for _, c := range cols {
		cp[c] = r[c]
	}
	return cp
}

func unionColumns(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, cols := range [][]string{a, b} {
		for _, c := range cols {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
