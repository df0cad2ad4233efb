package sheet

import "sort"

// IgnoreSet holds column indexes removed by Project.
type IgnoreSet map[int]struct{}

// NewIgnoreSet builds an IgnoreSet from indexes.
func NewIgnoreSet(indexes ...int) IgnoreSet {
	s := make(IgnoreSet, len(indexes))
	for _, i := range indexes {
		s[i] = struct{}{}
	}
	return s
}

// Has reports whether column i is ignored.
func (s IgnoreSet) Has(i int) bool {
	_, ok := s[i]
	return ok
}

// Indexes returns the ignored indexes in ascending order.
func (s IgnoreSet) Indexes() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Row is a data row with ignored columns removed. Full keeps the untouched
// values so columns that were filtered out stay reachable by raw index.
type Row struct {
	OriginalIndex int      `json:"originalIndex"`
	Filtered      []string `json:"filtered"`
	Full          []string `json:"full"`
}

// Title is the first kept cell, or "" for an empty row.
func (r Row) Title() string {
	return Cell(r.Filtered, 0)
}

// Raw returns the unfiltered cell at raw column index i.
func (r Row) Raw(i int) string {
	return Cell(r.Full, i)
}

// Project drops ignored columns from headers and from every row, preserving
// the relative order of the kept positions.
func Project(headers []string, rows [][]string, ignored IgnoreSet) ([]string, []Row) {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{
			OriginalIndex: i,
			Filtered:      keep(r, ignored),
			Full:          r,
		}
	}
	return keep(headers, ignored), out
}

func keep(values []string, ignored IgnoreSet) []string {
	out := make([]string, 0, len(values))
	for i, v := range values {
		if ignored.Has(i) {
			continue
		}
		out = append(out, v)
	}
	return out
}
