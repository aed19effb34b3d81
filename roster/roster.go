// Package roster compares a spreadsheet roster against the students Canvas
// reports as enrolled. Identifiers are SIS ids, compared as strings: rosters
// exported from student-record systems mix numeric and zero-padded forms.
package roster

import (
	"fmt"
	"strings"
	"unicode"

	"git.sr.ht/~pdg/lectern/canvas"
	"git.sr.ht/~pdg/lectern/tabular"
)

type Entry struct {
	SISID string
	Name  string
}

type Roster []Entry

// headerIsData reports whether the first record of a roster looks like a
// student row rather than column titles. Rosters exported without a header
// start directly with an SIS id, which unlike a column title is all digits.
func headerIsData(h []string) bool {
	if len(h) == 0 {
		return false
	}
	id := strings.TrimSpace(h[0])
	if id == "" {
		return false
	}
	for _, c := range id {
		if !unicode.IsDigit(c) {
			return false
		}
	}
	return true
}

// FromTable reads a roster from the first two columns of a table: SIS id,
// then name. The header row is optional; a data-like first record is folded
// back into the roster. Rows with an empty id cell are skipped.
func FromTable(t *tabular.Table) (Roster, error) {
	if t == nil {
		return nil, fmt.Errorf("roster table is empty")
	}
	r := make(Roster, 0, len(t.Rows)+1)
	if headerIsData(t.Header) {
		e := Entry{SISID: strings.TrimSpace(t.Header[0])}
		if len(t.Header) > 1 {
			e.Name = strings.TrimSpace(t.Header[1])
		}
		r = append(r, e)
	}
	for i := range t.Rows {
		id := t.Cell(i, 0)
		if id == "" {
			continue
		}
		r = append(r, Entry{SISID: id, Name: t.Cell(i, 1)})
	}
	if len(r) == 0 {
		return nil, fmt.Errorf("roster table has no usable rows")
	}
	return r, nil
}

// Diff is the two-way set difference of a roster check.
type Diff struct {
	// MissingInCanvas lists roster entries with no matching enrollment.
	MissingInCanvas Roster
	// MissingInRoster lists enrolled students absent from the roster.
	MissingInRoster []canvas.User
}

func (d Diff) Clean() bool {
	return len(d.MissingInCanvas) == 0 && len(d.MissingInRoster) == 0
}

func (d Diff) String() string {
	if d.Clean() {
		return "All students are accounted for."
	}
	b := strings.Builder{}
	if len(d.MissingInCanvas) > 0 {
		b.WriteString("Students missing in Canvas:\n")
		for _, e := range d.MissingInCanvas {
			fmt.Fprintf(&b, "- %s (ID: %s)\n", e.Name, e.SISID)
		}
	}
	if len(d.MissingInRoster) > 0 {
		b.WriteString("Students enrolled in Canvas but missing from the roster:\n")
		for _, s := range d.MissingInRoster {
			fmt.Fprintf(&b, "- %s (ID: %s)\n", s.SortableName, s.SISUserID)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Compare checks the roster against the enrolled students, both ways.
func (r Roster) Compare(enrolled []canvas.User) Diff {
	inCanvas := make(map[string]bool, len(enrolled))
	for _, s := range enrolled {
		inCanvas[strings.TrimSpace(s.SISUserID)] = true
	}
	inRoster := make(map[string]bool, len(r))
	for _, e := range r {
		inRoster[e.SISID] = true
	}

	d := Diff{}
	for _, e := range r {
		if !inCanvas[e.SISID] {
			d.MissingInCanvas = append(d.MissingInCanvas, e)
		}
	}
	for _, s := range enrolled {
		if !inRoster[strings.TrimSpace(s.SISUserID)] {
			d.MissingInRoster = append(d.MissingInRoster, s)
		}
	}
	return d
}
