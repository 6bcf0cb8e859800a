// Package layout maps client viewport signals to presentation decisions: how many cards a page
// holds and whether the filter bar renders expanded or collapsed.
package layout

// Tier is a viewport width class.
type Tier string

const (
	TierSmall  Tier = "small"
	TierMedium Tier = "medium"
	TierLarge  Tier = "large"
)

// Breakpoints are the width thresholds between tiers, in CSS pixels.
type Breakpoints struct {
	Small int // widths below this are TierSmall
	Large int // widths at or above this are TierLarge
}

// DefaultBreakpoints matches the sm/lg breakpoints of the catalog UI.
var DefaultBreakpoints = Breakpoints{Small: 640, Large: 1024}

// TierFor classifies a viewport width.
func (b Breakpoints) TierFor(width int) Tier {
	switch {
	case width < b.Small:
		return TierSmall
	case width < b.Large:
		return TierMedium
	default:
		return TierLarge
	}
}

// PageSizer picks a page size for a viewport. Implementations are pure.
type PageSizer interface {
	PageSize(width int) int
}

// TierPageSizer maps each width tier to a fixed page size.
type TierPageSizer struct {
	Breakpoints Breakpoints
	Small       int
	Medium      int
	Large       int
}

// NewTierPageSizer returns the 8/12/20 policy on the default breakpoints.
func NewTierPageSizer() TierPageSizer {
	return TierPageSizer{Breakpoints: DefaultBreakpoints, Small: 8, Medium: 12, Large: 20}
}

func (p TierPageSizer) PageSize(width int) int {
	switch p.Breakpoints.TierFor(width) {
	case TierSmall:
		return atLeastOne(p.Small)
	case TierMedium:
		return atLeastOne(p.Medium)
	default:
		return atLeastOne(p.Large)
	}
}

// ColumnStep is the grid column count used from MinWidth upwards.
type ColumnStep struct {
	MinWidth int
	Columns  int
}

// DefaultColumnSteps mirrors the card grid: 1 column, 2 from md, 3 from lg, 4 from xl.
var DefaultColumnSteps = []ColumnStep{{0, 1}, {768, 2}, {1024, 3}, {1280, 4}}

// ColumnPageSizer sizes a page as whole rows of the grid: columns(width) * RowsPerPage.
type ColumnPageSizer struct {
	Steps       []ColumnStep // ascending by MinWidth
	RowsPerPage int
	// MaxColumns caps the column count, e.g. when the user picked a denser or sparser grid.
	// Zero means no cap.
	MaxColumns int
}

// NewColumnPageSizer returns a column policy on the default grid steps.
func NewColumnPageSizer(rows int) ColumnPageSizer {
	return ColumnPageSizer{Steps: DefaultColumnSteps, RowsPerPage: rows}
}

// Columns returns the grid column count for width.
func (p ColumnPageSizer) Columns(width int) int {
	cols := 1
	for _, s := range p.Steps {
		if width >= s.MinWidth {
			cols = s.Columns
		}
	}
	if p.MaxColumns > 0 && cols > p.MaxColumns {
		cols = p.MaxColumns
	}
	return atLeastOne(cols)
}

func (p ColumnPageSizer) PageSize(width int) int {
	return p.Columns(width) * atLeastOne(p.RowsPerPage)
}

// WithColumns returns a copy capped at the user-selected column count.
func (p ColumnPageSizer) WithColumns(n int) ColumnPageSizer {
	p.MaxColumns = n
	return p
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
