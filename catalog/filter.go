// Package catalog holds the pure list operations over the talent record set: filtering,
// sorting and pagination. Nothing here mutates its input.
package catalog

import (
	"strconv"
	"strings"

	"github.com/camden-git/castingvitrine/models"
	"golang.org/x/text/cases"
)

// Any is the selector sentinel meaning "no constraint".
const Any = "all"

// QuickFilter names a boolean status toggle.
type QuickFilter string

const (
	QuickOnline       QuickFilter = "online"
	QuickPremium      QuickFilter = "premium"
	QuickAvailable    QuickFilter = "available"
	QuickNew          QuickFilter = "new"
	QuickRegistration QuickFilter = "registration"
)

// QuickFilterNames lists every quick filter in display order.
var QuickFilterNames = []QuickFilter{QuickNew, QuickPremium, QuickAvailable, QuickRegistration, QuickOnline}

// QuickFilters is the set of independent status toggles. An inactive toggle imposes nothing.
type QuickFilters struct {
	Online       bool `json:"online"`
	Premium      bool `json:"premium"`
	Available    bool `json:"available"`
	New          bool `json:"new"`
	Registration bool `json:"registration"`
}

// Set switches the named toggle and reports whether the name is known.
func (q *QuickFilters) Set(name QuickFilter, on bool) bool {
	switch name {
	case QuickOnline:
		q.Online = on
	case QuickPremium:
		q.Premium = on
	case QuickAvailable:
		q.Available = on
	case QuickNew:
		q.New = on
	case QuickRegistration:
		q.Registration = on
	default:
		return false
	}
	return true
}

func (q QuickFilters) match(s models.Status) bool {
	return (!q.Online || s.Online) &&
		(!q.Premium || s.Premium) &&
		(!q.Available || s.Available) &&
		(!q.New || s.New) &&
		(!q.Registration || s.HasRegistration)
}

// Registration selector values.
const (
	RegistrationWith    = "with"
	RegistrationWithout = "without"
)

// Criteria is the user-entered filter state. The zero value matches everything.
type Criteria struct {
	Search       string            `json:"search"`
	Gender       string            `json:"gender"`
	AgeRange     string            `json:"age_range"`
	AgeFrom      string            `json:"age_from,omitempty"`
	AgeTo        string            `json:"age_to,omitempty"`
	Ethnicity    string            `json:"ethnicity,omitempty"`
	State        string            `json:"state,omitempty"`
	Registration string            `json:"registration,omitempty"`
	Categories   []models.Category `json:"categories,omitempty"`
	MinRating    float64           `json:"min_rating,omitempty"`
	Quick        QuickFilters      `json:"quick"`
}

// DefaultCriteria is what an explicit "clear filters" resets to.
func DefaultCriteria() Criteria {
	return Criteria{Gender: Any, AgeRange: Any}
}

// IsDefault reports whether no predicate is active.
func (c Criteria) IsDefault() bool {
	return c.Search == "" && isAny(c.Gender) && isAny(c.AgeRange) &&
		c.AgeFrom == "" && c.AgeTo == "" && isAny(c.Ethnicity) && isAny(c.State) &&
		isAny(c.Registration) && len(c.Categories) == 0 && c.MinRating <= 0 &&
		c.Quick == (QuickFilters{})
}

// AgeRange is a parsed age selector. A nil *AgeRange means unconstrained.
type AgeRange struct {
	Min int
	Max int // ignored when OpenEnded
	// OpenEnded ranges ("45+") match every age >= Min.
	OpenEnded bool
}

// Contains reports whether age falls within the range, bounds inclusive.
func (r AgeRange) Contains(age int) bool {
	if age < r.Min {
		return false
	}
	return r.OpenEnded || age <= r.Max
}

// ParseAgeRange parses "min-max" or "N+". The "all" sentinel, the empty string and anything
// malformed (including an inverted interval) yield nil: live filtering fails open.
func ParseAgeRange(s string) *AgeRange {
	s = strings.TrimSpace(s)
	if isAny(s) {
		return nil
	}
	if strings.HasSuffix(s, "+") {
		lo, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(s, "+")))
		if err != nil || lo < 0 {
			return nil
		}
		return &AgeRange{Min: lo, OpenEnded: true}
	}
	loStr, hiStr, ok := strings.Cut(s, "-")
	if !ok {
		return nil
	}
	lo, err := strconv.Atoi(strings.TrimSpace(loStr))
	if err != nil || lo < 0 {
		return nil
	}
	hi, err := strconv.Atoi(strings.TrimSpace(hiStr))
	if err != nil || hi < lo {
		return nil
	}
	return &AgeRange{Min: lo, Max: hi}
}

// parseBound reads an optional numeric age bound; blank or garbage means no bound.
func parseBound(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func isAny(s string) bool {
	return s == "" || strings.EqualFold(s, Any)
}

// matcher is Criteria compiled once per Filter call.
type matcher struct {
	needle       string
	fold         cases.Caser
	gender       models.Gender
	anyGender    bool
	ageRange     *AgeRange
	ageFrom      int
	hasFrom      bool
	ageTo        int
	hasTo        bool
	ethnicity    string
	state        string
	registration string
	categories   []models.Category
	minRating    float64
	quick        QuickFilters
}

func compile(c Criteria) *matcher {
	m := &matcher{
		fold:         cases.Fold(),
		anyGender:    isAny(c.Gender),
		gender:       models.Gender(c.Gender),
		ageRange:     ParseAgeRange(c.AgeRange),
		categories:   c.Categories,
		minRating:    c.MinRating,
		quick:        c.Quick,
		registration: strings.ToLower(strings.TrimSpace(c.Registration)),
	}
	if c.Search != "" {
		m.needle = m.fold.String(c.Search)
	}
	m.ageFrom, m.hasFrom = parseBound(c.AgeFrom)
	m.ageTo, m.hasTo = parseBound(c.AgeTo)
	if !isAny(c.Ethnicity) {
		m.ethnicity = c.Ethnicity
	}
	if !isAny(c.State) {
		m.state = c.State
	}
	return m
}

func (m *matcher) match(t *models.Talent) bool {
	if m.needle != "" && !strings.Contains(m.fold.String(t.Name), m.needle) {
		return false
	}
	if !m.anyGender && t.Gender != m.gender {
		return false
	}
	if m.ageRange != nil && !m.ageRange.Contains(t.Age) {
		return false
	}
	if m.hasFrom && t.Age < m.ageFrom {
		return false
	}
	if m.hasTo && t.Age > m.ageTo {
		return false
	}
	if m.ethnicity != "" && !strings.EqualFold(t.Details.Ethnicity, m.ethnicity) {
		return false
	}
	if m.state != "" && !strings.EqualFold(t.State, m.state) {
		return false
	}
	switch m.registration {
	case RegistrationWith:
		if !t.Status.HasRegistration {
			return false
		}
	case RegistrationWithout:
		if t.Status.HasRegistration {
			return false
		}
	}
	if len(m.categories) > 0 && !hasAnyCategory(t, m.categories) {
		return false
	}
	if m.minRating > 0 && t.Rating < m.minRating {
		return false
	}
	return m.quick.match(t.Status)
}

func hasAnyCategory(t *models.Talent, wanted []models.Category) bool {
	for _, c := range wanted {
		if t.HasCategory(c) {
			return true
		}
	}
	return false
}

// Filter returns the records satisfying every active predicate, in source order.
// The result never aliases records' backing array.
func Filter(records []models.Talent, c Criteria) []models.Talent {
	m := compile(c)
	out := make([]models.Talent, 0, len(records))
	for i := range records {
		if m.match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// Matches reports whether a single record satisfies c.
func Matches(t *models.Talent, c Criteria) bool {
	return compile(c).match(t)
}
