package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/camden-git/castingvitrine/catalog"
	"github.com/camden-git/castingvitrine/cms"
	"github.com/camden-git/castingvitrine/database"
	"github.com/camden-git/castingvitrine/detail"
	"github.com/camden-git/castingvitrine/layout"
	"github.com/camden-git/castingvitrine/media"
	"github.com/camden-git/castingvitrine/metrics"
	"github.com/camden-git/castingvitrine/models"
	"github.com/camden-git/castingvitrine/store"
	"github.com/go-chi/chi/v5"
)

type TalentHandler struct {
	Catalog         *store.Catalog
	Sizer           layout.PageSizer
	Breakpoints     layout.Breakpoints
	Machine         layout.DisplayMachine
	DefaultPageSize int
	DB              *sql.DB          // talent cache, for facet counts; may be nil
	Metrics         *metrics.Manager // may be nil
}

type listMeta struct {
	Pagination cms.Pagination `json:"pagination"`
}

type listTalentsResponse struct {
	Data         []models.Talent  `json:"data"`
	Meta         listMeta         `json:"meta"`
	VisiblePages []int            `json:"visible_pages"`
	Criteria     catalog.Criteria `json:"criteria"`
	Sort         string           `json:"sort"`
}

// pageSize picks the page size for a list request: an explicit page_size wins, then the policy
// for the viewport width (honouring a user-selected column count), then the default.
func (th *TalentHandler) pageSize(r *http.Request) (int, error) {
	q := r.URL.Query()
	explicit, err := queryInt(q, "page_size", 0)
	if err != nil {
		return 0, err
	}
	if q.Get("page_size") != "" {
		if explicit < 1 {
			return 0, invalidParam("page_size", q.Get("page_size"), "must be positive")
		}
		return explicit, nil
	}

	width, err := queryInt(q, "width", 0)
	if err != nil {
		return 0, err
	}
	if width <= 0 {
		return th.DefaultPageSize, nil
	}

	columns, err := queryInt(q, "columns", 0)
	if err != nil {
		return 0, err
	}
	sizer := th.Sizer
	if cs, ok := sizer.(layout.ColumnPageSizer); ok && columns > 0 {
		sizer = cs.WithColumns(columns)
	}
	return sizer.PageSize(width), nil
}

// ListTalents handles GET /api/talents. A page past the end of the result set is answered with
// page 1.
func (th *TalentHandler) ListTalents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	criteria, err := parseCriteria(q)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	order := strings.TrimSpace(q.Get("sort"))
	if !catalog.IsValidSortOrder(order) {
		WriteAPIError(w, http.StatusBadRequest, CodeInvalidParameter, "invalid sort order '"+order+"'")
		return
	}
	if order == "" {
		order = catalog.SortDefault
	}
	size, err := th.pageSize(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	page, err := queryInt(q, "page", 1)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	matches := catalog.Sort(catalog.Filter(th.Catalog.All(), criteria), order)
	page = catalog.ClampPage(page, catalog.PageCount(len(matches), size))
	result := catalog.Paginate(matches, size, page)
	if th.Metrics != nil {
		th.Metrics.ObserveFilterResult(result.Total)
	}

	for i := range result.Items {
		t := &result.Items[i]
		if strings.TrimSpace(t.MainPhotoURL) == "" {
			t.MainPhotoURL = media.PlaceholderURL(detail.MainPhotoWidth, detail.MainPhotoHeight, detail.Initials(t.Name))
		}
	}

	writeJSON(w, http.StatusOK, listTalentsResponse{
		Data: result.Items,
		Meta: listMeta{Pagination: cms.Pagination{
			Page:      result.Page,
			PageSize:  result.PageSize,
			PageCount: result.PageCount,
			Total:     result.Total,
		}},
		VisiblePages: catalog.VisiblePages(result.Page, result.PageCount),
		Criteria:     criteria,
		Sort:         order,
	})
}

// GetTalent handles GET /api/talents/{talent_id} with the detail panel projection.
func (th *TalentHandler) GetTalent(w http.ResponseWriter, r *http.Request) {
	t, err := th.Catalog.Get(chi.URLParam(r, "talent_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail.Project(t, media.PlaceholderURL))
}

type filterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type ageBounds struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type filterOptionsResponse struct {
	Genders      []filterOption `json:"genders"`
	Ethnicities  []filterOption `json:"ethnicities"`
	Locations    []filterOption `json:"locations"`
	Departments  []filterOption `json:"departments"`
	Registration []filterOption `json:"registration_options"`
	QuickFilters []filterOption `json:"quick_filters"`
	AgeRanges    []filterOption `json:"age_ranges"`
	AgeRange     ageBounds      `json:"age_range"`
	SortOrders   []string       `json:"sort_orders"`
	TotalTalents int            `json:"total_talents"`
}

var ageRangeOptions = []filterOption{
	{Value: catalog.Any, Label: "All ages"},
	{Value: "18-25", Label: "18-25 years"},
	{Value: "26-35", Label: "26-35 years"},
	{Value: "36-45", Label: "36-45 years"},
	{Value: "45+", Label: "45+ years"},
}

var quickFilterLabels = map[catalog.QuickFilter]string{
	catalog.QuickNew:          "New",
	catalog.QuickPremium:      "Premium",
	catalog.QuickAvailable:    "Available",
	catalog.QuickRegistration: "With DRT",
	catalog.QuickOnline:       "Online now",
}

// FilterOptions handles GET /api/filters: the selector values with how many talents carry each.
func (th *TalentHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	all := th.Catalog.All()

	var facets database.Facets
	if th.DB != nil {
		var err error
		facets, err = database.FacetCounts(r.Context(), th.DB)
		if err != nil {
			log.Printf("handlers: facet query failed, counting in memory: %v", err)
			facets = database.Facets{}
		}
	}
	if facets.Total != len(all) {
		facets = countFacets(all)
	}

	genderCounts := make(map[string]int, len(facets.Genders))
	for _, g := range facets.Genders {
		genderCounts[g.Value] = g.Count
	}
	resp := filterOptionsResponse{
		AgeRanges:    ageRangeOptions,
		AgeRange:     ageBounds{Min: facets.AgeMin, Max: facets.AgeMax},
		SortOrders:   []string{catalog.SortDefault, catalog.SortName, catalog.SortRatingDesc, catalog.SortAgeAsc, catalog.SortAgeDesc},
		TotalTalents: len(all),
	}
	for _, g := range models.Genders {
		resp.Genders = append(resp.Genders, filterOption{Value: string(g), Label: string(g), Count: genderCounts[string(g)]})
	}
	resp.Ethnicities = toOptions(facets.Ethnicities)
	resp.Locations = toOptions(facets.States)

	var withReg int
	deptCounts := make(map[models.Category]int)
	quickCounts := make(map[catalog.QuickFilter]int)
	for i := range all {
		t := &all[i]
		if t.Status.HasRegistration {
			withReg++
		}
		for _, c := range models.Categories {
			if t.HasCategory(c) {
				deptCounts[c]++
			}
		}
		for _, qf := range catalog.QuickFilterNames {
			var qs catalog.QuickFilters
			qs.Set(qf, true)
			if catalog.Matches(t, catalog.Criteria{Quick: qs}) {
				quickCounts[qf]++
			}
		}
	}
	for _, c := range models.Categories {
		resp.Departments = append(resp.Departments, filterOption{Value: string(c), Label: c.Label(), Count: deptCounts[c]})
	}
	resp.Registration = []filterOption{
		{Value: catalog.Any, Label: "All", Count: len(all)},
		{Value: catalog.RegistrationWith, Label: "With DRT", Count: withReg},
		{Value: catalog.RegistrationWithout, Label: "Without DRT", Count: len(all) - withReg},
	}
	for _, qf := range catalog.QuickFilterNames {
		resp.QuickFilters = append(resp.QuickFilters, filterOption{Value: string(qf), Label: quickFilterLabels[qf], Count: quickCounts[qf]})
	}

	writeJSON(w, http.StatusOK, resp)
}

func toOptions(counts []database.FacetCount) []filterOption {
	out := make([]filterOption, 0, len(counts))
	for _, c := range counts {
		out = append(out, filterOption{Value: c.Value, Label: c.Value, Count: c.Count})
	}
	return out
}

// countFacets is the in-memory equivalent of database.FacetCounts, used when the cache does not
// hold the served record set.
func countFacets(all []models.Talent) database.Facets {
	f := database.Facets{Total: len(all)}
	genders := map[string]int{}
	states := map[string]int{}
	ethnicities := map[string]int{}
	for i, t := range all {
		genders[string(t.Gender)]++
		if t.State != "" {
			states[t.State]++
		}
		if t.Details.Ethnicity != "" {
			ethnicities[t.Details.Ethnicity]++
		}
		if i == 0 || t.Age < f.AgeMin {
			f.AgeMin = t.Age
		}
		if i == 0 || t.Age > f.AgeMax {
			f.AgeMax = t.Age
		}
	}
	f.Genders = sortedCounts(genders)
	f.States = sortedCounts(states)
	f.Ethnicities = sortedCounts(ethnicities)
	return f
}

// sortedCounts orders by count descending, then value, like the SQL facet query.
func sortedCounts(m map[string]int) []database.FacetCount {
	out := make([]database.FacetCount, 0, len(m))
	for v, n := range m {
		out = append(out, database.FacetCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

type layoutResponse struct {
	Width          int                 `json:"width"`
	Tier           layout.Tier         `json:"tier"`
	PageSize       int                 `json:"page_size"`
	Columns        int                 `json:"columns,omitempty"`
	InitialDisplay layout.DisplayState `json:"initial_display"`
}

// Layout handles GET /api/layout: the page size and filter bar state for a viewport.
func (th *TalentHandler) Layout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := queryInt(q, "width", 0)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if width < 0 {
		writeDomainError(w, invalidParam("width", q.Get("width"), "must not be negative"))
		return
	}
	size, err := th.pageSize(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := layoutResponse{
		Width:          width,
		Tier:           th.Breakpoints.TierFor(width),
		PageSize:       size,
		InitialDisplay: th.Machine.InitialState(width),
	}
	if cs, ok := th.Sizer.(layout.ColumnPageSizer); ok {
		columns, _ := queryInt(q, "columns", 0)
		if columns > 0 {
			cs = cs.WithColumns(columns)
		}
		resp.Columns = cs.Columns(width)
	}
	writeJSON(w, http.StatusOK, resp)
}
