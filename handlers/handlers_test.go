package handlers_test

import (
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/camden-git/castingvitrine/handlers"
	"github.com/camden-git/castingvitrine/layout"
	"github.com/camden-git/castingvitrine/media"
	"github.com/camden-git/castingvitrine/metrics"
	"github.com/camden-git/castingvitrine/models"
	"github.com/camden-git/castingvitrine/session"
	"github.com/camden-git/castingvitrine/store"
	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"
)

// fixtures builds 30 talents; every fifth one lacks a main photo, every fourth is premium.
func fixtures() []models.Talent {
	genders := []models.Gender{models.GenderFemale, models.GenderMale, models.GenderNonBinary}
	out := make([]models.Talent, 30)
	for i := range out {
		out[i] = models.Talent{
			ID:           fmt.Sprintf("t%02d", i),
			Name:         fmt.Sprintf("Talent %02d", i),
			Age:          18 + i,
			Gender:       genders[i%3],
			State:        []string{"SP", "RJ"}[i%2],
			Rating:       float64(i%5) + 0.5,
			MainPhotoURL: fmt.Sprintf("/img/%02d.jpg", i),
			Categories:   []models.Category{models.Categories[i%4]},
			Status:       models.Status{Premium: i%4 == 0, HasRegistration: i%2 == 0},
		}
		if i%5 == 0 {
			out[i].MainPhotoURL = ""
		}
	}
	out[0].Name = "Ana Souza"
	return out
}

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	h, _ := newRouterWithProcessor(t)
	return h
}

func newRouterWithProcessor(t *testing.T) (http.Handler, *media.Processor) {
	t.Helper()
	cat := store.NewCatalog(fixtures())
	sizer := layout.NewTierPageSizer()
	machine := layout.NewDisplayMachine(layout.DefaultThresholds)
	m := metrics.NewManager()

	mediaStore, err := media.NewLocalStorage(t.TempDir(), map[media.AssetType]string{
		media.AssetTypePlaceholder: "placeholders",
	})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	proc, err := media.NewProcessor(mediaStore, media.DefaultPlaceholderOptions())
	if err != nil {
		t.Fatalf("processor: %v", err)
	}

	th := &handlers.TalentHandler{
		Catalog: cat, Sizer: sizer, Breakpoints: layout.DefaultBreakpoints,
		Machine: machine, DefaultPageSize: 12, Metrics: m,
	}
	sh := &handlers.SessionHandler{Sessions: session.NewManager(cat, session.Options{
		Sizer: sizer, Machine: machine, Placeholder: media.PlaceholderURL, Observer: m,
	})}
	ph := &handlers.PlaceholderHandler{Processor: proc, Store: mediaStore, Metrics: m}
	hh := &handlers.HealthHandler{Catalog: cat, Source: "static", Started: time.Now()}

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", hh.Health)
		r.Get("/talents", th.ListTalents)
		r.Get("/talents/{talent_id}", th.GetTalent)
		r.Get("/filters", th.FilterOptions)
		r.Get("/layout", th.Layout)
		r.Route("/sessions", sh.Routes)
		r.Get("/placeholder/{width}/{height}", ph.ServePlaceholder)
		r.Get("/placeholders/*", handlers.AssetServer(mediaStore, "placeholders"))
	})
	return r, proc
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder, v interface{}) {
	So(json.Unmarshal(rec.Body.Bytes(), v), ShouldBeNil)
}

type listResponse struct {
	Data []models.Talent `json:"data"`
	Meta struct {
		Pagination struct {
			Page      int `json:"page"`
			PageSize  int `json:"pageSize"`
			PageCount int `json:"pageCount"`
			Total     int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
	VisiblePages []int `json:"visible_pages"`
}

func TestListTalents(t *testing.T) {
	Convey("Given the talent API", t, func() {
		h := newRouter(t)

		Convey("When listing without a viewport", func() {
			rec := do(h, http.MethodGet, "/api/talents", "")
			var resp listResponse
			decode(rec, &resp)

			Convey("Then the default page size is used", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(resp.Meta.Pagination.PageSize, ShouldEqual, 12)
				So(resp.Meta.Pagination.PageCount, ShouldEqual, 3)
				So(resp.Meta.Pagination.Total, ShouldEqual, 30)
				So(len(resp.Data), ShouldEqual, 12)
				So(resp.VisiblePages, ShouldResemble, []int{1, 2, 3})
			})

			Convey("Then missing main photos point at the placeholder route", func() {
				So(resp.Data[0].MainPhotoURL, ShouldEqual, "/api/placeholder/400/288?text=AS")
				So(resp.Data[1].MainPhotoURL, ShouldEqual, "/img/01.jpg")
			})
		})

		Convey("When the viewport is small", func() {
			var resp listResponse
			decode(do(h, http.MethodGet, "/api/talents?width=500&page=4", ""), &resp)
			So(resp.Meta.Pagination.PageSize, ShouldEqual, 8)
			So(resp.Meta.Pagination.Page, ShouldEqual, 4)
			So(len(resp.Data), ShouldEqual, 6)
		})

		Convey("When filters narrow the set", func() {
			var resp listResponse
			decode(do(h, http.MethodGet, "/api/talents?gender=Female&quick=premium&page_size=2", ""), &resp)
			So(resp.Meta.Pagination.Total, ShouldEqual, 3)
			So(resp.Meta.Pagination.PageCount, ShouldEqual, 2)
			for _, tal := range resp.Data {
				So(tal.Gender, ShouldEqual, models.GenderFemale)
				So(tal.Status.Premium, ShouldBeTrue)
			}
		})

		Convey("When the search is case-insensitive", func() {
			var resp listResponse
			decode(do(h, http.MethodGet, "/api/talents?search=aNa", ""), &resp)
			So(resp.Meta.Pagination.Total, ShouldEqual, 1)
			So(resp.Data[0].ID, ShouldEqual, "t00")
		})

		Convey("When the requested page is past the end", func() {
			var resp listResponse
			decode(do(h, http.MethodGet, "/api/talents?page=99", ""), &resp)
			So(resp.Meta.Pagination.Page, ShouldEqual, 1)
			So(len(resp.Data), ShouldEqual, 12)
		})

		Convey("When sorting by rating", func() {
			var resp listResponse
			decode(do(h, http.MethodGet, "/api/talents?sort=rating_desc&page_size=30", ""), &resp)
			So(resp.Data[0].Rating, ShouldEqual, 4.5)
			So(resp.Data[29].Rating, ShouldEqual, 0.5)
		})

		Convey("When parameters are invalid", func() {
			for _, q := range []string{"gender=Robot", "page=two", "page_size=0", "sort=random", "categories=Z", "quick=famous", "min_rating=9", "registration=maybe"} {
				rec := do(h, http.MethodGet, "/api/talents?"+q, "")
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				var body handlers.APIErrorResponse
				decode(rec, &body)
				So(body.Errors[0].Status, ShouldEqual, "400")
			}
		})

		Convey("When a malformed age range is given", func() {
			var resp listResponse
			decode(do(h, http.MethodGet, "/api/talents?age_range=abc", ""), &resp)
			So(resp.Meta.Pagination.Total, ShouldEqual, 30)
		})
	})
}

func TestTalentDetailAndOptions(t *testing.T) {
	Convey("Given the talent API", t, func() {
		h := newRouter(t)

		Convey("When fetching a known talent", func() {
			rec := do(h, http.MethodGet, "/api/talents/t05", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var v struct {
				Header struct {
					ID        string `json:"id"`
					MainPhoto string `json:"main_photo"`
				} `json:"header"`
			}
			decode(rec, &v)
			So(v.Header.ID, ShouldEqual, "t05")
			So(v.Header.MainPhoto, ShouldStartWith, "/api/placeholder/400/288")
		})

		Convey("When fetching an unknown talent", func() {
			rec := do(h, http.MethodGet, "/api/talents/nope", "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			var body handlers.APIErrorResponse
			decode(rec, &body)
			So(body.Errors[0].Code, ShouldEqual, handlers.CodeTalentNotFound)
		})

		Convey("When asking for filter options", func() {
			rec := do(h, http.MethodGet, "/api/filters", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var opts struct {
				Genders []struct {
					Value string `json:"value"`
					Count int    `json:"count"`
				} `json:"genders"`
				Locations []struct {
					Value string `json:"value"`
					Count int    `json:"count"`
				} `json:"locations"`
				AgeRange struct {
					Min int `json:"min"`
					Max int `json:"max"`
				} `json:"age_range"`
				TotalTalents int `json:"total_talents"`
			}
			decode(rec, &opts)
			So(opts.TotalTalents, ShouldEqual, 30)
			So(opts.Genders[0].Value, ShouldEqual, "Female")
			So(opts.Genders[0].Count, ShouldEqual, 10)
			So(len(opts.Locations), ShouldEqual, 2)
			So(opts.AgeRange.Min, ShouldEqual, 18)
			So(opts.AgeRange.Max, ShouldEqual, 47)
		})

		Convey("When asking for the layout of a viewport", func() {
			rec := do(h, http.MethodGet, "/api/layout?width=700", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			var l struct {
				Tier           string `json:"tier"`
				PageSize       int    `json:"page_size"`
				InitialDisplay struct {
					Mode   string `json:"mode"`
					Mobile bool   `json:"mobile"`
				} `json:"initial_display"`
			}
			decode(rec, &l)
			So(l.Tier, ShouldEqual, "medium")
			So(l.PageSize, ShouldEqual, 12)
			So(l.InitialDisplay.Mobile, ShouldBeTrue)
			So(l.InitialDisplay.Mode, ShouldEqual, "collapsed")
		})

		Convey("When checking health", func() {
			rec := do(h, http.MethodGet, "/api/health", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Body.String(), ShouldContainSubstring, `"talents":30`)
		})
	})
}

func TestSessionsAPI(t *testing.T) {
	Convey("Given a new desktop session", t, func() {
		h := newRouter(t)
		rec := do(h, http.MethodPost, "/api/sessions", `{"width":1280}`)
		So(rec.Code, ShouldEqual, http.StatusCreated)
		var snap session.Snapshot
		decode(rec, &snap)
		base := "/api/sessions/" + snap.ID
		So(snap.Results.PageSize, ShouldEqual, 20)

		Convey("When the client pages forward then filters", func() {
			decode(do(h, http.MethodPut, base+"/page", `{"page":2}`), &snap)
			So(snap.Results.Page, ShouldEqual, 2)

			decode(do(h, http.MethodPut, base+"/criteria", `{"gender":"Male","sort":"name"}`), &snap)
			So(snap.Results.Page, ShouldEqual, 1)
			So(snap.Results.Total, ShouldEqual, 10)
			So(snap.Sort, ShouldEqual, "name")

			decode(do(h, http.MethodDelete, base+"/criteria", ""), &snap)
			So(snap.Results.Total, ShouldEqual, 30)
		})

		Convey("When the client scrolls and toggles the filter bar", func() {
			decode(do(h, http.MethodPost, base+"/scroll", `{"offset":400}`), &snap)
			So(snap.Display.Mode, ShouldEqual, layout.Collapsed)
			decode(do(h, http.MethodPost, base+"/filter-bar", ""), &snap)
			So(snap.Display.Mode, ShouldEqual, layout.Expanded)
			rec := do(h, http.MethodPost, base+"/filter-bar", `{"mode":"sideways"}`)
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the viewport shrinks", func() {
			decode(do(h, http.MethodPut, base+"/viewport", `{"width":600}`), &snap)
			So(snap.Results.PageSize, ShouldEqual, 8)
			So(snap.Display.Mobile, ShouldBeTrue)
		})

		Convey("When a talent is opened and closed", func() {
			decode(do(h, http.MethodPut, base+"/selection", `{"talent_id":"t03"}`), &snap)
			So(snap.Selected, ShouldNotBeNil)
			So(snap.ScrollLocked, ShouldBeTrue)

			decode(do(h, http.MethodDelete, base+"/selection", ""), &snap)
			So(snap.Selected, ShouldBeNil)
			So(snap.ScrollLocked, ShouldBeFalse)

			So(do(h, http.MethodPut, base+"/selection", `{"talent_id":"ghost"}`).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the session is deleted", func() {
			So(do(h, http.MethodDelete, base, "").Code, ShouldEqual, http.StatusNoContent)
			rec := do(h, http.MethodGet, base, "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
			var body handlers.APIErrorResponse
			decode(rec, &body)
			So(body.Errors[0].Code, ShouldEqual, handlers.CodeSessionNotFound)
		})

		Convey("When a body is malformed", func() {
			So(do(h, http.MethodPut, base+"/page", `{"page":`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the criteria carry values the list endpoint rejects", func() {
			decode(do(h, http.MethodPut, base+"/page", `{"page":2}`), &snap)
			for _, body := range []string{
				`{"gender":"female"}`,
				`{"min_rating":9}`,
				`{"min_rating":-1}`,
				`{"registration":"maybe"}`,
				`{"categories":["Z"]}`,
				`{"gender":"Male","sort":"random"}`,
			} {
				rec := do(h, http.MethodPut, base+"/criteria", body)
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				var errBody handlers.APIErrorResponse
				decode(rec, &errBody)
				So(errBody.Errors[0].Code, ShouldEqual, handlers.CodeInvalidParameter)
			}

			Convey("Then the session keeps its previous state", func() {
				decode(do(h, http.MethodGet, base, ""), &snap)
				So(snap.Results.Page, ShouldEqual, 2)
				So(snap.Results.Total, ShouldEqual, 30)
				So(snap.Sort, ShouldEqual, "default")
			})
		})

		Convey("When the criteria use the any sentinel in another case", func() {
			rec := do(h, http.MethodPut, base+"/criteria", `{"gender":"ALL","registration":"With"}`)
			So(rec.Code, ShouldEqual, http.StatusOK)
			decode(rec, &snap)
			So(snap.Results.Total, ShouldEqual, 15)
		})
	})

	Convey("Given a session created without a body", t, func() {
		h := newRouter(t)
		rec := do(h, http.MethodPost, "/api/sessions", "")
		So(rec.Code, ShouldEqual, http.StatusCreated)
		var snap session.Snapshot
		decode(rec, &snap)

		Convey("Then its page size matches a list request without a width", func() {
			var list listResponse
			decode(do(h, http.MethodGet, "/api/talents", ""), &list)
			So(snap.Results.PageSize, ShouldEqual, list.Meta.Pagination.PageSize)
			So(snap.Display.Mobile, ShouldBeFalse)
		})
	})
}

func TestPlaceholderAPI(t *testing.T) {
	Convey("Given the placeholder route", t, func() {
		h := newRouter(t)

		Convey("When a placeholder of an arbitrary size is requested", func() {
			rec := do(h, http.MethodGet, "/api/placeholder/120/80?text=AS", "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldEqual, "image/jpeg")
			So(rec.Header().Get("Cache-Control"), ShouldContainSubstring, "immutable")
			So(rec.Header().Get("Content-Length"), ShouldEqual, fmt.Sprint(rec.Body.Len()))
			cfg, _, err := image.DecodeConfig(rec.Body)
			So(err, ShouldBeNil)
			So(cfg.Width, ShouldEqual, 120)
			So(cfg.Height, ShouldEqual, 80)
		})

		Convey("When a card-sized placeholder is requested twice", func() {
			first := do(h, http.MethodGet, "/api/placeholder/400/288?text=AS", "")
			second := do(h, http.MethodGet, "/api/placeholder/400/288?text=AS", "")
			So(first.Code, ShouldEqual, http.StatusOK)
			So(second.Code, ShouldEqual, http.StatusOK)
			So(second.Body.Bytes(), ShouldResemble, first.Body.Bytes())
			cfg, _, err := image.DecodeConfig(second.Body)
			So(err, ShouldBeNil)
			So(cfg.Width, ShouldEqual, 400)
			So(cfg.Height, ShouldEqual, 288)
		})

		Convey("When the dimensions are invalid", func() {
			So(do(h, http.MethodGet, "/api/placeholder/0/80", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/placeholder/abc/80", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(h, http.MethodGet, "/api/placeholder/9000/80", "").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a stored asset is requested that does not exist", func() {
			So(do(h, http.MethodGet, "/api/placeholders/missing.jpg", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(h, http.MethodGet, "/api/placeholders/.tmp-123", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given a card placeholder rendered through the API", t, func() {
		h, proc := newRouterWithProcessor(t)
		So(do(h, http.MethodGet, "/api/placeholder/300/400?text=BR", "").Code, ShouldEqual, http.StatusOK)

		Convey("Then the stored file is served by name", func() {
			rec := do(h, http.MethodGet, "/api/placeholders/"+proc.PlaceholderName(300, 400, "BR"), "")
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Cache-Control"), ShouldContainSubstring, "immutable")
			cfg, _, err := image.DecodeConfig(rec.Body)
			So(err, ShouldBeNil)
			So(cfg.Width, ShouldEqual, 300)
		})

		Convey("Then an arbitrary size leaves nothing to serve", func() {
			So(do(h, http.MethodGet, "/api/placeholder/301/400?text=BR", "").Code, ShouldEqual, http.StatusOK)
			rec := do(h, http.MethodGet, "/api/placeholders/"+proc.PlaceholderName(301, 400, "BR"), "")
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
