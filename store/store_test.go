package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/camden-git/castingvitrine/models"
	"github.com/camden-git/castingvitrine/store"
	. "github.com/smartystreets/goconvey/convey"
)

type memCache struct {
	rows       []models.Talent
	replaced   int
	listErr    error
	replaceErr error
}

func (m *memCache) ReplaceAll(t []models.Talent) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaced++
	m.rows = append([]models.Talent(nil), t...)
	return nil
}
func (m *memCache) ListAll() ([]models.Talent, error) { return m.rows, m.listErr }
func (m *memCache) GetByID(id string) (*models.Talent, error) {
	return nil, errors.New("unused")
}
func (m *memCache) Count() (int64, error) { return int64(len(m.rows)), nil }

func valid(id string) models.Talent {
	return models.Talent{ID: id, Name: "Name " + id, Age: 30, Gender: models.GenderMale, Rating: 3}
}

func fixed(ts ...models.Talent) store.SourceFunc {
	return func(context.Context) ([]models.Talent, error) { return ts, nil }
}

func failing() store.SourceFunc {
	return func(context.Context) ([]models.Talent, error) { return nil, errors.New("cms down") }
}

func TestLoader(t *testing.T) {
	ctx := context.Background()

	Convey("Given a source with one bad and one duplicate record", t, func() {
		bad := valid("x")
		bad.Rating = 7
		cache := &memCache{}
		l := &store.Loader{Source: fixed(valid("a"), bad, valid("b"), valid("a")), Cache: cache}

		cat, err := l.Load(ctx)

		Convey("Then only the clean records survive, in order", func() {
			So(err, ShouldBeNil)
			So(cat.Len(), ShouldEqual, 2)
			all := cat.All()
			So(all[0].ID, ShouldEqual, "a")
			So(all[1].ID, ShouldEqual, "b")
		})

		Convey("Then the cache is refreshed", func() {
			So(cache.replaced, ShouldEqual, 1)
			So(len(cache.rows), ShouldEqual, 2)
		})
	})

	Convey("Given a failing remote source", t, func() {
		Convey("When a cache exists", func() {
			cache := &memCache{rows: []models.Talent{valid("c1"), valid("c2")}}
			cat, err := (&store.Loader{Source: failing(), Cache: cache, FailOpen: true}).Load(ctx)
			So(err, ShouldBeNil)
			So(cat.Len(), ShouldEqual, 2)
			So(cache.replaced, ShouldEqual, 0)
		})

		Convey("When the cache cannot be read", func() {
			cache := &memCache{listErr: errors.New("disk gone")}
			cat, err := (&store.Loader{Source: failing(), Cache: cache, FailOpen: true}).Load(ctx)
			So(err, ShouldBeNil)
			So(cat.Len(), ShouldEqual, 0)
		})

		Convey("When failing open is not allowed", func() {
			_, err := (&store.Loader{Source: failing()}).Load(ctx)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a cache that cannot be written", t, func() {
		cache := &memCache{replaceErr: errors.New("read-only")}
		cat, err := (&store.Loader{Source: fixed(valid("a")), Cache: cache}).Load(ctx)
		So(err, ShouldBeNil)
		So(cat.Len(), ShouldEqual, 1)
	})
}

func TestCatalog(t *testing.T) {
	Convey("Given a catalog", t, func() {
		src := []models.Talent{valid("a"), valid("b")}
		cat := store.NewCatalog(src)

		Convey("Then lookups find records by id", func() {
			got, err := cat.Get("b")
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "Name b")
		})

		Convey("Then unknown ids report ErrTalentNotFound", func() {
			_, err := cat.Get("zzz")
			So(errors.Is(err, store.ErrTalentNotFound), ShouldBeTrue)
		})

		Convey("Then neither the source nor returned copies can change it", func() {
			src[0].Name = "changed"
			all := cat.All()
			all[1].Name = "changed"
			got, _ := cat.Get("a")
			So(got.Name, ShouldEqual, "Name a")
			So(cat.All()[1].Name, ShouldEqual, "Name b")
		})
	})
}
