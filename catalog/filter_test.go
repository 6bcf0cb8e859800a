package catalog_test

import (
	"fmt"
	"testing"

	"github.com/camden-git/castingvitrine/catalog"
	"github.com/camden-git/castingvitrine/models"
	. "github.com/smartystreets/goconvey/convey"
)

func talent(id, name string, age int, gender models.Gender) models.Talent {
	return models.Talent{ID: id, Name: name, Age: age, Gender: gender, Rating: 4}
}

func ids(ts []models.Talent) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.ID
	}
	return out
}

// fiftyTalents builds a deterministic set of 50 records with exactly three
// premium women whose name contains "ana".
func fiftyTalents() []models.Talent {
	genders := []models.Gender{models.GenderFemale, models.GenderMale, models.GenderNonBinary}
	out := make([]models.Talent, 0, 50)
	for i := 0; i < 50; i++ {
		t := talent(fmt.Sprintf("t%02d", i), fmt.Sprintf("Person %02d", i), 18+i, genders[i%3])
		out = append(out, t)
	}
	// matches
	out[3].Name, out[3].Gender, out[3].Status.Premium = "Ana Souza", models.GenderFemale, true
	out[17].Name, out[17].Gender, out[17].Status.Premium = "Juliana Prado", models.GenderFemale, true
	out[40].Name, out[40].Gender, out[40].Status.Premium = "MARIANA Lopes", models.GenderFemale, true
	// near misses: one dimension off each
	out[5].Name, out[5].Gender, out[5].Status.Premium = "Ana Lima", models.GenderFemale, false
	out[8].Name, out[8].Gender, out[8].Status.Premium = "Anaís Costa", models.GenderMale, true
	out[11].Name, out[11].Gender, out[11].Status.Premium = "Beatriz", models.GenderFemale, true
	return out
}

func TestFilter(t *testing.T) {
	Convey("Given the 50 record set", t, func() {
		records := fiftyTalents()

		Convey("When no predicate is active", func() {
			got := catalog.Filter(records, catalog.DefaultCriteria())

			Convey("Then the full input is returned unchanged and in order", func() {
				So(ids(got), ShouldResemble, ids(records))
			})
		})

		Convey("When searching 'Ana' for premium women", func() {
			c := catalog.DefaultCriteria()
			c.Search = "Ana"
			c.Gender = string(models.GenderFemale)
			c.Quick.Premium = true
			got := catalog.Filter(records, c)

			Convey("Then only the three full matches remain, in source order", func() {
				So(ids(got), ShouldResemble, []string{"t03", "t17", "t40"})
			})

			Convey("And they fit on a single page of 12", func() {
				page := catalog.Paginate(got, 12, 1)
				So(page.PageCount, ShouldEqual, 1)
				So(len(page.Items), ShouldEqual, 3)
			})

			Convey("And filtering again with the same criteria is idempotent", func() {
				So(ids(catalog.Filter(got, c)), ShouldResemble, ids(got))
				So(ids(catalog.Filter(records, c)), ShouldResemble, ids(got))
			})
		})

		Convey("When the search text differs only in case", func() {
			c := catalog.DefaultCriteria()
			c.Search = "mariana"
			So(ids(catalog.Filter(records, c)), ShouldResemble, []string{"t40"})
		})

		Convey("When the filter runs", func() {
			before := ids(records)
			c := catalog.DefaultCriteria()
			c.Gender = string(models.GenderMale)
			got := catalog.Filter(records, c)

			Convey("Then the input is not modified", func() {
				So(ids(records), ShouldResemble, before)
			})

			Convey("And the output is a subsequence of the input", func() {
				j := 0
				for _, r := range records {
					if j < len(got) && r.ID == got[j].ID {
						j++
					}
				}
				So(j, ShouldEqual, len(got))
			})
		})
	})
}

func TestAgeRange(t *testing.T) {
	Convey("Given records at age boundaries", t, func() {
		var records []models.Talent
		for _, age := range []int{17, 18, 25, 26, 44, 45, 99} {
			records = append(records, talent(fmt.Sprintf("a%d", age), "x", age, models.GenderFemale))
		}
		byRange := func(r string) []string {
			c := catalog.DefaultCriteria()
			c.AgeRange = r
			return ids(catalog.Filter(records, c))
		}

		Convey("Then '18-25' is inclusive on both ends", func() {
			So(byRange("18-25"), ShouldResemble, []string{"a18", "a25"})
		})

		Convey("Then '45+' matches 45 and 99 but not 44", func() {
			So(byRange("45+"), ShouldResemble, []string{"a45", "a99"})
		})

		Convey("Then malformed ranges fail open", func() {
			all := ids(records)
			for _, r := range []string{"abc", "18-", "-25", "30-20", "+", "18_25", "x+"} {
				So(byRange(r), ShouldResemble, all)
			}
		})

		Convey("Then explicit bounds combine with the selector", func() {
			c := catalog.DefaultCriteria()
			c.AgeFrom = "20"
			c.AgeTo = "50"
			So(ids(catalog.Filter(records, c)), ShouldResemble, []string{"a25", "a26", "a44", "a45"})

			c.AgeTo = "fifty"
			So(ids(catalog.Filter(records, c)), ShouldResemble, []string{"a25", "a26", "a44", "a45", "a99"})
		})
	})

	Convey("ParseAgeRange", t, func() {
		So(catalog.ParseAgeRange("all"), ShouldBeNil)
		So(catalog.ParseAgeRange(""), ShouldBeNil)
		So(*catalog.ParseAgeRange(" 26 - 35 "), ShouldResemble, catalog.AgeRange{Min: 26, Max: 35})
		So(*catalog.ParseAgeRange("45+"), ShouldResemble, catalog.AgeRange{Min: 45, OpenEnded: true})
	})
}

func TestSupplementaryPredicates(t *testing.T) {
	Convey("Given records with mixed attributes", t, func() {
		a := talent("a", "Alpha", 30, models.GenderFemale)
		a.State, a.Details.Ethnicity, a.Rating = "SP", "Parda", 4.8
		a.Categories = []models.Category{models.CategoryPhotography}
		a.Status = models.Status{HasRegistration: true, Available: true, New: true}

		b := talent("b", "Bravo", 40, models.GenderMale)
		b.State, b.Details.Ethnicity, b.Rating = "RJ", "Negra", 3.2
		b.Categories = []models.Category{models.CategoryEvents, models.CategoryBroadcast}
		b.Status = models.Status{Online: true}

		records := []models.Talent{a, b}
		run := func(mut func(c *catalog.Criteria)) []string {
			c := catalog.DefaultCriteria()
			mut(&c)
			return ids(catalog.Filter(records, c))
		}

		So(run(func(c *catalog.Criteria) { c.State = "sp" }), ShouldResemble, []string{"a"})
		So(run(func(c *catalog.Criteria) { c.Ethnicity = "negra" }), ShouldResemble, []string{"b"})
		So(run(func(c *catalog.Criteria) { c.Registration = "with" }), ShouldResemble, []string{"a"})
		So(run(func(c *catalog.Criteria) { c.Registration = "without" }), ShouldResemble, []string{"b"})
		So(run(func(c *catalog.Criteria) { c.Registration = "all" }), ShouldResemble, []string{"a", "b"})
		So(run(func(c *catalog.Criteria) {
			c.Categories = []models.Category{models.CategoryBroadcast, models.CategoryOnline}
		}), ShouldResemble, []string{"b"})
		So(run(func(c *catalog.Criteria) { c.MinRating = 4 }), ShouldResemble, []string{"a"})
		So(run(func(c *catalog.Criteria) { c.Quick.Online = true }), ShouldResemble, []string{"b"})
		So(run(func(c *catalog.Criteria) { c.Quick.New = true; c.Quick.Available = true }), ShouldResemble, []string{"a"})
		So(run(func(c *catalog.Criteria) { c.Quick.Premium = true }), ShouldBeEmpty)
		So(run(func(c *catalog.Criteria) { c.Gender = "Unknown" }), ShouldBeEmpty)
	})

	Convey("Criteria defaults", t, func() {
		So(catalog.DefaultCriteria().IsDefault(), ShouldBeTrue)
		So(catalog.Criteria{}.IsDefault(), ShouldBeTrue)
		c := catalog.DefaultCriteria()
		So(c.Quick.Set(catalog.QuickPremium, true), ShouldBeTrue)
		So(c.IsDefault(), ShouldBeFalse)
		So(c.Quick.Set("bogus", true), ShouldBeFalse)
	})
}
