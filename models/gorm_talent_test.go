package models

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTalentValidate(t *testing.T) {
	Convey("Given a well-formed talent", t, func() {
		tal := Talent{ID: "1", Name: "Ana", Age: 25, Gender: GenderFemale, Rating: 4.5,
			Categories: []Category{CategoryPhotography, CategoryBroadcast}}

		Convey("Then it validates", func() {
			So(tal.Validate(), ShouldBeNil)
		})

		Convey("Then rating bounds are inclusive", func() {
			tal.Rating = MaxRating
			So(tal.Validate(), ShouldBeNil)
			tal.Rating = MinRating
			So(tal.Validate(), ShouldBeNil)
		})

		Convey("When several fields are broken", func() {
			tal.ID = " "
			tal.Gender = "Robot"
			tal.Rating = math.NaN()
			tal.Categories = append(tal.Categories, "X")
			err := tal.Validate()

			Convey("Then every problem is reported", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "missing id")
				So(err.Error(), ShouldContainSubstring, `unknown gender "Robot"`)
				So(err.Error(), ShouldContainSubstring, "rating NaN")
				So(err.Error(), ShouldContainSubstring, `unknown category "X"`)
			})
		})

		Convey("When the age is negative or the rating too high", func() {
			tal.Age = -1
			tal.Rating = 5.5
			So(tal.Validate(), ShouldNotBeNil)
		})
	})
}

func TestCategories(t *testing.T) {
	Convey("Given the category alphabet", t, func() {
		So(len(Categories), ShouldEqual, 4)
		for _, c := range Categories {
			So(c.IsValid(), ShouldBeTrue)
			So(c.Label(), ShouldNotEqual, string(c))
		}
		So(Category("f").IsValid(), ShouldBeFalse)
		So(Category("Z").Label(), ShouldEqual, "Z")

		Convey("Then HasCategory checks membership", func() {
			tal := Talent{Categories: []Category{CategoryEvents}}
			So(tal.HasCategory(CategoryEvents), ShouldBeTrue)
			So(tal.HasCategory(CategoryOnline), ShouldBeFalse)
		})
	})
}
