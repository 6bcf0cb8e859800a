package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/camden-git/castingvitrine/catalog"
	"github.com/camden-git/castingvitrine/models"
)

var errInvalidParam = errors.New("invalid parameter")

func invalidParam(name, value, why string) error {
	return fmt.Errorf("%w %s=%q: %s", errInvalidParam, name, value, why)
}

// queryInt reads an optional integer parameter. A missing parameter yields def.
func queryInt(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(name, raw, "not an integer")
	}
	return v, nil
}

// splitMulti accepts both repeated parameters and comma separated values.
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseCriteria reads the filter criteria from list query parameters. Free-form selectors
// (age range, bounds, ethnicity, state) are passed through and fail open in the catalog;
// enumerated ones are checked by validateCriteria.
func parseCriteria(q url.Values) (catalog.Criteria, error) {
	c := catalog.DefaultCriteria()
	c.Search = q.Get("search")
	if c.Search == "" {
		c.Search = q.Get("q")
	}

	if g := strings.TrimSpace(q.Get("gender")); g != "" {
		c.Gender = g
	}
	if ar := strings.TrimSpace(q.Get("age_range")); ar != "" {
		c.AgeRange = ar
	}
	c.AgeFrom = q.Get("age_from")
	c.AgeTo = q.Get("age_to")
	c.Ethnicity = q.Get("ethnicity")
	c.State = q.Get("state")
	if c.State == "" {
		c.State = q.Get("location")
	}
	c.Registration = strings.ToLower(strings.TrimSpace(q.Get("registration")))

	for _, code := range splitMulti(q["categories"]) {
		c.Categories = append(c.Categories, models.Category(strings.ToUpper(code)))
	}

	if raw := strings.TrimSpace(q.Get("min_rating")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c, invalidParam("min_rating", raw, "want a number between 0 and 5")
		}
		c.MinRating = v
	}

	for _, name := range splitMulti(q["quick"]) {
		if !c.Quick.Set(catalog.QuickFilter(strings.ToLower(name)), true) {
			return c, invalidParam("quick", name, "unknown quick filter")
		}
	}
	return c, validateCriteria(c)
}

// validateCriteria rejects enumerated selectors the catalog would silently match nothing with.
func validateCriteria(c catalog.Criteria) error {
	if c.Gender != "" && !strings.EqualFold(c.Gender, catalog.Any) && !models.Gender(c.Gender).IsValid() {
		return invalidParam("gender", c.Gender, "unknown gender")
	}

	switch strings.ToLower(strings.TrimSpace(c.Registration)) {
	case "", catalog.Any, catalog.RegistrationWith, catalog.RegistrationWithout:
	default:
		return invalidParam("registration", c.Registration, "want with, without or all")
	}

	for _, cat := range c.Categories {
		if !cat.IsValid() {
			return invalidParam("categories", string(cat), "unknown category")
		}
	}

	if math.IsNaN(c.MinRating) || c.MinRating < models.MinRating || c.MinRating > models.MaxRating {
		return invalidParam("min_rating", strconv.FormatFloat(c.MinRating, 'g', -1, 64), "want a number between 0 and 5")
	}
	return nil
}
