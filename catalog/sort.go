package catalog

import (
	"sort"
	"strings"

	"github.com/camden-git/castingvitrine/models"
	"github.com/facette/natsort"
)

const (
	SortDefault    = "default"
	SortName       = "name"
	SortRatingDesc = "rating_desc"
	SortAgeAsc     = "age_asc"
	SortAgeDesc    = "age_desc"
)

// IsValidSortOrder checks if a string is a valid sort order constant
func IsValidSortOrder(order string) bool {
	switch order {
	case "", SortDefault, SortName, SortRatingDesc, SortAgeAsc, SortAgeDesc:
		return true
	default:
		return false
	}
}

// Sort returns a copy of records ordered by order. The default order (and any unknown order)
// keeps the source sequence. All orders are stable.
func Sort(records []models.Talent, order string) []models.Talent {
	out := make([]models.Talent, len(records))
	copy(out, records)

	var less func(a, b *models.Talent) bool
	switch order {
	case SortName:
		less = func(a, b *models.Talent) bool {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an == bn {
				return false
			}
			return natsort.Compare(an, bn)
		}
	case SortRatingDesc:
		less = func(a, b *models.Talent) bool { return a.Rating > b.Rating }
	case SortAgeAsc:
		less = func(a, b *models.Talent) bool { return a.Age < b.Age }
	case SortAgeDesc:
		less = func(a, b *models.Talent) bool { return a.Age > b.Age }
	default:
		return out
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}
