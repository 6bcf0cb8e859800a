// Package detail projects a single talent record into the read-only view the detail panel shows.
package detail

import (
	"fmt"
	"math"
	"strings"

	"github.com/camden-git/castingvitrine/models"
)

// PlaceholderFunc returns an image reference to show in place of a missing one.
type PlaceholderFunc func(width, height int, text string) string

// Card and panel image sizes used when a reference is missing.
const (
	MainPhotoWidth  = 400
	MainPhotoHeight = 288
	PhotoWidth      = 300
	PhotoHeight     = 400
)

// Stars is a five-star rating breakdown.
type Stars struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

// StarsFor splits a rating into full, half and empty stars out of five. A fractional part of
// any size shows as one half star.
func StarsFor(rating float64) Stars {
	r := math.Max(models.MinRating, math.Min(models.MaxRating, rating))
	full := int(math.Floor(r))
	half := 0
	if r-float64(full) > 0 {
		half = 1
	}
	return Stars{Full: full, Half: half, Empty: 5 - full - half}
}

type CategoryLabel struct {
	Code  models.Category `json:"code"`
	Label string          `json:"label"`
}

type Header struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Age         int             `json:"age"`
	Gender      models.Gender   `json:"gender"`
	Location    string          `json:"location"`
	Rating      float64         `json:"rating"`
	RatingText  string          `json:"rating_text"`
	Stars       Stars           `json:"stars"`
	MainPhoto   string          `json:"main_photo"`
	Status      models.Status   `json:"status"`
	Categories  []CategoryLabel `json:"categories"`
	LastUpdate  string          `json:"last_update,omitempty"`
	Subheadline string          `json:"subheadline"`
}

type Physical struct {
	HeightCm  int      `json:"height_cm"`
	WeightKg  int      `json:"weight_kg"`
	Ethnicity string   `json:"ethnicity"`
	Hair      string   `json:"hair"`
	EyeColor  string   `json:"eye_color"`
	Bust      *int     `json:"bust,omitempty"`
	Waist     *int     `json:"waist,omitempty"`
	Hip       *int     `json:"hip,omitempty"`
	ShoeSize  *float64 `json:"shoe_size,omitempty"`
}

type Photo struct {
	URL         string `json:"url"`
	Alt         string `json:"alt"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// View is everything the detail panel renders for one talent.
type View struct {
	Header    Header          `json:"header"`
	Contact   *models.Contact `json:"contact,omitempty"`
	Physical  Physical        `json:"physical"`
	Bio       string          `json:"bio"`
	Photos    []Photo         `json:"photos"`
	Videos    []models.Video  `json:"videos"`
	Skills    []string        `json:"skills"`
	Languages []string        `json:"languages"`
	Stats     *models.Stats   `json:"stats,omitempty"`
}

// Project builds the view for t. A nil talent (nothing selected) yields nil. Missing image
// references are swapped for placeholders from ph; nothing else is computed.
func Project(t *models.Talent, ph PlaceholderFunc) *View {
	if t == nil {
		return nil
	}

	v := &View{
		Header: Header{
			ID:          t.ID,
			Name:        t.Name,
			Age:         t.Age,
			Gender:      t.Gender,
			Location:    joinNonEmpty(", ", t.City, t.State),
			Rating:      t.Rating,
			RatingText:  fmt.Sprintf("%.1f", t.Rating),
			Stars:       StarsFor(t.Rating),
			MainPhoto:   t.MainPhotoURL,
			Status:      t.Status,
			LastUpdate:  t.LastUpdate,
			Subheadline: subheadline(t),
		},
		Physical: Physical{
			HeightCm:  t.Details.HeightCm,
			WeightKg:  t.Details.WeightKg,
			Ethnicity: t.Details.Ethnicity,
			Hair:      joinNonEmpty(", ", t.Details.HairType, t.Details.HairColor),
			EyeColor:  t.Details.EyeColor,
			Bust:      t.Details.Bust,
			Waist:     t.Details.Waist,
			Hip:       t.Details.Hip,
			ShoeSize:  t.Details.ShoeSize,
		},
		Bio:       t.Details.Bio,
		Photos:    make([]Photo, 0, len(t.Photos)),
		Videos:    append([]models.Video{}, t.Videos...),
		Skills:    append([]string{}, t.Skills...),
		Languages: append([]string{}, t.Languages...),
	}

	if strings.TrimSpace(v.Header.MainPhoto) == "" && ph != nil {
		v.Header.MainPhoto = ph(MainPhotoWidth, MainPhotoHeight, Initials(t.Name))
	}
	for _, c := range t.Categories {
		v.Header.Categories = append(v.Header.Categories, CategoryLabel{Code: c, Label: c.Label()})
	}
	for i, ref := range t.Photos {
		p := Photo{URL: ref, Alt: fmt.Sprintf("%s - photo %d", t.Name, i+1)}
		if strings.TrimSpace(ref) == "" && ph != nil {
			p.URL = ph(PhotoWidth, PhotoHeight, Initials(t.Name))
			p.Placeholder = true
		}
		v.Photos = append(v.Photos, p)
	}
	if t.Contact != nil {
		c := *t.Contact
		v.Contact = &c
	}
	if t.Stats != nil {
		s := *t.Stats
		v.Stats = &s
	}
	return v
}

func subheadline(t *models.Talent) string {
	loc := joinNonEmpty(", ", t.City, t.State)
	if loc == "" {
		return fmt.Sprintf("%d years", t.Age)
	}
	return fmt.Sprintf("%d years • %s", t.Age, loc)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// Initials turns "Ana Souza" into "AS"; used as placeholder text.
func Initials(name string) string {
	var b strings.Builder
	for _, f := range strings.Fields(name) {
		r := []rune(f)
		b.WriteString(strings.ToUpper(string(r[0])))
		if b.Len() >= 8 {
			break
		}
	}
	return b.String()
}
