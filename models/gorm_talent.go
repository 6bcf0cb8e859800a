package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Gender is the enumerated gender of a talent.
type Gender string

const (
	GenderFemale    Gender = "Female"
	GenderMale      Gender = "Male"
	GenderNonBinary Gender = "Non-binary"
)

// Genders lists the accepted gender values in display order.
var Genders = []Gender{GenderFemale, GenderMale, GenderNonBinary}

// IsValid reports whether g is one of the enumerated genders.
func (g Gender) IsValid() bool {
	switch g {
	case GenderFemale, GenderMale, GenderNonBinary:
		return true
	default:
		return false
	}
}

// Category is a department tag. The codes are the ones the casting team uses on cards:
// F=Photography, E=Events, O=Online, R=Broadcast (radio/TV).
type Category string

const (
	CategoryPhotography Category = "F"
	CategoryEvents      Category = "E"
	CategoryOnline      Category = "O"
	CategoryBroadcast   Category = "R"
)

// Categories lists the four category codes in display order.
var Categories = []Category{CategoryPhotography, CategoryEvents, CategoryOnline, CategoryBroadcast}

// IsValid reports whether c belongs to the fixed four-symbol alphabet.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPhotography, CategoryEvents, CategoryOnline, CategoryBroadcast:
		return true
	default:
		return false
	}
}

// Label returns the human readable department name.
func (c Category) Label() string {
	switch c {
	case CategoryPhotography:
		return "Photography"
	case CategoryEvents:
		return "Events"
	case CategoryOnline:
		return "Online"
	case CategoryBroadcast:
		return "Broadcast"
	default:
		return string(c)
	}
}

const (
	MinRating = 0.0
	MaxRating = 5.0
)

// Video is a playable entry in a talent's reel.
type Video struct {
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Duration     int    `json:"duration,omitempty"` // seconds
}

// Details holds physical attributes and the biography.
type Details struct {
	Ethnicity string   `gorm:"index" json:"ethnicity"`
	HeightCm  int      `json:"height_cm"`
	WeightKg  int      `json:"weight_kg"`
	HairType  string   `json:"hair_type"`
	HairColor string   `json:"hair_color"`
	EyeColor  string   `json:"eye_color"`
	Bio       string   `json:"bio"`
	Bust      *int     `json:"bust,omitempty"`
	Waist     *int     `json:"waist,omitempty"`
	Hip       *int     `json:"hip,omitempty"`
	ShoeSize  *float64 `json:"shoe_size,omitempty"`
}

// Status holds the boolean flags quick filters act on.
type Status struct {
	Online          bool `json:"is_online"`
	Premium         bool `json:"is_premium"`
	Available       bool `json:"is_available"`
	New             bool `json:"is_new"`
	HasRegistration bool `json:"has_registration"` // professional registration (DRT)
}

type Contact struct {
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type Stats struct {
	PortfolioViews  int     `json:"portfolio_views,omitempty"`
	BookingRate     float64 `json:"booking_rate,omitempty"`
	YearsExperience int     `json:"years_experience,omitempty"`
	CompletedJobs   int     `json:"completed_jobs,omitempty"`
}

// Talent is a single casting record. It is stored in the 'talents' table as a cache of whatever
// source the catalog was loaded from; Position keeps the source order.
type Talent struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	Position     int        `gorm:"not null;index" json:"-"`
	Name         string     `gorm:"not null;index" json:"name"`
	Age          int        `gorm:"not null" json:"age"`
	Gender       Gender     `gorm:"not null;index" json:"gender"`
	City         string     `json:"city"`
	State        string     `gorm:"index" json:"state"`
	MainPhotoURL string     `json:"main_photo_url"`
	Photos       []string   `gorm:"serializer:json" json:"photos"`
	Videos       []Video    `gorm:"serializer:json" json:"videos"`
	Details      Details    `gorm:"embedded;embeddedPrefix:detail_" json:"details"`
	Skills       []string   `gorm:"serializer:json" json:"skills"`
	Categories   []Category `gorm:"serializer:json" json:"categories"`
	Rating       float64    `gorm:"not null" json:"rating"`
	Status       Status     `gorm:"embedded;embeddedPrefix:status_" json:"status"`
	Contact      *Contact   `gorm:"serializer:json" json:"contact,omitempty"`
	Languages    []string   `gorm:"serializer:json" json:"languages,omitempty"`
	Stats        *Stats     `gorm:"serializer:json" json:"stats,omitempty"`
	LastUpdate   string     `json:"last_update,omitempty"`
}

// TableName explicitly sets the table name for GORM.
func (Talent) TableName() string {
	return "talents"
}

// HasCategory reports whether the talent is tagged with c.
func (t *Talent) HasCategory(c Category) bool {
	for _, own := range t.Categories {
		if own == c {
			return true
		}
	}
	return false
}

// Validate checks the record-level invariants. Identifier uniqueness is a property of the whole
// set and is checked by the store.
func (t *Talent) Validate() error {
	var errs []error
	if strings.TrimSpace(t.ID) == "" {
		errs = append(errs, errors.New("missing id"))
	}
	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, errors.New("missing name"))
	}
	if t.Age < 0 {
		errs = append(errs, fmt.Errorf("negative age %d", t.Age))
	}
	if !t.Gender.IsValid() {
		errs = append(errs, fmt.Errorf("unknown gender %q", t.Gender))
	}
	if math.IsNaN(t.Rating) || t.Rating < MinRating || t.Rating > MaxRating {
		errs = append(errs, fmt.Errorf("rating %v outside [%v, %v]", t.Rating, MinRating, MaxRating))
	}
	for _, c := range t.Categories {
		if !c.IsValid() {
			errs = append(errs, fmt.Errorf("unknown category %q", c))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("talent %q: %w", t.ID, errors.Join(errs...))
	}
	return nil
}
