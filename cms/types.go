package cms

import "github.com/camden-git/castingvitrine/models"

// Pagination is the CMS's own paging metadata. It is independent of the catalog paginator, which
// works on whatever set the CMS hands over.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// CollectionResponse wraps a page of a Strapi collection.
type CollectionResponse[T any] struct {
	Data []struct {
		ID         int `json:"id"`
		Attributes T   `json:"attributes"`
	} `json:"data"`
	Meta struct {
		Pagination Pagination `json:"pagination"`
	} `json:"meta"`
}

// APIError is the CMS error body.
type APIError struct {
	Error struct {
		Status  int    `json:"status"`
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"error"`
}

type TalentLocation struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country,omitempty"`
}

type TalentMeasurements struct {
	HeightCm int      `json:"heightCm"`
	WeightKg int      `json:"weightKg"`
	Bust     *int     `json:"bust,omitempty"`
	Waist    *int     `json:"waist,omitempty"`
	Hip      *int     `json:"hip,omitempty"`
	ShoeSize *float64 `json:"shoeSize,omitempty"`
}

type TalentPhysicalDetails struct {
	EyeColor  string `json:"eyeColor"`
	HairColor string `json:"hairColor"`
	HairType  string `json:"hairType,omitempty"`
	Ethnicity string `json:"ethnicity"`
}

type TalentStatus struct {
	IsOnline    bool `json:"isOnline"`
	IsPremium   bool `json:"isPremium"`
	IsAvailable bool `json:"isAvailable"`
	IsNew       bool `json:"isNew,omitempty"`
	HasDRT      bool `json:"hasDRT,omitempty"`
}

type TalentMedia struct {
	Photos       []string `json:"photos"`
	MainPhotoURL string   `json:"mainPhotoUrl"`
	Videos       []struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		URL          string `json:"url"`
		ThumbnailURL string `json:"thumbnailUrl,omitempty"`
		Duration     int    `json:"duration,omitempty"`
	} `json:"videos"`
}

type TalentContact struct {
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	WhatsApp  string `json:"whatsapp,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

type TalentStats struct {
	PortfolioViews  int     `json:"portfolioViews,omitempty"`
	BookingRate     float64 `json:"bookingRate,omitempty"`
	YearsExperience int     `json:"yearsExperience,omitempty"`
	CompletedJobs   int     `json:"completedJobs,omitempty"`
}

// TalentCard is the talent shape the CMS publishes.
type TalentCard struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Age             int                   `json:"age"`
	Gender          string                `json:"gender"`
	Rating          float64               `json:"rating"`
	Location        TalentLocation        `json:"location"`
	Measurements    TalentMeasurements    `json:"measurements"`
	PhysicalDetails TalentPhysicalDetails `json:"physicalDetails"`
	Status          TalentStatus          `json:"status"`
	Media           TalentMedia           `json:"media"`
	Departments     []string              `json:"departments"`
	Skills          []string              `json:"skills"`
	Contact         *TalentContact        `json:"contact,omitempty"`
	Bio             string                `json:"bio,omitempty"`
	Languages       []string              `json:"languages,omitempty"`
	Stats           *TalentStats          `json:"stats,omitempty"`
	LastUpdate      string                `json:"lastUpdate,omitempty"`
}

// ToTalent maps a CMS card onto the catalog record. entryID is used when the card carries no id
// of its own.
func (c TalentCard) ToTalent(entryID string) models.Talent {
	id := c.ID
	if id == "" {
		id = entryID
	}

	t := models.Talent{
		ID:           id,
		Name:         c.Name,
		Age:          c.Age,
		Gender:       models.Gender(c.Gender),
		City:         c.Location.City,
		State:        c.Location.State,
		MainPhotoURL: c.Media.MainPhotoURL,
		Photos:       c.Media.Photos,
		Details: models.Details{
			Ethnicity: c.PhysicalDetails.Ethnicity,
			HeightCm:  c.Measurements.HeightCm,
			WeightKg:  c.Measurements.WeightKg,
			HairType:  c.PhysicalDetails.HairType,
			HairColor: c.PhysicalDetails.HairColor,
			EyeColor:  c.PhysicalDetails.EyeColor,
			Bio:       c.Bio,
			Bust:      c.Measurements.Bust,
			Waist:     c.Measurements.Waist,
			Hip:       c.Measurements.Hip,
			ShoeSize:  c.Measurements.ShoeSize,
		},
		Skills: c.Skills,
		Rating: c.Rating,
		Status: models.Status{
			Online:          c.Status.IsOnline,
			Premium:         c.Status.IsPremium,
			Available:       c.Status.IsAvailable,
			New:             c.Status.IsNew,
			HasRegistration: c.Status.HasDRT,
		},
		Languages:  c.Languages,
		LastUpdate: c.LastUpdate,
	}

	for _, v := range c.Media.Videos {
		t.Videos = append(t.Videos, models.Video{
			Title:        v.Title,
			URL:          v.URL,
			ThumbnailURL: v.ThumbnailURL,
			Duration:     v.Duration,
		})
	}
	for _, d := range c.Departments {
		t.Categories = append(t.Categories, models.Category(d))
	}
	if c.Contact != nil {
		t.Contact = &models.Contact{
			Phone:     c.Contact.Phone,
			Email:     c.Contact.Email,
			WhatsApp:  c.Contact.WhatsApp,
			Instagram: c.Contact.Instagram,
		}
	}
	if c.Stats != nil {
		t.Stats = &models.Stats{
			PortfolioViews:  c.Stats.PortfolioViews,
			BookingRate:     c.Stats.BookingRate,
			YearsExperience: c.Stats.YearsExperience,
			CompletedJobs:   c.Stats.CompletedJobs,
		}
	}
	return t
}
