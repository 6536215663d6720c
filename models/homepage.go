package models

import "time"

type HomepageContent struct {
	BusinessName   string    `bson:"businessName" json:"businessName"`
	Tagline        string    `bson:"tagline" json:"tagline"`
	HeroTitle      string    `bson:"heroTitle" json:"heroTitle"`
	HeroSubtitle   string    `bson:"heroSubtitle" json:"heroSubtitle"`
	AboutText      string    `bson:"aboutText" json:"aboutText"`
	ContactEmail   string    `bson:"contactEmail" json:"contactEmail"`
	ContactPhone   string    `bson:"contactPhone" json:"contactPhone"`
	ContactAddress string    `bson:"contactAddress" json:"contactAddress"`
	UpdatedAt      time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// DefaultHomepageContent is served until an admin saves the singleton.
func DefaultHomepageContent(businessName string) HomepageContent {
	return HomepageContent{
		BusinessName:   businessName,
		Tagline:        "Authentic Homemade Food & Snacks",
		HeroTitle:      "Welcome to " + businessName,
		HeroSubtitle:   "Fresh homemade meals delivered to your door",
		AboutText:      "",
		ContactEmail:   "contact@example.com",
		ContactPhone:   "+91 XXXXX XXXXX",
		ContactAddress: "Your Address Here",
	}
}
