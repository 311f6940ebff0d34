package domain

// DayHours holds the open/close times for one weekday in "HH:MM" 24h local
// time. A weekday absent from the Hours map means closed that day.
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// NormalizedLocation is the provider-agnostic business listing payload.
// Every adapter maps this one shape onto its own wire format; nothing
// provider-specific is allowed here.
//
// The six `required` fields must be non-empty before any adapter call.
// Validation happens once, centrally, in provider.ValidateLocation - not
// inside individual adapters.
type NormalizedLocation struct {
	BusinessName string `json:"business_name" validate:"required"`
	Street       string `json:"street" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Zip          string `json:"zip" validate:"required"`
	Country      string `json:"country" validate:"required"`

	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`

	// Categories is ordered; the first entry is the primary category on
	// providers that distinguish primary from secondary.
	Categories []string `json:"categories,omitempty"`

	// Hours maps lowercase weekday names ("monday".."sunday") to open/close.
	Hours map[string]DayHours `json:"hours,omitempty"`

	// SocialLinks maps platform name ("facebook", "instagram", ...) to URL.
	SocialLinks map[string]string `json:"social_links,omitempty"`

	LogoURL   string   `json:"logo_url,omitempty"`
	ImageURLs []string `json:"image_urls,omitempty"`
}

// BrandRecord is the raw brand row as stored by the brand data source,
// before normalization. Categories, hours, and social links arrive in the
// loosely-structured forms the importers produce.
type BrandRecord struct {
	DomainID     string `json:"domain_id" db:"domain_id"`
	BusinessName string `json:"business_name" db:"business_name"`
	Street       string `json:"street" db:"street"`
	City         string `json:"city" db:"city"`
	State        string `json:"state" db:"state"`
	Zip          string `json:"zip" db:"zip"`
	Country      string `json:"country" db:"country"`
	Phone        string `json:"phone" db:"phone"`
	Email        string `json:"email" db:"email"`
	Website      string `json:"website" db:"website"`
	Description  string `json:"description" db:"description"`

	// CategoriesCSV is a comma-separated category list, order-preserving.
	CategoriesCSV string `json:"categories" db:"categories"`

	// HoursJSON is a JSON object weekday -> {open, close}; empty means no
	// published hours.
	HoursJSON string `json:"hours" db:"hours"`

	// SocialJSON is a JSON object platform -> URL.
	SocialJSON string `json:"social_links" db:"social_links"`

	LogoURL string `json:"logo_url" db:"logo_url"`

	// ImagesCSV is a comma-separated list of image URLs.
	ImagesCSV string `json:"image_urls" db:"image_urls"`
}
