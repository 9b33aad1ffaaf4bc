package models

// Failure sentinels for enriched content.
const (
	NoDescription       = "No description available"
	NoRating            = "No rating available"
	PlaceholderImageURL = "https://via.placeholder.com/300.png?text=Restaurant+Image"
)

// MaxImages caps the number of carousel images taken from a detail page.
const MaxImages = 3

// EnrichedContent is the structured data pulled from a restaurant detail page.
type EnrichedContent struct {
	Description   string   `json:"description"`
	ImageURLs     []string `json:"image_urls"`
	MenuDocuments []string `json:"menu_pdfs"`
	Rating        string   `json:"rating"`

	// Title and Language are informational; they never decide success.
	Title    string `json:"title,omitempty"`
	Language string `json:"language,omitempty"`
}

// Resolved reports whether the content came from a real detail page.
// The description is the only success discriminant.
func (c EnrichedContent) Resolved() bool {
	return c.Description != NoDescription
}

// FailureContent returns the sentinel value for an unresolvable restaurant.
func FailureContent(placeholder string) EnrichedContent {
	if placeholder == "" {
		placeholder = PlaceholderImageURL
	}
	return EnrichedContent{
		Description:   NoDescription,
		ImageURLs:     []string{placeholder},
		MenuDocuments: []string{},
		Rating:        NoRating,
	}
}
