package models

import "testing"

func TestFailureContent(t *testing.T) {
	c := FailureContent("")
	if c.Resolved() {
		t.Error("FailureContent().Resolved() = true")
	}
	if c.Rating != NoRating {
		t.Errorf("Rating = %q, want %q", c.Rating, NoRating)
	}
	if len(c.ImageURLs) != 1 || c.ImageURLs[0] != PlaceholderImageURL {
		t.Errorf("ImageURLs = %v, want the default placeholder", c.ImageURLs)
	}
	if c.MenuDocuments == nil || len(c.MenuDocuments) != 0 {
		t.Errorf("MenuDocuments = %#v, want an empty non-nil slice", c.MenuDocuments)
	}

	custom := FailureContent("https://img.example/none.png")
	if custom.ImageURLs[0] != "https://img.example/none.png" {
		t.Errorf("custom placeholder ignored: %v", custom.ImageURLs)
	}
}

func TestResolved(t *testing.T) {
	tests := []struct {
		name string
		c    EnrichedContent
		want bool
	}{
		{"real description", EnrichedContent{Description: "Cozy spot", Rating: NoRating}, true},
		{"empty description counts as found", EnrichedContent{Description: ""}, true},
		{"sentinel description", EnrichedContent{Description: NoDescription, Rating: "4.5"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Resolved(); got != tt.want {
				t.Errorf("Resolved() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointOfInterest(t *testing.T) {
	p := PointOfInterest{Lat: 54.68, Lon: 25.27, Tags: map[string]string{"name": "Test Place"}}
	if p.Name() != "Test Place" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.Location() != "54.68, 25.27" {
		t.Errorf("Location() = %q, want %q", p.Location(), "54.68, 25.27")
	}
	if (PointOfInterest{}).Name() != "Unnamed" {
		t.Errorf("Name() without tag = %q, want Unnamed", (PointOfInterest{}).Name())
	}
}
