package extractor

// Selectors for restaurant detail pages.
const (
	// QuickInfoSelector is the content marker: its presence confirms a real
	// detail page, and its text is the description.
	QuickInfoSelector = `div.quick-info`

	SlideSelector    = `div[class*="swiper-slide"][data-background-image]`
	SlideImageAttr   = `data-background-image`
	MenuLinkSelector = `div#r-menu a.wrapper`

	// RatingXPath is the span right after the first rating badge.
	RatingXPath = `(//div[contains(concat(' ', normalize-space(@class), ' '), ' fork-overlay ')])[1]/following-sibling::span[1]`
)
