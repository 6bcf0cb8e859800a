package media

import "image"

type AssetType string

const (
	AssetTypePlaceholder AssetType = "placeholder"
	AssetTypeUnknown     AssetType = "unknown"
)

// PlaceholderOptions controls how a placeholder is drawn.
type PlaceholderOptions struct {
	From        string // top-left gradient colour, hex
	To          string // bottom-right gradient colour, hex
	TextColor   string
	Quality     int
	MaxSize     int // largest accepted width or height
	MaxTextLen  int
	ScaleFactor int // text height is min(width, height) / ScaleFactor

	// CacheSizes are the only sizes written to the store; others are rendered per request.
	// Empty allows every size.
	CacheSizes []image.Point
	// CacheLimit caps the number of stored placeholders. Zero means no cap.
	CacheLimit int
}

// DefaultPlaceholderOptions matches the card placeholders of the web front end.
func DefaultPlaceholderOptions() PlaceholderOptions {
	return PlaceholderOptions{
		From:        "#e0e7ff",
		To:          "#c7d2fe",
		TextColor:   "#6366f1",
		Quality:     85,
		MaxSize:     4096,
		MaxTextLen:  32,
		ScaleFactor: 4,
		CacheSizes:  []image.Point{{X: 400, Y: 288}, {X: 300, Y: 400}},
		CacheLimit:  2048,
	}
}
