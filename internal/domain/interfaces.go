package domain

// ListItem is the polymorphic interface for entries that can be displayed in
// browse lists. Domain entities implement it directly so list views stay
// agnostic of the concrete entity type.
type ListItem interface {
	// GetID returns the unique identifier for this item
	GetID() string

	// GetTitle returns the display title
	GetTitle() string

	// GetDescription returns secondary info for display (e.g. author for a
	// book, "12 items" for a mixlist)
	GetDescription() string

	// GetItemType returns the type identifier: "book", "movie", "topic", ...
	GetItemType() string
}
