package domain

// Category groups todos. It is immutable once created.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// DefaultIcon is used when a category has no icon or an unknown one.
const DefaultIcon = "folder"

// Icon is one entry of the fixed icon set a category may reference.
type Icon struct {
	Name  string
	Label string
	Glyph string
}

// AvailableIcons lists the icon keys accepted for categories, default first.
var AvailableIcons = []Icon{
	{Name: "folder", Label: "Default", Glyph: "▣"},
	{Name: "work", Label: "Work", Glyph: "◆"},
	{Name: "home", Label: "Home", Glyph: "⌂"},
	{Name: "study", Label: "Study", Glyph: "✎"},
	{Name: "game", Label: "Fun", Glyph: "♠"},
	{Name: "travel", Label: "Travel", Glyph: "✈"},
	{Name: "music", Label: "Music", Glyph: "♪"},
	{Name: "code", Label: "Development", Glyph: "λ"},
	{Name: "shop", Label: "Shopping", Glyph: "$"},
	{Name: "heart", Label: "Health", Glyph: "♥"},
}

// IconByName resolves an icon key, falling back to the default icon.
func IconByName(name string) Icon {
	for _, icon := range AvailableIcons {
		if icon.Name == name {
			return icon
		}
	}
	return AvailableIcons[0]
}

// IsKnownIcon reports whether name is part of the fixed icon set.
func IsKnownIcon(name string) bool {
	for _, icon := range AvailableIcons {
		if icon.Name == name {
			return true
		}
	}
	return false
}
