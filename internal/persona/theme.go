package persona

import "strings"

// ThemeID identifies one of the fixed universes a persona is generated for.
// The zero value is not a theme; Generate answers it with the fallback profile.
type ThemeID int

const (
	ThemeSciFi ThemeID = iota + 1
	ThemeFantasy
	ThemeNoir
	ThemeAnime
	ThemePrehistoric
)

// themeOrder is the order the universes are revealed in
var themeOrder = []ThemeID{
	ThemeSciFi,
	ThemeFantasy,
	ThemeNoir,
	ThemeAnime,
	ThemePrehistoric,
}

// Themes returns every theme in reveal order
func Themes() []ThemeID {
	out := make([]ThemeID, len(themeOrder))
	copy(out, themeOrder)
	return out
}

// Info is the display metadata of a universe
type Info struct {
	Label string `json:"name"`
	Slug  string `json:"slug"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// Info returns the display metadata for the theme.
// Unknown themes get an empty Info.
func (t ThemeID) Info() Info {
	if def := lookup(t); def != nil {
		return def.info
	}
	return Info{}
}

// Valid reports whether t is one of the enumerated themes
func (t ThemeID) Valid() bool {
	return lookup(t) != nil
}

func (t ThemeID) String() string {
	if def := lookup(t); def != nil {
		return def.info.Label
	}
	return "Unknown"
}

// ParseTheme resolves a universe label ("Sci-Fi") or slug ("sci-fi", "scifi").
// Matching ignores case, spaces, hyphens and underscores.
func ParseTheme(s string) (ThemeID, bool) {
	key := normalizeThemeKey(s)
	if key == "" {
		return 0, false
	}
	for _, id := range themeOrder {
		info := lookup(id).info
		if key == normalizeThemeKey(info.Label) || key == normalizeThemeKey(info.Slug) {
			return id, true
		}
	}
	return 0, false
}

func normalizeThemeKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}
