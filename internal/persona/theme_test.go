package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThemesOrder(t *testing.T) {
	assert.Equal(t,
		[]ThemeID{ThemeSciFi, ThemeFantasy, ThemeNoir, ThemeAnime, ThemePrehistoric},
		Themes(),
	)

	// callers get a copy
	themes := Themes()
	themes[0] = ThemeNoir
	assert.Equal(t, ThemeSciFi, Themes()[0])
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in   string
		want ThemeID
		ok   bool
	}{
		{"Sci-Fi", ThemeSciFi, true},
		{"sci-fi", ThemeSciFi, true},
		{"scifi", ThemeSciFi, true},
		{" SCI_FI ", ThemeSciFi, true},
		{"Fantasy", ThemeFantasy, true},
		{"noir", ThemeNoir, true},
		{"ANIME", ThemeAnime, true},
		{"Prehistoric", ThemePrehistoric, true},
		{"Western", 0, false},
		{"", 0, false},
		{"--", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTheme(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestThemeInfo(t *testing.T) {
	assert.Equal(t, Info{Label: "Sci-Fi", Slug: "sci-fi", Icon: "zap", Color: "from-blue-500 to-purple-600"}, ThemeSciFi.Info())
	assert.Equal(t, "Prehistoric", ThemePrehistoric.String())
	assert.Equal(t, "Unknown", ThemeID(0).String())
	assert.Equal(t, Info{}, ThemeID(42).Info())
	assert.True(t, ThemeNoir.Valid())
	assert.False(t, ThemeID(0).Valid())

	for _, theme := range Themes() {
		info := theme.Info()
		assert.NotEmpty(t, info.Label)
		assert.NotEmpty(t, info.Slug)
		assert.NotEmpty(t, info.Icon)
		assert.NotEmpty(t, info.Color)
	}
}
