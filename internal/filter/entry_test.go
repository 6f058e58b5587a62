package filter

import (
	"testing"

	"github.com/dyluth/artmatrix/pkg/catalog"
	"github.com/stretchr/testify/assert"
)

func TestCriteria_Matches(t *testing.T) {
	withImage := &catalog.Entry{Key: "R01C01-r2c3", ImageURL: "https://x/a.png"}
	noImage := &catalog.Entry{Key: "R2C5-r1c1", ImageURL: "no_URL"}
	relative := &catalog.Entry{Key: "R2C5-r1c2", ImageURL: "img/a.png"}
	slug := &catalog.Entry{Key: "legacy-slug"}

	tests := []struct {
		name     string
		criteria Criteria
		entry    *catalog.Entry
		want     bool
	}{
		{"empty criteria match all", Criteria{}, slug, true},
		{"glob match", Criteria{KeyGlob: "R2C5-*"}, noImage, true},
		{"glob miss", Criteria{KeyGlob: "R2C5-*"}, withImage, false},
		{"bad glob never matches", Criteria{KeyGlob: "["}, withImage, false},
		{"parent matches across padding", Criteria{ParentKey: "R1C1"}, withImage, true},
		{"parent miss", Criteria{ParentKey: "R1C2"}, withImage, false},
		{"parent filter drops non-child keys", Criteria{ParentKey: "R1C1"}, slug, false},
		{"require image keeps http url", Criteria{RequireImage: true, Strict: true}, withImage, true},
		{"require image drops sentinel", Criteria{RequireImage: true}, noImage, false},
		{"strict drops relative path", Criteria{RequireImage: true, Strict: true}, relative, false},
		{"lenient keeps relative path", Criteria{RequireImage: true}, relative, true},
		{"filters are ANDed", Criteria{KeyGlob: "R2C5-*", RequireImage: true}, noImage, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Matches(tt.entry))
		})
	}
}

func TestCriteria_HasFilters(t *testing.T) {
	assert.False(t, (&Criteria{}).HasFilters())
	assert.False(t, (&Criteria{Strict: true}).HasFilters(), "strict alone changes nothing")
	assert.True(t, (&Criteria{KeyGlob: "*"}).HasFilters())
	assert.True(t, (&Criteria{ParentKey: "R1C1"}).HasFilters())
	assert.True(t, (&Criteria{RequireImage: true}).HasFilters())
}
