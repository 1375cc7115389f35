package visionboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/weddingplanner/internal/entities"
)

func boardItems(ids ...uint) []entities.VisionBoardItem {
	items := make([]entities.VisionBoardItem, len(ids))
	for i, id := range ids {
		items[i] = entities.VisionBoardItem{ID: id, Position: i}
	}
	return items
}

func idsOf(items []entities.VisionBoardItem) []uint {
	ids := make([]uint, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func positionsOf(items []entities.VisionBoardItem) []int {
	pos := make([]int, len(items))
	for i, item := range items {
		pos[i] = item.Position
	}
	return pos
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []uint
	}{
		{"forward", 0, 2, []uint{20, 30, 10, 40}},
		{"backward", 3, 1, []uint{10, 40, 20, 30}},
		{"to end", 1, 3, []uint{10, 30, 40, 20}},
		{"no-op", 2, 2, []uint{10, 20, 30, 40}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := boardItems(10, 20, 30, 40)
			got, err := Reorder(items, tt.from, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.want, idsOf(got))
			assert.Equal(t, []int{0, 1, 2, 3}, positionsOf(got))
			assert.Equal(t, []uint{10, 20, 30, 40}, idsOf(items), "input must not be modified")
		})
	}
}

func TestReorder_OutOfRange(t *testing.T) {
	items := boardItems(1, 2)
	for _, move := range [][2]int{{-1, 0}, {0, 2}, {2, 0}} {
		_, err := Reorder(items, move[0], move[1])
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	}
	_, err := Reorder(nil, 0, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestApplyOrder(t *testing.T) {
	items := boardItems(1, 2, 3)

	got, err := ApplyOrder(items, []uint{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 1, 2}, idsOf(got))
	assert.Equal(t, []int{0, 1, 2}, positionsOf(got))

	for name, ids := range map[string][]uint{
		"missing":  {3, 1},
		"repeated": {1, 1, 2},
		"unknown":  {1, 2, 9},
		"extra":    {1, 2, 3, 4},
	} {
		_, err := ApplyOrder(items, ids)
		assert.ErrorIs(t, err, ErrOrderMismatch, name)
	}
}

func TestSorted(t *testing.T) {
	items := []entities.VisionBoardItem{{ID: 3, Position: 1}, {ID: 2, Position: 0}, {ID: 1, Position: 1}}
	assert.Equal(t, []uint{2, 1, 3}, idsOf(Sorted(items)))
}

func TestBuildSearchQuery(t *testing.T) {
	pref := entities.VisionBoardPreference{
		Style:    "Boho",
		Season:   "Autumn",
		Colors:   []string{"terracotta", "sage", "cream"},
		Themes:   []string{"desert"},
		Keywords: "pampas grass",
	}
	assert.Equal(t, "table centerpiece Boho autumn desert terracotta sage pampas grass wedding",
		BuildSearchQuery(pref, "table centerpiece"))

	assert.Equal(t, "wedding inspiration", BuildSearchQuery(entities.VisionBoardPreference{}, ""))
	assert.Equal(t, "arch wedding", BuildSearchQuery(entities.VisionBoardPreference{Season: "monsoon"}, "arch"))
	assert.Equal(t, "Rustic wedding", BuildSearchQuery(entities.VisionBoardPreference{Style: "rustic"}, "Rustic"),
		"repeated words are collapsed")
}

func TestAnalysisPrompt(t *testing.T) {
	prompt := AnalysisPrompt(entities.VisionBoardPreference{
		Style:  "classic",
		Colors: []string{"ivory", "gold"},
	})
	assert.Contains(t, prompt, "Preferred style: classic.")
	assert.Contains(t, prompt, "Colour palette: ivory, gold.")
	assert.Contains(t, prompt, `"suggestions"`)
	assert.NotContains(t, prompt, "Season:")
}

func TestValidatePreferences(t *testing.T) {
	p := entities.VisionBoardPreference{
		Style:  " Modern ",
		Season: "Summer",
		Colors: []string{"Blush", "blush", " ", "<i>navy</i>"},
	}
	require.NoError(t, ValidatePreferences(&p))
	assert.Equal(t, "modern", p.Style)
	assert.Equal(t, "summer", p.Season)
	assert.Equal(t, []string{"blush", "navy"}, p.Colors)
	assert.Empty(t, p.Themes)

	bad := entities.VisionBoardPreference{Season: "monsoon"}
	assert.Error(t, ValidatePreferences(&bad))
}

func TestValidateItem(t *testing.T) {
	link := entities.VisionBoardItem{ImageURL: "https://images.example.com/a.jpg"}
	require.NoError(t, ValidateItem(&link))
	assert.Equal(t, entities.VisionSourceLink, link.Source)

	uploadID := uint(4)
	upload := entities.VisionBoardItem{Source: entities.VisionSourceUpload, UploadID: &uploadID, ImageURL: "/files/vision/a.jpg"}
	assert.NoError(t, ValidateItem(&upload))

	assert.Error(t, ValidateItem(&entities.VisionBoardItem{Source: entities.VisionSourceUpload}))
	assert.Error(t, ValidateItem(&entities.VisionBoardItem{ImageURL: "javascript:alert(1)"}))
	assert.Error(t, ValidateItem(&entities.VisionBoardItem{Source: "camera", ImageURL: "https://x.example.com/a.png"}))
}
