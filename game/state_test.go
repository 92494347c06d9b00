package game

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster() []Traits {
	return []Traits{
		{ID: 1, Name: "Mochi", Category: Pink, Stats: Stats{40, 50, 60, 70}},
		{ID: 2, Name: "Soot", Category: Black, Clothed: true},
		{ID: 7, Name: "Butter", Category: Yellow},
	}
}

func TestNewPlaygroundOneCatPerRosterEntry(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	p := NewPlayground(Bounds{W: 1200, H: 600}, testRoster(), r)

	require.Len(t, p.Cats, 3)
	for i, c := range p.Cats {
		assert.Equal(t, testRoster()[i], c.Traits)
		assert.GreaterOrEqual(t, c.Speed, MinSpeed)
		assert.Less(t, c.Speed, MaxSpeed)
	}

	c, ok := p.Find(7)
	require.True(t, ok)
	assert.Equal(t, "Butter", c.Name)
	_, ok = p.Find(99)
	assert.False(t, ok)
}

func TestPlaygroundEmptyRoster(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	p := NewPlayground(Bounds{W: 1200, H: 600}, nil, r)
	assert.Empty(t, p.Cats)

	p.Advance(r)
	assert.Equal(t, 1, p.Tick)
	assert.Empty(t, p.Cats)
}

func TestPlaygroundResizeRebindsEveryTarget(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	p := NewPlayground(Bounds{W: 2000, H: 2000}, DecorativeRoster(DecorativeCats, r), r)
	for i := 0; i < 500; i++ {
		p.Advance(r)
	}

	small := Bounds{W: 300, H: 200}
	p.Resize(small, r)

	require.Len(t, p.Cats, DecorativeCats)
	assert.Equal(t, small, p.Bounds)
	for _, c := range p.Cats {
		assert.LessOrEqual(t, c.TargetX, small.MaxX())
		assert.LessOrEqual(t, c.TargetY, small.MaxY())
		assert.LessOrEqual(t, c.X, small.MaxX())
		assert.LessOrEqual(t, c.Y, small.MaxY())
		assert.GreaterOrEqual(t, c.TargetX, 0.0)
		assert.GreaterOrEqual(t, c.TargetY, 0.0)
	}
}

func TestPlaygroundSetRosterReplacesCats(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	p := NewPlayground(Bounds{W: 1200, H: 600}, testRoster(), r)

	p.SetRoster([]Traits{{ID: 42, Category: Siamese}}, r)
	require.Len(t, p.Cats, 1)
	assert.Equal(t, int64(42), p.Cats[0].ID)

	p.SetRoster(nil, r)
	assert.Empty(t, p.Cats)
}

func TestCategoryLookup(t *testing.T) {
	assert.Equal(t, Grey, CategoryFromIndex(1))
	assert.Equal(t, Black, CategoryFromIndex(-1))
	assert.Equal(t, Black, CategoryFromIndex(9))

	c, ok := ParseCategory("pinkie")
	assert.True(t, ok)
	assert.Equal(t, Pink, c)
	_, ok = ParseCategory("tabby")
	assert.False(t, ok)
	assert.Equal(t, "siamese", Siamese.String())
	assert.Equal(t, "black", Category(200).String())
}

func TestCategoryJSONUsesColorName(t *testing.T) {
	b, err := json.Marshal(struct {
		C Category `json:"c"`
	}{Siamese})
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":"siamese"}`, string(b))

	var back struct {
		C Category `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"c":"pinkie"}`), &back))
	assert.Equal(t, Pink, back.C)
	assert.Error(t, json.Unmarshal([]byte(`{"c":"tabby"}`), &back))
}
