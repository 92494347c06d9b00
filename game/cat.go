package game

import "fmt"

// Rand is the randomness a tick needs. *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

type Category uint8

const (
	Black Category = iota
	Grey
	Pink
	Siamese
	Yellow
	numCategories
)

var categoryNames = [numCategories]string{"black", "grey", "pink", "siamese", "yellow"}

// CategoryFromIndex maps the contract's color index. Out of range indices
// fall back to Black.
func CategoryFromIndex(i int) Category {
	if i < 0 || i >= int(numCategories) {
		return Black
	}
	return Category(i)
}

// ParseCategory accepts the lowercase color name; "pinkie" is an alias of pink.
func ParseCategory(s string) (Category, bool) {
	if s == "pinkie" {
		return Pink, true
	}
	for i, n := range categoryNames {
		if n == s {
			return Category(i), true
		}
	}
	return Black, false
}

func (c Category) String() string {
	if c >= numCategories {
		return categoryNames[Black]
	}
	return categoryNames[c]
}

// MarshalText writes the color name, so JSON carries "pink" rather than 2.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, ok := ParseCategory(string(b))
	if !ok {
		return fmt.Errorf("unknown cat color %q", b)
	}
	*c = v
	return nil
}

// Stats are the four battle stats, each 0..100.
type Stats struct {
	Attack  int `json:"attack"`
	Defence int `json:"defence"`
	Speed   int `json:"speed"`
	Health  int `json:"health"`
}

func (s Stats) Total() int {
	return s.Attack + s.Defence + s.Speed + s.Health
}

// Traits is what the upstream feed says about a cat. It does not change
// while the cat walks around.
type Traits struct {
	ID       int64
	Name     string
	Category Category
	Clothed  bool
	Stats    Stats
}

type Cat struct {
	Traits

	X, Y             float64
	TargetX, TargetY float64
	Direction        int // +1 faces right, -1 faces left
	Speed            float64
	Moving           bool
}

// Spawn places a cat at a random spot with a random first waypoint.
func Spawn(t Traits, b Bounds, r Rand) Cat {
	c := Cat{
		Traits: t,
		X:      r.Float64() * b.MaxX(),
		Y:      r.Float64() * b.MaxY(),
		Speed:  MinSpeed + r.Float64()*(MaxSpeed-MinSpeed),
	}
	c.retarget(b, r)
	c.Moving = r.Float64() < InitialMoving
	return c
}

func (c *Cat) retarget(b Bounds, r Rand) {
	c.TargetX = r.Float64() * b.MaxX()
	c.TargetY = r.Float64() * b.MaxY()
	if c.TargetX > c.X {
		c.Direction = 1
	} else {
		c.Direction = -1
	}
}

// DecorativeRoster builds n random cats with no owner, for demo playgrounds.
func DecorativeRoster(n int, r Rand) []Traits {
	out := make([]Traits, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Traits{
			ID:       int64(i),
			Category: Category(int(r.Float64() * float64(numCategories))),
			Clothed:  r.Float64() < 0.5,
		})
	}
	return out
}
