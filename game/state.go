package game

// Playground is the authoritative playground state for one room.

type Playground struct {
	Tick   int
	Bounds Bounds
	Cats   []Cat
	roster []Traits
}

// Bounds is the measured viewport. Zero until the client reports a size.
type Bounds struct {
	W, H float64
}

// MaxX is the largest x a sprite's top-left corner may take.
func (b Bounds) MaxX() float64 { return clampRange(b.W - SpriteSize) }

// MaxY is the largest y a sprite's top-left corner may take.
func (b Bounds) MaxY() float64 { return clampRange(b.H - SpriteSize) }

func clampRange(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// NewPlayground seeds one cat per roster entry inside b.
func NewPlayground(b Bounds, roster []Traits, r Rand) *Playground {
	p := &Playground{Bounds: b}
	p.SetRoster(roster, r)
	return p
}

// SetRoster replaces every cat with a fresh one per roster entry.
func (p *Playground) SetRoster(roster []Traits, r Rand) {
	p.roster = append(p.roster[:0], roster...)
	p.reseed(r)
}

// Resize reinitialises all cats inside the new bounds. Nothing carries over
// from the old viewport.
func (p *Playground) Resize(b Bounds, r Rand) {
	p.Bounds = b
	p.reseed(r)
}

func (p *Playground) reseed(r Rand) {
	p.Cats = make([]Cat, 0, len(p.roster))
	for _, t := range p.roster {
		p.Cats = append(p.Cats, Spawn(t, p.Bounds, r))
	}
}

// Advance runs one tick over every cat.
func (p *Playground) Advance(r Rand) {
	p.Tick++
	StepAll(p.Cats, p.Bounds, r)
}

// Find returns the cat with the given token id.
func (p *Playground) Find(id int64) (Cat, bool) {
	for _, c := range p.Cats {
		if c.ID == id {
			return c, true
		}
	}
	return Cat{}, false
}
