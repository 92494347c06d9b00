package cats

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
)

// KeySelectedCat holds the owner's default fighter token id.
const KeySelectedCat = "selectedCat"

// Rand is what stat rolls need. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type Service struct {
	coll   Collection
	kv     KV
	ladder Ladder

	mu  sync.Mutex
	rnd Rand
}

func NewService(coll Collection, kv KV, ladder Ladder, r Rand) *Service {
	if ladder == nil {
		ladder = DefaultLadder()
	}
	return &Service{coll: coll, kv: kv, ladder: ladder, rnd: r}
}

func (s *Service) Ladder() Ladder { return s.ladder }

// Roster returns the owner's cats. No owner means no cats, not an error.
func (s *Service) Roster(ctx context.Context, owner string) ([]Metadata, error) {
	owner = normalizeOwner(owner)
	if owner == "" {
		return nil, nil
	}
	feed, err := s.coll.CatsOf(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("reading cats of %s: %w", owner, err)
	}
	return feed, nil
}

// Level is the owner's highest cat level, and 1 for an empty roster.
func (s *Service) Level(ctx context.Context, owner string) (int, error) {
	feed, err := s.Roster(ctx, owner)
	if err != nil {
		return 0, err
	}
	level := 1
	for _, m := range feed {
		if m.Level > level {
			level = m.Level
		}
	}
	return level, nil
}

// Unlock validates the request and mints a new cat. Nothing is written
// when validation fails.
func (s *Service) Unlock(ctx context.Context, owner string, req UnlockRequest) (Metadata, error) {
	owner = normalizeOwner(owner)
	if owner == "" {
		return Metadata{}, ErrNoOwner
	}
	level, err := s.Level(ctx, owner)
	if err != nil {
		return Metadata{}, err
	}
	mint, err := s.ladder.validate(owner, req, level)
	if err != nil {
		return Metadata{}, err
	}

	s.mu.Lock()
	mint.Stats = rollStats(s.rnd)
	s.mu.Unlock()

	id, err := s.coll.Mint(ctx, owner, mint)
	if err != nil {
		return Metadata{}, fmt.Errorf("minting %q: %w", mint.Name, err)
	}
	log.Printf("minted cat #%d %q (%s) for %s", id, mint.Name, mint.Color, owner)

	m, err := s.coll.Cat(ctx, id)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading minted cat %d: %w", id, err)
	}
	return m, nil
}

// Get returns one cat by token id.
func (s *Service) Get(ctx context.Context, tokenID int64) (Metadata, error) {
	m, err := s.coll.Cat(ctx, tokenID)
	if err != nil {
		return Metadata{}, err
	}
	return m, nil
}

// SetDefault makes one of the owner's cats their fighter.
func (s *Service) SetDefault(ctx context.Context, owner string, tokenID int64) error {
	owner = normalizeOwner(owner)
	if owner == "" {
		return ErrNoOwner
	}
	m, err := s.coll.Cat(ctx, tokenID)
	if err != nil {
		return err
	}
	if m.Owner != owner {
		return ErrNotOwner
	}
	return s.kv.Put(ctx, owner, KeySelectedCat, strconv.FormatInt(tokenID, 10))
}

// Fighter is the owner's default cat, or their first one when the default
// is unset or no longer theirs.
func (s *Service) Fighter(ctx context.Context, owner string) (Metadata, error) {
	owner = normalizeOwner(owner)
	if owner == "" {
		return Metadata{}, ErrNoOwner
	}
	feed, err := s.Roster(ctx, owner)
	if err != nil {
		return Metadata{}, err
	}
	if len(feed) == 0 {
		return Metadata{}, ErrNoFighter
	}

	v, ok, err := s.kv.Get(ctx, owner, KeySelectedCat)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading default fighter: %w", err)
	}
	if ok {
		if id, perr := strconv.ParseInt(v, 10, 64); perr == nil {
			for _, m := range feed {
				if m.TokenID == id {
					return m, nil
				}
			}
		}
	}
	return feed[0], nil
}

// IsPrecondition reports whether err came from validation rather than the
// collection or storage.
func IsPrecondition(err error) bool {
	for _, target := range []error{ErrNoOwner, ErrNameRequired, ErrNameTooLong, ErrUnknownColor, ErrColorLocked, ErrNoFighter, ErrNotOwner} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
