// Package store sells playground backgrounds for points.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Setting keys, matching the browser storage layout.
const (
	KeyPoints   = "playerPoints"
	KeyOwned    = "ownedBackgrounds"
	KeySelected = "selectedBackground"
)

var (
	ErrNoOwner           = errors.New("no connected wallet")
	ErrUnknownItem       = errors.New("unknown background")
	ErrAlreadyOwned      = errors.New("background already owned")
	ErrInsufficientFunds = errors.New("not enough points")
	ErrNotOwned          = errors.New("background not purchased")
)

// KV is per-owner string storage. PutMany must apply all keys or none.
type KV interface {
	Get(ctx context.Context, owner, key string) (string, bool, error)
	PutMany(ctx context.Context, owner string, kv map[string]string) error
}

type Inventory struct {
	Points   int      `json:"points"`
	Owned    []string `json:"owned"`
	Selected string   `json:"selected,omitempty"`
}

func (inv Inventory) Owns(id string) bool {
	return slices.Contains(inv.Owned, id)
}

type Service struct {
	catalog        Catalog
	kv             KV
	startingPoints int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(catalog Catalog, kv KV, startingPoints int) *Service {
	return &Service{
		catalog:        slices.Clone(catalog),
		kv:             kv,
		startingPoints: startingPoints,
		locks:          make(map[string]*sync.Mutex),
	}
}

// Catalog returns a copy of the items on sale.
func (s *Service) Catalog() Catalog {
	return slices.Clone(s.catalog)
}

// ownerLock serializes read-modify-write per owner.
func (s *Service) ownerLock(owner string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[owner]
	if !ok {
		l = &sync.Mutex{}
		s.locks[owner] = l
	}
	return l
}

// Inventory loads the owner's balance, owned items and selection. Owners
// with nothing stored start with the configured points.
func (s *Service) Inventory(ctx context.Context, owner string) (Inventory, error) {
	owner = strings.ToLower(strings.TrimSpace(owner))
	if owner == "" {
		return Inventory{}, ErrNoOwner
	}
	return s.load(ctx, owner)
}

func (s *Service) load(ctx context.Context, owner string) (Inventory, error) {
	inv := Inventory{Points: s.startingPoints, Owned: []string{}}

	if v, ok, err := s.kv.Get(ctx, owner, KeyPoints); err != nil {
		return Inventory{}, fmt.Errorf("loading points: %w", err)
	} else if ok {
		p, err := strconv.Atoi(v)
		if err != nil {
			return Inventory{}, fmt.Errorf("parsing points %q: %w", v, err)
		}
		inv.Points = p
	}

	if v, ok, err := s.kv.Get(ctx, owner, KeyOwned); err != nil {
		return Inventory{}, fmt.Errorf("loading owned backgrounds: %w", err)
	} else if ok {
		if err := json.Unmarshal([]byte(v), &inv.Owned); err != nil {
			return Inventory{}, fmt.Errorf("parsing owned backgrounds: %w", err)
		}
	}

	if v, ok, err := s.kv.Get(ctx, owner, KeySelected); err != nil {
		return Inventory{}, fmt.Errorf("loading selected background: %w", err)
	} else if ok {
		if _, known := s.catalog.Find(v); known {
			inv.Selected = v
		}
	}
	return inv, nil
}

// Purchase buys a background. On any error the stored inventory is left
// as it was.
func (s *Service) Purchase(ctx context.Context, owner, id string) (Inventory, error) {
	owner = strings.ToLower(strings.TrimSpace(owner))
	if owner == "" {
		return Inventory{}, ErrNoOwner
	}
	bg, ok := s.catalog.Find(id)
	if !ok {
		return Inventory{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}

	l := s.ownerLock(owner)
	l.Lock()
	defer l.Unlock()

	inv, err := s.load(ctx, owner)
	if err != nil {
		return Inventory{}, err
	}
	if inv.Owns(id) {
		return inv, fmt.Errorf("%w: %s", ErrAlreadyOwned, bg.Name)
	}
	if inv.Points < bg.Cost {
		return inv, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, inv.Points, bg.Cost)
	}

	next := Inventory{
		Points:   inv.Points - bg.Cost,
		Owned:    append(slices.Clone(inv.Owned), id),
		Selected: inv.Selected,
	}
	owned, err := json.Marshal(next.Owned)
	if err != nil {
		return inv, fmt.Errorf("encoding owned backgrounds: %w", err)
	}
	if err := s.kv.PutMany(ctx, owner, map[string]string{
		KeyPoints: strconv.Itoa(next.Points),
		KeyOwned:  string(owned),
	}); err != nil {
		return inv, fmt.Errorf("saving purchase: %w", err)
	}

	log.Printf("store: %s bought %s for %d points, balance %d", owner, bg.ID, bg.Cost, next.Points)
	return next, nil
}

// Select applies an owned background.
func (s *Service) Select(ctx context.Context, owner, id string) (Inventory, error) {
	owner = strings.ToLower(strings.TrimSpace(owner))
	if owner == "" {
		return Inventory{}, ErrNoOwner
	}
	if _, ok := s.catalog.Find(id); !ok {
		return Inventory{}, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}

	l := s.ownerLock(owner)
	l.Lock()
	defer l.Unlock()

	inv, err := s.load(ctx, owner)
	if err != nil {
		return Inventory{}, err
	}
	if !inv.Owns(id) {
		return inv, fmt.Errorf("%w: %s", ErrNotOwned, id)
	}
	if err := s.kv.PutMany(ctx, owner, map[string]string{KeySelected: id}); err != nil {
		return inv, fmt.Errorf("saving selection: %w", err)
	}
	inv.Selected = id
	return inv, nil
}
