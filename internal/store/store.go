// Package store persists one ordered checklist per calendar day.
//
// Every operation takes the day explicitly and returns the resulting list;
// the store keeps no list in memory. Mutations compute the new list before
// writing it, so when a write fails the caller still holds the list it meant
// to save and can retry with Save.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/idilsaglam/daylist/internal/codec"
	"github.com/idilsaglam/daylist/internal/datekey"
	"github.com/idilsaglam/daylist/internal/kv"
	"github.com/idilsaglam/daylist/internal/model"
)

// CorruptPolicy selects what Load does with a value it cannot decode.
type CorruptPolicy int

const (
	// Strict returns an empty list together with ErrCorrupt.
	Strict CorruptPolicy = iota
	// Lenient logs the problem and returns an empty list without error.
	Lenient
)

// ParseCorruptPolicy maps a config value to a policy.
func ParseCorruptPolicy(s string) (CorruptPolicy, error) {
	switch s {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, fmt.Errorf("unknown corrupt policy %q", s)
}

// State tells apart the outcomes of reading a day.
type State int

const (
	StateEmpty   State = iota // nothing stored for the day
	StateFound                // a valid list is stored
	StateCorrupt              // something is stored but does not decode
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFound:
		return "found"
	case StateCorrupt:
		return "corrupt"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is the outcome of Lookup. Entries is never nil.
type Result struct {
	State   State
	Entries []model.Entry
	// Cause holds the decode error when State is StateCorrupt.
	Cause error
}

// Store is the daily checklist store.
type Store struct {
	medium kv.Medium
	log    *zap.Logger
	newID  func() string
	policy CorruptPolicy
	locks  keyLocks
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDFunc replaces the entry id generator.
func WithIDFunc(f func() string) Option {
	return func(s *Store) {
		if f != nil {
			s.newID = f
		}
	}
}

// WithCorruptPolicy sets the policy Load applies to undecodable values.
func WithCorruptPolicy(p CorruptPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// New returns a Store over medium.
// Panics if medium is nil.
func New(medium kv.Medium, opts ...Option) *Store {
	if medium == nil {
		panic("medium is nil")
	}
	s := &Store{
		medium: medium,
		log:    zap.NewNop(),
		newID:  uuid.NewString,
		policy: Strict,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// KeyFor returns the storage key of day.
func (s *Store) KeyFor(day time.Time) datekey.Key {
	return datekey.For(day)
}

// Lookup reads the list stored for day without applying the corrupt policy.
// The error is only set when the medium itself fails (ErrRead).
func (s *Store) Lookup(ctx context.Context, day time.Time) (Result, error) {
	key := s.KeyFor(day)
	raw, ok, err := s.medium.Get(ctx, key.String())
	if err != nil {
		return Result{State: StateEmpty, Entries: []model.Entry{}}, fmt.Errorf("%w: %s: %w", ErrRead, key, err)
	}
	if !ok {
		return Result{State: StateEmpty, Entries: []model.Entry{}}, nil
	}
	entries, err := codec.Decode(raw)
	if err != nil {
		s.log.Warn("undecodable checklist",
			zap.String("key", key.String()),
			zap.Int("bytes", len(raw)),
			zap.Error(err))
		return Result{State: StateCorrupt, Entries: []model.Entry{}, Cause: err}, nil
	}
	return Result{State: StateFound, Entries: entries}, nil
}

// Load returns the list stored for day. A day that was never written yields
// an empty list. On failure the list is empty (not nil) so the caller can
// keep rendering.
func (s *Store) Load(ctx context.Context, day time.Time) ([]model.Entry, error) {
	res, err := s.Lookup(ctx, day)
	if err != nil {
		return res.Entries, err
	}
	if res.State == StateCorrupt {
		if s.policy == Lenient {
			s.log.Info("treating corrupt checklist as empty", zap.String("key", s.KeyFor(day).String()))
			return res.Entries, nil
		}
		return res.Entries, fmt.Errorf("%w: %s: %w", ErrCorrupt, s.KeyFor(day), res.Cause)
	}
	return res.Entries, nil
}

// Save replaces the list stored for day.
func (s *Store) Save(ctx context.Context, day time.Time, entries []model.Entry) error {
	key := s.KeyFor(day)
	unlock := s.locks.lock(key.String())
	defer unlock()
	return s.save(ctx, key, entries)
}

func (s *Store) save(ctx context.Context, key datekey.Key, entries []model.Entry) error {
	b, err := codec.Encode(entries)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, key, err)
	}
	if err := s.medium.Set(ctx, key.String(), b); err != nil {
		s.log.Error("checklist write failed",
			zap.String("key", key.String()),
			zap.Int("entries", len(entries)),
			zap.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrWrite, key, err)
	}
	s.log.Debug("checklist saved", zap.String("key", key.String()), zap.Int("entries", len(entries)))
	return nil
}

// Add appends a new pending entry named name to current and saves the
// result. A blank name is rejected silently: current is returned as is and
// nothing is written.
func (s *Store) Add(ctx context.Context, day time.Time, current []model.Entry, name string) ([]model.Entry, error) {
	next, changed := s.added(current, name)
	if !changed {
		return current, nil
	}
	return next, s.Save(ctx, day, next)
}

// Toggle flips the done flag of the entry with id and saves the result.
// An unknown id leaves current untouched and writes nothing.
func (s *Store) Toggle(ctx context.Context, day time.Time, current []model.Entry, id string) ([]model.Entry, error) {
	next, changed := model.Toggle(current, id)
	if !changed {
		return current, nil
	}
	return next, s.Save(ctx, day, next)
}

// Delete removes the entry with id and saves the result.
// An unknown id leaves current untouched and writes nothing.
func (s *Store) Delete(ctx context.Context, day time.Time, current []model.Entry, id string) ([]model.Entry, error) {
	next, changed := model.Remove(current, id)
	if !changed {
		return current, nil
	}
	return next, s.Save(ctx, day, next)
}

func (s *Store) added(current []model.Entry, name string) ([]model.Entry, bool) {
	e, err := model.NewEntry("", name)
	if err != nil {
		return current, false
	}
	e.ID = s.newID()
	return model.Append(current, e), true
}

// Update reads day's list, applies fn and saves what fn returns, holding the
// day's write lock throughout so concurrent updates cannot overwrite each
// other. fn reports whether it changed anything; nothing is written if not.
//
// Under Strict a corrupt value is left alone and ErrCorrupt is returned.
func (s *Store) Update(ctx context.Context, day time.Time, fn func([]model.Entry) ([]model.Entry, bool)) ([]model.Entry, error) {
	key := s.KeyFor(day)
	unlock := s.locks.lock(key.String())
	defer unlock()

	current, err := s.Load(ctx, day)
	if err != nil {
		return current, err
	}
	next, changed := fn(current)
	if !changed {
		return current, nil
	}
	return next, s.save(ctx, key, next)
}

// AddTo is Add against the stored list instead of a caller snapshot.
func (s *Store) AddTo(ctx context.Context, day time.Time, name string) ([]model.Entry, error) {
	return s.Update(ctx, day, func(cur []model.Entry) ([]model.Entry, bool) {
		return s.added(cur, name)
	})
}

// ToggleIn is Toggle against the stored list.
func (s *Store) ToggleIn(ctx context.Context, day time.Time, id string) ([]model.Entry, error) {
	return s.Update(ctx, day, func(cur []model.Entry) ([]model.Entry, bool) {
		return model.Toggle(cur, id)
	})
}

// DeleteFrom is Delete against the stored list.
func (s *Store) DeleteFrom(ctx context.Context, day time.Time, id string) ([]model.Entry, error) {
	return s.Update(ctx, day, func(cur []model.Entry) ([]model.Entry, bool) {
		return model.Remove(cur, id)
	})
}
