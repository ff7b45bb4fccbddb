// Package pointstore implements the durable point repository on top of the
// key-value store: per-category point sequences, monotonic sequence
// counters, and the persisted UI settings.
package pointstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"fieldmark/internal/field"
	"fieldmark/internal/kv"
	"fieldmark/internal/model"
)

// Logical keys in the KV store. Counters are persisted separately from the
// point arrays, and written first, so a number handed out survives a failed
// points write and is never reissued.
const (
	pointsKeyPrefix   = "points/"
	counterKeyPrefix  = "counter/"
	activeCategoryKey = "settings/active_category"
	visibilityKey     = "settings/visibility"
)

// Store implements field.PointStore. All state is guarded by mu; every
// mutating operation persists before returning, and records a sticky
// degraded flag when the durable write fails.
type Store struct {
	kv     kv.Store
	idgen  field.IDGenerator
	logger field.Logger

	mu       sync.Mutex
	points   map[model.Category][]model.Point
	counters map[model.Category]int
	active   model.Category // "" when no selection
	visible  map[model.Category]bool
	degraded bool
}

var _ field.PointStore = (*Store)(nil)

// Open loads the persisted state from the KV store. Missing keys mean an
// empty store; a counter behind its category's highest sequence number is
// advanced to match, so numbering never collides after a partial write.
func Open(store kv.Store, idgen field.IDGenerator, logger field.Logger) (*Store, error) {
	s := &Store{
		kv:       store,
		idgen:    idgen,
		logger:   logger,
		points:   make(map[model.Category][]model.Point),
		counters: make(map[model.Category]int),
		visible:  make(map[model.Category]bool),
	}

	for _, c := range model.Categories() {
		if err := s.loadCategory(c); err != nil {
			return nil, err
		}
	}

	if err := s.loadSettings(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) loadCategory(c model.Category) error {
	raw, ok, err := s.kv.Get(pointsKeyPrefix + c.String())
	if err != nil {
		return fmt.Errorf("loading %s points: %w", c, err)
	}
	if ok {
		var pts []model.Point
		if err := json.Unmarshal([]byte(raw), &pts); err != nil {
			return fmt.Errorf("decoding %s points: %w", c, err)
		}
		s.points[c] = pts
	}

	raw, ok, err = s.kv.Get(counterKeyPrefix + c.String())
	if err != nil {
		return fmt.Errorf("loading %s counter: %w", c, err)
	}
	if ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("decoding %s counter: %w", c, err)
		}
		s.counters[c] = n
	}

	for _, p := range s.points[c] {
		if p.SequenceNumber > s.counters[c] {
			s.logger.Warn("counter behind stored points, advancing",
				"category", c, "counter", s.counters[c], "sequence", p.SequenceNumber)
			s.counters[c] = p.SequenceNumber
		}
	}
	return nil
}

func (s *Store) loadSettings() error {
	raw, ok, err := s.kv.Get(activeCategoryKey)
	if err != nil {
		return fmt.Errorf("loading active category: %w", err)
	}
	if ok {
		if c := model.Category(raw); c.Valid() {
			s.active = c
		} else {
			s.logger.Warn("ignoring invalid stored active category", "value", raw)
		}
	}

	raw, ok, err = s.kv.Get(visibilityKey)
	if err != nil {
		return fmt.Errorf("loading visibility settings: %w", err)
	}
	if ok {
		var vis map[model.Category]bool
		if err := json.Unmarshal([]byte(raw), &vis); err != nil {
			return fmt.Errorf("decoding visibility settings: %w", err)
		}
		for c, v := range vis {
			if c.Valid() {
				s.visible[c] = v
			}
		}
	}
	return nil
}

// Create assigns an ID and the next sequence number, appends, and persists.
// The counter is persisted before the point array so a number is burned
// rather than reused if the second write fails.
func (s *Store) Create(draft model.Point) (model.Point, error) {
	if !draft.Category.Valid() {
		return model.Point{}, fmt.Errorf("unknown category: %q", draft.Category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := draft.Category
	p := draft
	p.ID = s.idgen.New()
	p.SequenceNumber = s.counters[c] + 1

	s.counters[c] = p.SequenceNumber
	s.points[c] = append(s.points[c], p)

	if err := s.persistCounter(c); err != nil {
		return p, s.markDegraded("persisting counter", c, err)
	}
	if err := s.persistPoints(c); err != nil {
		return p, s.markDegraded("persisting points", c, err)
	}

	s.logger.Info("point created", "category", c, "sequence", p.SequenceNumber, "id", p.ID)
	return p, nil
}

// Delete removes a point if present. The category counter is untouched.
func (s *Store) Delete(id string, category model.Category) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("unknown category: %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pts := s.points[category]
	idx := -1
	for i, p := range pts {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	s.points[category] = append(pts[:idx], pts[idx+1:]...)

	if err := s.persistPoints(category); err != nil {
		return true, s.markDegraded("persisting points", category, err)
	}

	s.logger.Info("point deleted", "category", category, "id", id)
	return true, nil
}

// UpdateNotes mutates only the notes field and persists immediately.
func (s *Store) UpdateNotes(id string, category model.Category, notes string) (bool, error) {
	if !category.Valid() {
		return false, fmt.Errorf("unknown category: %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pts := s.points[category]
	for i := range pts {
		if pts[i].ID == id {
			pts[i].Notes = notes
			if err := s.persistPoints(category); err != nil {
				return true, s.markDegraded("persisting points", category, err)
			}
			return true, nil
		}
	}
	return false, nil
}

// ClearAll empties every category, resets every counter to zero, and clears
// the active-category selection.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range model.Categories() {
		s.points[c] = nil
		s.counters[c] = 0
	}
	s.active = ""

	if err := s.persistAll(); err != nil {
		s.degraded = true
		return fmt.Errorf("%w: clearing store: %v", field.ErrStorage, err)
	}

	s.degraded = false
	s.logger.Info("all points cleared")
	return nil
}

// Restore replaces the contents with snapshot. Counters only move forward.
func (s *Store) Restore(snapshot model.Snapshot) error {
	for c := range snapshot {
		if !c.Valid() {
			return fmt.Errorf("unknown category: %q", c)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range model.Categories() {
		pts := append([]model.Point(nil), snapshot[c]...)
		s.points[c] = pts
		for _, p := range pts {
			if p.SequenceNumber > s.counters[c] {
				s.counters[c] = p.SequenceNumber
			}
		}
	}

	if err := s.persistAll(); err != nil {
		s.degraded = true
		return fmt.Errorf("%w: restoring store: %v", field.ErrStorage, err)
	}

	s.degraded = false
	s.logger.Info("store restored", "points", model.Snapshot(s.points).TotalCount())
	return nil
}

func (s *Store) ByCategory(category model.Category) ([]model.Point, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category: %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]model.Point(nil), s.points[category]...), nil
}

func (s *Store) Snapshot() model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make(model.Snapshot, len(model.Categories()))
	for _, c := range model.Categories() {
		snap[c] = append([]model.Point(nil), s.points[c]...)
	}
	return snap
}

func (s *Store) Count(category model.Category) (int, error) {
	if !category.Valid() {
		return 0, fmt.Errorf("unknown category: %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.points[category]), nil
}

func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, pts := range s.points {
		n += len(pts)
	}
	return n
}

func (s *Store) SetActiveCategory(category model.Category) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category: %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = category
	if err := s.kv.Put(activeCategoryKey, category.String()); err != nil {
		s.degraded = true
		return fmt.Errorf("%w: persisting active category: %v", field.ErrStorage, err)
	}
	return nil
}

func (s *Store) ActiveCategory() (model.Category, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active, s.active != ""
}

func (s *Store) SetVisible(category model.Category, visible bool) error {
	if !category.Valid() {
		return fmt.Errorf("unknown category: %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.visible[category] = visible
	if err := s.persistVisibility(); err != nil {
		s.degraded = true
		return fmt.Errorf("%w: persisting visibility: %v", field.ErrStorage, err)
	}
	return nil
}

func (s *Store) Visibility() map[model.Category]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	vis := make(map[model.Category]bool, len(model.Categories()))
	for _, c := range model.Categories() {
		v, ok := s.visible[c]
		if !ok {
			v = true // visible unless explicitly hidden
		}
		vis[c] = v
	}
	return vis
}

func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.degraded
}

// markDegraded sets the sticky degraded flag and wraps err as a storage
// failure. Callers must hold mu.
func (s *Store) markDegraded(op string, c model.Category, err error) error {
	s.degraded = true
	s.logger.Error("storage write failed", "op", op, "category", c, "err", err)
	return fmt.Errorf("%w: %s for %s: %v", field.ErrStorage, op, c, err)
}

func (s *Store) persistCounter(c model.Category) error {
	return s.kv.Put(counterKeyPrefix+c.String(), strconv.Itoa(s.counters[c]))
}

func (s *Store) persistPoints(c model.Category) error {
	pts := s.points[c]
	if pts == nil {
		pts = []model.Point{}
	}
	data, err := json.Marshal(pts)
	if err != nil {
		return fmt.Errorf("encoding points: %w", err)
	}
	return s.kv.Put(pointsKeyPrefix+c.String(), string(data))
}

func (s *Store) persistVisibility() error {
	data, err := json.Marshal(s.visible)
	if err != nil {
		return fmt.Errorf("encoding visibility: %w", err)
	}
	return s.kv.Put(visibilityKey, string(data))
}

// persistAll writes counters, point arrays, and settings for every category.
func (s *Store) persistAll() error {
	for _, c := range model.Categories() {
		if err := s.persistCounter(c); err != nil {
			return err
		}
		if err := s.persistPoints(c); err != nil {
			return err
		}
	}
	if s.active == "" {
		if err := s.kv.Delete(activeCategoryKey); err != nil {
			return err
		}
	} else if err := s.kv.Put(activeCategoryKey, s.active.String()); err != nil {
		return err
	}
	return s.persistVisibility()
}
