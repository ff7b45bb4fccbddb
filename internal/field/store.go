package field

import "fieldmark/internal/model"

// PointStore is the sole owner of point lifecycle, the per-category sequence
// counters, and the persisted UI settings. Implementations keep the
// in-memory and durable copies matching, or fail detectably: a mutating call
// that returns an error wrapping ErrStorage has applied the change in memory
// but not durably, and Degraded reports true from then on.
type PointStore interface {
	// Create assigns a fresh ID and the category's next sequence number to
	// draft, appends it, and persists. Sequence numbers are never reused,
	// even across deletions. The draft's ID and SequenceNumber are ignored.
	Create(draft model.Point) (model.Point, error)

	// Delete removes a point. It is idempotent: deleting an unknown id
	// returns false with no error and no counter change.
	Delete(id string, category model.Category) (bool, error)

	// UpdateNotes mutates only the notes field of an existing point.
	// Returns false if the point is not found.
	UpdateNotes(id string, category model.Category, notes string) (bool, error)

	// ClearAll empties every category, resets every sequence counter to
	// zero, and clears the active-category selection. Destructive and
	// irreversible; callers must obtain explicit user confirmation first.
	ClearAll() error

	// ByCategory returns the category's points in insertion order.
	// The returned slice is a copy the caller may keep.
	ByCategory(category model.Category) ([]model.Point, error)

	// Snapshot returns a caller-owned copy of all categories.
	Snapshot() model.Snapshot

	// Count returns the number of points in one category.
	Count(category model.Category) (int, error)

	// TotalCount returns the number of points across all categories.
	TotalCount() int

	// SetActiveCategory persists the category the next mark action uses.
	SetActiveCategory(category model.Category) error

	// ActiveCategory returns the persisted selection; ok is false when no
	// selection has been made (or it was reset by ClearAll).
	ActiveCategory() (category model.Category, ok bool)

	// SetVisible persists a per-category show/hide preference for the
	// presentation layer. It does not affect stored points.
	SetVisible(category model.Category, visible bool) error

	// Visibility returns the per-category visibility map. Categories
	// without an explicit preference default to visible.
	Visibility() map[model.Category]bool

	// Restore replaces the store contents with the given snapshot. Each
	// category's counter advances to cover the highest restored sequence
	// number but never decreases, so numbers issued before the restore are
	// not reused after it.
	Restore(snapshot model.Snapshot) error

	// Degraded reports whether some in-memory mutation failed to reach
	// durable storage. The flag is sticky until the full state is
	// successfully re-persisted (ClearAll or Restore).
	Degraded() bool
}
