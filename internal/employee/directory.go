package employee

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	domerrors "github.com/dempseyco/hr-assistant-go/internal/errors"
	"github.com/dempseyco/hr-assistant-go/internal/logger"
)

// Store is the record store collaborator. LoadAll must return records in
// load order; that order is the tie-break for name lookups. Persist is
// called after every committed mutation.
type Store interface {
	LoadAll(ctx context.Context) ([]Record, error)
	Persist(ctx context.Context, record Record) error
}

// Directory holds the in-memory snapshot of all employee records and owns
// resolution and mutation. Reads return copies of the last committed
// snapshot; mutations are single-writer under the directory lock.
type Directory struct {
	mu     sync.RWMutex
	store  Store
	byID   map[string]*Record // keyed by lowercased ID
	order  []string           // lowercased IDs in load order
	logger *logger.Logger
}

// NewDirectory loads all records from the store and builds the directory.
func NewDirectory(ctx context.Context, store Store, log *logger.Logger) (*Directory, error) {
	records, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load employee records: %w", err)
	}

	d := &Directory{
		store:  store,
		byID:   make(map[string]*Record, len(records)),
		order:  make([]string, 0, len(records)),
		logger: log.WithModule("employee"),
	}
	for i := range records {
		rec := records[i]
		key := strings.ToLower(rec.ID)
		if _, exists := d.byID[key]; exists {
			d.logger.WithField("employee_id", rec.ID).Warn("Duplicate employee ID in store; keeping first")
			continue
		}
		d.byID[key] = &rec
		d.order = append(d.order, key)
	}

	d.logger.WithField("count", len(d.order)).Info("Employee directory loaded")
	return d, nil
}

// Count returns the number of records in the directory.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}

// Resolve finds exactly one record by ID or first name, case-insensitively.
// ID match is tried first. A first-name lookup matching more than one record
// returns ErrAmbiguousName; the caller decides whether to surface candidates.
func (d *Directory) Resolve(identifier string) (Record, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Record{}, domerrors.ErrMissingIdentifier
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	key := strings.ToLower(identifier)
	if rec, ok := d.byID[key]; ok {
		return *rec, nil
	}

	var matches []*Record
	for _, id := range d.order {
		rec := d.byID[id]
		if strings.EqualFold(rec.FirstName, identifier) {
			matches = append(matches, rec)
		}
	}

	switch len(matches) {
	case 0:
		return Record{}, domerrors.ErrEmployeeNotFound
	case 1:
		return *matches[0], nil
	default:
		ids := make([]string, len(matches))
		for i, rec := range matches {
			ids[i] = rec.ID
		}
		return Record{}, fmt.Errorf("first name %q matches %s: %w",
			identifier, strings.Join(ids, ", "), domerrors.ErrAmbiguousName)
	}
}

// Update applies one or more validated changes to a single record as one
// atomic commit. baseVersion is the record version the caller read; a
// mismatch means another write landed in between and yields
// ErrMutationConflict. On persist failure nothing is applied.
func (d *Directory) Update(ctx context.Context, employeeID string, baseVersion int64, changes ...Change) (Record, error) {
	if len(changes) == 0 {
		return Record{}, domerrors.NewValidationError("update", "no changes supplied")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	rec, ok := d.byID[strings.ToLower(employeeID)]
	if !ok {
		return Record{}, domerrors.ErrEmployeeNotFound
	}
	if rec.Version != baseVersion {
		return Record{}, fmt.Errorf("record %s changed underneath update: %w", rec.ID, domerrors.ErrMutationConflict)
	}

	// Apply to a copy first so a persist failure leaves the snapshot intact.
	updated := *rec
	for _, c := range changes {
		c.apply(&updated)
	}
	updated.Version++

	if err := d.store.Persist(ctx, updated); err != nil {
		d.logger.WithError(err).WithField("employee_id", rec.ID).Error("Failed to persist mutation")
		return Record{}, fmt.Errorf("persist record %s: %w", rec.ID, err)
	}

	*rec = updated
	return updated, nil
}

// All returns copies of every record in load order.
func (d *Directory) All() []Record {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Record, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, *d.byID[id])
	}
	return out
}

// PTOStats summarizes days-off balances for the HR dashboard.
type PTOStats struct {
	TotalEmployees int
	AverageDaysOff float64
	Distribution   map[string]int // bucket label -> count
}

// ptoBuckets are the dashboard histogram buckets, upper bound inclusive.
var ptoBuckets = []struct {
	label string
	upper int
}{
	{"0-5", 5},
	{"6-10", 10},
	{"11-15", 15},
	{"16-20", 20},
	{"21-25", 25},
	{"26+", 1 << 30},
}

// PTOOverview computes the days-off summary across all records.
func (d *Directory) PTOOverview() PTOStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := PTOStats{
		TotalEmployees: len(d.order),
		Distribution:   make(map[string]int, len(ptoBuckets)),
	}
	if len(d.order) == 0 {
		return stats
	}

	total := 0
	for _, id := range d.order {
		days := d.byID[id].DaysOffRemaining
		total += days
		idx := sort.Search(len(ptoBuckets), func(i int) bool { return days <= ptoBuckets[i].upper })
		stats.Distribution[ptoBuckets[idx].label]++
	}
	stats.AverageDaysOff = float64(total) / float64(len(d.order))
	return stats
}
