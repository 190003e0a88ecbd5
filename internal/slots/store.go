// Package slots manages the fixed set of save slots on top of a key-value
// store. Slot health is classified every time a slot is read; nothing about
// it is cached.
package slots

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/planet-core/internal/logging"
	"github.com/talgya/planet-core/internal/persistence"
	"github.com/talgya/planet-core/internal/planet"
	"github.com/talgya/planet-core/internal/saves"
)

// KeyPrefix is prepended to the slot index to form the storage key.
const KeyPrefix = "planet-save-slot-"

// Key returns the storage key for slot.
func Key(slot int) string {
	return fmt.Sprintf("%s%d", KeyPrefix, slot)
}

// Store reads and writes save records. It does no locking of its own;
// callers that share a Store across goroutines must serialize access to a
// given slot.
type Store struct {
	kv     persistence.KV
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Store)

// WithClock replaces time.Now as the source of save timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns a Store backed by kv.
func New(kv persistence.KV, opts ...Option) *Store {
	s := &Store{kv: kv, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.Component(s.logger, "slots")
	return s
}

// SaveOptions overrides parts of the metadata written by Save.
type SaveOptions struct {
	// Label replaces the stored label. Empty keeps the existing one.
	Label string
	// Timestamp is stamped as updatedAt (and createdAt for a new record).
	// Zero means the store's clock.
	Timestamp time.Time
}

func checkSlot(slot int) error {
	if slot < 0 || slot >= saves.SlotCount {
		return saves.InvalidSlot(slot)
	}
	return nil
}

// Save writes state to slot. An existing readable record keeps its
// createdAt and label unless opts overrides them; an unreadable one is
// treated as absent.
func (s *Store) Save(slot int, state planet.PlanetState, opts SaveOptions) (saves.Record, error) {
	if err := checkSlot(slot); err != nil {
		return saves.Record{}, err
	}

	stamp := opts.Timestamp
	if stamp.IsZero() {
		stamp = s.now()
	}
	meta := saves.Metadata{Slot: slot, CreatedAt: stamp, UpdatedAt: stamp}

	existing, err := s.Load(slot)
	switch {
	case err == nil:
		meta.CreatedAt = existing.Metadata.CreatedAt
		meta.Label = existing.Metadata.Label
	case saves.KindOf(err) != 0:
		if !errors.Is(err, saves.ErrSlotEmpty) {
			s.logger.Warn("overwriting unreadable slot", "slot", slot, "error", err)
		}
	default:
		return saves.Record{}, fmt.Errorf("read slot %d: %w", slot, err)
	}
	if opts.Label != "" {
		meta.Label = opts.Label
	}

	state = planet.NormalizeState(state)
	data, err := saves.Serialize(state, meta)
	if err != nil {
		return saves.Record{}, err
	}
	if err := s.kv.Set(Key(slot), data); err != nil {
		return saves.Record{}, fmt.Errorf("write slot %d: %w", slot, err)
	}

	rec := saves.Record{
		FormatVersion:      saves.FormatVersion,
		Metadata:           meta.Normalized(),
		PlanetStateVersion: state.Version,
		PlanetState:        state,
	}
	s.logger.Debug("slot saved", "slot", slot, "label", rec.Metadata.Label, "bytes", len(data))
	return rec, nil
}

// Load reads and deserializes the record in slot.
func (s *Store) Load(slot int) (saves.Record, error) {
	data, err := s.read(slot)
	if err != nil {
		return saves.Record{}, err
	}
	return saves.Deserialize(data, saves.ForSlot(slot))
}

// Clear removes whatever is stored in slot. Clearing an empty slot succeeds.
func (s *Store) Clear(slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	if err := s.kv.Delete(Key(slot)); err != nil {
		return fmt.Errorf("clear slot %d: %w", slot, err)
	}
	s.logger.Debug("slot cleared", "slot", slot)
	return nil
}

// List classifies every slot. Data errors become summaries; only failures
// of the underlying store are returned.
func (s *Store) List() ([]Summary, error) {
	out := make([]Summary, 0, saves.SlotCount)
	for slot := 0; slot < saves.SlotCount; slot++ {
		rec, err := s.Load(slot)
		if err != nil && saves.KindOf(err) == 0 {
			return nil, err
		}
		out = append(out, s.classify(slot, rec, err))
	}
	return out, nil
}

func (s *Store) classify(slot int, rec saves.Record, err error) Summary {
	switch saves.KindOf(err) {
	case 0:
		return Available{Slot: slot, Metadata: rec.Metadata, PlanetStateVersion: rec.PlanetStateVersion}
	case saves.KindSlotEmpty:
		return Empty{Slot: slot}
	case saves.KindUnsupportedVersion, saves.KindIncompatible:
		s.logger.Warn("slot incompatible", "slot", slot, "error", err)
		return Incompatible{Slot: slot, Reason: reason(err)}
	default:
		s.logger.Warn("slot corrupted", "slot", slot, "error", err)
		return Corrupted{Slot: slot, Reason: reason(err)}
	}
}

func reason(err error) string {
	var se *saves.Error
	if errors.As(err, &se) {
		msg := se.Reason
		if se.Err != nil {
			if msg != "" {
				msg += ": "
			}
			msg += se.Err.Error()
		}
		if msg != "" {
			return msg
		}
		return se.Kind.String()
	}
	return err.Error()
}

// FindMostRecentValid returns the available slot with the latest updatedAt.
// Ties go to the lowest slot index. ok is false when no slot is available.
func (s *Store) FindMostRecentValid() (best Available, ok bool, err error) {
	summaries, err := s.List()
	if err != nil {
		return Available{}, false, err
	}
	for _, sum := range summaries {
		a, isAvail := sum.(Available)
		if !isAvail {
			continue
		}
		if !ok || a.Metadata.UpdatedAt.After(best.Metadata.UpdatedAt) {
			best, ok = a, true
		}
	}
	return best, ok, nil
}

// Export returns the raw bytes stored in slot.
func (s *Store) Export(slot int) ([]byte, error) {
	return s.read(slot)
}

// Import validates payload as a save record and stores it in slot. A record
// exported from another slot is rewritten to name slot in its metadata, and
// a default label follows the record to its new slot.
func (s *Store) Import(slot int, payload []byte) (saves.Record, error) {
	if err := checkSlot(slot); err != nil {
		return saves.Record{}, err
	}
	rec, err := saves.Deserialize(payload, saves.DeserializeOptions{})
	if err != nil {
		return saves.Record{}, err
	}
	if from := rec.Metadata.Slot; from != slot {
		s.logger.Debug("rewriting imported record slot", "from", from, "to", slot)
		rec.Metadata.Slot = slot
		if rec.Metadata.Label == saves.DefaultLabel(from) {
			rec.Metadata.Label = saves.DefaultLabel(slot)
		}
	}
	data, err := saves.Serialize(rec.PlanetState, rec.Metadata)
	if err != nil {
		return saves.Record{}, err
	}
	if err := s.kv.Set(Key(slot), data); err != nil {
		return saves.Record{}, fmt.Errorf("write slot %d: %w", slot, err)
	}
	s.logger.Info("slot imported", "slot", slot, "label", rec.Metadata.Label)
	return rec, nil
}

func (s *Store) read(slot int) ([]byte, error) {
	if err := checkSlot(slot); err != nil {
		return nil, err
	}
	data, err := s.kv.Get(Key(slot))
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, saves.SlotEmpty(slot)
	}
	if err != nil {
		return nil, fmt.Errorf("read slot %d: %w", slot, err)
	}
	return data, nil
}
