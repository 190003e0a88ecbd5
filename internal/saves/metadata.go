package saves

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/talgya/planet-core/internal/planet"
)

// MaxLabelLength is the longest label, in characters, a record may carry.
const MaxLabelLength = 64

// TimestampLayout is the ISO-8601 form timestamps are stored in.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

var epoch = time.Unix(0, 0).UTC()

// Metadata describes a stored record.
type Metadata struct {
	Slot      int
	Label     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type metadataJSON struct {
	Slot      int    `json:"slot"`
	Label     string `json:"label"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataJSON{
		Slot:      m.Slot,
		Label:     m.Label,
		CreatedAt: FormatTimestamp(m.CreatedAt),
		UpdatedAt: FormatTimestamp(m.UpdatedAt),
	})
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	v, err := planet.DecodeJSON(data)
	if err != nil {
		return err
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return fmt.Errorf("metadata is not an object")
	}
	slot, ok := integer(raw["slot"])
	if !ok {
		return fmt.Errorf("metadata slot is not an integer")
	}
	*m = normalizeMetadata(raw, int(slot))
	return nil
}

// FormatTimestamp renders t as UTC ISO-8601 with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp accepts the ISO-8601 shapes browsers and Go emit.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DefaultLabel is the label given to a slot with no usable one.
func DefaultLabel(slot int) string {
	return fmt.Sprintf("Slot %d", slot+1)
}

func normalizeLabel(label string, slot int) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultLabel(slot)
	}
	if utf8.RuneCountInString(label) > MaxLabelLength {
		label = string([]rune(label)[:MaxLabelLength])
	}
	return label
}

// Normalized returns m with the label trimmed, truncated or defaulted,
// timestamps in UTC at millisecond precision, a zero CreatedAt replaced by
// the epoch and UpdatedAt never earlier than CreatedAt.
func (m Metadata) Normalized() Metadata {
	created := m.CreatedAt
	if created.IsZero() {
		created = epoch
	}
	created = created.UTC().Truncate(time.Millisecond)

	updated := m.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	updated = updated.UTC().Truncate(time.Millisecond)
	if updated.Before(created) {
		updated = created
	}

	return Metadata{
		Slot:      m.Slot,
		Label:     normalizeLabel(m.Label, m.Slot),
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// normalizeMetadata reads untrusted metadata fields; slot has already been
// validated by the caller.
func normalizeMetadata(raw map[string]any, slot int) Metadata {
	label, _ := raw["label"].(string)

	var m Metadata
	m.Slot = slot
	m.Label = label
	if s, ok := raw["createdAt"].(string); ok {
		if t, ok := ParseTimestamp(s); ok {
			m.CreatedAt = t
		}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = epoch
	}
	if s, ok := raw["updatedAt"].(string); ok {
		if t, ok := ParseTimestamp(s); ok {
			m.UpdatedAt = t
		}
	}
	return m.Normalized()
}
