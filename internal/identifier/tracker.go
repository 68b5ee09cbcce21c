package identifier

import (
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-catalog-service/internal/apperrors"
)

// Tracker is the identifier list of one variant while its form is edited.
type Tracker struct {
	Name     string
	quantity int
	enabled  bool
	entries  []string
}

func NewTracker(name string, quantity int) *Tracker {
	if quantity < 0 {
		quantity = 0
	}
	return &Tracker{Name: name, quantity: quantity}
}

func (t *Tracker) Enabled() bool { return t.enabled }

func (t *Tracker) Quantity() int { return t.quantity }

// Entries returns a copy of the current list, blanks included.
func (t *Tracker) Entries() []string {
	return append([]string(nil), t.entries...)
}

// Enable switches tracking. Tracking cannot be turned on without stock.
func (t *Tracker) Enable(on bool) error {
	if !on {
		t.enabled = false
		t.entries = nil
		return nil
	}
	if t.quantity == 0 {
		return apperrors.Validation("identifier_tracking_disabled",
			"Stock is zero, IMEI/Serial tracking was turned off", nil)
	}
	t.enabled = true
	return nil
}

// SetQuantity changes the bound. Lowering it below the list length drops
// trailing entries; zero turns tracking off. The returned notice is nil
// when nothing was dropped.
func (t *Tracker) SetQuantity(q int) *apperrors.Notice {
	if q < 0 {
		q = 0
	}
	t.quantity = q
	if !t.enabled {
		return nil
	}
	if q == 0 {
		t.enabled = false
		t.entries = nil
		return &apperrors.Notice{
			MessageID: "identifier_tracking_disabled",
			Message:   "Stock is zero, IMEI/Serial tracking was turned off",
		}
	}
	if len(t.entries) <= q {
		return nil
	}
	removed := len(Filled(t.entries[q:]))
	t.entries = t.entries[:q]
	if removed == 0 {
		return nil
	}
	return &apperrors.Notice{
		MessageID: "identifiers_truncated",
		Message:   fmt.Sprintf("Quantity reduced: removed %d IMEI/Serial entr(ies)", removed),
		Data:      map[string]interface{}{"Count": removed},
	}
}

// Set writes the entry at index, growing the list up to the bound.
func (t *Tracker) Set(index int, value string) error {
	if !t.enabled {
		return apperrors.Validation("identifier_tracking_disabled",
			"Stock is zero, IMEI/Serial tracking was turned off", nil)
	}
	if index < 0 || index >= t.quantity {
		return LimitExceeded(t.Name, t.quantity)
	}
	for len(t.entries) <= index {
		t.entries = append(t.entries, "")
	}
	t.entries[index] = strings.TrimSpace(value)
	return nil
}

// Add appends value when the filled count is below the bound.
func (t *Tracker) Add(value string) error {
	if !t.enabled {
		return apperrors.Validation("identifier_tracking_disabled",
			"Stock is zero, IMEI/Serial tracking was turned off", nil)
	}
	if len(Filled(t.entries)) >= t.quantity {
		return LimitExceeded(t.Name, t.quantity)
	}
	for i, e := range t.entries {
		if strings.TrimSpace(e) == "" {
			t.entries[i] = strings.TrimSpace(value)
			return nil
		}
	}
	t.entries = append(t.entries, strings.TrimSpace(value))
	return nil
}

// Variant returns the tracker state in the form CheckProduct takes.
func (t *Tracker) Variant() Variant {
	v := Variant{Name: t.Name, Quantity: t.quantity}
	if t.enabled {
		v.Identifiers = Filled(t.entries)
	}
	return v
}
