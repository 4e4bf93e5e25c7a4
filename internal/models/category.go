package models

import "fmt"

// ServiceCategory is the kind of workshop a user is looking for.
type ServiceCategory int

const (
	CategoryMechanical ServiceCategory = iota + 1
	CategoryBodyPaint
	CategoryElectrical
	CategoryTires
)

// DefaultKeyword is sent to the place provider when no category is selected.
const DefaultKeyword = "taller mecanico"

var categoryTable = map[ServiceCategory]struct {
	label   string
	keyword string
}{
	CategoryMechanical: {"Mecánica", DefaultKeyword},
	CategoryBodyPaint:  {"Chapa", "taller chapa y pintura"},
	CategoryElectrical: {"Electrónica", "taller electricidad automovil"},
	CategoryTires:      {"Neumáticos", "taller neumaticos"},
}

// Categories lists every category in display order.
func Categories() []ServiceCategory {
	return []ServiceCategory{CategoryMechanical, CategoryBodyPaint, CategoryElectrical, CategoryTires}
}

// Valid reports whether c is one of the declared categories.
func (c ServiceCategory) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Label is the Spanish label used by the mobile client.
func (c ServiceCategory) Label() string {
	if entry, ok := categoryTable[c]; ok {
		return entry.label
	}
	return ""
}

// Keyword is the search keyword sent to the place provider.
func (c ServiceCategory) Keyword() string {
	if entry, ok := categoryTable[c]; ok {
		return entry.keyword
	}
	return DefaultKeyword
}

func (c ServiceCategory) String() string {
	return c.Label()
}

// MarshalText encodes the category as its label.
func (c ServiceCategory) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, int(c))
	}
	return []byte(c.Label()), nil
}

// UnmarshalText decodes a label produced by MarshalText.
func (c *ServiceCategory) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory matches label exactly (case-sensitive) against the client labels.
func ParseCategory(label string) (ServiceCategory, error) {
	for _, c := range Categories() {
		if categoryTable[c].label == label {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, label)
}

// CategoryFromLabel resolves the "tipo" query parameter. An empty label means no
// category was selected and yields nil. Unknown labels resolve to Mechanical and
// report known=false so callers can log the fallback.
func CategoryFromLabel(label string) (category *ServiceCategory, known bool) {
	if label == "" {
		return nil, true
	}
	c, err := ParseCategory(label)
	if err != nil {
		fallback := CategoryMechanical
		return &fallback, false
	}
	return &c, true
}

// KeywordFor returns the provider keyword for an optional category.
func KeywordFor(category *ServiceCategory) string {
	if category == nil {
		return DefaultKeyword
	}
	return category.Keyword()
}
