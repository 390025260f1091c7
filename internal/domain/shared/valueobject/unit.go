package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// UnitType identifies a sellable pack size. Input is canonicalized to upper
// case, so "strip" and "STRIP" name the same unit.
type UnitType string

const (
	UnitTypeSingle UnitType = "SINGLE" // one base unit (tablet, capsule, sachet)
	UnitTypeStrip  UnitType = "STRIP"  // blister strip of base units
	UnitTypeBox    UnitType = "BOX"    // carton of strips or singles
	UnitTypePair   UnitType = "PAIR"   // two base units sold together
	UnitTypeBottle UnitType = "BOTTLE" // liquid or bulk container
)

// ParseUnitType canonicalizes and validates a unit type string.
func ParseUnitType(s string) (UnitType, error) {
	t := UnitType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("unknown unit type: %q", s)
	}
	return t, nil
}

// IsValid reports whether the unit type is one of the known pack sizes.
func (t UnitType) IsValid() bool {
	switch t {
	case UnitTypeSingle, UnitTypeStrip, UnitTypeBox, UnitTypePair, UnitTypeBottle:
		return true
	}
	return false
}

func (t UnitType) String() string {
	return string(t)
}

// Unit is a value object describing one sellable pack size of a medicine.
// It is immutable - all operations return new Unit instances.
// QuantityInBaseUnits is how many base units one pack contains; Price is the
// selling price of one pack.
type Unit struct {
	unitType            UnitType
	quantityInBaseUnits int64
	price               decimal.Decimal
}

// NewUnit creates a Unit for the given pack size.
// Returns error if:
//   - unitType is not one of the known pack sizes
//   - quantityInBaseUnits is zero or negative
//   - price is negative
func NewUnit(unitType string, quantityInBaseUnits int64, price decimal.Decimal) (Unit, error) {
	t, err := ParseUnitType(unitType)
	if err != nil {
		return Unit{}, err
	}
	if quantityInBaseUnits <= 0 {
		return Unit{}, errors.New("unit quantity in base units must be positive")
	}
	if price.IsNegative() {
		return Unit{}, errors.New("unit price cannot be negative")
	}
	return Unit{
		unitType:            t,
		quantityInBaseUnits: quantityInBaseUnits,
		price:               price,
	}, nil
}

// NewSingleUnit creates the base unit (SINGLE, factor 1) at the given price.
func NewSingleUnit(price decimal.Decimal) (Unit, error) {
	return NewUnit(string(UnitTypeSingle), 1, price)
}

// MustNewUnit creates a Unit and panics on error.
// Use only when you're certain the inputs are valid.
func MustNewUnit(unitType string, quantityInBaseUnits int64, price decimal.Decimal) Unit {
	u, err := NewUnit(unitType, quantityInBaseUnits, price)
	if err != nil {
		panic(err)
	}
	return u
}

// Type returns the canonical unit type.
func (u Unit) Type() UnitType {
	return u.unitType
}

// QuantityInBaseUnits returns how many base units one pack contains.
func (u Unit) QuantityInBaseUnits() int64 {
	return u.quantityInBaseUnits
}

// Price returns the selling price of one pack.
func (u Unit) Price() decimal.Decimal {
	return u.price
}

// IsBaseUnit reports whether this pack holds exactly one base unit.
func (u Unit) IsBaseUnit() bool {
	return u.quantityInBaseUnits == 1
}

// IsZero returns true if this is a zero-value Unit.
func (u Unit) IsZero() bool {
	return u.unitType == "" && u.quantityInBaseUnits == 0 && u.price.IsZero()
}

// ConvertToBase converts a pack count to base units.
func (u Unit) ConvertToBase(packs int64) int64 {
	return packs * u.quantityInBaseUnits
}

// PricePerBaseUnit returns the pack price divided by the pack size.
func (u Unit) PricePerBaseUnit() decimal.Decimal {
	if u.quantityInBaseUnits == 0 {
		return decimal.Zero
	}
	return u.price.Div(decimal.NewFromInt(u.quantityInBaseUnits))
}

// Matches reports whether the unit's type matches the given string
// (case-insensitive).
func (u Unit) Matches(unitType string) bool {
	return string(u.unitType) == strings.ToUpper(strings.TrimSpace(unitType))
}

// Equals returns true if both Units have the same type.
// Pack size and price may differ for units with the same type.
func (u Unit) Equals(other Unit) bool {
	return u.unitType == other.unitType
}

// WithPrice returns a new Unit with an updated price.
func (u Unit) WithPrice(price decimal.Decimal) (Unit, error) {
	if price.IsNegative() {
		return Unit{}, errors.New("unit price cannot be negative")
	}
	return Unit{
		unitType:            u.unitType,
		quantityInBaseUnits: u.quantityInBaseUnits,
		price:               price,
	}, nil
}

// String returns a string representation of the Unit.
func (u Unit) String() string {
	if u.IsBaseUnit() {
		return fmt.Sprintf("%s @ %s", u.unitType, u.price.String())
	}
	return fmt.Sprintf("%s (x%d) @ %s", u.unitType, u.quantityInBaseUnits, u.price.String())
}

// MarshalJSON implements json.Marshaler.
func (u Unit) MarshalJSON() ([]byte, error) {
	return json.Marshal(UnitDTO{
		Type:                string(u.unitType),
		QuantityInBaseUnits: u.quantityInBaseUnits,
		Price:               u.price,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var dto UnitDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return err
	}
	parsed, err := dto.ToUnit()
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// UnitDTO is a data transfer object for Unit (for serialization/deserialization).
type UnitDTO struct {
	Type                string          `json:"type"`
	QuantityInBaseUnits int64           `json:"quantityInBaseUnits"`
	Price               decimal.Decimal `json:"price"`
}

// ToUnit converts UnitDTO to Unit value object.
func (dto UnitDTO) ToUnit() (Unit, error) {
	return NewUnit(dto.Type, dto.QuantityInBaseUnits, dto.Price)
}

// ToDTO converts Unit to UnitDTO.
func (u Unit) ToDTO() UnitDTO {
	return UnitDTO{
		Type:                string(u.unitType),
		QuantityInBaseUnits: u.quantityInBaseUnits,
		Price:               u.price,
	}
}

// UnitList is an ordered set of pack sizes, unique by type. It serializes as
// a JSON array so it can live in a single database column.
type UnitList []Unit

// NewUnitList validates that the list is non-empty and has no duplicate types.
func NewUnitList(units []Unit) (UnitList, error) {
	if len(units) == 0 {
		return nil, errors.New("at least one unit is required")
	}
	seen := make(map[UnitType]bool, len(units))
	for _, u := range units {
		if !u.unitType.IsValid() {
			return nil, fmt.Errorf("unknown unit type: %q", u.unitType)
		}
		if seen[u.unitType] {
			return nil, fmt.Errorf("duplicate unit type: %s", u.unitType)
		}
		seen[u.unitType] = true
	}
	out := make(UnitList, len(units))
	copy(out, units)
	return out, nil
}

// Find returns the unit with the given type, matching case-insensitively.
func (l UnitList) Find(unitType string) (Unit, bool) {
	for _, u := range l {
		if u.Matches(unitType) {
			return u, true
		}
	}
	return Unit{}, false
}

// Base returns the SINGLE unit if present, or a synthetic one-base-unit pack
// priced at zero otherwise.
func (l UnitList) Base() Unit {
	if u, ok := l.Find(string(UnitTypeSingle)); ok {
		return u
	}
	return Unit{unitType: UnitTypeSingle, quantityInBaseUnits: 1, price: decimal.Zero}
}
