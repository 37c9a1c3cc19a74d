package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// VariationID is an optional reference to a ProductVariation. The zero value
// means "no variation" and two absent values compare equal.
type VariationID struct {
	id  string
	set bool
}

// NoVariation is the absent VariationID.
var NoVariation = VariationID{}

// SomeVariation wraps id. An empty id yields NoVariation.
func SomeVariation(id string) VariationID {
	if id == "" {
		return NoVariation
	}
	return VariationID{id: id, set: true}
}

// VariationFromPtr maps a nullable string to a VariationID.
func VariationFromPtr(id *string) VariationID {
	if id == nil {
		return NoVariation
	}
	return SomeVariation(*id)
}

func (v VariationID) Get() (string, bool) { return v.id, v.set }

func (v VariationID) IsSet() bool { return v.set }

func (v VariationID) Equal(other VariationID) bool {
	return v.set == other.set && v.id == other.id
}

// Ptr returns the id as a nullable string.
func (v VariationID) Ptr() *string {
	if !v.set {
		return nil
	}
	id := v.id
	return &id
}

func (v VariationID) String() string {
	if !v.set {
		return "none"
	}
	return v.id
}

func (v VariationID) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	return json.Marshal(v.id)
}

func (v *VariationID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = NoVariation
		return nil
	}
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("variation id: %w", err)
	}
	*v = SomeVariation(id)
	return nil
}

// Value implements driver.Valuer so the id can be bound as a query argument.
func (v VariationID) Value() (driver.Value, error) {
	if !v.set {
		return nil, nil
	}
	return v.id, nil
}

// Scan implements sql.Scanner.
func (v *VariationID) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = NoVariation
	case string:
		*v = SomeVariation(s)
	case []byte:
		*v = SomeVariation(string(s))
	default:
		return fmt.Errorf("variation id: unsupported scan type %T", src)
	}
	return nil
}
