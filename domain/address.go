package domain

import (
	"fmt"
	"strings"
)

// Address is an optional-field record. A nil field has not been provided yet;
// a pointer to "" is an intentionally blank value.
type Address struct {
	FirstName  *string `json:"first_name,omitempty"`
	LastName   *string `json:"last_name,omitempty"`
	Company    *string `json:"company,omitempty"`
	Address1   *string `json:"address_1,omitempty"`
	Address2   *string `json:"address_2,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	Country    *string `json:"country,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

// ValidationError lists form fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Validate checks the required fields. It never touches the network.
func (a Address) Validate() error {
	required := []struct {
		name  string
		value *string
	}{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"address_1", a.Address1},
		{"city", a.City},
		{"state", a.State},
		{"postal_code", a.PostalCode},
		{"country", a.Country},
	}

	var missing []string
	for _, f := range required {
		if f.value == nil || strings.TrimSpace(*f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Fields returns the provided fields keyed with the given prefix
// ("billing_" or "shipping_"). Absent fields are left out so a partial
// update never clears them.
func (a Address) Fields(prefix string) map[string]string {
	out := make(map[string]string, 10)
	put := func(name string, v *string) {
		if v != nil {
			out[prefix+name] = *v
		}
	}
	put("first_name", a.FirstName)
	put("last_name", a.LastName)
	put("company", a.Company)
	put("address_1", a.Address1)
	put("address_2", a.Address2)
	put("city", a.City)
	put("state", a.State)
	put("postal_code", a.PostalCode)
	put("country", a.Country)
	put("phone", a.Phone)
	return out
}

// IsZero reports whether no field has been provided.
func (a Address) IsZero() bool {
	return len(a.Fields("")) == 0
}

// Clone returns a deep copy so form state is never shared between steps.
func (a Address) Clone() Address {
	cp := func(v *string) *string {
		if v == nil {
			return nil
		}
		s := *v
		return &s
	}
	return Address{
		FirstName:  cp(a.FirstName),
		LastName:   cp(a.LastName),
		Company:    cp(a.Company),
		Address1:   cp(a.Address1),
		Address2:   cp(a.Address2),
		City:       cp(a.City),
		State:      cp(a.State),
		PostalCode: cp(a.PostalCode),
		Country:    cp(a.Country),
		Phone:      cp(a.Phone),
	}
}

// Str is a helper for building addresses in code.
func Str(s string) *string {
	return &s
}
