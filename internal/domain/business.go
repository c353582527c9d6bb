package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCountry is applied when a business is created without a country.
const DefaultCountry = "USA"

// Business is the profile a user issues documents under. Each user owns at
// most one business.
type Business struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	ZipCode   string    `json:"zip_code"`
	Country   string    `json:"country"`
	Phone     *string   `json:"phone"`
	Email     *string   `json:"email"`
	Website   *string   `json:"website"`
	TaxID     *string   `json:"tax_id"`
	LogoURL   *string   `json:"logo_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BusinessPatch lists every field a client may set on a business. Nil
// fields are left untouched.
type BusinessPatch struct {
	Name    *string
	Address *string
	City    *string
	State   *string
	ZipCode *string
	Country *string
	Phone   *string
	Email   *string
	Website *string
	TaxID   *string
	LogoURL *string
}

// NewBusiness creates a business for userID from a patch. The required
// fields must all be present and non-empty.
func NewBusiness(userID uuid.UUID, patch BusinessPatch) (*Business, error) {
	if userID == uuid.Nil {
		return nil, NewValidationError("user_id", "is required", ErrEmptyUserID)
	}

	now := time.Now().UTC()
	b := &Business{
		ID:        uuid.New(),
		UserID:    userID,
		Country:   DefaultCountry,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Apply first so that missing required fields surface as blank values.
	if err := b.Apply(patch); err != nil {
		return nil, err
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}

// Apply copies the non-nil fields of patch onto b. Required fields that are
// present must be non-empty. An empty country resets to DefaultCountry.
func (b *Business) Apply(patch BusinessPatch) error {
	required := []struct {
		field string
		value *string
	}{
		{"name", patch.Name},
		{"address", patch.Address},
		{"city", patch.City},
		{"state", patch.State},
		{"zip_code", patch.ZipCode},
	}
	for _, r := range required {
		if r.value != nil {
			if err := requireNonEmpty(r.field, *r.value); err != nil {
				return err
			}
		}
	}

	setString(&b.Name, patch.Name)
	setString(&b.Address, patch.Address)
	setString(&b.City, patch.City)
	setString(&b.State, patch.State)
	setString(&b.ZipCode, patch.ZipCode)
	if patch.Country != nil {
		b.Country = strings.TrimSpace(*patch.Country)
		if b.Country == "" {
			b.Country = DefaultCountry
		}
	}
	setOptional(&b.Phone, patch.Phone)
	setOptional(&b.Email, patch.Email)
	setOptional(&b.Website, patch.Website)
	setOptional(&b.TaxID, patch.TaxID)
	setOptional(&b.LogoURL, patch.LogoURL)

	b.UpdatedAt = time.Now().UTC()
	return nil
}

// Validate checks the required profile fields.
func (b *Business) Validate() error {
	if b.UserID == uuid.Nil {
		return NewValidationError("user_id", "is required", ErrEmptyUserID)
	}
	for _, f := range []struct{ field, value string }{
		{"name", b.Name},
		{"address", b.Address},
		{"city", b.City},
		{"state", b.State},
		{"zip_code", b.ZipCode},
	} {
		if err := requireNonEmpty(f.field, f.value); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// setOptional stores v, treating an empty string as a request to clear the field.
func setOptional(dst **string, v *string) {
	if v == nil {
		return
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		*dst = nil
		return
	}
	*dst = &s
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
