package user

import (
	"time"

	"github.com/google/uuid"
)

// Summary is the non-sensitive projection of a user returned by register,
// password and delete operations. The password hash is never part of any
// view.
type Summary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

// NewSummary builds a Summary from a stored user.
func NewSummary(u User) Summary {
	return Summary{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ProfileView is the merged profile+role+email view returned when a profile
// is attached or fetched. Null-valued fields are omitted.
type ProfileView struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	FirstName   *string   `json:"firstName,omitempty"`
	LastName    *string   `json:"lastName,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Address1    *string   `json:"address1,omitempty"`
	City1       *string   `json:"city1,omitempty"`
	Address2    *string   `json:"address2,omitempty"`
	City2       *string   `json:"city2,omitempty"`
	Address3    *string   `json:"address3,omitempty"`
	City3       *string   `json:"city3,omitempty"`
	Address4    *string   `json:"address4,omitempty"`
	City4       *string   `json:"city4,omitempty"`
	DateOfBirth *Date     `json:"dateOfBirth,omitempty"`
	Age         *int      `json:"age,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewProfileView merges a user and its profile into the null-filtered view.
func NewProfileView(u User, p Profile) ProfileView {
	return ProfileView{
		ID:          p.ID,
		UserID:      p.UserID,
		Email:       u.Email,
		Role:        u.Role,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Phone:       p.Phone,
		Address1:    p.Address1,
		City1:       p.City1,
		Address2:    p.Address2,
		City2:       p.City2,
		Address3:    p.Address3,
		City3:       p.City3,
		Address4:    p.Address4,
		City4:       p.City4,
		DateOfBirth: p.DateOfBirth,
		Age:         p.Age,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// StoredProfileView is the profile exactly as stored, returned by profile
// updates. Unset fields serialize as null here; the update path does not
// apply the null filtering the attach path does.
type StoredProfileView struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	FirstName   *string   `json:"firstName"`
	LastName    *string   `json:"lastName"`
	Phone       *string   `json:"phone"`
	Address1    *string   `json:"address1"`
	City1       *string   `json:"city1"`
	Address2    *string   `json:"address2"`
	City2       *string   `json:"city2"`
	Address3    *string   `json:"address3"`
	City3       *string   `json:"city3"`
	Address4    *string   `json:"address4"`
	City4       *string   `json:"city4"`
	DateOfBirth *Date     `json:"dateOfBirth"`
	Age         *int      `json:"age"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewStoredProfileView projects a profile without filtering.
func NewStoredProfileView(p Profile) StoredProfileView {
	return StoredProfileView{
		ID:          p.ID,
		UserID:      p.UserID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Phone:       p.Phone,
		Address1:    p.Address1,
		City1:       p.City1,
		Address2:    p.Address2,
		City2:       p.City2,
		Address3:    p.Address3,
		City3:       p.City3,
		Address4:    p.Address4,
		City4:       p.City4,
		DateOfBirth: p.DateOfBirth,
		Age:         p.Age,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NestedProfile is the null-filtered profile nested inside WithProfileView.
type NestedProfile struct {
	ID          uuid.UUID `json:"id"`
	FirstName   *string   `json:"firstName,omitempty"`
	LastName    *string   `json:"lastName,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	Address1    *string   `json:"address1,omitempty"`
	City1       *string   `json:"city1,omitempty"`
	Address2    *string   `json:"address2,omitempty"`
	City2       *string   `json:"city2,omitempty"`
	Address3    *string   `json:"address3,omitempty"`
	City3       *string   `json:"city3,omitempty"`
	Address4    *string   `json:"address4,omitempty"`
	City4       *string   `json:"city4,omitempty"`
	DateOfBirth *Date     `json:"dateOfBirth,omitempty"`
	Age         *int      `json:"age,omitempty"`
}

// WithProfileView is a user with its nested profile (or none), as returned
// by list and single lookups.
type WithProfileView struct {
	ID        uuid.UUID      `json:"id"`
	Email     string         `json:"email"`
	Role      Role           `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	Profile   *NestedProfile `json:"profile,omitempty"`
}

// NewWithProfileView projects a user and optional profile for output.
func NewWithProfileView(wp WithProfile) WithProfileView {
	view := WithProfileView{
		ID:        wp.User.ID,
		Email:     wp.User.Email,
		Role:      wp.User.Role,
		CreatedAt: wp.User.CreatedAt,
		UpdatedAt: wp.User.UpdatedAt,
	}
	if p := wp.Profile; p != nil {
		view.Profile = &NestedProfile{
			ID:          p.ID,
			FirstName:   p.FirstName,
			LastName:    p.LastName,
			Phone:       p.Phone,
			Address1:    p.Address1,
			City1:       p.City1,
			Address2:    p.Address2,
			City2:       p.City2,
			Address3:    p.Address3,
			City3:       p.City3,
			Address4:    p.Address4,
			City4:       p.City4,
			DateOfBirth: p.DateOfBirth,
			Age:         p.Age,
		}
	}
	return view
}

// ProfileInput carries the fields accepted when attaching a profile. Nil
// fields are simply never persisted.
type ProfileInput struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Phone       *string `json:"phone"`
	Address1    *string `json:"address1"`
	City1       *string `json:"city1"`
	Address2    *string `json:"address2"`
	City2       *string `json:"city2"`
	Address3    *string `json:"address3"`
	City3       *string `json:"city3"`
	Address4    *string `json:"address4"`
	City4       *string `json:"city4"`
	DateOfBirth *Date   `json:"dateOfBirth"`
}

// ProfileUpdate carries a partial profile patch. Each field is tri-state:
// not set leaves the column unchanged, and explicitly-null is dropped before
// the write, so a null cannot clear a field.
type ProfileUpdate struct {
	FirstName   Optional[string] `json:"firstName"`
	LastName    Optional[string] `json:"lastName"`
	Phone       Optional[string] `json:"phone"`
	Address1    Optional[string] `json:"address1"`
	City1       Optional[string] `json:"city1"`
	Address2    Optional[string] `json:"address2"`
	City2       Optional[string] `json:"city2"`
	Address3    Optional[string] `json:"address3"`
	City3       Optional[string] `json:"city3"`
	Address4    Optional[string] `json:"address4"`
	City4       Optional[string] `json:"city4"`
	DateOfBirth Optional[Date]   `json:"dateOfBirth"`
}
