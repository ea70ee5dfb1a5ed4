// Package user holds the identity and profile domain model: user records,
// their role lifecycle, and the profile attached one-to-one to each user.
package user

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Role is the enumerated authorization level of a user.
type Role string

const (
	// RoleUnverified is the registration default; the user has no profile yet.
	RoleUnverified Role = "unverified"
	// RoleVerified is reached once a profile is attached.
	RoleVerified Role = "verified"
	// RoleAdmin is assignable only by an existing admin.
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the predefined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUnverified, RoleVerified, RoleAdmin:
		return true
	default:
		return false
	}
}

// Identity is the authenticated caller, passed to the service as an explicit
// argument rather than read from ambient state.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// User is the stored identity record. PasswordHash never crosses the HTTP
// boundary; view types below carry everything that does.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the extended personal data owned exclusively by one user.
// Optional columns are pointers so absent and present-but-empty stay
// distinguishable through storage and serialization.
type Profile struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	FirstName   *string
	LastName    *string
	Phone       *string
	Address1    *string
	City1       *string
	Address2    *string
	City2       *string
	Address3    *string
	City3       *string
	Address4    *string
	City4       *string
	DateOfBirth *Date
	Age         *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WithProfile pairs a user with its profile, if any.
type WithProfile struct {
	User    User
	Profile *Profile
}

// AgeAt computes the calendar-aware whole-year difference between dob and
// now: birth year subtracted from the current year, minus one if the birthday
// has not yet occurred this year. The result is derived at write time and
// never re-derived later.
func AgeAt(dob Date, now time.Time) int {
	birth := time.Time(dob)
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// Date is a calendar day serialized as "2006-01-02".
type Date time.Time

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(d).Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	*d = Date(t)
	return nil
}

func (d Date) String() string {
	return time.Time(d).Format(dateLayout)
}

// Optional is a tri-state JSON field: absent, explicitly null, or set to a
// value. Partial updates need the distinction because an explicit null is
// dropped before persistence instead of clearing the column.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// ValueOrNil returns a pointer to the value when the field was set to a
// non-null value, nil otherwise.
func (o Optional[T]) ValueOrNil() *T {
	if !o.Set || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
