package domain

import "time"

type Role string

const (
	RoleCustomer       Role = "customer"
	RoleAdministrator  Role = "administrator"
	RoleAirlineManager Role = "airline_manager"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdministrator, RoleAirlineManager:
		return true
	}
	return false
}

// Identity is a registered user. Role holds the stored role, which is either
// customer or administrator; manager status comes from owning a Company.
type Identity struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfilePatch updates the personal fields of an identity. Nil fields are left unchanged.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
}

func (p ProfilePatch) Apply(identity Identity) Identity {
	if p.FirstName != nil {
		identity.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		identity.LastName = *p.LastName
	}
	return identity
}

// Principal is an identity together with its effective role.
type Principal struct {
	Identity Identity
	Role     Role
}

func (p Principal) ID() int64 {
	return p.Identity.ID
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdministrator
}

// Company is an airline. CountryID is zero when no country is set.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CountryID int64     `json:"country_id"`
	ManagerID int64     `json:"manager_id"`
	CreatedAt time.Time `json:"created_at"`
}
