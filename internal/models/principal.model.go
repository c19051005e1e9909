package models

import "github.com/google/uuid"

type PrincipalKind string

const (
	PrincipalCustomer PrincipalKind = "customer"
	PrincipalOwner    PrincipalKind = "owner"
	PrincipalAdmin    PrincipalKind = "admin"
)

func (k PrincipalKind) Valid() bool {
	switch k {
	case PrincipalCustomer, PrincipalOwner, PrincipalAdmin:
		return true
	}
	return false
}

// Principal identifies the authenticated actor of a request. Exactly one kind
// is set, so customer/owner/admin references never need three nullable columns.
type Principal struct {
	Kind PrincipalKind `json:"kind"`
	ID   uuid.UUID     `json:"id"`
}

func NewPrincipal(kind PrincipalKind, id uuid.UUID) Principal {
	return Principal{Kind: kind, ID: id}
}

func (p Principal) IsZero() bool {
	return p.Kind == "" || p.ID == uuid.Nil
}

func (p Principal) IsCustomer() bool { return p.Kind == PrincipalCustomer }
func (p Principal) IsOwner() bool    { return p.Kind == PrincipalOwner }
func (p Principal) IsAdmin() bool    { return p.Kind == PrincipalAdmin }

func (p Principal) String() string {
	return string(p.Kind) + ":" + p.ID.String()
}
