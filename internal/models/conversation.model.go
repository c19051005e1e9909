package models

import "github.com/google/uuid"

type Conversation struct {
	BaseUUIDModel
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair" json:"customerId"`
	Customer   *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE"     json:"customer,omitempty"`
	OwnerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_conversations_pair" json:"ownerId"`
	Owner      *Owner    `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"        json:"owner,omitempty"`
}

func (c *Conversation) HasParticipant(p Principal) bool {
	switch p.Kind {
	case PrincipalCustomer:
		return c.CustomerID == p.ID
	case PrincipalOwner:
		return c.OwnerID == p.ID
	}
	return false
}

// Counterpart returns the other participant of the conversation from p's side.
func (c *Conversation) Counterpart(p Principal) Principal {
	if p.Kind == PrincipalCustomer {
		return NewPrincipal(PrincipalOwner, c.OwnerID)
	}
	return NewPrincipal(PrincipalCustomer, c.CustomerID)
}

// AdminConversation links the admin with exactly one customer or owner. The
// non-admin side is stored as a tagged pair rather than two nullable columns.
type AdminConversation struct {
	BaseUUIDModel
	AdminID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_admin_conversations_party" json:"adminId"`
	PartyKind PrincipalKind `gorm:"type:text;not null;uniqueIndex:idx_admin_conversations_party" json:"partyKind"`
	PartyID   uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_admin_conversations_party" json:"partyId"`
}

func (c *AdminConversation) Party() Principal {
	return NewPrincipal(c.PartyKind, c.PartyID)
}

func (c *AdminConversation) HasParticipant(p Principal) bool {
	if p.Kind == PrincipalAdmin {
		return c.AdminID == p.ID
	}
	return c.PartyKind == p.Kind && c.PartyID == p.ID
}

func (c *AdminConversation) Counterpart(p Principal) Principal {
	if p.Kind == PrincipalAdmin {
		return c.Party()
	}
	return NewPrincipal(PrincipalAdmin, c.AdminID)
}
