package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMessageThreadAmbiguous = errors.New("message must belong to exactly one conversation")
	ErrMessageEmpty           = errors.New("message text is required")
)

type Message struct {
	BaseUUIDModel
	ConversationID      *uuid.UUID    `gorm:"type:uuid;index:idx_messages_conversation"       json:"conversationId,omitempty"`
	AdminConversationID *uuid.UUID    `gorm:"type:uuid;index:idx_messages_admin_conversation" json:"adminConversationId,omitempty"`
	SenderKind          PrincipalKind `gorm:"type:text;not null"                              json:"senderKind"`
	SenderID            uuid.UUID     `gorm:"type:uuid;not null"                              json:"senderId"`
	Text                string        `gorm:"type:text;not null"                              json:"text"`
}

func (m *Message) Validate() error {
	if (m.ConversationID == nil) == (m.AdminConversationID == nil) {
		return ErrMessageThreadAmbiguous
	}
	if strings.TrimSpace(m.Text) == "" {
		return ErrMessageEmpty
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return m.BaseUUIDModel.BeforeCreate(tx)
}

func (m *Message) Sender() Principal {
	return NewPrincipal(m.SenderKind, m.SenderID)
}
