package models

import (
	"strings"

	"gorm.io/gorm"
)

type Customer struct {
	BaseUUIDModel
	Username         string `gorm:"type:text;uniqueIndex;not null"          json:"username"`
	PasswordHash     string `gorm:"type:text;not null"                      json:"-"`
	Name             string `gorm:"type:text"                               json:"name"`
	Email            string `gorm:"type:text"                               json:"email"`
	Birthdate        string `gorm:"type:text"                               json:"birthdate,omitempty"`
	Gender           string `gorm:"type:text"                               json:"gender,omitempty"`
	Address          string `gorm:"type:text"                               json:"address,omitempty"`
	ContactNumber    string `gorm:"type:text"                               json:"contactNumber,omitempty"`
	Facebook         string `gorm:"type:text"                               json:"facebook,omitempty"`
	EmergencyName    string `gorm:"type:text"                               json:"emergencyName,omitempty"`
	EmergencyNumber  string `gorm:"type:text"                               json:"emergencyNumber,omitempty"`
	EmergencyRelated string `gorm:"column:emergency_relationship;type:text" json:"emergencyRelationship,omitempty"`
	Avatar           string `gorm:"type:text"                               json:"avatar,omitempty"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" {
		return gorm.ErrInvalidData
	}
	return c.BaseUUIDModel.BeforeCreate(tx)
}

// DisplayName falls back to the username when no name was given at signup.
func (c *Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Username
}

func (c *Customer) Principal() Principal {
	return NewPrincipal(PrincipalCustomer, c.ID)
}
