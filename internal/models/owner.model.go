package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Owner struct {
	BaseUUIDModel
	Username              string           `gorm:"type:text;uniqueIndex;not null" json:"username"`
	PasswordHash          string           `gorm:"type:text;not null"             json:"-"`
	Name                  string           `gorm:"type:text"                      json:"name"`
	Email                 string           `gorm:"type:text"                      json:"email"`
	ContactNumber         string           `gorm:"type:text"                      json:"contactNumber,omitempty"`
	Address               string           `gorm:"type:text"                      json:"address,omitempty"`
	ResortName            string           `gorm:"type:text"                      json:"resortName"`
	ResortAddress         string           `gorm:"type:text"                      json:"resortAddress,omitempty"`
	BusinessID            string           `gorm:"type:text"                      json:"-"`
	TaxID                 string           `gorm:"type:text"                      json:"-"`
	BankAccount           string           `gorm:"type:text"                      json:"-"`
	GCash                 string           `gorm:"column:gcash;type:text"         json:"gcash,omitempty"`
	PayMaya               string           `gorm:"column:paymaya;type:text"       json:"paymaya,omitempty"`
	PayPal                string           `gorm:"column:paypal;type:text"        json:"paypal,omitempty"`
	Avatar                string           `gorm:"type:text"                      json:"avatar,omitempty"`
	ResortProfileImage    string           `gorm:"type:text"                      json:"resortProfileImage,omitempty"`
	ResortBackgroundImage string           `gorm:"type:text"                      json:"resortBackgroundImage,omitempty"`
	EntranceFee           *decimal.Decimal `gorm:"type:numeric(10,2)"             json:"entranceFee,omitempty"`
}

func (o *Owner) BeforeCreate(tx *gorm.DB) error {
	o.Username = strings.TrimSpace(o.Username)
	if o.Username == "" {
		return gorm.ErrInvalidData
	}
	return o.BaseUUIDModel.BeforeCreate(tx)
}

func (o *Owner) DisplayName() string {
	if o.Name != "" {
		return o.Name
	}
	return o.Username
}

func (o *Owner) ResortDisplayName() string {
	if o.ResortName != "" {
		return o.ResortName
	}
	return "Resort"
}

func (o *Owner) Principal() Principal {
	return NewPrincipal(PrincipalOwner, o.ID)
}
