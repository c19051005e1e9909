package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const MaxListingImages = 5

type ListingKind string

const (
	ListingRoom     ListingKind = "room"
	ListingCottage  ListingKind = "cottage"
	ListingFood     ListingKind = "food"
	ListingActivity ListingKind = "activity"
)

var ListingKinds = []ListingKind{ListingRoom, ListingCottage, ListingFood, ListingActivity}

func (k ListingKind) Valid() bool {
	switch k {
	case ListingRoom, ListingCottage, ListingFood, ListingActivity:
		return true
	}
	return false
}

// Bookable reports whether reservations can be made against this kind.
func (k ListingKind) Bookable() bool {
	return k == ListingRoom || k == ListingCottage
}

// Title is the capitalised kind used in notification titles.
func (k ListingKind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
)

type Listing struct {
	BaseUUIDModel
	OwnerID  uuid.UUID                   `gorm:"type:uuid;not null;index:idx_listings_owner_kind" json:"ownerId"`
	Owner    *Owner                      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"   json:"owner,omitempty"`
	Kind     ListingKind                 `gorm:"type:text;not null;index:idx_listings_owner_kind" json:"kind"`
	Name     string                      `gorm:"type:text;not null"                               json:"name"`
	Price    decimal.Decimal             `gorm:"type:numeric(10,2);not null;default:0"            json:"price"`
	Capacity int                         `gorm:"type:int;not null;default:0"                      json:"capacity"`
	Beds     *int                        `gorm:"type:int"                                         json:"beds,omitempty"`
	Size     *string                     `gorm:"type:text"                                        json:"size,omitempty"`
	Features datatypes.JSONSlice[string] `gorm:"type:jsonb"                                       json:"features"`
	Status   ListingStatus               `gorm:"type:text;not null;default:'pending';index"       json:"status"`
	Images   []ListingImage              `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"images"`
}

type ListingImage struct {
	BaseUUIDModel
	ListingID uuid.UUID `gorm:"type:uuid;not null;index" json:"listingId"`
	Position  int       `gorm:"type:int;not null"        json:"position"`
	URL       string    `gorm:"type:text;not null"       json:"url"`
	PublicID  string    `gorm:"type:text;not null"       json:"-"`
}

var (
	ErrListingNameRequired  = errors.New("listing name is required")
	ErrListingInvalidKind   = errors.New("invalid listing kind")
	ErrListingTooManyImage  = errors.New("a listing holds at most 5 images")
	ErrListingNegativePrice = errors.New("price cannot be negative")
)

func (l *Listing) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrListingNameRequired
	}
	if !l.Kind.Valid() {
		return ErrListingInvalidKind
	}
	if len(l.Images) > MaxListingImages {
		return ErrListingTooManyImage
	}
	if l.Price.IsNegative() {
		return ErrListingNegativePrice
	}
	return nil
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if l.Status == "" {
		l.Status = ListingPending
	}
	return l.BaseUUIDModel.BeforeCreate(tx)
}

func (l *Listing) IsApproved() bool {
	return l.Status == ListingApproved
}

// CoverImage returns the first image by position, or "" when there is none.
func (l *Listing) CoverImage() string {
	best := -1
	url := ""
	for _, img := range l.Images {
		if best == -1 || img.Position < best {
			best = img.Position
			url = img.URL
		}
	}
	return url
}

// FeatureLines renders capacity, beds and free-form features for detail views.
func (l *Listing) FeatureLines() []string {
	lines := make([]string, 0, len(l.Features)+2)
	if l.Capacity > 0 {
		lines = append(lines, pluralize(l.Capacity, "Person Capacity"))
	}
	if l.Beds != nil && *l.Beds > 0 {
		lines = append(lines, pluralize(*l.Beds, "Beds"))
	}
	for _, feature := range l.Features {
		if strings.TrimSpace(feature) != "" {
			lines = append(lines, strings.TrimSpace(feature))
		}
	}
	return lines
}

func (l *Listing) PublicIDs() []string {
	ids := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		if img.PublicID != "" {
			ids = append(ids, img.PublicID)
		}
	}
	return ids
}
