package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const FragmentTypeOpenDocument = "OPEN_DOCUMENT"

// Fragment is a user-authored document unit with a lifecycle status and an
// optional seal timestamp.
//
// SealedAt is stamped exactly once, on the first transition into the
// "sealed" status (including creation with that status). Later updates
// never overwrite it, and moving the status away from "sealed" keeps it as
// a historical first-seal mark.
type Fragment struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"userId" validate:"required"`
	ModuleID        *uint      `gorm:"index" json:"moduleId"`
	FragmentID      string     `gorm:"type:varchar(150);not null" json:"fragmentId" validate:"required,max=150"`
	Type            string     `gorm:"type:varchar(50);not null;default:'OPEN_DOCUMENT'" json:"type"`
	Author          string     `gorm:"type:varchar(255)" json:"author"`
	SpeedIndex      string     `gorm:"type:varchar(255)" json:"speedIndex"`
	// AccessTier, SealLevel and EditRestriction are opaque policy
	// descriptors carried for the client; nothing enforces them.
	AccessTier      string     `gorm:"type:varchar(255)" json:"accessTier"`
	SealLevel       string     `gorm:"type:varchar(255)" json:"sealLevel"`
	EditRestriction string     `gorm:"type:varchar(255)" json:"editRestriction"`
	FlameInput      string     `gorm:"type:text" json:"flameInput"`
	FlameOutput     string     `gorm:"type:text" json:"flameOutput"`
	Status          string     `gorm:"type:varchar(20);not null;default:'active'" json:"status" validate:"omitempty,oneof=active sealed processing"`
	Metadata        JSONMap    `gorm:"type:longtext" json:"metadata"`
	SealedAt        *time.Time `gorm:"type:timestamp;default:null" json:"sealedAt"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"createdAt"`
}

// FragmentPatch carries a partial update; nil fields keep their stored
// value. ModuleID tracks presence explicitly so `"moduleId": null` detaches
// the fragment from its module while an absent field keeps it.
type FragmentPatch struct {
	ModuleID        OptionalUint `json:"moduleId"`
	FragmentID      *string  `json:"fragmentId"`
	Type            *string  `json:"type"`
	Author          *string  `json:"author"`
	SpeedIndex      *string  `json:"speedIndex"`
	AccessTier      *string  `json:"accessTier"`
	SealLevel       *string  `json:"sealLevel"`
	EditRestriction *string  `json:"editRestriction"`
	FlameInput      *string  `json:"flameInput"`
	FlameOutput     *string  `json:"flameOutput"`
	Status          *string  `json:"status"`
	Metadata        *JSONMap `json:"metadata"`
}

func (f *Fragment) Validate() error {
	v := validator.New()

	return v.Struct(f)
}

// ApplyCreateDefaults fills documented defaults for fields the caller
// omitted, stamping SealedAt when a fragment is born sealed.
func (f *Fragment) ApplyCreateDefaults() {
	if f.Status == "" {
		f.Status = StatusActive
	}
	if f.Type == "" {
		f.Type = FragmentTypeOpenDocument
	}
	if f.Status == StatusSealed && f.SealedAt == nil {
		now := time.Now()
		f.SealedAt = &now
	}
}

// ApplySeal stamps SealedAt if the patch transitions the fragment into the
// sealed status for the first time. Re-sealing never re-stamps.
func (f *Fragment) ApplySeal(patchStatus *string) {
	if patchStatus != nil && *patchStatus == StatusSealed && f.SealedAt == nil {
		now := time.Now()
		f.SealedAt = &now
	}
}
