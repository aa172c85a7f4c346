package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StatusActive     = "active"
	StatusProcessing = "processing"
	StatusSealed     = "sealed"
)

const DefaultMemoryCapacity = 4096

// Module is a named persona/capability container. Fragments may attach to a
// module but do not have to.
type Module struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           uint      `gorm:"not null;index" json:"userId" validate:"required"`
	Name             string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	Glyph            string    `gorm:"type:varchar(16);not null" json:"glyph" validate:"required,max=16"`
	Core             string    `gorm:"type:varchar(100);not null" json:"core" validate:"required,max=100"`
	Status           string    `gorm:"type:varchar(20);not null;default:'active'" json:"status" validate:"omitempty,oneof=active processing sealed"`
	SpeedIndex       string    `gorm:"type:varchar(255)" json:"speedIndex"`
	PersonalDocument string    `gorm:"type:text" json:"personalDocument"`
	// MemoryUsed exceeding MemoryCapacity is not rejected; the pair is
	// descriptive, not a quota.
	MemoryCapacity   int       `gorm:"not null;default:4096" json:"memoryCapacity"`
	MemoryUsed       int       `gorm:"not null;default:0" json:"memoryUsed"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// ModulePatch carries a partial update; nil fields keep their stored value.
type ModulePatch struct {
	Name             *string `json:"name"`
	Glyph            *string `json:"glyph"`
	Core             *string `json:"core"`
	Status           *string `json:"status"`
	SpeedIndex       *string `json:"speedIndex"`
	PersonalDocument *string `json:"personalDocument"`
	MemoryCapacity   *int    `json:"memoryCapacity"`
	MemoryUsed       *int    `json:"memoryUsed"`
}

func (m *Module) Validate() error {
	v := validator.New()

	return v.Struct(m)
}

// ApplyCreateDefaults fills documented defaults for fields the caller omitted.
func (m *Module) ApplyCreateDefaults() {
	if m.Status == "" {
		m.Status = StatusActive
	}
	if m.MemoryCapacity == 0 {
		m.MemoryCapacity = DefaultMemoryCapacity
	}
}
