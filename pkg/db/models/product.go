package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a listing that can be added to carts. Owner holds the email of
// the user who listed it.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Title       string    `gorm:"column:title;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Thumbnail   string    `gorm:"column:thumbnail;not null;default:''"`
	Code        string    `gorm:"column:code;not null;uniqueIndex"`
	Stock       int       `gorm:"column:stock;not null;default:0"`
	Category    string    `gorm:"column:category;not null;default:''"`
	Status      bool      `gorm:"column:status;not null;default:true"`
	Owner       string    `gorm:"column:owner;not null;default:'admin'"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
