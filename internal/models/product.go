package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Product is the read-side catalog record favorites are resolved against.
type Product struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"size:255;not null;index" json:"name"`
	HSNCode     string         `gorm:"size:50" json:"hsnCode,omitempty"`
	Measurement string         `gorm:"size:50" json:"measurement,omitempty"`
	GST         float64        `json:"gst"` // percent, e.g. 18
	Description string         `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool           `gorm:"default:true" json:"isActive"`
}

// Details projects the catalog record into the immutable negotiation snapshot.
func (p *Product) Details() ProductDetails {
	return ProductDetails{
		ProductName: p.Name,
		ProductID:   strconv.FormatUint(uint64(p.ID), 10),
		HSNCode:     p.HSNCode,
		Measurement: p.Measurement,
		GST:         p.GST,
	}
}
