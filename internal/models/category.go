package models

import "time"

// Category is a catalog node. CategoryID is allocator-issued and distinct from ID.
type Category struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CategoryID int64     `gorm:"uniqueIndex;not null" json:"id"`
	Name       string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Slug       string    `gorm:"size:255;index" json:"slug"`

	SubCategories []SubCategory `gorm:"foreignKey:CategoryRef;references:CategoryID" json:"subCategories"`
}

// SubCategory IDs are sequential per parent category.
type SubCategory struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	SubCategoryID int64     `gorm:"not null;uniqueIndex:idx_sub_parent,priority:2" json:"id"`
	CategoryRef   int64     `gorm:"not null;index;uniqueIndex:idx_sub_parent,priority:1" json:"categoryId"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Slug          string    `gorm:"size:255" json:"slug"`
}
