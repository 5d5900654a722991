package db

import (
	"errors"

	"github.com/diewo77/go-sourcing/internal/models"
	"gorm.io/gorm"
)

// Seed inserts a starter catalog. Products already present by name are kept.
func Seed(conn *gorm.DB) error {
	products := []models.Product{
		{Name: "Cement OPC 53", HSNCode: "2523", Measurement: "bag", GST: 28, IsActive: true},
		{Name: "TMT Steel Bar", HSNCode: "7214", Measurement: "ton", GST: 18, IsActive: true},
		{Name: "Fly Ash Brick", HSNCode: "6815", Measurement: "piece", GST: 12, IsActive: true},
		{Name: "River Sand", HSNCode: "2505", Measurement: "cubic_ft", GST: 5, IsActive: true},
	}
	return conn.Transaction(func(tx *gorm.DB) error {
		for _, p := range products {
			var existing models.Product
			err := tx.Where("name = ?", p.Name).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
