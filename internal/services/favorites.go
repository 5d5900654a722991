package services

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/diewo77/go-sourcing/internal/validation"
	"gorm.io/gorm"
)

// ProductCatalog is the read side favorites and bargaining resolve products against.
type ProductCatalog interface {
	FindByNames(ctx context.Context, names []string) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

// GormCatalog reads active products from the products table.
type GormCatalog struct {
	db *gorm.DB
}

func NewGormCatalog(db *gorm.DB) *GormCatalog { return &GormCatalog{db: db} }

// FindByNames matches names exactly and returns products in the order of names.
func (c *GormCatalog) FindByNames(ctx context.Context, names []string) ([]models.Product, error) {
	out := []models.Product{}
	if len(names) == 0 {
		return out, nil
	}
	var found []models.Product
	if err := c.db.WithContext(ctx).Where("name IN ? AND is_active = ?", names, true).Order("id").Find(&found).Error; err != nil {
		return nil, apperr.Infra("find products", err)
	}
	byName := make(map[string][]models.Product, len(found))
	for _, p := range found {
		byName[p.Name] = append(byName[p.Name], p)
	}
	for _, n := range names {
		out = append(out, byName[n]...)
	}
	return out, nil
}

func (c *GormCatalog) FindByID(ctx context.Context, id string) (*models.Product, error) {
	pid, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return nil, apperr.NotFound("product %s not found", id)
	}
	var p models.Product
	if err := c.db.WithContext(ctx).First(&p, uint(pid)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product %s not found", id)
		}
		return nil, apperr.Infra("load product", err)
	}
	return &p, nil
}

const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

type ToggleResult struct {
	Action    string                `json:"action"`
	Favorites *models.UserFavorites `json:"favorites"`
}

// FavoritesService keeps each user's favorite product names.
type FavoritesService struct {
	db      *gorm.DB
	catalog ProductCatalog
}

func NewFavoritesService(db *gorm.DB, catalog ProductCatalog) *FavoritesService {
	return &FavoritesService{db: db, catalog: catalog}
}

// Toggle adds productName if absent (priority = count+1) or removes it if present.
func (s *FavoritesService) Toggle(ctx context.Context, email, productName string) (*ToggleResult, error) {
	email = normalizeEmail(email)
	productName = strings.TrimSpace(productName)
	v := validation.Violations{}
	validation.Required("email", email, v)
	validation.Required("productName", productName, v)
	if !v.Empty() {
		return nil, apperr.Validation("invalid_favorite", v)
	}
	res := &ToggleResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fav := models.UserFavorites{Email: email}
		if err := tx.Where("email = ?", email).FirstOrCreate(&fav).Error; err != nil {
			return err
		}
		var existing models.FavoriteEntry
		err := tx.Where("user_favorites_id = ? AND name = ?", fav.ID, productName).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			res.Action = FavoriteRemoved
		case errors.Is(err, gorm.ErrRecordNotFound):
			var count int64
			if err := tx.Model(&models.FavoriteEntry{}).Where("user_favorites_id = ?", fav.ID).Count(&count).Error; err != nil {
				return err
			}
			if err := tx.Create(&models.FavoriteEntry{
				UserFavoritesID: fav.ID,
				Name:            productName,
				Priority:        int(count) + 1,
			}).Error; err != nil {
				return err
			}
			res.Action = FavoriteAdded
		default:
			return err
		}
		if err := tx.Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).First(&fav, fav.ID).Error; err != nil {
			return err
		}
		res.Favorites = &fav
		return nil
	})
	if err != nil {
		return nil, apperr.Infra("toggle favorite", err)
	}
	return res, nil
}

// Resolve returns the catalog products named in the user's favorites. A user without
// favorites gets an empty slice.
func (s *FavoritesService) Resolve(ctx context.Context, email string) ([]models.Product, error) {
	var fav models.UserFavorites
	err := s.db.WithContext(ctx).Preload("Entries", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("email = ?", normalizeEmail(email)).First(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Product{}, nil
	}
	if err != nil {
		return nil, apperr.Infra("load favorites", err)
	}
	return s.catalog.FindByNames(ctx, fav.Names())
}
