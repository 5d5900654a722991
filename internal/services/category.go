package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/logger"
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/diewo77/go-sourcing/internal/sequence"
	"github.com/diewo77/go-sourcing/internal/validation"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const categorySequence = "categoryId"

func subCategorySequence(categoryID int64) string {
	return fmt.Sprintf("subCategoryId_%d", categoryID)
}

// CategoryService maintains the two-level catalog tree.
type CategoryService struct {
	db    *gorm.DB
	alloc *sequence.Allocator
}

func NewCategoryService(db *gorm.DB, alloc *sequence.Allocator) *CategoryService {
	return &CategoryService{db: db, alloc: alloc}
}

// AddOrMerge creates the category or appends the sub-categories it does not have yet.
// Allocation happens inside the transaction, so a failed call consumes no ids.
func (s *CategoryService) AddOrMerge(ctx context.Context, name string, subNames []string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	v := validation.Violations{}
	validation.Required("name", name, v)
	for i, sn := range subNames {
		validation.Required(fmt.Sprintf("subCategories[%d]", i), sn, v)
	}
	if !v.Empty() {
		return nil, apperr.Validation("invalid_category", v)
	}

	var out models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		alloc := s.alloc.WithTx(tx)
		var cat models.Category
		err := tx.Preload("SubCategories").Where("name = ?", name).First(&cat).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			id, err := alloc.Next(ctx, categorySequence)
			if err != nil {
				return err
			}
			cat = models.Category{CategoryID: id, Name: name, Slug: Slugify(name)}
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		have := make(map[string]bool, len(cat.SubCategories))
		for _, sc := range cat.SubCategories {
			have[strings.ToLower(sc.Name)] = true
		}
		for _, sn := range subNames {
			sn = strings.TrimSpace(sn)
			if have[strings.ToLower(sn)] {
				continue
			}
			have[strings.ToLower(sn)] = true
			subID, err := alloc.Next(ctx, subCategorySequence(cat.CategoryID))
			if err != nil {
				return err
			}
			if err := tx.Create(&models.SubCategory{
				SubCategoryID: subID,
				CategoryRef:   cat.CategoryID,
				Name:          sn,
				Slug:          Slugify(sn),
			}).Error; err != nil {
				return err
			}
		}
		return loadCategory(tx, cat.CategoryID, &out)
	})
	if err != nil {
		return nil, apperr.Infra("add or merge category", err)
	}
	logger.Info(ctx, "category saved", zap.Int64("category_id", out.CategoryID), zap.Int("sub_categories", len(out.SubCategories)))
	return &out, nil
}

// Delete removes a category and every sub-category keyed by its allocated id, in one
// transaction. Retrying after a partial failure still clears stray sub-categories.
func (s *CategoryService) Delete(ctx context.Context, categoryID int64) error {
	var subs, cats int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("category_ref = ?", categoryID).Delete(&models.SubCategory{})
		if res.Error != nil {
			return res.Error
		}
		subs = res.RowsAffected
		res = tx.Where("category_id = ?", categoryID).Delete(&models.Category{})
		if res.Error != nil {
			return res.Error
		}
		cats = res.RowsAffected
		return nil
	})
	if err != nil {
		return apperr.Infra("delete category", err)
	}
	if subs == 0 && cats == 0 {
		return apperr.NotFound("category %d not found", categoryID)
	}
	logger.Info(ctx, "category deleted", zap.Int64("category_id", categoryID), zap.Int64("sub_categories", subs))
	return nil
}

func (s *CategoryService) Get(ctx context.Context, categoryID int64) (*models.Category, error) {
	var c models.Category
	if err := loadCategory(s.db.WithContext(ctx), categoryID, &c); err != nil {
		return nil, apperr.Infra("load category", err)
	}
	return &c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.db.WithContext(ctx).
		Preload("SubCategories", func(db *gorm.DB) *gorm.DB { return db.Order("sub_category_id") }).
		Order("category_id").Find(&out).Error
	if err != nil {
		return nil, apperr.Infra("list categories", err)
	}
	return out, nil
}

func loadCategory(db *gorm.DB, categoryID int64, out *models.Category) error {
	err := db.Preload("SubCategories", func(db *gorm.DB) *gorm.DB { return db.Order("sub_category_id") }).
		Where("category_id = ?", categoryID).First(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("category %d not found", categoryID)
	}
	return err
}

// Slugify lowercases s, strips diacritics and joins words with '-'.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
