package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/logger"
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/diewo77/go-sourcing/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuotationService aggregates seller asks per buyer requirement.
type QuotationService struct {
	db      *gorm.DB
	engine  *NegotiationEngine
	catalog ProductCatalog
}

func NewQuotationService(db *gorm.DB, engine *NegotiationEngine, catalog ProductCatalog) *QuotationService {
	return &QuotationService{db: db, engine: engine, catalog: catalog}
}

type CreateQuotationInput struct {
	RequirementID string   `json:"requirementId" validate:"required"`
	ProductName   string   `json:"productName" validate:"required"`
	AverageQty    float64  `json:"averageQty" validate:"gte=0"`
	Specification string   `json:"specification"`
	Measurement   string   `json:"measurement"`
	Sellers       []string `json:"sellers" validate:"dive,email"`
	CustomerEmail string   `json:"customerEmail" validate:"omitempty,email"`
}

// BargainInput carries what the negotiation needs beyond the quotation itself.
type BargainInput struct {
	ProductID  string            `json:"productId" validate:"required"`
	Commission models.Commission `json:"commission"`
}

// DeriveStatus is resolved iff there is at least one entry and every entry is terminal.
func DeriveStatus(q *models.Quotation) string {
	if len(q.SelectedCompanies) == 0 {
		return models.QuotationPending
	}
	for _, c := range q.SelectedCompanies {
		if !c.Status.IsTerminal() {
			return models.QuotationPending
		}
	}
	return models.QuotationResolved
}

// Create posts a requirement and invites the listed sellers as pending entries.
func (s *QuotationService) Create(ctx context.Context, in CreateQuotationInput) (*models.Quotation, error) {
	v := validation.Violations{}
	validation.Struct(in, v)
	if !v.Empty() {
		return nil, apperr.Validation("invalid_quotation", v)
	}
	q := &models.Quotation{
		RequirementID: strings.TrimSpace(in.RequirementID),
		ProductName:   strings.TrimSpace(in.ProductName),
		AverageQty:    in.AverageQty,
		Specification: in.Specification,
		Measurement:   in.Measurement,
		CustomerEmail: normalizeEmail(in.CustomerEmail),
	}
	seen := map[string]bool{}
	for _, email := range in.Sellers {
		email = normalizeEmail(email)
		if seen[email] {
			continue
		}
		seen[email] = true
		q.SelectedCompanies = append(q.SelectedCompanies, models.SelectedCompany{
			Email:    email,
			Status:   models.CompanyPending,
			Position: len(q.SelectedCompanies),
		})
	}
	if err := s.db.WithContext(ctx).Create(q).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Validation("quotation_exists", map[string]string{"requirementId": "already_exists"})
		}
		return nil, apperr.Infra("create quotation", err)
	}
	q.Status = DeriveStatus(q)
	return q, nil
}

// Get loads the quotation with entries in insertion order and a freshly derived status.
func (s *QuotationService) Get(ctx context.Context, requirementID string) (*models.Quotation, error) {
	return loadQuotation(s.db.WithContext(ctx), requirementID)
}

func loadQuotation(db *gorm.DB, requirementID string) (*models.Quotation, error) {
	var q models.Quotation
	err := db.Preload("SelectedCompanies", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, id")
	}).Where("requirement_id = ?", requirementID).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("quotation %s not found", requirementID)
		}
		return nil, apperr.Infra("load quotation", err)
	}
	q.Status = DeriveStatus(&q)
	return &q, nil
}

// AddSellerQuote upserts the seller's entry by email. Negotiations are never touched.
func (s *QuotationService) AddSellerQuote(ctx context.Context, requirementID, sellerEmail string, amount float64, description string) (*models.Quotation, error) {
	v := validation.Violations{}
	validation.Required("sellerEmail", sellerEmail, v)
	validation.PositiveFloat("amount", amount, v)
	if !v.Empty() {
		return nil, apperr.Validation("invalid_quote", v)
	}
	email := normalizeEmail(sellerEmail)
	var out *models.Quotation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := loadQuotation(tx, requirementID)
		if err != nil {
			return err
		}
		if entry := q.Entry(email); entry != nil {
			if entry.Status.IsTerminal() || entry.Status == models.CompanyNegotiating {
				return apperr.Illegal("seller %s is already %s on %s", email, entry.Status, requirementID)
			}
			if err := tx.Model(entry).Updates(map[string]any{
				"amount":      amount,
				"status":      models.CompanyQuoted,
				"description": description,
			}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Create(&models.SelectedCompany{
				QuotationID: q.ID,
				Email:       email,
				Amount:      &amount,
				Status:      models.CompanyQuoted,
				Description: description,
				Position:    len(q.SelectedCompanies),
			}).Error; err != nil {
				return err
			}
		}
		out, err = loadQuotation(tx, requirementID)
		return err
	})
	if err != nil {
		return nil, apperr.Infra("add seller quote", err)
	}
	logger.Info(ctx, "seller quote recorded", zap.String("requirement", requirementID), zap.String("status", out.Status))
	return out, nil
}

// EnterBargaining moves a quoted entry into negotiation, creating the Negotiation the
// first time. Repeated calls return the existing negotiation.
func (s *QuotationService) EnterBargaining(ctx context.Context, requirementID, sellerEmail string, in BargainInput) (*models.Negotiation, error) {
	v := validation.Violations{}
	validation.Struct(in, v)
	if !v.Empty() {
		return nil, apperr.Validation("invalid_bargain", v)
	}
	email := normalizeEmail(sellerEmail)
	snapshot, err := s.catalogDetails(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	productID := in.ProductID
	if snapshot != nil {
		productID = snapshot.ProductID
	}
	var n *models.Negotiation
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := loadQuotation(tx, requirementID)
		if err != nil {
			return err
		}
		entry := q.Entry(email)
		if entry == nil {
			return apperr.NotFound("seller %s has no entry on %s", email, requirementID)
		}
		if existing, err := findByTriple(tx, email, requirementID, productID); err == nil {
			n = existing
			return nil
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if entry.Status != models.CompanyQuoted || entry.Amount == nil {
			return apperr.Illegal("seller %s is %s on %s, a quote is required first", email, entry.Status, requirementID)
		}
		details := models.ProductDetails{ProductName: q.ProductName, ProductID: productID, Measurement: q.Measurement}
		if snapshot != nil {
			details = *snapshot
		}
		n, err = s.engine.create(ctx, tx, CreateInput{
			SellerEmail:    email,
			CustomerEmail:  q.CustomerEmail,
			ProductDetails: details,
			RequestInfo:    models.RequestInfo{RequestID: requirementID, RequestCreatedAt: q.CreatedAt},
			Commission:     in.Commission,
			Amount:         *entry.Amount,
			Quantity:       q.AverageQty,
		})
		if err != nil {
			return err
		}
		return tx.Model(entry).Update("status", models.CompanyNegotiating).Error
	})
	if err != nil {
		return nil, apperr.Infra("enter bargaining", err)
	}
	return n, nil
}

// catalogDetails returns the catalog snapshot for productID, or nil when the catalog
// does not know it and the quotation's own fields should be used.
func (s *QuotationService) catalogDetails(ctx context.Context, productID string) (*models.ProductDetails, error) {
	if s.catalog == nil {
		return nil, nil
	}
	p, err := s.catalog.FindByID(ctx, productID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := p.Details()
	return &d, nil
}

// syncQuotationOutcome mirrors a terminal negotiation onto its quotation entry. Negotiations
// opened without a quotation have nothing to update.
func syncQuotationOutcome(tx *gorm.DB, n *models.Negotiation) error {
	status := models.CompanyRejected
	if n.Status == models.StatusAccepted {
		status = models.CompanyAccepted
	}
	sub := tx.Model(&models.Quotation{}).Select("id").Where("requirement_id = ?", n.RequestInfo.RequestID)
	return tx.Model(&models.SelectedCompany{}).
		Where("quotation_id IN (?) AND email = ?", sub, n.SellerEmail).
		Update("status", status).Error
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
