package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/events"
	"github.com/diewo77/go-sourcing/internal/logger"
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/diewo77/go-sourcing/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxNegIDAttempts bounds retries when a generated negId collides.
const maxNegIDAttempts = 5

var errNegIDExhausted = errors.New("negid_collisions_exhausted")

// NegotiationEngine drives the admin-mediated bargaining state machine.
type NegotiationEngine struct {
	db        *gorm.DB
	ids       *NegIDGenerator
	publisher events.Publisher
	now       func() time.Time
	// fallback applies when a create request carries no commission at all.
	fallback models.Commission
}

type EngineOption func(*NegotiationEngine)

func WithPublisher(p events.Publisher) EngineOption {
	return func(e *NegotiationEngine) { e.publisher = p }
}

func WithNegIDGenerator(g *NegIDGenerator) EngineOption {
	return func(e *NegotiationEngine) { e.ids = g }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *NegotiationEngine) { e.now = now }
}

// WithDefaultCommission sets the commission used when a request names none.
func WithDefaultCommission(c models.Commission) EngineOption {
	return func(e *NegotiationEngine) { e.fallback = c }
}

func NewNegotiationEngine(db *gorm.DB, opts ...EngineOption) *NegotiationEngine {
	e := &NegotiationEngine{
		db:        db,
		ids:       NewNegIDGenerator(),
		publisher: events.LogPublisher{},
		now:       time.Now,
		fallback:  models.Commission{Mode: models.CommissionPercentage},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

type CreateInput struct {
	SellerEmail    string                `json:"sellerEmail" validate:"required,email"`
	CustomerEmail  string                `json:"customerEmail" validate:"omitempty,email"`
	ProductDetails models.ProductDetails `json:"productDetails"`
	RequestInfo    models.RequestInfo    `json:"requestInfo"`
	Commission     models.Commission     `json:"commission"`
	// Amount and Quantity seed the first proposal, usually the seller's quote.
	Amount   float64 `json:"amount" validate:"gte=0"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
}

func (in CreateInput) validate() error {
	v := validation.Violations{}
	validation.Struct(in, v)
	validation.OneOf("commission.mode", string(in.Commission.Mode),
		[]string{string(models.CommissionPercentage), string(models.CommissionFlat)}, v)
	validation.NonNegativeFloat("commission.value", in.Commission.Value, v)
	if !v.Empty() {
		return apperr.Validation("invalid_negotiation", v)
	}
	return nil
}

type ProposeInput struct {
	Actor    models.Actor `json:"actor"`
	Amount   float64      `json:"amount" validate:"gt=0"`
	Quantity float64      `json:"quantity" validate:"gt=0"`
	Comment  string       `json:"comment" validate:"max=2000"`
	// ExpectedStatus, when set, must match the stored status or the call fails as stale.
	ExpectedStatus models.NegotiationStatus `json:"expectedStatus,omitempty"`
}

func (in ProposeInput) validate() error {
	v := validation.Violations{}
	validation.Struct(in, v)
	if !in.Actor.Valid() {
		v["actor"] = "not_allowed"
	}
	if !v.Empty() {
		return apperr.Validation("invalid_offer", v)
	}
	return nil
}

// Create opens a negotiation in admin_pending with a fresh negId.
func (e *NegotiationEngine) Create(ctx context.Context, in CreateInput) (*models.Negotiation, error) {
	return e.create(ctx, e.db.WithContext(ctx), in)
}

// create runs on db, which may be a caller transaction. Each attempt is its own
// (nested) transaction so a negId collision only rolls back that attempt.
func (e *NegotiationEngine) create(ctx context.Context, db *gorm.DB, in CreateInput) (*models.Negotiation, error) {
	switch {
	case in.Commission.Mode == "" && in.Commission.Value == 0:
		in.Commission = e.fallback
	case in.Commission.Mode == "":
		in.Commission.Mode = models.CommissionPercentage
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := e.now()
	if in.RequestInfo.RequestCreatedAt.IsZero() {
		in.RequestInfo.RequestCreatedAt = now
	}
	n := &models.Negotiation{
		SellerEmail:    strings.ToLower(strings.TrimSpace(in.SellerEmail)),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(in.CustomerEmail)),
		ProductDetails: in.ProductDetails,
		RequestInfo:    in.RequestInfo,
		Commission:     in.Commission,
		Status:         models.StatusAdminPending,
		Version:        1,
		Details: models.NegotiationDetails{
			NegotiationAmount:   in.Amount,
			NegotiationQuantity: in.Quantity,
		},
	}
	if in.Amount > 0 {
		n.Details.CustomerOfferPriceWithCommission = ComputeCustomerPrice(in.Amount, in.Commission)
	}

	if _, err := findByTriple(db, n.SellerEmail, n.RequestInfo.RequestID, n.ProductDetails.ProductID); err == nil {
		return nil, errNegotiationExists()
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxNegIDAttempts; attempt++ {
		n.ID = 0
		n.NegID = e.ids.Next()
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(n).Error; err != nil {
				return err
			}
			return tx.Create(&models.NegotiationRevision{
				NegotiationID: n.ID,
				Actor:         models.ActorAdmin,
				ToStatus:      n.Status,
				Amount:        n.Details.NegotiationAmount,
				Quantity:      n.Details.NegotiationQuantity,
			}).Error
		})
		if err == nil {
			logger.Info(ctx, "negotiation created",
				zap.String("neg_id", n.NegID), zap.String("request", n.RequestInfo.RequestID))
			return n, nil
		}
		if !isDuplicate(err) {
			return nil, apperr.Infra("create negotiation", err)
		}
		if _, ferr := findByTriple(db, n.SellerEmail, n.RequestInfo.RequestID, n.ProductDetails.ProductID); ferr == nil {
			return nil, errNegotiationExists()
		}
		lastErr = err
	}
	return nil, apperr.Allocation("negId", errors.Join(errNegIDExhausted, lastErr))
}

// ProposeCounterOffer records a new proposal by in.Actor and advances the status.
// The previous proposal rolls into the preview slots.
func (e *NegotiationEngine) ProposeCounterOffer(ctx context.Context, id uint, in ProposeInput) (*models.Negotiation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var n *models.Negotiation
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = loadForTransition(tx, id, in.ExpectedStatus)
		if err != nil {
			return err
		}
		next, ok := NextStatus(n.Status, in.Actor)
		if !ok {
			return apperr.Illegal("%s cannot make an offer while negotiation is %s", in.Actor, n.Status)
		}
		from := n.Status
		applyOffer(n, in, next)

		fields := map[string]any{
			"details_preview_amount":                       n.Details.PreviewAmount,
			"details_preview_quantity":                     n.Details.PreviewQuantity,
			"details_negotiation_amount":                   n.Details.NegotiationAmount,
			"details_negotiation_quantity":                 n.Details.NegotiationQuantity,
			"details_new_amount":                           n.Details.NewAmount,
			"details_customer_offer_price_with_commission": n.Details.CustomerOfferPriceWithCommission,
			"details_comment":                              n.Details.Comment,
			"comment_seller":                               n.Comments.Seller,
			"comment_admin":                                n.Comments.Admin,
			"comment_customer":                             n.Comments.Customer,
		}
		if err := e.advance(tx, n, next, fields); err != nil {
			return err
		}
		return tx.Create(&models.NegotiationRevision{
			NegotiationID: n.ID,
			Actor:         in.Actor,
			FromStatus:    from,
			ToStatus:      next,
			Amount:        in.Amount,
			Quantity:      in.Quantity,
			Comment:       in.Comment,
		}).Error
	})
	if err != nil {
		return nil, apperr.Infra("propose counter offer", err)
	}
	logger.Info(ctx, "counter offer recorded",
		zap.String("neg_id", n.NegID), zap.String("actor", string(in.Actor)), zap.String("status", string(n.Status)))
	return n, nil
}

// applyOffer mutates n in memory; next is the status the offer leads to.
func applyOffer(n *models.Negotiation, in ProposeInput, next models.NegotiationStatus) {
	d := &n.Details
	if d.NegotiationAmount > 0 || d.PreviewAmount != nil {
		prevAmount, prevQty := d.NegotiationAmount, d.NegotiationQuantity
		d.PreviewAmount = &prevAmount
		d.PreviewQuantity = &prevQty
	}
	d.NegotiationAmount = in.Amount
	d.NegotiationQuantity = in.Quantity

	switch {
	case in.Actor == models.ActorCustomer:
		amount := in.Amount
		d.NewAmount = &amount
	case in.Actor == models.ActorAdmin && next == models.StatusCustomerResponded:
		// Seller-side amount crossing into the customer track.
		d.CustomerOfferPriceWithCommission = ComputeCustomerPrice(in.Amount, n.Commission)
		d.NewAmount = nil
	}
	if in.Comment != "" {
		n.Comments.Set(in.Actor, in.Comment)
		d.Comment = in.Comment
	}
}

// Accept closes the negotiation as agreed and notifies the event sink after commit.
func (e *NegotiationEngine) Accept(ctx context.Context, id uint, actor models.Actor, expected models.NegotiationStatus) (*models.Negotiation, error) {
	n, from, err := e.close(ctx, id, actor, expected, models.StatusAccepted, "")
	if err != nil {
		return nil, err
	}
	evt := acceptedEvent(n, actor, from, e.now())
	if perr := e.publisher.PublishAccepted(ctx, evt); perr != nil {
		logger.Error(ctx, "publish accepted event failed", perr, zap.String("neg_id", n.NegID))
	}
	return n, nil
}

func (e *NegotiationEngine) Reject(ctx context.Context, id uint, actor models.Actor, reason string, expected models.NegotiationStatus) (*models.Negotiation, error) {
	n, _, err := e.close(ctx, id, actor, expected, models.StatusRejected, reason)
	return n, err
}

func (e *NegotiationEngine) close(ctx context.Context, id uint, actor models.Actor, expected, to models.NegotiationStatus, reason string) (*models.Negotiation, models.NegotiationStatus, error) {
	if !actor.Valid() {
		return nil, "", apperr.Validation("invalid_actor", map[string]string{"actor": "not_allowed"})
	}
	var (
		n    *models.Negotiation
		from models.NegotiationStatus
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = loadForTransition(tx, id, expected)
		if err != nil {
			return err
		}
		if !CanClose(n.Status, actor) {
			return apperr.Illegal("%s cannot close negotiation while it is %s", actor, n.Status)
		}
		from = n.Status
		n.RejectReason = reason
		if err := e.advance(tx, n, to, map[string]any{"reject_reason": reason}); err != nil {
			return err
		}
		if err := tx.Create(&models.NegotiationRevision{
			NegotiationID: n.ID,
			Actor:         actor,
			FromStatus:    from,
			ToStatus:      to,
			Amount:        n.Details.NegotiationAmount,
			Quantity:      n.Details.NegotiationQuantity,
			Comment:       reason,
		}).Error; err != nil {
			return err
		}
		return syncQuotationOutcome(tx, n)
	})
	if err != nil {
		return nil, "", apperr.Infra("close negotiation", err)
	}
	logger.Info(ctx, "negotiation closed",
		zap.String("neg_id", n.NegID), zap.String("actor", string(actor)), zap.String("status", string(to)))
	return n, from, nil
}

// advance performs the conditional update. Zero affected rows means another writer
// committed first.
func (e *NegotiationEngine) advance(tx *gorm.DB, n *models.Negotiation, to models.NegotiationStatus, fields map[string]any) error {
	fields["status"] = to
	fields["version"] = n.Version + 1
	fields["updated_at"] = e.now()
	res := tx.Model(&models.Negotiation{}).
		Where("id = ? AND status = ? AND version = ?", n.ID, n.Status, n.Version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.Stale("negotiation %d changed concurrently", n.ID)
	}
	n.Status = to
	n.Version++
	return nil
}

func loadForTransition(tx *gorm.DB, id uint, expected models.NegotiationStatus) (*models.Negotiation, error) {
	var n models.Negotiation
	if err := tx.First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("negotiation %d not found", id)
		}
		return nil, err
	}
	if n.Status.IsTerminal() {
		return nil, apperr.Terminal("negotiation %s is already %s", n.NegID, n.Status)
	}
	if expected != "" && expected != n.Status {
		return nil, apperr.Stale("negotiation %s is %s, expected %s", n.NegID, n.Status, expected)
	}
	return &n, nil
}

func (e *NegotiationEngine) Get(ctx context.Context, id uint) (*models.Negotiation, error) {
	var n models.Negotiation
	if err := e.db.WithContext(ctx).First(&n, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("negotiation %d not found", id)
		}
		return nil, apperr.Infra("load negotiation", err)
	}
	return &n, nil
}

func (e *NegotiationEngine) GetByNegID(ctx context.Context, negID string) (*models.Negotiation, error) {
	var n models.Negotiation
	if err := e.db.WithContext(ctx).Where("neg_id = ?", negID).First(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("negotiation %s not found", negID)
		}
		return nil, apperr.Infra("load negotiation", err)
	}
	return &n, nil
}

// History returns every recorded transition, oldest first.
func (e *NegotiationEngine) History(ctx context.Context, id uint) ([]models.NegotiationRevision, error) {
	if _, err := e.Get(ctx, id); err != nil {
		return nil, err
	}
	var revs []models.NegotiationRevision
	if err := e.db.WithContext(ctx).Where("negotiation_id = ?", id).Order("id").Find(&revs).Error; err != nil {
		return nil, apperr.Infra("load history", err)
	}
	return revs, nil
}

func findByTriple(db *gorm.DB, seller, requestID, productID string) (*models.Negotiation, error) {
	var n models.Negotiation
	err := db.Where("seller_email = ? AND request_request_id = ? AND product_product_id = ?", seller, requestID, productID).
		First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("negotiation not found")
	}
	if err != nil {
		return nil, apperr.Infra("load negotiation", err)
	}
	return &n, nil
}

// sellerSideAmount is the last amount proposed on the seller track. While the admin
// weighs a customer counter, the preview slot holds it.
func sellerSideAmount(n *models.Negotiation) float64 {
	if n.Status == models.StatusAdminCustomerCounterOffer && n.Details.PreviewAmount != nil {
		return *n.Details.PreviewAmount
	}
	return n.Details.NegotiationAmount
}

func acceptedEvent(n *models.Negotiation, actor models.Actor, from models.NegotiationStatus, at time.Time) events.NegotiationAccepted {
	// from is the status before acceptance; sellerSideAmount needs it.
	snapshot := *n
	snapshot.Status = from
	seller := sellerSideAmount(&snapshot)
	var price float64
	switch {
	case from == models.StatusAdminCustomerCounterOffer && n.Details.NewAmount != nil:
		price = *n.Details.NewAmount
	case customerTrack(from):
		price = n.Details.CustomerOfferPriceWithCommission
	default:
		// Seller-track amounts are marked up at the moment of acceptance.
		price = ComputeCustomerPrice(seller, n.Commission)
	}
	return events.NegotiationAccepted{
		Type:          events.TypeNegotiationAccepted,
		NegotiationID: n.ID,
		NegID:         n.NegID,
		SellerEmail:   n.SellerEmail,
		RequestID:     n.RequestInfo.RequestID,
		ProductID:     n.ProductDetails.ProductID,
		AcceptedBy:    string(actor),
		Price:         price,
		SellerAmount:  seller,
		Quantity:      n.Details.NegotiationQuantity,
		TotalWithGST:  LineTotal(price, n.Details.NegotiationQuantity, n.ProductDetails.GST),
		AcceptedAt:    at,
	}
}

func errNegotiationExists() error {
	return apperr.Validation("negotiation_exists", map[string]string{"negotiation": "already_exists"})
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
