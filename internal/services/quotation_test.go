package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-sourcing/internal/apperr"
	"github.com/diewo77/go-sourcing/internal/models"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.CompanyStatus
		want     string
	}{
		{"no entries", nil, models.QuotationPending},
		{"one pending", []models.CompanyStatus{models.CompanyAccepted, models.CompanyQuoted}, models.QuotationPending},
		{"negotiating", []models.CompanyStatus{models.CompanyNegotiating}, models.QuotationPending},
		{"all terminal", []models.CompanyStatus{models.CompanyAccepted, models.CompanyRejected}, models.QuotationResolved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &models.Quotation{}
			for _, s := range tt.statuses {
				q.SelectedCompanies = append(q.SelectedCompanies, models.SelectedCompany{Status: s})
			}
			if got := DeriveStatus(q); got != tt.want {
				t.Fatalf("DeriveStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newQuotationFixture(t *testing.T, pub *recordingPublisher) (*QuotationService, *NegotiationEngine) {
	t.Helper()
	db := setupTestDB(t)
	var e *NegotiationEngine
	if pub != nil {
		e = newTestEngine(db, pub)
	} else {
		e = newTestEngine(db, nil)
	}
	svc := NewQuotationService(db, e, NewGormCatalog(db))
	_, err := svc.Create(context.Background(), CreateQuotationInput{
		RequirementID: "req-1",
		ProductName:   "Steel",
		AverageQty:    10,
		Measurement:   "ton",
		Sellers:       []string{"a@acme.io", "B@acme.io", "a@acme.io"},
		CustomerEmail: "C@buyer.io",
	})
	if err != nil {
		t.Fatalf("create quotation: %v", err)
	}
	return svc, e
}

func TestQuotationCreate(t *testing.T) {
	svc, _ := newQuotationFixture(t, nil)
	q, err := svc.Get(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(q.SelectedCompanies) != 2 {
		t.Fatalf("expected 2 deduplicated entries, got %d", len(q.SelectedCompanies))
	}
	if q.SelectedCompanies[1].Email != "b@acme.io" {
		t.Fatalf("expected normalized email, got %q", q.SelectedCompanies[1].Email)
	}
	if q.Status != models.QuotationPending {
		t.Fatalf("status = %q", q.Status)
	}

	_, err = svc.Create(context.Background(), CreateQuotationInput{RequirementID: "req-1", ProductName: "Steel"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected duplicate requirement to fail validation, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAddSellerQuote_Upsert(t *testing.T) {
	svc, _ := newQuotationFixture(t, nil)
	ctx := context.Background()

	q, err := svc.AddSellerQuote(ctx, "req-1", "a@acme.io", 100, "ex-works")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	e := q.Entry("a@acme.io")
	if e == nil || e.Status != models.CompanyQuoted || e.Amount == nil || *e.Amount != 100 {
		t.Fatalf("unexpected entry %+v", e)
	}

	q, err = svc.AddSellerQuote(ctx, "req-1", "A@acme.io", 95, "revised")
	if err != nil {
		t.Fatalf("requote: %v", err)
	}
	if len(q.SelectedCompanies) != 2 {
		t.Fatalf("upsert must not add entries, got %d", len(q.SelectedCompanies))
	}
	if *q.Entry("a@acme.io").Amount != 95 {
		t.Fatalf("amount not updated")
	}

	q, err = svc.AddSellerQuote(ctx, "req-1", "c@acme.io", 120, "")
	if err != nil {
		t.Fatalf("new seller: %v", err)
	}
	if len(q.SelectedCompanies) != 3 || q.SelectedCompanies[2].Email != "c@acme.io" {
		t.Fatalf("expected appended entry, got %+v", q.SelectedCompanies)
	}

	if _, err := svc.AddSellerQuote(ctx, "req-1", "a@acme.io", 0, ""); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.AddSellerQuote(ctx, "nope", "a@acme.io", 10, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEnterBargaining_Idempotent(t *testing.T) {
	svc, _ := newQuotationFixture(t, nil)
	ctx := context.Background()
	if _, err := svc.AddSellerQuote(ctx, "req-1", "a@acme.io", 100, ""); err != nil {
		t.Fatalf("quote: %v", err)
	}
	in := BargainInput{ProductID: "p-1", Commission: models.Commission{Mode: models.CommissionPercentage, Value: 10}}

	n1, err := svc.EnterBargaining(ctx, "req-1", "a@acme.io", in)
	if err != nil {
		t.Fatalf("bargain: %v", err)
	}
	n2, err := svc.EnterBargaining(ctx, "req-1", "a@acme.io", in)
	if err != nil {
		t.Fatalf("repeat bargain: %v", err)
	}
	if n1.ID != n2.ID || n1.NegID != n2.NegID {
		t.Fatalf("expected the same negotiation, got %d and %d", n1.ID, n2.ID)
	}
	if n1.ProductDetails.ProductName != "Steel" || n1.Details.NegotiationQuantity != 10 {
		t.Fatalf("unexpected snapshot %+v", n1.ProductDetails)
	}
	q, _ := svc.Get(ctx, "req-1")
	if q.Entry("a@acme.io").Status != models.CompanyNegotiating {
		t.Fatalf("entry status = %s", q.Entry("a@acme.io").Status)
	}
	if _, err := svc.EnterBargaining(ctx, "req-1", "b@acme.io", in); !errors.Is(err, apperr.ErrIllegal) {
		t.Fatalf("unquoted seller must not bargain, got %v", err)
	}
	if _, err := svc.EnterBargaining(ctx, "req-1", "z@acme.io", in); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown seller, got %v", err)
	}
}

func TestEnterBargaining_UsesCatalogSnapshot(t *testing.T) {
	svc, _ := newQuotationFixture(t, nil)
	ctx := context.Background()
	p := models.Product{Name: "Steel Coil", HSNCode: "7208", Measurement: "ton", GST: 18, IsActive: true}
	if err := svc.db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if _, err := svc.AddSellerQuote(ctx, "req-1", "a@acme.io", 100, ""); err != nil {
		t.Fatalf("quote: %v", err)
	}
	n, err := svc.EnterBargaining(ctx, "req-1", "a@acme.io", BargainInput{ProductID: p.Details().ProductID})
	if err != nil {
		t.Fatalf("bargain: %v", err)
	}
	if n.ProductDetails.HSNCode != "7208" || n.ProductDetails.ProductName != "Steel Coil" {
		t.Fatalf("expected catalog snapshot, got %+v", n.ProductDetails)
	}
}

func TestEnterBargaining_CarriesBuyer(t *testing.T) {
	svc, _ := newQuotationFixture(t, nil)
	ctx := context.Background()
	if _, err := svc.AddSellerQuote(ctx, "req-1", "a@acme.io", 100, ""); err != nil {
		t.Fatalf("quote: %v", err)
	}
	n, err := svc.EnterBargaining(ctx, "req-1", "a@acme.io", BargainInput{ProductID: "p-1"})
	if err != nil {
		t.Fatalf("bargain: %v", err)
	}
	if n.CustomerEmail != "c@buyer.io" {
		t.Fatalf("customer email = %q", n.CustomerEmail)
	}
}

// A catalog id written with leading zeros resolves to the same negotiation.
func TestEnterBargaining_IdempotentOnCatalogID(t *testing.T) {
	svc, _ := newQuotationFixture(t, nil)
	ctx := context.Background()
	p := models.Product{Name: "Steel Coil", Measurement: "ton", GST: 18, IsActive: true}
	if err := svc.db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if _, err := svc.AddSellerQuote(ctx, "req-1", "a@acme.io", 100, ""); err != nil {
		t.Fatalf("quote: %v", err)
	}
	canonical := p.Details().ProductID
	n1, err := svc.EnterBargaining(ctx, "req-1", "a@acme.io", BargainInput{ProductID: "00" + canonical})
	if err != nil {
		t.Fatalf("bargain: %v", err)
	}
	if n1.ProductDetails.ProductID != canonical {
		t.Fatalf("product id = %q, want %q", n1.ProductDetails.ProductID, canonical)
	}
	n2, err := svc.EnterBargaining(ctx, "req-1", "a@acme.io", BargainInput{ProductID: "00" + canonical})
	if err != nil {
		t.Fatalf("repeat bargain: %v", err)
	}
	if n2.ID != n1.ID {
		t.Fatalf("expected the same negotiation, got %d and %d", n1.ID, n2.ID)
	}
}

// One seller quote of 100 with a 10% commission reaches the customer at exactly 110.
func TestEndToEnd_CustomerPrice(t *testing.T) {
	pub := &recordingPublisher{}
	svc, e := newQuotationFixture(t, pub)
	ctx := context.Background()

	if _, err := svc.AddSellerQuote(ctx, "req-1", "a@acme.io", 100, ""); err != nil {
		t.Fatalf("quote: %v", err)
	}
	if _, err := svc.AddSellerQuote(ctx, "req-1", "b@acme.io", 130, ""); err != nil {
		t.Fatalf("quote: %v", err)
	}
	n, err := svc.EnterBargaining(ctx, "req-1", "a@acme.io", BargainInput{
		ProductID:  "p-1",
		Commission: models.Commission{Mode: models.CommissionPercentage, Value: 10},
	})
	if err != nil {
		t.Fatalf("bargain: %v", err)
	}
	for n.Status != models.StatusCustomerResponded {
		n, err = e.ProposeCounterOffer(ctx, n.ID, ProposeInput{Actor: TurnOwner(n.Status), Amount: 100, Quantity: 10})
		if err != nil {
			t.Fatalf("propose from %s: %v", n.Status, err)
		}
	}
	if n.Details.CustomerOfferPriceWithCommission != 110 {
		t.Fatalf("customer price = %v, want 110", n.Details.CustomerOfferPriceWithCommission)
	}

	if _, err := e.Accept(ctx, n.ID, models.ActorCustomer, ""); err != nil {
		t.Fatalf("accept: %v", err)
	}
	q, _ := svc.Get(ctx, "req-1")
	if q.Entry("a@acme.io").Status != models.CompanyAccepted {
		t.Fatalf("entry not synced: %s", q.Entry("a@acme.io").Status)
	}
	if q.Status != models.QuotationPending {
		t.Fatalf("b is still quoted, status = %s", q.Status)
	}

	nb, err := svc.EnterBargaining(ctx, "req-1", "b@acme.io", BargainInput{ProductID: "p-1"})
	if err != nil {
		t.Fatalf("bargain b: %v", err)
	}
	if _, err := e.Reject(ctx, nb.ID, models.ActorAdmin, "not needed", ""); err != nil {
		t.Fatalf("reject b: %v", err)
	}
	q, _ = svc.Get(ctx, "req-1")
	if q.Status != models.QuotationResolved {
		t.Fatalf("status = %s, want resolved", q.Status)
	}
	if len(pub.events) != 1 || pub.events[0].Price != 110 {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}
