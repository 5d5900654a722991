package handlers

import (
	"net/http"

	"github.com/diewo77/go-sourcing/internal/gate"
	"github.com/diewo77/go-sourcing/internal/httpx"
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/diewo77/go-sourcing/internal/policy"
	"github.com/diewo77/go-sourcing/internal/services"
)

// QuotationHandler replies with services.QuotationViewFor projections only.
type QuotationHandler struct {
	quotations *services.QuotationService
	gate       *policy.AuthGate
}

func NewQuotationHandler(qs *services.QuotationService, ag *policy.AuthGate) *QuotationHandler {
	return &QuotationHandler{quotations: qs, gate: ag}
}

func quotationView(r *http.Request, q *models.Quotation) services.QuotationView {
	p := principal(r)
	return services.QuotationViewFor(q, p.Role, p.Email)
}

type quoteRequest struct {
	SellerEmail string  `json:"sellerEmail"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type bargainRequest struct {
	SellerEmail string            `json:"sellerEmail"`
	ProductID   string            `json:"productId"`
	Commission  models.Commission `json:"commission"`
}

func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateQuotationInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	// Customers always post as themselves; admins may name the buyer.
	if p := principal(r); p.Role == models.ActorCustomer {
		in.CustomerEmail = p.Email
	}
	q, err := h.quotations.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, quotationView(r, q))
}

func (h *QuotationHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.quotations.Get(r.Context(), r.PathValue("requirementId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.gate.Authorize(r.Context(), gate.ActionView, policy.ResourceQuotation, q); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotationView(r, q))
}

// Quote records a seller ask. Sellers always quote as themselves; admins name the seller.
func (h *QuotationHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if p := principal(r); p.Role == models.ActorSeller {
		req.SellerEmail = p.Email
	}
	q, err := h.quotations.AddSellerQuote(r.Context(), r.PathValue("requirementId"), req.SellerEmail, req.Amount, req.Description)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, quotationView(r, q))
}

func (h *QuotationHandler) Bargain(w http.ResponseWriter, r *http.Request) {
	var req bargainRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	n, err := h.quotations.EnterBargaining(r.Context(), r.PathValue("requirementId"), req.SellerEmail, services.BargainInput{
		ProductID:  req.ProductID,
		Commission: req.Commission,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ViewFor(n, principal(r).Role))
}
