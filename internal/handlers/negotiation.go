package handlers

import (
	"net/http"

	"github.com/diewo77/go-sourcing/internal/gate"
	"github.com/diewo77/go-sourcing/internal/httpx"
	"github.com/diewo77/go-sourcing/internal/models"
	"github.com/diewo77/go-sourcing/internal/policy"
	"github.com/diewo77/go-sourcing/internal/services"
)

type NegotiationHandler struct {
	engine *services.NegotiationEngine
	gate   *policy.AuthGate
}

func NewNegotiationHandler(engine *services.NegotiationEngine, ag *policy.AuthGate) *NegotiationHandler {
	return &NegotiationHandler{engine: engine, gate: ag}
}

type offerRequest struct {
	Amount         float64                  `json:"amount"`
	Quantity       float64                  `json:"quantity"`
	Comment        string                   `json:"comment"`
	ExpectedStatus models.NegotiationStatus `json:"expectedStatus"`
}

type closeRequest struct {
	Reason         string                   `json:"reason"`
	ExpectedStatus models.NegotiationStatus `json:"expectedStatus"`
}

// load fetches the negotiation and checks the caller may perform action on it.
func (h *NegotiationHandler) load(w http.ResponseWriter, r *http.Request, action gate.Action) (*models.Negotiation, bool) {
	id, err := pathUint(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return nil, false
	}
	n, err := h.engine.Get(r.Context(), uint(id))
	if err != nil {
		httpx.Error(w, r, err)
		return nil, false
	}
	if err := h.gate.Authorize(r.Context(), action, policy.ResourceNegotiation, n); err != nil {
		httpx.Error(w, r, err)
		return nil, false
	}
	return n, true
}

func (h *NegotiationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.CreateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, r, err)
		return
	}
	n, err := h.engine.Create(r.Context(), in)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, services.ViewFor(n, principal(r).Role))
}

func (h *NegotiationHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, services.ViewFor(n, principal(r).Role))
}

// GetByRef looks a negotiation up by its display negId.
func (h *NegotiationHandler) GetByRef(w http.ResponseWriter, r *http.Request) {
	n, err := h.engine.GetByNegID(r.Context(), r.PathValue("negId"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.gate.Authorize(r.Context(), gate.ActionView, policy.ResourceNegotiation, n); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ViewFor(n, principal(r).Role))
}

func (h *NegotiationHandler) History(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	revs, err := h.engine.History(r.Context(), n.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, revs)
}

func (h *NegotiationHandler) Offer(w http.ResponseWriter, r *http.Request) {
	n, ok := h.load(w, r, gate.ActionOffer)
	if !ok {
		return
	}
	var req offerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	actor := principal(r).Role
	updated, err := h.engine.ProposeCounterOffer(r.Context(), n.ID, services.ProposeInput{
		Actor:          actor,
		Amount:         req.Amount,
		Quantity:       req.Quantity,
		Comment:        req.Comment,
		ExpectedStatus: req.ExpectedStatus,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ViewFor(updated, actor))
}

func (h *NegotiationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.close(w, r, true)
}

func (h *NegotiationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.close(w, r, false)
}

func (h *NegotiationHandler) close(w http.ResponseWriter, r *http.Request, accept bool) {
	n, ok := h.load(w, r, gate.ActionClose)
	if !ok {
		return
	}
	var req closeRequest
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}
	actor := principal(r).Role
	var (
		updated *models.Negotiation
		err     error
	)
	if accept {
		updated, err = h.engine.Accept(r.Context(), n.ID, actor, req.ExpectedStatus)
	} else {
		updated, err = h.engine.Reject(r.Context(), n.ID, actor, req.Reason, req.ExpectedStatus)
	}
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, services.ViewFor(updated, actor))
}
