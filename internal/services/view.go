package services

import (
	"time"

	"github.com/diewo77/go-sourcing/internal/models"
)

// NegotiationView is what one party may see of a negotiation.
// Customers never see who the seller is or what the seller asked. Sellers never see
// what the customer wrote or the marked-up price.
type NegotiationView struct {
	ID             uint                     `json:"id"`
	NegID          string                   `json:"negId"`
	Status         models.NegotiationStatus `json:"status"`
	Version        int                      `json:"version"`
	SellerEmail    string                   `json:"sellerEmail,omitempty"`
	CustomerEmail  string                   `json:"customerEmail,omitempty"`
	ProductDetails models.ProductDetails    `json:"productDetails"`
	RequestInfo    models.RequestInfo       `json:"requestInfo"`
	Commission     *models.Commission       `json:"commission,omitempty"`
	Details        DetailsView              `json:"negotiationDetails"`
	Comments       models.RoleComments      `json:"comments"`
	RejectReason   string                   `json:"rejectReason,omitempty"`
	UpdatedAt      time.Time                `json:"updated_at"`
}

type DetailsView struct {
	CustomerOfferPriceWithCommission *float64 `json:"customerOfferPriceWithCommission,omitempty"`
	NegotiationAmount                *float64 `json:"negotiationAmount,omitempty"`
	NegotiationQuantity              float64  `json:"negotiationQuantity"`
	PreviewAmount                    *float64 `json:"previewAmount,omitempty"`
	PreviewQuantity                  *float64 `json:"previewQuantity,omitempty"`
	NewAmount                        *float64 `json:"newAmount,omitempty"`
	Comment                          string   `json:"comment,omitempty"`
}

// ViewFor projects n for actor. Unknown actors get the customer projection.
func ViewFor(n *models.Negotiation, actor models.Actor) NegotiationView {
	d := n.Details
	v := NegotiationView{
		ID:             n.ID,
		NegID:          n.NegID,
		Status:         n.Status,
		Version:        n.Version,
		ProductDetails: n.ProductDetails,
		RequestInfo:    n.RequestInfo,
		RejectReason:   n.RejectReason,
		UpdatedAt:      n.UpdatedAt,
		Details: DetailsView{
			NegotiationQuantity: d.NegotiationQuantity,
			PreviewQuantity:     d.PreviewQuantity,
		},
	}
	switch actor {
	case models.ActorAdmin:
		c := n.Commission
		v.SellerEmail = n.SellerEmail
		v.CustomerEmail = n.CustomerEmail
		v.Commission = &c
		v.Comments = n.Comments
		v.Details.CustomerOfferPriceWithCommission = ptr(d.CustomerOfferPriceWithCommission)
		v.Details.NegotiationAmount = ptr(d.NegotiationAmount)
		v.Details.PreviewAmount = d.PreviewAmount
		v.Details.NewAmount = d.NewAmount
		v.Details.Comment = d.Comment
	case models.ActorSeller:
		v.SellerEmail = n.SellerEmail
		v.Comments = models.RoleComments{Seller: n.Comments.Seller, Admin: n.Comments.Admin}
		if !customerTrack(n.Status) {
			v.Details.NegotiationAmount = ptr(d.NegotiationAmount)
			v.Details.PreviewAmount = d.PreviewAmount
		}
	default:
		v.Comments = models.RoleComments{Admin: n.Comments.Admin, Customer: n.Comments.Customer}
		v.Details.CustomerOfferPriceWithCommission = ptr(d.CustomerOfferPriceWithCommission)
		v.Details.NewAmount = d.NewAmount
	}
	return v
}

// QuotationView is what one party may see of a quotation.
type QuotationView struct {
	ID            uint                 `json:"id"`
	RequirementID string               `json:"requirementId"`
	ProductName   string               `json:"productName"`
	AverageQty    float64              `json:"averageQty"`
	Specification string               `json:"specification,omitempty"`
	Measurement   string               `json:"measurement,omitempty"`
	CustomerEmail string               `json:"customerEmail,omitempty"`
	Status        string               `json:"status"`
	Entries       []QuotationEntryView `json:"selectedCompanies"`
	Summary       QuotationSummary     `json:"summary"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// QuotationEntryView is one seller entry. Email and Amount are omitted for parties
// that may not see them.
type QuotationEntryView struct {
	Email       string               `json:"email,omitempty"`
	Amount      *float64             `json:"amount,omitempty"`
	Status      models.CompanyStatus `json:"status"`
	Description string               `json:"description,omitempty"`
}

// QuotationSummary counts entries per status over the whole quotation.
type QuotationSummary struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	Quoted      int `json:"quoted"`
	Negotiating int `json:"negotiating"`
	Accepted    int `json:"accepted"`
	Rejected    int `json:"rejected"`
}

// QuotationViewFor projects q for actor. Admins see every entry in full, a seller sees
// only the entry keyed by email, and anyone else sees entries without seller identity
// or asks. The summary always covers every entry.
func QuotationViewFor(q *models.Quotation, actor models.Actor, email string) QuotationView {
	v := QuotationView{
		ID:            q.ID,
		RequirementID: q.RequirementID,
		ProductName:   q.ProductName,
		AverageQty:    q.AverageQty,
		Specification: q.Specification,
		Measurement:   q.Measurement,
		Status:        DeriveStatus(q),
		Entries:       []QuotationEntryView{},
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
	email = normalizeEmail(email)
	for _, c := range q.SelectedCompanies {
		v.Summary.add(c.Status)
		switch actor {
		case models.ActorAdmin:
			v.Entries = append(v.Entries, QuotationEntryView{Email: c.Email, Amount: c.Amount, Status: c.Status, Description: c.Description})
		case models.ActorSeller:
			if c.Email == email {
				v.Entries = append(v.Entries, QuotationEntryView{Email: c.Email, Amount: c.Amount, Status: c.Status, Description: c.Description})
			}
		default:
			v.Entries = append(v.Entries, QuotationEntryView{Status: c.Status})
		}
	}
	if actor != models.ActorSeller {
		v.CustomerEmail = q.CustomerEmail
	}
	return v
}

func (s *QuotationSummary) add(status models.CompanyStatus) {
	s.Total++
	switch status {
	case models.CompanyPending:
		s.Pending++
	case models.CompanyQuoted:
		s.Quoted++
	case models.CompanyNegotiating:
		s.Negotiating++
	case models.CompanyAccepted:
		s.Accepted++
	case models.CompanyRejected:
		s.Rejected++
	}
}

// customerTrack reports whether amounts in s may be customer counter-offers.
func customerTrack(s models.NegotiationStatus) bool {
	switch s {
	case models.StatusCustomerResponded, models.StatusAdminCustomerCounterOffer:
		return true
	}
	return false
}

func ptr[T any](v T) *T { return &v }
