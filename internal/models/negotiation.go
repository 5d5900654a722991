package models

import (
	"time"

	"gorm.io/gorm"
)

// NegotiationStatus is the state-machine discriminator of a Negotiation.
type NegotiationStatus string

const (
	StatusAdminPending              NegotiationStatus = "admin_pending"
	StatusSellerEmail               NegotiationStatus = "seller_email"
	StatusAdminCounterOffer         NegotiationStatus = "admin_counter_offer"
	StatusSellerPending             NegotiationStatus = "seller_pending"
	StatusAdminResponded            NegotiationStatus = "admin_responded"
	StatusSellerCounterOffer        NegotiationStatus = "seller_counter_offer"
	StatusAdminToCustomerPending    NegotiationStatus = "admin_to_customer_pending"
	StatusCustomerResponded         NegotiationStatus = "customer_responded"
	StatusAdminCustomerCounterOffer NegotiationStatus = "admin_customer_counter_offer"
	StatusAccepted                  NegotiationStatus = "accepted"
	StatusRejected                  NegotiationStatus = "rejected"
)

// IsTerminal reports whether no further transition is permitted.
func (s NegotiationStatus) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Actor is a party allowed to drive a negotiation.
type Actor string

const (
	ActorAdmin    Actor = "admin"
	ActorSeller   Actor = "seller"
	ActorCustomer Actor = "customer"
)

func (a Actor) Valid() bool {
	return a == ActorAdmin || a == ActorSeller || a == ActorCustomer
}

// CommissionMode selects how the markup is applied to a seller amount.
type CommissionMode string

const (
	CommissionPercentage CommissionMode = "percentage"
	CommissionFlat       CommissionMode = "flat"
)

// Commission is fixed when the negotiation is created.
type Commission struct {
	Mode  CommissionMode `gorm:"size:20;not null;default:'percentage'" json:"mode"`
	Value float64        `gorm:"not null;default:0" json:"value"`
}

// ProductDetails describes the product being bargained over. Immutable.
type ProductDetails struct {
	ProductName string  `gorm:"size:255;not null" json:"productName" validate:"required"`
	ProductID   string  `gorm:"size:100;not null;uniqueIndex:idx_neg_triple,priority:3" json:"productId" validate:"required"`
	HSNCode     string  `gorm:"size:50" json:"hsnCode,omitempty"`
	Measurement string  `gorm:"size:50" json:"measurement,omitempty"`
	GST         float64 `json:"gst"`
}

// RequestInfo links the negotiation to the buyer requirement. Immutable.
type RequestInfo struct {
	RequestID        string    `gorm:"size:100;not null;uniqueIndex:idx_neg_triple,priority:2" json:"requestId" validate:"required"`
	RequestCreatedAt time.Time `json:"createdAt"`
}

// NegotiationDetails is the mutable bargaining block. Preview* hold the proposal that
// was active immediately before the current one.
type NegotiationDetails struct {
	CustomerOfferPriceWithCommission float64  `json:"customerOfferPriceWithCommission"`
	NegotiationAmount                float64  `json:"negotiationAmount"`
	NegotiationQuantity              float64  `json:"negotiationQuantity"`
	PreviewAmount                    *float64 `json:"previewAmount"`
	PreviewQuantity                  *float64 `json:"previewQuantity"`
	NewAmount                        *float64 `json:"newAmount"`
	Comment                          string   `gorm:"type:text" json:"comment,omitempty"`
}

// RoleComments holds the latest note written by each party.
type RoleComments struct {
	Seller   string `gorm:"type:text" json:"seller,omitempty"`
	Admin    string `gorm:"type:text" json:"admin,omitempty"`
	Customer string `gorm:"type:text" json:"customer,omitempty"`
}

// Negotiation is the mediated bargaining record for one (seller, requirement, product).
type Negotiation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	NegID       string `gorm:"size:20;uniqueIndex;not null" json:"negId"`
	SellerEmail string `gorm:"size:255;not null;index;uniqueIndex:idx_neg_triple,priority:1" json:"sellerEmail"`
	// CustomerEmail is the buyer the negotiation is mediated for. Empty when an admin
	// opened it without a requirement owner.
	CustomerEmail string `gorm:"size:255;index" json:"customerEmail,omitempty"`

	ProductDetails ProductDetails     `gorm:"embedded;embeddedPrefix:product_" json:"productDetails"`
	RequestInfo    RequestInfo        `gorm:"embedded;embeddedPrefix:request_" json:"requestInfo"`
	Commission     Commission         `gorm:"embedded;embeddedPrefix:commission_" json:"commission"`
	Details        NegotiationDetails `gorm:"embedded;embeddedPrefix:details_" json:"negotiationDetails"`
	Comments       RoleComments       `gorm:"embedded;embeddedPrefix:comment_" json:"comments"`

	Status NegotiationStatus `gorm:"size:40;not null;index" json:"status"`
	// Version increments on every committed transition; updates are conditional on it.
	Version      int    `gorm:"not null;default:1" json:"version"`
	RejectReason string `gorm:"size:500" json:"rejectReason,omitempty"`

	Revisions []NegotiationRevision `gorm:"foreignKey:NegotiationID" json:"-"`
}

// Set overwrites the slot owned by actor.
func (c *RoleComments) Set(actor Actor, text string) {
	switch actor {
	case ActorSeller:
		c.Seller = text
	case ActorAdmin:
		c.Admin = text
	case ActorCustomer:
		c.Customer = text
	}
}

// NegotiationRevision is one append-only entry of the proposal history.
type NegotiationRevision struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	NegotiationID uint              `gorm:"index;not null" json:"negotiation_id"`
	Actor         Actor             `gorm:"size:20;not null" json:"actor"`
	FromStatus    NegotiationStatus `gorm:"size:40;not null" json:"from_status"`
	ToStatus      NegotiationStatus `gorm:"size:40;not null" json:"to_status"`
	Amount        float64           `json:"amount"`
	Quantity      float64           `json:"quantity"`
	Comment       string            `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// OwnerEmail is the seller the negotiation belongs to.
func (n *Negotiation) OwnerEmail() string { return n.SellerEmail }

func (n *Negotiation) BuyerEmail() string { return n.CustomerEmail }
