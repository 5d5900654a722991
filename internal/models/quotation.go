package models

import (
	"time"

	"gorm.io/gorm"
)

// CompanyStatus is the per-seller status inside a Quotation.
type CompanyStatus string

const (
	CompanyPending     CompanyStatus = "pending"
	CompanyQuoted      CompanyStatus = "quoted"
	CompanyNegotiating CompanyStatus = "negotiating"
	CompanyAccepted    CompanyStatus = "accepted"
	CompanyRejected    CompanyStatus = "rejected"
)

func (s CompanyStatus) IsTerminal() bool {
	return s == CompanyAccepted || s == CompanyRejected
}

// Aggregate quotation statuses.
const (
	QuotationPending  = "pending"
	QuotationResolved = "resolved"
)

// Quotation aggregates every seller ask for one buyer requirement.
type Quotation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	RequirementID string  `gorm:"size:100;uniqueIndex;not null" json:"requirementId"`
	ProductName   string  `gorm:"size:255;not null" json:"productName"`
	AverageQty    float64 `json:"averageQty"`
	Specification string  `gorm:"type:text" json:"specification,omitempty"`
	Measurement   string  `gorm:"size:50" json:"measurement,omitempty"`
	// CustomerEmail is the buyer who posted the requirement.
	CustomerEmail string `gorm:"size:255;index" json:"customerEmail,omitempty"`

	SelectedCompanies []SelectedCompany `gorm:"foreignKey:QuotationID" json:"selectedCompanies"`

	// Status is derived from SelectedCompanies on every read and never persisted.
	Status string `gorm:"-" json:"status"`
}

// SelectedCompany is one seller's entry in a Quotation.
type SelectedCompany struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	QuotationID uint          `gorm:"not null;uniqueIndex:idx_quotation_email,priority:1" json:"-"`
	Email       string        `gorm:"size:255;not null;uniqueIndex:idx_quotation_email,priority:2" json:"email"`
	Amount      *float64      `json:"amount"`
	Status      CompanyStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Description string        `gorm:"type:text" json:"description,omitempty"`
	Position    int           `gorm:"not null;default:0" json:"-"`
}

func (q *Quotation) BuyerEmail() string { return q.CustomerEmail }

// Entry returns the entry for email, or nil.
func (q *Quotation) Entry(email string) *SelectedCompany {
	for i := range q.SelectedCompanies {
		if q.SelectedCompanies[i].Email == email {
			return &q.SelectedCompanies[i]
		}
	}
	return nil
}
