package model

import (
	"errors"
	"strings"
	"time"
)

// Application statuses. Approved and rejected are terminal; returned is a
// remediation state that currently has no outbound transition.
const (
	StatusDraft    = "draft"
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusReturned = "returned"
	StatusRejected = "rejected"
)

// ApplicationModel is a financing application submitted by a branch user.
type ApplicationModel struct {
	ID                 string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	ApplicationNumber  string     `gorm:"type:varchar(32);not null;uniqueIndex" json:"application_number"`
	CustomerName       string     `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerID         *string    `gorm:"type:varchar(64)" json:"customer_id"`
	PhoneNumber        string     `gorm:"type:varchar(32);not null" json:"phone_number"`
	ProductID          string     `gorm:"type:varchar(64);not null;index" json:"product_id"`
	BranchID           string     `gorm:"type:varchar(64);not null;index" json:"branch_id"`
	Status             string     `gorm:"type:varchar(32);not null;index" json:"status"`
	ApplicationAmount  float64    `gorm:"type:decimal(14,2);not null" json:"application_amount"`
	InterestRate       *float64   `gorm:"type:decimal(6,2)" json:"interest_rate"`
	TenureMonths       *int       `gorm:"type:int" json:"tenure_months"`
	MonthlyInstallment *float64   `gorm:"type:decimal(14,2)" json:"monthly_installment"`
	Remarks            *string    `gorm:"type:text" json:"remarks"`
	SubmittedBy        string     `gorm:"type:varchar(64);not null;index" json:"submitted_by"`
	SubmittedAt        time.Time  `gorm:"not null;index" json:"submitted_at"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
	DecidedAt          *time.Time `gorm:"index" json:"decided_at"`
}

// TableName specifies the table name.
func (ApplicationModel) TableName() string {
	return "applications"
}

// IsTerminal reports whether the application can no longer be acted on.
func (am *ApplicationModel) IsTerminal() bool {
	return am.Status == StatusApproved || am.Status == StatusRejected
}

// Validate validates the application model.
func (am *ApplicationModel) Validate() error {
	if am.ID == "" {
		return errors.New("application ID is required")
	}
	if am.ApplicationNumber == "" {
		return errors.New("application number is required")
	}
	if strings.TrimSpace(am.CustomerName) == "" {
		return errors.New("customer name is required")
	}
	if strings.TrimSpace(am.PhoneNumber) == "" {
		return errors.New("phone number is required")
	}
	if am.ProductID == "" {
		return errors.New("product ID is required")
	}
	if am.BranchID == "" {
		return errors.New("branch ID is required")
	}
	if am.ApplicationAmount <= 0 {
		return errors.New("application amount must be positive")
	}
	if !ValidStatus(am.Status) {
		return errors.New("invalid application status")
	}
	if am.SubmittedBy == "" {
		return errors.New("submitting user is required")
	}
	return nil
}

// ValidStatus reports whether s is a known application status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusReturned, StatusRejected:
		return true
	}
	return false
}
