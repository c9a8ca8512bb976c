package model

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RechargeStatusPending   = "pending"
	RechargeStatusCompleted = "completed"
	RechargeStatusFailed    = "failed"
	RechargeStatusCancelled = "cancelled"
)

// Every non-pending state is terminal. This is stricter than the historical
// behavior where a completed recharge could still be marked failed.
var validRechargeTransitions = map[string][]string{
	RechargeStatusPending: {RechargeStatusCompleted, RechargeStatusFailed, RechargeStatusCancelled},
}

func RechargeCanTransition(from, to string) bool {
	for _, s := range validRechargeTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

const (
	CurrencyUSD = "USD"
	CurrencyCDF = "CDF"
	CurrencyEUR = "EUR"
)

var Currencies = []string{CurrencyUSD, CurrencyCDF, CurrencyEUR}

func IsValidCurrency(currency string) bool {
	for _, c := range Currencies {
		if c == currency {
			return true
		}
	}
	return false
}

const (
	PaymentMethodMobileMoney  = "mobile_money"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
)

// PhonePattern accepts DRC numbers only: 243 followed by 9 digits.
var PhonePattern = regexp.MustCompile(`^243[0-9]{9}$`)

// Recharge is a wallet top-up request with its own lifecycle, independent of
// the transaction ledger. TransactionID holds the external payment provider's
// reference once the callback confirms the top-up.
type Recharge struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber   string          `gorm:"type:varchar(16);uniqueIndex;not null" json:"order_number"`
	Phone         string          `gorm:"type:varchar(20);not null;index" json:"phone"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3);not null;default:USD" json:"currency"`
	Description   string          `gorm:"type:varchar(500);not null" json:"description"`
	Status        string          `gorm:"type:varchar(20);not null;default:pending;index" json:"status"`
	EtudiantID    *uint           `gorm:"index" json:"etudiant_id,omitempty"`
	Etudiant      *Etudiant       `gorm:"foreignKey:EtudiantID" json:"etudiant,omitempty"`
	TransactionID string          `gorm:"type:varchar(64)" json:"transaction_id,omitempty"`
	PaymentMethod string          `gorm:"type:varchar(20);default:mobile_money" json:"payment_method"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Recharge) TableName() string {
	return "recharge"
}

// RechargeStats is one row of the per-status aggregate.
type RechargeStats struct {
	Status      string          `json:"status"`
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
