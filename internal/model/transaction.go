package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
	StatusFailed    = "Failed"
)

// Completed is terminal: a completed transaction can never be mutated or
// deleted again.
var validTransactionTransitions = map[string][]string{
	StatusPending: {StatusCompleted, StatusFailed},
	StatusFailed:  {StatusPending, StatusCompleted},
}

func TransactionCanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, s := range validTransactionTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Product categories a transaction can charge for. Document, Enrollement and
// Modalite are accepted values without a mapped catalog collection yet; the
// linker skips them.
const (
	ProductTypeInscription = "Inscription"
	ProductTypeRessource   = "Ressource"
	ProductTypeActivity    = "Activity"
	ProductTypeRecours     = "Recours"
	ProductTypeBulletin    = "Bulletin"
	ProductTypeDocument    = "Document"
	ProductTypeEnrollement = "Enrollement"
	ProductTypeModalite    = "Modalite"
)

var ProductTypes = []string{
	ProductTypeInscription,
	ProductTypeRessource,
	ProductTypeActivity,
	ProductTypeRecours,
	ProductTypeBulletin,
	ProductTypeDocument,
	ProductTypeEnrollement,
	ProductTypeModalite,
}

func IsValidProductType(productType string) bool {
	for _, t := range ProductTypes {
		if t == productType {
			return true
		}
	}
	return false
}

// Transaction is one ledger entry: an amount payable for a product, the agent
// collecting it, and the students who have paid into it.
type Transaction struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	AgentID       *uint           `gorm:"index" json:"agent_id,omitempty"`
	Agent         *Agent          `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	ProductType   string          `gorm:"type:varchar(32);not null;index" json:"product_type"`
	Status        string          `gorm:"type:varchar(20);not null;default:Pending;index" json:"status"`
	Subscriptions []Subscription  `gorm:"foreignKey:TransactionID" json:"subscriptions"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Transaction) TableName() string {
	return "transaction"
}

// FindSubscription returns the subscription entry for a student, if any.
func (t *Transaction) FindSubscription(etudiantID uint) *Subscription {
	for i := range t.Subscriptions {
		if t.Subscriptions[i].EtudiantID == etudiantID {
			return &t.Subscriptions[i]
		}
	}
	return nil
}

// Subscription is the immutable audit record of one balance transfer into a
// transaction. The unique index on (transaction_id, etudiant_id) is what
// guarantees a student can never pay twice, even under concurrent requests.
type Subscription struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID uint            `gorm:"not null;uniqueIndex:uniq_transaction_etudiant" json:"transaction_id"`
	EtudiantID    uint            `gorm:"not null;uniqueIndex:uniq_transaction_etudiant" json:"etudiant_id"`
	Etudiant      *Etudiant       `gorm:"foreignKey:EtudiantID" json:"etudiant,omitempty"`
	LastSolde     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"last_solde"`
	NewSolde      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"new_solde"`
	SubscribedAt  time.Time       `gorm:"not null" json:"subscribed_at"`
}

func (Subscription) TableName() string {
	return "transaction_subscription"
}
