package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Depense is a withdrawal request filed by an agent against an academic year
// and a service line. Its status is a plain record field mutated by later
// administrative updates; the agent's solde is not touched by this component.
type Depense struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	AgentID     uint            `gorm:"not null;index" json:"agent_id"`
	Agent       *Agent          `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	AnneeID     uint            `gorm:"not null;index" json:"annee_id"`
	Service     string          `gorm:"type:varchar(120);not null" json:"service"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status      string          `gorm:"type:varchar(20);not null;default:Pending" json:"status"`
	OrderNumber string          `gorm:"type:varchar(16);uniqueIndex;not null" json:"order_number"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Depense) TableName() string {
	return "depense"
}
