package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Etudiant is a student account. The solde is the student's prepaid credit;
// it is only mutated by the subscription transfer or by administrative
// recharge flows, always through a version-guarded update.
type Etudiant struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Nom       string          `gorm:"type:varchar(60);not null" json:"nom"`
	PostNom   string          `gorm:"type:varchar(60)" json:"post_nom"`
	Prenom    string          `gorm:"type:varchar(60)" json:"prenom"`
	Matricule string          `gorm:"type:varchar(60);uniqueIndex" json:"matricule"`
	Telephone string          `gorm:"type:varchar(20)" json:"telephone,omitempty"`
	Solde     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"solde"`
	Version   int             `gorm:"not null;default:0" json:"-"` // optimistic lock
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Etudiant) TableName() string {
	return "etudiant"
}

// Agent is a staff account and the payee side of a subscription transfer.
type Agent struct {
	ID        uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Nom       string          `gorm:"type:varchar(60);not null" json:"nom"`
	PostNom   string          `gorm:"type:varchar(60)" json:"post_nom"`
	Prenom    string          `gorm:"type:varchar(60)" json:"prenom"`
	Matricule string          `gorm:"type:varchar(60);uniqueIndex" json:"matricule"`
	Email     string          `gorm:"type:varchar(120)" json:"email,omitempty"`
	Solde     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"solde"`
	Version   int             `gorm:"not null;default:0" json:"-"` // optimistic lock
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Agent) TableName() string {
	return "agent"
}
