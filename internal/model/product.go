package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchasable catalog records. Each carries the reciprocal transaction_id
// back-reference that the linker sets when a ledger entry is created for it.
// The catalog itself is maintained elsewhere; the ledger only reads these
// rows and flips their back-reference.

// Parcours is an enrollment path, the product behind the Inscription type.
type Parcours struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Designation   string    `gorm:"type:varchar(120);not null" json:"designation"`
	PromotionID   uint      `gorm:"index" json:"promotion_id"`
	AnneeID       uint      `gorm:"index" json:"annee_id"`
	TransactionID *uint     `gorm:"index" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Parcours) TableName() string {
	return "parcours"
}

// Ressource is a paid course resource.
type Ressource struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Titre         string    `gorm:"type:varchar(120);not null" json:"titre"`
	URL           string    `gorm:"type:varchar(255)" json:"url,omitempty"`
	TransactionID *uint     `gorm:"index" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Ressource) TableName() string {
	return "ressource"
}

// Activity is a paid academic activity.
type Activity struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Titre         string    `gorm:"type:varchar(120);not null" json:"titre"`
	TransactionID *uint     `gorm:"index" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Activity) TableName() string {
	return "activity"
}

// Recours is a grade-appeal request.
type Recours struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Objet         string    `gorm:"type:varchar(255);not null" json:"objet"`
	TransactionID *uint     `gorm:"index" json:"transaction_id,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Recours) TableName() string {
	return "recours"
}

const (
	CommandeStatutEnCours = "En cours"
	CommandeStatutTermine = "Terminé"
	CommandeStatutAnnule  = "Annulé"
)

// Commande is a student document order (bulletin printout and the like), the
// product behind the Bulletin type.
type Commande struct {
	ID            uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	EtudiantID    uint            `gorm:"not null;index" json:"etudiant_id"`
	PromotionID   uint            `gorm:"index" json:"promotion_id"`
	AnneeID       uint            `gorm:"index" json:"annee_id"`
	Produit       string          `gorm:"type:varchar(120)" json:"produit"`
	Montant       decimal.Decimal `gorm:"type:decimal(12,2)" json:"montant"`
	Statut        string          `gorm:"type:varchar(20);default:'En cours'" json:"statut"`
	TransactionID *uint           `gorm:"index" json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Commande) TableName() string {
	return "commande"
}
