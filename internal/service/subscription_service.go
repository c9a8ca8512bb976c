package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/model"
	"github.com/gaida-lisongo/server-batis-nexus/internal/repository"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/apperrors"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/idgen"
)

// SubscriptionService performs the pay-to-enroll transfer: debit the student,
// append the audit entry, credit the payee agent. The three writes live or
// die together inside one database transaction.
//
// The duplicate-subscription and balance checks run twice: once up front for
// a fast rejection, and again inside the atomic scope against re-read state,
// with the unique (transaction_id, etudiant_id) index as the final backstop.
// A concurrent double-subscribe therefore aborts instead of double-charging.
type SubscriptionService struct {
	db              *gorm.DB
	cfg             *config.Config
	accountRepo     *repository.AccountRepository
	transactionRepo *repository.TransactionRepository
	outboxRepo      *repository.OutboxRepository
}

func NewSubscriptionService(db *gorm.DB, cfg *config.Config) *SubscriptionService {
	return &SubscriptionService{
		db:              db,
		cfg:             cfg,
		accountRepo:     repository.NewAccountRepository(db),
		transactionRepo: repository.NewTransactionRepository(db),
		outboxRepo:      repository.NewOutboxRepository(db),
	}
}

// SubscribeResult carries the new audit entry and the enriched transaction.
type SubscribeResult struct {
	Subscription *model.Subscription `json:"subscription"`
	Transaction  *model.Transaction  `json:"transaction"`
}

func (s *SubscriptionService) Subscribe(ctx context.Context, transactionID, etudiantID uint) (*SubscribeResult, error) {
	if transactionID == 0 || etudiantID == 0 {
		return nil, apperrors.NewValidation("transactionId and studentId are required")
	}

	etudiant, err := s.accountRepo.GetEtudiant(ctx, nil, etudiantID)
	if err != nil {
		return nil, mapAccountErr(err)
	}

	transaction, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return nil, apperrors.NewNotFound("Transaction")
		}
		return nil, apperrors.NewInternal(err)
	}

	// Fast-path rejections before opening the transfer scope.
	if transaction.FindSubscription(etudiantID) != nil {
		return nil, apperrors.NewConflict("Student is already subscribed to this transaction")
	}
	if etudiant.Solde.LessThan(transaction.Amount) {
		return nil, &apperrors.InsufficientFundsError{Current: etudiant.Solde, Required: transaction.Amount}
	}

	var subscription *model.Subscription

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Re-validate everything against state read in this scope; the
		// pre-checks above may already be stale.
		etudiant, err := s.accountRepo.GetEtudiant(ctx, tx, etudiantID)
		if err != nil {
			return err
		}
		transaction, err := s.transactionRepo.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}

		subscribed, err := s.transactionRepo.HasSubscription(ctx, tx, transactionID, etudiantID)
		if err != nil {
			return err
		}
		if subscribed {
			return repository.ErrDuplicateSubscription
		}

		lastSolde := etudiant.Solde
		if lastSolde.LessThan(transaction.Amount) {
			return &apperrors.InsufficientFundsError{Current: lastSolde, Required: transaction.Amount}
		}
		newSolde := lastSolde.Sub(transaction.Amount)

		if err := s.accountRepo.SetEtudiantSolde(ctx, tx, etudiantID, newSolde, etudiant.Version); err != nil {
			return err
		}

		subscription = &model.Subscription{
			TransactionID: transactionID,
			EtudiantID:    etudiantID,
			LastSolde:     lastSolde,
			NewSolde:      newSolde,
			SubscribedAt:  time.Now(),
		}
		if err := s.transactionRepo.CreateSubscription(ctx, tx, subscription); err != nil {
			return err
		}

		if transaction.AgentID != nil {
			agent, err := s.accountRepo.GetAgent(ctx, tx, *transaction.AgentID)
			if err != nil {
				return err
			}
			if err := s.accountRepo.SetAgentSolde(ctx, tx, agent.ID, agent.Solde.Add(transaction.Amount), agent.Version); err != nil {
				return err
			}
		}

		return s.writeEvent(ctx, tx, model.EventSubscriptionCompleted, transaction, subscription)
	})
	if err != nil {
		return nil, mapTransferErr(err)
	}

	enriched, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}

	log.Printf("[Subscription] student %d subscribed to transaction %d, solde %s -> %s",
		etudiantID, transactionID, subscription.LastSolde, subscription.NewSolde)

	return &SubscribeResult{Subscription: subscription, Transaction: enriched}, nil
}

// Unsubscribe reverses one transfer: the audit entry is removed, the student
// refunded and the payee agent debited, all in one atomic scope.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, transactionID, etudiantID uint) (*model.Transaction, error) {
	if transactionID == 0 || etudiantID == 0 {
		return nil, apperrors.NewValidation("transactionId and studentId are required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		transaction, err := s.transactionRepo.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}

		subscription, err := s.transactionRepo.GetSubscription(ctx, tx, transactionID, etudiantID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrSubscriptionNotFound
			}
			return err
		}

		etudiant, err := s.accountRepo.GetEtudiant(ctx, tx, etudiantID)
		if err != nil {
			return err
		}
		if err := s.accountRepo.SetEtudiantSolde(ctx, tx, etudiantID, etudiant.Solde.Add(transaction.Amount), etudiant.Version); err != nil {
			return err
		}

		if err := s.transactionRepo.DeleteSubscription(ctx, tx, transactionID, etudiantID); err != nil {
			return err
		}

		if transaction.AgentID != nil {
			agent, err := s.accountRepo.GetAgent(ctx, tx, *transaction.AgentID)
			if err != nil {
				return err
			}
			if err := s.accountRepo.SetAgentSolde(ctx, tx, agent.ID, agent.Solde.Sub(transaction.Amount), agent.Version); err != nil {
				return err
			}
		}

		return s.writeEvent(ctx, tx, model.EventSubscriptionReversed, transaction, subscription)
	})
	if err != nil {
		return nil, mapTransferErr(err)
	}

	log.Printf("[Subscription] student %d unsubscribed from transaction %d", etudiantID, transactionID)

	return s.transactionRepo.GetByID(ctx, transactionID)
}

func (s *SubscriptionService) writeEvent(ctx context.Context, tx *gorm.DB, topic string, transaction *model.Transaction, subscription *model.Subscription) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"transaction_id": transaction.ID,
		"etudiant_id":    subscription.EtudiantID,
		"amount":         transaction.Amount,
		"last_solde":     subscription.LastSolde,
		"new_solde":      subscription.NewSolde,
		"occurred_at":    time.Now().Format(time.RFC3339),
	})

	return s.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
		MessageKey: idgen.GenerateEventKey(),
		Topic:      topic,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	})
}

func mapAccountErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrEtudiantNotFound):
		return apperrors.NewNotFound("Student")
	case errors.Is(err, repository.ErrAgentNotFound):
		return apperrors.NewNotFound("Agent")
	default:
		return apperrors.NewInternal(err)
	}
}

// mapTransferErr translates failures escaping the atomic scope. By the time
// this runs every write inside the scope has been rolled back.
func mapTransferErr(err error) error {
	var fundsErr *apperrors.InsufficientFundsError
	switch {
	case errors.As(err, &fundsErr):
		return err
	case errors.Is(err, repository.ErrDuplicateSubscription):
		return apperrors.NewConflict("Student is already subscribed to this transaction")
	case errors.Is(err, repository.ErrSubscriptionNotFound):
		return apperrors.NewNotFound("Subscription")
	case errors.Is(err, repository.ErrTransactionNotFound):
		return apperrors.NewNotFound("Transaction")
	case errors.Is(err, repository.ErrEtudiantNotFound):
		return apperrors.NewNotFound("Student")
	case errors.Is(err, repository.ErrAgentNotFound):
		return apperrors.NewNotFound("Agent")
	case errors.Is(err, repository.ErrOptimisticLock):
		return apperrors.NewConflict("concurrent balance update, please retry")
	default:
		return apperrors.NewInternal(err)
	}
}
