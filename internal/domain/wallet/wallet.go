package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lifehubapp/lifehub/internal/record"
)

// Collection is the document collection transactions persist to.
const Collection = "wallet_transactions"

// ErrInvalidTransaction indicates malformed transaction input, rejected
// before any write.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Kind classifies a transaction.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Transaction is one wallet entry.
type Transaction struct {
	record.Meta
	Amount     float64   `json:"amount"`
	Kind       Kind      `json:"kind"`
	Category   string    `json:"category"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Gateway is the slice of the persistence gateway this service uses.
type Gateway interface {
	List(ctx context.Context, collection string, out any) error
	SaveOrCreate(ctx context.Context, collection string, e record.Entity) (string, bool, error)
	Delete(ctx context.Context, collection, id string) error
}

// Service maintains one owner's transactions.
type Service struct {
	gw     Gateway
	logger *slog.Logger

	mu           sync.Mutex
	transactions []Transaction
}

// NewService creates a wallet service.
func NewService(gw Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{gw: gw, logger: logger}
}

// Reload discards the cache and loads the given owner's transactions.
func (s *Service) Reload(ctx context.Context, ownerID string) error {
	var loaded []Transaction
	if err := s.gw.List(ctx, Collection, &loaded); err != nil {
		return fmt.Errorf("reloading transactions: %w", err)
	}

	s.mu.Lock()
	s.transactions = loaded
	s.mu.Unlock()

	s.logger.Debug("transactions reloaded", "owner", ownerID, "count", len(loaded))
	return nil
}

// Transactions returns the cached entries, most recent first.
func (s *Service) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Add records a transaction. Amount must be positive; the kind carries
// the sign.
func (s *Service) Add(ctx context.Context, amount float64, kind Kind, category, note string, occurredAt time.Time) (*Transaction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidTransaction)
	}
	if kind != KindIncome && kind != KindExpense {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidTransaction, kind)
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	tx := &Transaction{
		Amount:     amount,
		Kind:       kind,
		Category:   category,
		Note:       note,
		OccurredAt: occurredAt,
	}
	if _, _, err := s.gw.SaveOrCreate(ctx, Collection, tx); err != nil {
		return nil, fmt.Errorf("saving transaction: %w", err)
	}

	s.mu.Lock()
	s.transactions = append([]Transaction{*tx}, s.transactions...)
	s.mu.Unlock()
	return tx, nil
}

// Delete removes a transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.gw.Delete(ctx, Collection, id); err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	s.mu.Lock()
	for i, tx := range s.transactions {
		if tx.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

// Balance sums income minus expenses over the cached entries.
func (s *Service) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var balance float64
	for _, tx := range s.transactions {
		switch tx.Kind {
		case KindIncome:
			balance += tx.Amount
		case KindExpense:
			balance -= tx.Amount
		}
	}
	return balance
}

// SpendingByCategory totals expenses per category.
func (s *Service) SpendingByCategory() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	totals := make(map[string]float64)
	for _, tx := range s.transactions {
		if tx.Kind == KindExpense {
			totals[tx.Category] += tx.Amount
		}
	}
	return totals
}
