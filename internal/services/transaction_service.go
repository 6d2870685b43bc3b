package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// ErrUnstorable is returned when a transaction would not read back as
// written, e.g. a description holding exactly four commas would be split by
// the comma format on load.
var ErrUnstorable = errors.New("transaction cannot be stored unambiguously")

// Appender persists one transaction.
type Appender interface {
	Append(ctx context.Context, tx core.Transaction) error
}

// EventPublisher announces a recorded transaction.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error
}

// TransactionService orchestrates the write path across the ledger store and
// AMQP.
type TransactionService struct {
	store     Appender
	publisher EventPublisher
}

// NewTransactionService wires the service. publisher may be nil.
func NewTransactionService(store Appender, publisher EventPublisher) *TransactionService {
	return &TransactionService{
		store:     store,
		publisher: publisher,
	}
}

// Record validates tx, appends it to the store and publishes an event. The
// returned transaction is what a later load will read back.
func (s *TransactionService) Record(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.Category = strings.TrimSpace(tx.Category)
	tx.Description = strings.TrimSpace(tx.Description)
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	stored, ok := ledger.Decode(strings.TrimSuffix(ledger.Encode(tx), "\n"))
	if !ok || stored.Kind != tx.Kind || stored.Amount != tx.Amount || !stored.Date.Equal(tx.Date.Time) {
		return core.Transaction{}, ErrUnstorable
	}

	// The ledger file is the source of truth; write it first.
	if err := s.store.Append(ctx, stored); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping event")
		return stored, nil
	}
	if err := s.publisher.PublishTransactionRecorded(ctx, stored); err != nil {
		// Don't fail the request - the transaction is already stored
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"date", stored.Date.String(),
			"kind", string(stored.Kind),
			"error", err)
	}
	return stored, nil
}

// ParseAmount converts a user-typed major-unit amount to Money.
func ParseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// NewTransaction builds a transaction from user input. An empty date means
// today; today is supplied by the caller.
func NewTransaction(kind core.Kind, date, category, description, amount string, today core.Date) (core.Transaction, error) {
	tx := core.Transaction{
		Date:        today,
		Kind:        kind,
		Category:    category,
		Description: description,
	}
	if strings.TrimSpace(date) != "" {
		d, err := core.ParseDate(date)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.Date = d
	}
	m, err := ParseAmount(amount)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Amount = m
	return tx, nil
}
