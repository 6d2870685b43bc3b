package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// TransactionRecordedMessage announces one transaction appended to the
// ledger. It carries the full record so consumers never re-read the file to
// learn what changed.
type TransactionRecordedMessage struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Kind        string    `json:"kind"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewTransactionRecordedMessage creates a message with a fresh id.
func NewTransactionRecordedMessage(tx core.Transaction) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:          uuid.New(),
		Date:        tx.Date.String(),
		Kind:        string(tx.Kind),
		Category:    tx.Category,
		Description: tx.Description,
		AmountCents: tx.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

// Transaction rebuilds the announced transaction.
func (m *TransactionRecordedMessage) Transaction() (core.Transaction, error) {
	d, err := core.ParseDate(m.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:        d,
		Kind:        core.Kind(m.Kind),
		Category:    m.Category,
		Description: m.Description,
		Amount:      core.Money{Cents: m.AmountCents},
	}, nil
}

// ToJSON converts the message to JSON bytes
func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionRecordedMessageFromJSON decodes a message body.
func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
