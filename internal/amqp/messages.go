package amqp

import (
	"encoding/json"
	"time"

	"gastos/internal/core"

	"github.com/google/uuid"
)

// ExpenseRecordedMessage announces that one expense reached the ledger.
// It carries the full record so consumers never read the ledger back.
type ExpenseRecordedMessage struct {
	EventID       string    `json:"event_id"`
	RowRef        string    `json:"row_ref"`
	Date          string    `json:"fecha"`
	Category      string    `json:"categoria"`
	Amount        float64   `json:"cantidad"`
	PaymentMethod string    `json:"metodo_de_pago"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewExpenseRecordedMessage builds a message with a fresh event id.
func NewExpenseRecordedMessage(rowRef string, e core.Expense) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		EventID:       uuid.NewString(),
		RowRef:        rowRef,
		Date:          e.Date,
		Category:      e.Category,
		Amount:        e.Amount,
		PaymentMethod: e.PaymentMethod,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON creates a message from JSON bytes
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
