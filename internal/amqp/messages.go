package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Message types carried in the AMQP Type property.
const (
	TypePasswordReset    = "password_reset"
	TypeTransactionEvent = "transaction_event"
)

// Transaction event actions.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// PasswordResetMessage asks the out-of-process mailer to send reset
// instructions. It is only published for accounts that actually exist; the
// HTTP response never reveals that difference.
type PasswordResetMessage struct {
	MessageID string    `json:"message_id"`
	Email     string    `json:"email"`
	Nombre    string    `json:"nombre"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPasswordResetMessage(email, nombre string) *PasswordResetMessage {
	return &PasswordResetMessage{
		MessageID: uuid.NewString(),
		Email:     email,
		Nombre:    nombre,
		Timestamp: time.Now(),
	}
}

// TransactionEventMessage is the audit record published after a ledger
// write. Carries ids only; consumers fetch details if they need them.
type TransactionEventMessage struct {
	MessageID     string    `json:"message_id"`
	Action        string    `json:"action"`
	TransactionID int64     `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionEventMessage(action string, transactionID, userID int64) *TransactionEventMessage {
	return &TransactionEventMessage{
		MessageID:     uuid.NewString(),
		Action:        action,
		TransactionID: transactionID,
		UserID:        userID,
		Timestamp:     time.Now(),
	}
}

func (m *PasswordResetMessage) ToJSON() ([]byte, error)    { return json.Marshal(m) }
func (m *TransactionEventMessage) ToJSON() ([]byte, error) { return json.Marshal(m) }

func PasswordResetMessageFromJSON(data []byte) (*PasswordResetMessage, error) {
	var msg PasswordResetMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func TransactionEventMessageFromJSON(data []byte) (*TransactionEventMessage, error) {
	var msg TransactionEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
