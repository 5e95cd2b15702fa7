package entities

import "time"

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a user-visible alert produced by core operations or by
// external actors through the API.
type Notification struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"userId"`
	Kind      string    `json:"kind" bson:"kind"`
	Message   string    `json:"message" bson:"message"`
	Severity  Severity  `json:"severity" bson:"severity"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	IsRead    bool      `json:"isRead" bson:"isRead"`
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return true
	}
	return false
}
