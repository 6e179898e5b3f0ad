package domain

import "time"

const (
	RoleAdmin      = "admin"
	RoleBackOffice = "BackOffice"
)

// Actor the authenticated caller of a mutation.
type Actor struct {
	UserID int64
	Email  string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// User a row of the user table.
type User struct {
	ID    int64  `json:"id"`
	Nick  string `json:"nick"`
	Papel string `json:"papel"`
	Ativo bool   `json:"ativo"`
}

// Audit operations
const (
	AuditCreate     = "CREATE"
	AuditUpdate     = "UPDATE"
	AuditDelete     = "DELETE"
	AuditEncaminhar = "ENCAMINHAR"
	AuditMarcar     = "MARCAR"
)

// AuditRetentionMonths how long audit entries are kept.
const AuditRetentionMonths = 14

// AuditEntry one mutation applied to a record.
type AuditEntry struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	UserEmail string    `json:"userEmail"`
	IDPrinc   int64     `json:"idPrinc"`
	Operation string    `json:"operation"`
	Field     string    `json:"field,omitempty"`
	Previous  string    `json:"previous,omitempty"`
	Next      string    `json:"next,omitempty"`
	At        time.Time `json:"at"`
	ExpiresAt time.Time `json:"expiresAt"`
}
