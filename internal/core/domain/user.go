package domain

// User represents a person who can log in, submit expenses and act on approvals.
type User struct {
	UserID       string `json:"userID"` // Primary Key (UUID)
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // bcrypt hash, never serialized
	IsDeleted    bool   `json:"isDeleted"`
	AuditFields
}
