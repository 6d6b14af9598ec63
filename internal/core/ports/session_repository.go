package ports

import "context"

// SessionRecord is the persisted session layout: five independent string
// entries written and cleared as a unit.
type SessionRecord struct {
	Token       string `json:"token"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// SessionRepository abstracts the local persistence medium for the session
// record. Implementations must write the whole record atomically; readers
// never observe a partially written record. Load returns ok=false when
// nothing is stored, and Clear is idempotent.
type SessionRepository interface {
	Save(ctx context.Context, rec SessionRecord) error
	Load(ctx context.Context) (rec SessionRecord, ok bool, err error)
	Clear(ctx context.Context) error
}
