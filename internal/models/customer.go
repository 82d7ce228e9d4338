package models

// Customer is the read-only customer record owned by the ledger store
type Customer struct {
	ID          int64
	DisplayName *string
}

// Name returns the display name, or an empty string when the store has none
func (c Customer) Name() string {
	if c.DisplayName == nil {
		return ""
	}
	return *c.DisplayName
}
