package schema

import (
	"encoding/json"
	"time"
)

// ResetNotice is the payload published when an account requests a password
// reset. The token travels only between the API and the notifier worker and
// must never be logged.
type ResetNotice struct {
	UserID      int64
	Email       string
	Token       string
	RequestedAt time.Time
}

func (n *ResetNotice) Marshal() ([]byte, error) {
	return json.Marshal(n)
}

func (n *ResetNotice) Unmarshal(data []byte) error {
	return json.Unmarshal(data, n)
}
