package event

// SessionDestination carries every 2FA session transition. Messages are keyed
// by user id so a partitioned broker keeps one user's events in order.
const SessionDestination string = "twofa_session"

type SessionMessage struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	UserID     string `json:"user_id"`
	DeviceID   string `json:"device_id"`
	State      string `json:"state"`
	OccurredAt int64  `json:"occurred_at"`
}
