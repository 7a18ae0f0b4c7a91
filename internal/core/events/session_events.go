package events

import (
	"time"

	"github.com/google/uuid"
)

// Session lifecycle event types. The audit recorder subscribes to these so
// that login/logout bookkeeping never sits on the request path.
const (
	EventTypeSessionLogin  = "session.login"
	EventTypeSessionLogout = "session.logout"
)

type SessionEvent struct {
	BaseEvent
	AccountID int64  `json:"account_id"`
	Email     string `json:"email"`
}

func NewLoginEvent(accountID int64, email, ipAddress, deviceInfo string) SessionEvent {
	return SessionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeSessionLogin,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"ip_address":  ipAddress,
				"device_info": deviceInfo,
			},
		},
		AccountID: accountID,
		Email:     email,
	}
}

func NewLogoutEvent(accountID int64, email string) SessionEvent {
	return SessionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypeSessionLogout,
			Timestamp: time.Now(),
			Data:      map[string]interface{}{"reason": "manual logout"},
		},
		AccountID: accountID,
		Email:     email,
	}
}
