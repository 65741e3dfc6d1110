package export

import (
	"encoding/json"
	"fmt"
	"time"

	"gitlab.com/yelinaung/finance-tracker/internal/localstore"
)

// securityLogLimit bounds the stored security log.
const securityLogLimit = 200

// SecurityEvent is one entry in the account security log.
type SecurityEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	Detail    string    `json:"detail,omitempty"`
}

// SecurityLog records account-level events (exports, restores, settings
// changes) in the local store.
type SecurityLog struct {
	local  *localstore.Store
	userID string
}

// NewSecurityLog returns the security log for a user.
func NewSecurityLog(local *localstore.Store, userID string) *SecurityLog {
	return &SecurityLog{local: local, userID: userID}
}

func (l *SecurityLog) key() string {
	return localstore.Key(localstore.EntitySecurityLog, l.userID)
}

// Append records one event, pruning the oldest entries past the limit.
func (l *SecurityLog) Append(event, detail string) error {
	var entries []SecurityEvent
	if _, err := l.local.Get(l.key(), &entries); err != nil {
		return err
	}

	entries = append([]SecurityEvent{{
		Timestamp: time.Now(),
		Event:     event,
		Detail:    detail,
	}}, entries...)
	if len(entries) > securityLogLimit {
		entries = entries[:securityLogLimit]
	}
	return l.local.Put(l.key(), entries)
}

// Entries returns the stored events, newest first.
func (l *SecurityLog) Entries() ([]SecurityEvent, error) {
	var entries []SecurityEvent
	if _, err := l.local.Get(l.key(), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Export renders the log as a pretty-printed JSON array.
func (l *SecurityLog) Export() ([]byte, error) {
	entries, err := l.Entries()
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []SecurityEvent{}
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode security log: %w", err)
	}
	return raw, nil
}

// SecurityLogFilename returns the download name for a security log export.
func SecurityLogFilename(now time.Time) string {
	return fmt.Sprintf("security_logs_%s.json", now.Format("2006-01-02"))
}
