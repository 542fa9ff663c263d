// Package models holds the records that flow through the pipeline, from the
// raw queue message to the persisted row.
package models

import "time"

// RawMessage is a message as received from the queue. AckToken is opaque and
// owned by the queue service; it is required to delete the message.
type RawMessage struct {
	ID       string
	Body     string
	AckToken string
}

// LoginEvent is the decoded body of a message that passed validation.
type LoginEvent struct {
	UserID     string `json:"user_id"`
	DeviceType Field  `json:"device_type"`
	IP         Field  `json:"ip"`
	DeviceID   Field  `json:"device_id"`
	Locale     Field  `json:"locale"`
	AppVersion Field  `json:"app_version"`
}

// ValidatedMessage pairs a validated event with the token needed to
// acknowledge it.
type ValidatedMessage struct {
	MessageID string
	AckToken  string
	Body      string
	Event     LoginEvent
}

// MaskStatus says what happened to one PII field during masking.
type MaskStatus string

const (
	MaskStatusMasked MaskStatus = "masked"
	// MaskStatusAbsent: the source key was missing.
	MaskStatusAbsent MaskStatus = "absent"
	// MaskStatusNull: the source key was present with a null value.
	MaskStatusNull MaskStatus = "null"
	// MaskStatusFailed: encryption returned an error.
	MaskStatusFailed MaskStatus = "failed"
)

// MaskedRecord is a LoginEvent plus its masked PII. MaskedIP and
// MaskedDeviceID are nil unless the matching status is MaskStatusMasked;
// the statuses are not persisted.
type MaskedRecord struct {
	LoginEvent
	MaskedIP       *string
	MaskedDeviceID *string
	IPStatus       MaskStatus
	DeviceIDStatus MaskStatus
}

// PersistedRow is one row of user_logins.
type PersistedRow struct {
	UserID          string
	DeviceType      *string
	MaskedIP        *string
	MaskedDeviceID  *string
	Locale          *string
	AppVersionMajor *int
	CreateDate      time.Time
}
