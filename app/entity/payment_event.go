package entity

import "time"

type PaymentEvent struct {
	ID uint64

	PaymentID uint64

	EventType string

	OldStatus *PaymentStatus
	NewStatus PaymentStatus

	CreatedAt time.Time
}
