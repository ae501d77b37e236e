package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// The service fronts a single receiver, so a subscription covers every
// power change; there is no per-device mapping.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}
