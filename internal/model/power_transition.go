package model

import "time"

// PowerTransition is one persisted raw-state change of the receiver.
type PowerTransition struct {
	ID         int64     `gorm:"autoIncrement;primaryKey" json:"id"`
	Previous   string    `gorm:"size:16;not null" json:"previous"`
	Current    string    `gorm:"size:16;not null" json:"current"`
	PoweredOn  bool      `gorm:"not null" json:"poweredOn"`
	ObservedAt time.Time `gorm:"not null;index" json:"observedAt"`
}
