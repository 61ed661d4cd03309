// File: internal/dtos/presence.go
package dtos

import "time"

// OnlineStatus is the presence payload broadcast when a user transitions
// between online and offline, and returned by the status API.
type OnlineStatus struct {
	UserID   uint       `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}
