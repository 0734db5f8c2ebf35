// Package models defines the domain types exchanged with the trading
// backend and the market data provider.
package models

import "time"

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the account creation payload.
type SignupRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	BirthDate    string `json:"birthDate"`    // YYYY-MM-DD
	MobileNumber string `json:"mobileNumber"`
}

// LoginResponse carries the bearer token issued by the backend.
type LoginResponse struct {
	Token string `json:"token"`
}

// StoredSession is the locally persisted session state.
type StoredSession struct {
	Token    string    `json:"token"`
	Email    string    `json:"email"`
	DeviceID string    `json:"deviceId"` // stable per install, generated on first save
	SavedAt  time.Time `json:"savedAt"`
}
