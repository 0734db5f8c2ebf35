package models

import "time"

// TwoFAStatus is the user's two-factor enrollment state.
type TwoFAStatus struct {
	Enabled bool `json:"enabled"`
}

// TwoFASetup carries the provisioning QR URL returned when enabling 2FA.
type TwoFASetup struct {
	QRCodeURL string `json:"qrCodeUrl"`
}

// TwoFAVerifyResult is the verification outcome for a submitted code.
type TwoFAVerifyResult struct {
	Verified bool `json:"verified"`
}

// ActivityEntry is one row of the user's recent account activity.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Device    string    `json:"device"`
	Status    string    `json:"status"` // "Success" or "Failed"
}

// ActiveSession is one authenticated device session.
type ActiveSession struct {
	ID         string    `json:"id"`
	Device     string    `json:"device"`
	IP         string    `json:"ip"`
	LastActive time.Time `json:"lastActive"`
}

// SecuritySettings bundles everything the security view polls.
type SecuritySettings struct {
	TwoFAEnabled   bool            `json:"twoFAEnabled"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
	ActiveSessions []ActiveSession `json:"activeSessions"`
}

// ChangePasswordRequest updates the account password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// SettingsUpdate is a partial settings change (phone, privacy).
type SettingsUpdate struct {
	Phone   string `json:"phone,omitempty"`
	Privacy string `json:"privacy,omitempty"`
}

// IPOBid is one live IPO listing from the bids endpoint.
type IPOBid struct {
	ID        string    `json:"_id"`
	Company   string    `json:"company"`
	Symbol    string    `json:"symbol"`
	PriceLow  float64   `json:"priceLow"`
	PriceHigh float64   `json:"priceHigh"`
	OpenDate  time.Time `json:"openDate"`
	CloseDate time.Time `json:"closeDate"`
}

// SupportTicket is a contact/support submission.
type SupportTicket struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
	Email   string `json:"email,omitempty"`
}
