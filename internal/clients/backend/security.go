package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bobmcallan/tradedesk/internal/models"
)

// TwoFAStatus reports whether two-factor auth is enabled.
func (c *Client) TwoFAStatus(ctx context.Context) (bool, error) {
	var status models.TwoFAStatus
	if err := c.get(ctx, "/api/user/2fa-status", &status); err != nil {
		return false, err
	}
	return status.Enabled, nil
}

// GenerateTwoFA starts 2FA enrollment and returns the provisioning QR URL.
func (c *Client) GenerateTwoFA(ctx context.Context) (string, error) {
	var setup models.TwoFASetup
	if err := c.post(ctx, "/api/2fa/generate", struct{}{}, &setup); err != nil {
		return "", err
	}
	return setup.QRCodeURL, nil
}

type twoFACode struct {
	Code string `json:"code"`
}

// VerifyTwoFA submits an enrollment code.
func (c *Client) VerifyTwoFA(ctx context.Context, code string) (bool, error) {
	if code == "" {
		return false, fmt.Errorf("verification code is required: %w", ErrValidation)
	}
	var result models.TwoFAVerifyResult
	if err := c.post(ctx, "/api/2fa/verify", &twoFACode{Code: code}, &result); err != nil {
		return false, err
	}
	return result.Verified, nil
}

// DisableTwoFA turns off two-factor auth.
func (c *Client) DisableTwoFA(ctx context.Context) error {
	return c.post(ctx, "/api/2fa/disable", struct{}{}, nil)
}

// RecentActivity retrieves recent account activity.
func (c *Client) RecentActivity(ctx context.Context) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	if err := c.get(ctx, "/api/user/recent-activity", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ActiveSessions retrieves active device sessions.
func (c *Client) ActiveSessions(ctx context.Context) ([]models.ActiveSession, error) {
	var sessions []models.ActiveSession
	if err := c.get(ctx, "/api/user/active-sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// LogoutAllSessions revokes every session except the current one.
func (c *Client) LogoutAllSessions(ctx context.Context) error {
	return c.post(ctx, "/api/user/logout-all-sessions", struct{}{}, nil)
}

// ChangePassword updates the account password.
func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	if current == "" || updated == "" {
		return fmt.Errorf("current and new passwords are required: %w", ErrValidation)
	}
	req := models.ChangePasswordRequest{CurrentPassword: current, NewPassword: updated}
	return c.post(ctx, "/api/user/change-password", &req, nil)
}

// UpdateSettings applies a partial settings change (phone, privacy).
func (c *Client) UpdateSettings(ctx context.Context, update *models.SettingsUpdate) error {
	if update == nil || (update.Phone == "" && update.Privacy == "") {
		return fmt.Errorf("no settings to update: %w", ErrValidation)
	}
	if update.Phone != "" {
		if err := c.put(ctx, "/api/user/settings/phone", update, nil); err != nil {
			return err
		}
	}
	if update.Privacy != "" {
		if err := c.put(ctx, "/api/user/settings/privacy", update, nil); err != nil {
			return err
		}
	}
	return nil
}

// DeactivateAccount suspends the account.
func (c *Client) DeactivateAccount(ctx context.Context) error {
	return c.post(ctx, "/api/user/deactivate", struct{}{}, nil)
}

// DeleteAccount permanently removes the account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/user/delete", nil, nil, true)
}

// LiveIPOs retrieves the open IPO listings.
func (c *Client) LiveIPOs(ctx context.Context) ([]models.IPOBid, error) {
	var bids []models.IPOBid
	if err := c.get(ctx, "/api/bids/live-ipos", &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

// SubmitSupportTicket files a support request.
func (c *Client) SubmitSupportTicket(ctx context.Context, ticket *models.SupportTicket) error {
	if ticket == nil || ticket.Subject == "" || ticket.Message == "" {
		return fmt.Errorf("subject and message are required: %w", ErrValidation)
	}
	return c.post(ctx, "/api/support/ticket", ticket, nil)
}
