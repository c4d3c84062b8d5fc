package goNebula

import (
	"context"

	internalflows "github.com/MrEthical07/goNebula/internal/flows"
	"go.uber.org/zap"
)

// Login signs in with the frontend's login type and stores the issued token
// and profile. Backend failures are returned untouched; the previous session
// is kept.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	res, err := c.flows.Login(ctx, internalflows.LoginRequest{
		Username:  req.Username,
		Password:  req.Password,
		LoginType: c.config.loginType(),
	})
	if err != nil {
		return LoginResult{}, err
	}
	c.remountRoutes(ctx)
	return LoginResult{Token: res.Token, Profile: res.Profile}, nil
}

// Logout clears the session and, when a navigator is attached and not on the
// login route, redirects to the login route with the current location kept in
// the redirect parameter. Logging out twice is harmless.
func (c *Client) Logout(ctx context.Context) error {
	res, err := c.flows.Logout(ctx)
	if err != nil {
		c.logger.Warn("logout incomplete", zap.Error(err))
	}
	if res.Redirected {
		c.logger.Debug("redirected to login", zap.String("target", res.Target))
	}
	c.remountRoutes(ctx)
	return err
}

// RefreshProfile re-reads the signed-in user's profile. It never fails:
// errors are logged and counted, and an anonymous session is left alone.
func (c *Client) RefreshProfile(ctx context.Context) error {
	if _, err := c.flows.RefreshProfile(ctx); err != nil {
		c.logger.Warn("profile refresh failed", zap.Error(err))
	}
	return nil
}

// handleSessionExpired runs the session-expired flow for a 401. Calls are
// serialized; the flow itself skips everything when already on the login
// route, so a burst of 401s redirects at most once.
func (c *Client) handleSessionExpired(ctx context.Context) {
	c.expiryMu.Lock()
	defer c.expiryMu.Unlock()

	res, err := c.flows.SessionExpired(context.WithoutCancel(ctx))
	if err != nil {
		c.logger.Warn("session expiry handling incomplete", zap.Error(err))
	}
	if !res.Skipped {
		c.remountRoutes(ctx)
	}
}

// RegisterMerchant creates a merchant account. The session is not touched.
func (c *Client) RegisterMerchant(ctx context.Context, req RegisterRequest) (map[string]any, error) {
	return c.register(ctx, internalflows.RegisterMerchant, req)
}

// RegisterAdmin creates an admin account; req.InviteCode must be set.
func (c *Client) RegisterAdmin(ctx context.Context, req RegisterRequest) (map[string]any, error) {
	return c.register(ctx, internalflows.RegisterAdmin, req)
}

// RegisterUser creates a storefront customer account.
func (c *Client) RegisterUser(ctx context.Context, req RegisterRequest) (map[string]any, error) {
	return c.register(ctx, internalflows.RegisterUser, req)
}

func (c *Client) register(ctx context.Context, kind string, req RegisterRequest) (map[string]any, error) {
	return c.flows.Register(ctx, kind, internalflows.RegisterRequest{
		Username:   req.Username,
		Password:   req.Password,
		Nickname:   req.Nickname,
		Email:      req.Email,
		Phone:      req.Phone,
		InviteCode: req.InviteCode,
	})
}
