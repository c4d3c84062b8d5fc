package goNebula

import (
	"context"

	"github.com/MrEthical07/goNebula/navigation"
	"github.com/MrEthical07/goNebula/route"
	"go.uber.org/zap"
)

// AccessibleRoutes returns the route tree the current user may mount. The
// admin console filters the configured table by the session's roles; the
// storefront mounts it whole, relying on the guard's requiresAuth check.
func (c *Client) AccessibleRoutes(ctx context.Context) ([]route.Node, error) {
	if c.assembler == nil {
		return nil, ErrNoRoutes
	}
	if c.config.Frontend == FrontendStore {
		return c.assembler.Tree(), nil
	}
	return c.assembler.Filter(c.Roles(ctx)), nil
}

// Menu returns the visible navigation menu for the current user.
func (c *Client) Menu(ctx context.Context) ([]route.MenuItem, error) {
	tree, err := c.AccessibleRoutes(ctx)
	if err != nil {
		return nil, err
	}
	return route.Menu(tree), nil
}

// NewGuard returns a navigation guard bound to this client's session,
// notifier and navigation settings. Blocked attempts are counted.
func (c *Client) NewGuard(opts ...navigation.GuardOption) *navigation.Guard {
	nav := c.config.Navigation
	base := []navigation.GuardOption{
		navigation.WithGuardLogger(c.logger.Named("guard")),
		navigation.WithBlockedHook(func(a navigation.Attempt) {
			c.metricInc(MetricNavigationBlocked)
		}),
	}
	return navigation.NewGuard(navigation.GuardConfig{
		LoginPath:     nav.LoginPath,
		RedirectParam: nav.RedirectParam,
		DefaultTitle:  nav.DefaultTitle,
		TitleSuffix:   nav.TitleSuffix,
		SignInMessage: nav.SignInMessage,
	}, c, c.notifier, append(base, opts...)...)
}

// NewRouter builds an in-memory router over the accessible routes, attaches
// it as the client's navigator and returns it. Login, logout and session
// expiry remount its routes.
func (c *Client) NewRouter(ctx context.Context, opts ...navigation.RouterOption) (*navigation.Router, error) {
	tree, err := c.AccessibleRoutes(ctx)
	if err != nil {
		return nil, err
	}
	base := []navigation.RouterOption{
		navigation.WithRouterLogger(c.logger.Named("router")),
	}
	if p := c.config.Navigation.NotFoundPath; p != "" {
		base = append(base, navigation.WithNotFound(p))
	}
	r := navigation.NewRouter(tree, c.NewGuard(), append(base, opts...)...)
	c.AttachNavigator(r)
	return r, nil
}

// remountRoutes refreshes the attached router after the role set changed.
func (c *Client) remountRoutes(ctx context.Context) {
	r, ok := c.Navigator().(*navigation.Router)
	if !ok || c.assembler == nil {
		return
	}
	tree, err := c.AccessibleRoutes(ctx)
	if err != nil {
		c.logger.Warn("route remount failed", zap.Error(err))
		return
	}
	r.SetRoutes(tree)
}
