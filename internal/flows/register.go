package flows

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrEthical07/goNebula/envelope"
)

// Account kinds accepted by the register endpoint.
const (
	RegisterMerchant = "merchant"
	RegisterAdmin    = "admin"
	RegisterUser     = "user"
)

// RegisterRequest is the flow-local registration input. InviteCode is only
// meaningful for admin accounts.
type RegisterRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Nickname   string `json:"nickname,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
}

// RegisterErrors carries host-level sentinel errors used by the register flow.
type RegisterErrors struct {
	NotReady       error
	InvalidRequest error
}

// RegisterDeps captures register dependencies.
type RegisterDeps struct {
	Call       CallFunc
	PathPrefix string
	Errors     RegisterErrors
}

// RunRegister creates an account of the given kind. The session is not
// touched; callers sign in separately.
func RunRegister(ctx context.Context, kind string, req RegisterRequest, deps RegisterDeps) (map[string]any, error) {
	if deps.Call == nil || deps.PathPrefix == "" {
		return nil, deps.Errors.NotReady
	}
	switch kind {
	case RegisterMerchant, RegisterAdmin, RegisterUser:
	default:
		return nil, deps.Errors.InvalidRequest
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, deps.Errors.InvalidRequest
	}

	payload, err := deps.Call(ctx, http.MethodPost, strings.TrimSuffix(deps.PathPrefix, "/")+"/"+kind, req)
	if err != nil {
		return nil, err
	}
	return envelope.Decode[map[string]any](payload)
}
