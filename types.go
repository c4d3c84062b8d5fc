package goNebula

import (
	"context"
	"net/url"

	"github.com/MrEthical07/goNebula/credential"
	"github.com/MrEthical07/goNebula/envelope"
	internalaudit "github.com/MrEthical07/goNebula/internal/audit"
	"github.com/MrEthical07/goNebula/navigation"
)

// ResponseKind tells the pipeline how to interpret a response body.
type ResponseKind = envelope.Kind

const (
	// ResponseJSON bodies are enveloped JSON.
	ResponseJSON = envelope.KindJSON
	// ResponseBinary bodies are returned verbatim (file downloads).
	ResponseBinary = envelope.KindBinary
)

// Session is the credential pair held by the client.
type Session = credential.Session

// Navigator is the navigation surface the session controller redirects through.
type Navigator = navigation.Navigator

// Request describes one backend call. Path is relative to the API prefix.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Kind   ResponseKind
}

// State is the lifecycle state of the client's session.
type State uint8

const (
	// StateAnonymous means no token is held.
	StateAnonymous State = iota
	// StateAuthenticated means a token is held.
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// LoginRequest carries sign-in credentials. The login type is taken from the
// client's frontend profile.
type LoginRequest struct {
	Username string
	Password string
}

// LoginResult defines a public type used by goNebula APIs.
type LoginResult struct {
	Token   string
	Profile map[string]any
}

// RegisterRequest defines a public type used by goNebula APIs.
//
// InviteCode is required by the backend for admin accounts only.
type RegisterRequest struct {
	Username   string
	Password   string
	Nickname   string
	Email      string
	Phone      string
	InviteCode string
}

// AuditEvent is the structured record emitted for session transitions and
// authorization failures.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the async dispatcher.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}
