// Package dispatch maps a finished (or failed) HTTP exchange to the single
// recovery action the request pipeline must take.
//
// Classify is a pure function: it never notifies, logs, or touches the
// session. The table it encodes is the only place status codes are
// interpreted.
package dispatch

import (
	"net/http"

	"github.com/MrEthical07/goNebula/envelope"
)

// Action is what the pipeline does with an outcome.
type Action uint8

const (
	// Resolve returns the envelope payload.
	Resolve Action = iota
	// ReturnRaw returns the body untouched (binary responses).
	ReturnRaw
	// RejectBusiness notifies the envelope message and rejects.
	RejectBusiness
	// SessionExpired hands off to the session-expired flow and rejects.
	SessionExpired
	// Forbidden notifies a fixed message and rejects; the session is kept.
	Forbidden
	// NotFound notifies a fixed message and rejects.
	NotFound
	// HTTPError notifies the server message or a generic one and rejects.
	HTTPError
	// NetworkError covers requests that produced no response at all.
	NetworkError
)

var actionNames = [...]string{
	Resolve:        "resolve",
	ReturnRaw:      "return_raw",
	RejectBusiness: "reject_business",
	SessionExpired: "session_expired",
	Forbidden:      "forbidden",
	NotFound:       "not_found",
	HTTPError:      "http_error",
	NetworkError:   "network_error",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Rejects reports whether the action ends in an error for the caller.
func (a Action) Rejects() bool {
	return a != Resolve && a != ReturnRaw
}

// Outcome is the raw result of one HTTP exchange. Responded is false when no
// response was received (connection failure, timeout, cancellation).
type Outcome struct {
	Responded bool
	Status    int
	Body      []byte
	Kind      envelope.Kind
}

// Messages holds the user-facing texts attached to each rejection.
type Messages struct {
	Busy           string
	SessionExpired string
	Forbidden      string
	NotFound       string
	Server         string
	Network        string
}

// DefaultMessages returns the stock user-facing texts.
func DefaultMessages() Messages {
	return Messages{
		Busy:           envelope.DefaultFailureMessage,
		SessionExpired: "Your session has expired. Please sign in again.",
		Forbidden:      "You do not have permission to perform this action",
		NotFound:       "The requested resource was not found",
		Server:         "Server error",
		Network:        "Network error. Please check your connection.",
	}
}

// Decision is the classified outcome. Code carries the envelope code of a
// RejectBusiness decision.
type Decision struct {
	Action  Action
	Payload []byte
	Code    int
	Message string
}

// Classify applies the dispatch table to o.
func Classify(o Outcome, m Messages) Decision {
	if !o.Responded {
		return Decision{Action: NetworkError, Message: m.Network}
	}

	switch {
	case o.Status >= http.StatusOK && o.Status < http.StatusMultipleChoices:
		res := envelope.Normalize(o.Body, o.Kind)
		if res.OK() {
			if res.Raw {
				return Decision{Action: ReturnRaw, Payload: res.Payload}
			}
			return Decision{Action: Resolve, Payload: res.Payload}
		}
		msg := res.Failure.Message
		if msg == envelope.DefaultFailureMessage && m.Busy != "" {
			msg = m.Busy
		}
		return Decision{Action: RejectBusiness, Code: res.Failure.Code, Message: msg}
	case o.Status == http.StatusUnauthorized:
		return Decision{Action: SessionExpired, Message: m.SessionExpired}
	case o.Status == http.StatusForbidden:
		return Decision{Action: Forbidden, Message: m.Forbidden}
	case o.Status == http.StatusNotFound:
		return Decision{Action: NotFound, Message: m.NotFound}
	default:
		return Decision{Action: HTTPError, Message: envelope.MessageOr(o.Body, m.Server)}
	}
}
