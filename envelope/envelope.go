package envelope

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Kind declares how a response body is expected to be interpreted.
type Kind uint8

const (
	// KindJSON bodies follow the envelope contract.
	KindJSON Kind = iota
	// KindBinary bodies (file downloads, exports) are returned untouched.
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// SuccessCode is the only envelope code treated as success.
const SuccessCode = 200

// DefaultFailureMessage is shown when a failing envelope carries no message.
const DefaultFailureMessage = "system busy"

// MessageFields lists the accepted synonyms for the human-readable failure
// text, in lookup order. Deployments use either "msg" or "message".
var MessageFields = []string{"msg", "message"}

var nullPayload = []byte("null")

// Envelope is the wire shape produced by the backend. It is used when
// encoding responses (mock backend, tests); decoding goes through [Normalize]
// so that both message synonyms are accepted.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Msg     string `json:"msg,omitempty"`
	Data    any    `json:"data"`
}

// Failure is a business failure: a well-formed envelope whose code is not
// [SuccessCode], or a body that could not be read as an envelope at all
// (Code 0).
type Failure struct {
	Code    int
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("envelope code %d: %s", f.Code, f.Message)
}

// Result is the outcome of [Normalize]. Exactly one of Payload or Failure is
// meaningful; Raw reports that Payload is an uninterpreted binary body.
type Result struct {
	Payload []byte
	Raw     bool
	Failure *Failure
}

// OK reports whether the body resolved to a payload.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Normalize converts a raw body into a payload or a [Failure].
func Normalize(body []byte, kind Kind) Result {
	if kind == KindBinary {
		return Result{Payload: body, Raw: true}
	}

	if !gjson.ValidBytes(body) {
		return Result{Failure: &Failure{Message: DefaultFailureMessage}}
	}

	code := gjson.GetBytes(body, "code")
	if code.Type == gjson.Number && code.Int() == SuccessCode {
		data := gjson.GetBytes(body, "data")
		if !data.Exists() {
			return Result{Payload: nullPayload}
		}
		return Result{Payload: []byte(data.Raw)}
	}

	failure := &Failure{Message: MessageOr(body, DefaultFailureMessage)}
	if code.Type == gjson.Number {
		failure.Code = int(code.Int())
	}
	return Result{Failure: failure}
}

// Message returns the first non-empty message synonym in body, or "".
func Message(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	for _, field := range MessageFields {
		v := gjson.GetBytes(body, field)
		if v.Type == gjson.String && v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// MessageOr is [Message] with a fallback for bodies that carry none.
func MessageOr(body []byte, fallback string) string {
	if msg := Message(body); msg != "" {
		return msg
	}
	return fallback
}

// Decode unmarshals a resolved payload into T. An empty payload yields the
// zero value.
func Decode[T any](payload []byte) (T, error) {
	var out T
	if len(payload) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return out, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}

// Success builds a success envelope around data.
func Success(data any) Envelope {
	return Envelope{Code: SuccessCode, Message: "success", Data: data}
}

// Fail builds a failure envelope. useMsg selects the "msg" field instead of
// "message", matching the two deployment conventions.
func Fail(code int, message string, useMsg bool) Envelope {
	if useMsg {
		return Envelope{Code: code, Msg: message}
	}
	return Envelope{Code: code, Message: message}
}
