package credential

import (
	"github.com/golang-jwt/jwt/v5"
)

// Session is the client's view of the signed-in user.
// The zero value is the anonymous session.
type Session struct {
	Token   string
	Profile map[string]any
}

// Anonymous returns the empty session.
func Anonymous() Session {
	return Session{}
}

// IsAuthenticated reports whether the session carries a token.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Username returns a display name for the session owner.
func (s Session) Username() string {
	for _, key := range []string{"username", "nickname"} {
		if v, ok := s.Profile[key].(string); ok && v != "" {
			return v
		}
	}
	return "User"
}

// Roles returns the role names attached to the session.
//
// The profile's "roles" array or "role" string wins. When the profile carries
// neither, the token's unverified "roles"/"role" claims are used.
func (s Session) Roles() []string {
	if roles := rolesFrom(s.Profile); len(roles) > 0 {
		return roles
	}
	if s.Token == "" {
		return nil
	}
	return tokenRoles(s.Token)
}

// Clone returns a deep copy of the session safe to hand to callers.
func (s Session) Clone() Session {
	return Session{Token: s.Token, Profile: cloneProfile(s.Profile)}
}

func rolesFrom(m map[string]any) []string {
	if m == nil {
		return nil
	}
	switch v := m["roles"].(type) {
	case []string:
		return dedupe(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return dedupe(out)
		}
	}
	if role, ok := m["role"].(string); ok && role != "" {
		return []string{role}
	}
	return nil
}

func tokenRoles(token string) []string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return rolesFrom(claims)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func cloneProfile(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneProfile(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
