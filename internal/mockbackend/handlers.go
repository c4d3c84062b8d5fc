package mockbackend

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type userContextKey struct{}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/register/{kind}", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/portal/notice/list", s.handleNotices).Methods(http.MethodGet)
	api.HandleFunc("/debug/status/{code:[0-9]+}", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/debug/business", s.handleBusiness).Methods(http.MethodGet)
	api.HandleFunc("/debug/slow", s.handleSlow).Methods(http.MethodGet)
	api.HandleFunc("/debug/plain", s.handlePlain).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/member/info", s.handleMemberInfo).Methods(http.MethodGet)
	authed.HandleFunc("/cart/list", s.handleCartList).Methods(http.MethodGet)
	authed.HandleFunc("/cart/add", s.handleCartAdd).Methods(http.MethodPost)
	authed.Handle("/admin/system/invite-code", s.requireRole(RoleAdmin)(http.HandlerFunc(s.handleInviteCode))).Methods(http.MethodGet)
	authed.Handle("/admin/system/log/export", s.requireRole(RoleAdmin)(http.HandlerFunc(s.handleLogExport))).Methods(http.MethodGet)
	authed.Handle("/admin/goods/list", s.requireRole(RoleAdmin, RoleMerchant)(http.HandlerFunc(s.handleGoodsList))).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.reject(w, http.StatusNotFound, "Not Found")
	})
	r.Use(s.logRequests)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := s.authenticate(r)
		if err != nil {
			s.reject(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, u)))
	})
}

func (s *Server) requireRole(roles ...string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := currentUser(r)
			for _, role := range roles {
				if u.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			s.reject(w, http.StatusForbidden, "Access denied")
		})
	}
}

func currentUser(r *http.Request) User {
	u, _ := r.Context().Value(userContextKey{}).(User)
	return u
}

type loginBody struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	LoginType string `json:"loginType"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, 400, "Malformed request")
		return
	}

	s.mu.RLock()
	u, ok := s.users[body.Username]
	var user User
	if ok {
		user = *u
	}
	gen := s.generation
	s.mu.RUnlock()

	if !ok || user.Password != body.Password {
		s.fail(w, 400, "Invalid username or password")
		return
	}
	if body.LoginType == "admin" && user.Role == RoleUser {
		s.fail(w, 403, "This account cannot sign in to the admin console")
		return
	}

	token, err := s.sign(user, gen)
	if err != nil {
		s.logger.Error("sign token failed", zap.Error(err))
		s.reject(w, http.StatusInternalServerError, "Token issue failed")
		return
	}
	s.ok(w, map[string]any{"token": token, "user": user.profile()})
}

type registerBody struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Nickname   string `json:"nickname"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	InviteCode string `json:"inviteCode"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var role string
	switch mux.Vars(r)["kind"] {
	case "merchant":
		role = RoleMerchant
	case "admin":
		role = RoleAdmin
	case "user":
		role = RoleUser
	default:
		s.reject(w, http.StatusNotFound, "Not Found")
		return
	}

	var body registerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, 400, "Malformed request")
		return
	}
	if strings.TrimSpace(body.Username) == "" || len(body.Password) < 6 {
		s.fail(w, 400, "Username is required and password must be at least 6 characters")
		return
	}
	if role == RoleAdmin && body.InviteCode != s.inviteCode {
		s.fail(w, 400, "Invalid invite code")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[body.Username]; exists {
		s.mu.Unlock()
		s.fail(w, 400, "Username already exists")
		return
	}
	s.nextID++
	u := &User{
		ID:       s.nextID,
		Username: body.Username,
		Password: body.Password,
		Nickname: body.Nickname,
		Email:    body.Email,
		Phone:    body.Phone,
		Role:     role,
	}
	s.users[u.Username] = u
	created := *u
	s.mu.Unlock()

	s.ok(w, created.profile())
}

func (s *Server) handleMemberInfo(w http.ResponseWriter, r *http.Request) {
	s.ok(w, currentUser(r).profile())
}

func (s *Server) handleNotices(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	notices := append([]map[string]any(nil), s.notices...)
	s.mu.RUnlock()
	s.ok(w, map[string]any{"records": notices, "total": len(notices)})
}

func (s *Server) handleCartList(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.mu.RLock()
	items := append([]map[string]any{}, s.carts[u.Username]...)
	s.mu.RUnlock()
	s.ok(w, items)
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var item map[string]any
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item["productId"] == nil {
		s.fail(w, 400, "productId is required")
		return
	}
	u := currentUser(r)
	s.mu.Lock()
	s.carts[u.Username] = append(s.carts[u.Username], item)
	n := len(s.carts[u.Username])
	s.mu.Unlock()
	s.ok(w, map[string]any{"count": n})
}

func (s *Server) handleInviteCode(w http.ResponseWriter, _ *http.Request) {
	s.ok(w, map[string]any{"inviteCode": s.inviteCode})
}

func (s *Server) handleGoodsList(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	s.ok(w, map[string]any{
		"records": []map[string]any{
			{"id": 1, "name": "Nebula Hoodie", "price": 199, "owner": u.Username},
			{"id": 2, "name": "Star Mug", "price": 49, "owner": u.Username},
		},
		"total": 2,
	})
}

func (s *Server) handleLogExport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="operation-log.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "username", "role"})
	for _, u := range s.snapshotUsers() {
		_ = cw.Write([]string{strconv.FormatInt(u.ID, 10), u.Username, u.Role})
	}
	cw.Flush()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	code, _ := strconv.Atoi(mux.Vars(r)["code"])
	if code < 100 || code > 599 {
		code = http.StatusBadRequest
	}
	if r.URL.Query().Get("empty") != "" {
		w.WriteHeader(code)
		return
	}
	s.reject(w, code, fmt.Sprintf("debug status %d", code))
}

func (s *Server) handleBusiness(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code, err := strconv.Atoi(q.Get("code"))
	if err != nil {
		code = 500
	}
	s.fail(w, code, q.Get("message"))
}

func (s *Server) handleSlow(w http.ResponseWriter, r *http.Request) {
	ms, err := strconv.Atoi(r.URL.Query().Get("ms"))
	if err != nil || ms < 0 {
		ms = 1000
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		s.ok(w, map[string]any{"sleptMs": ms})
	case <-r.Context().Done():
	}
}

func (s *Server) handlePlain(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<html>gateway maintenance</html>"))
}
