package mockbackend

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newMockTest(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func doJSON(t *testing.T, method, url, token string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestLogin(t *testing.T) {
	_, ts := newMockTest(t, Options{})

	tests := []struct {
		name      string
		body      loginBody
		wantCode  int64
		wantToken bool
	}{
		{"admin console admin", loginBody{"admin", "admin123", "admin"}, 200, true},
		{"admin console merchant", loginBody{"merchant", "merchant123", "admin"}, 200, true},
		{"admin console customer", loginBody{"alice", "alice123", "admin"}, 403, false},
		{"storefront customer", loginBody{"alice", "alice123", "store"}, 200, true},
		{"wrong password", loginBody{"admin", "nope", "admin"}, 400, false},
		{"unknown user", loginBody{"ghost", "x", "store"}, 400, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", tc.body)
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tc.wantCode, gjson.GetBytes(body, "code").Int())
			assert.Equal(t, tc.wantToken, gjson.GetBytes(body, "data.token").String() != "")
		})
	}
}

func TestAuthAndRoles(t *testing.T) {
	s, ts := newMockTest(t, Options{})

	adminToken, err := s.Issue("admin")
	require.NoError(t, err)
	merchantToken, err := s.Issue("merchant")
	require.NoError(t, err)

	status, _ := doJSON(t, http.MethodGet, ts.URL+"/api/member/info", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := doJSON(t, http.MethodGet, ts.URL+"/api/member/info", merchantToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "MERCHANT", gjson.GetBytes(body, "data.role").String())

	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/admin/system/invite-code", merchantToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Access denied", gjson.GetBytes(body, "message").String())

	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/admin/system/invite-code", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, s.InviteCode(), gjson.GetBytes(body, "data.inviteCode").String())

	s.ExpireAll()
	status, _ = doJSON(t, http.MethodGet, ts.URL+"/api/member/info", adminToken, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegister(t *testing.T) {
	s, ts := newMockTest(t, Options{UseMsg: true})

	status, body := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register/admin", "", registerBody{Username: "root2", Password: "secret1"})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Invalid invite code", gjson.GetBytes(body, "msg").String())

	_, body = doJSON(t, http.MethodPost, ts.URL+"/api/auth/register/admin", "", registerBody{Username: "root2", Password: "secret1", InviteCode: s.InviteCode()})
	assert.Equal(t, int64(200), gjson.GetBytes(body, "code").Int())
	assert.Equal(t, "ADMIN", gjson.GetBytes(body, "data.role").String())

	_, body = doJSON(t, http.MethodPost, ts.URL+"/api/auth/register/user", "", registerBody{Username: "alice", Password: "secret1"})
	assert.Equal(t, "Username already exists", gjson.GetBytes(body, "msg").String())

	status, _ = doJSON(t, http.MethodPost, ts.URL+"/api/auth/register/root", "", registerBody{Username: "x", Password: "secret1"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestExportIsCSV(t *testing.T) {
	s, ts := newMockTest(t, Options{})
	token, err := s.Issue("admin")
	require.NoError(t, err)

	status, body := doJSON(t, http.MethodGet, ts.URL+"/api/admin/system/log/export", token, nil)
	assert.Equal(t, http.StatusOK, status)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Equal(t, "id,username,role", lines[0])
	assert.Len(t, lines, 4)
}

func TestDebugEndpoints(t *testing.T) {
	_, ts := newMockTest(t, Options{})

	status, body := doJSON(t, http.MethodGet, ts.URL+"/api/debug/status/502", "", nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "debug status 502", gjson.GetBytes(body, "message").String())

	status, body = doJSON(t, http.MethodGet, ts.URL+"/api/debug/business?code=601&message=Out+of+stock", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(601), gjson.GetBytes(body, "code").Int())

	status, _ = doJSON(t, http.MethodGet, ts.URL+"/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
}
