package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrEthical07/goNebula/internal/mockbackend"
)

type cliTest struct {
	t        *testing.T
	settings settings
	backend  *mockbackend.Server
}

func newCLITest(t *testing.T, frontend string) *cliTest {
	t.Helper()
	backend := mockbackend.New(mockbackend.Options{UseMsg: frontend == "store"})
	server := httptest.NewServer(backend.Handler())
	t.Cleanup(server.Close)

	dir := t.TempDir()
	return &cliTest{
		t:       t,
		backend: backend,
		settings: settings{
			Frontend:    frontend,
			BaseURL:     server.URL,
			APIPrefix:   "/api",
			Timeout:     5 * time.Second,
			SessionFile: filepath.Join(dir, "session.json"),
			LogLevel:    "error",
		},
	}
}

// run executes the CLI and returns stdout and stderr.
func (c *cliTest) run(args ...string) (string, string, error) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(c.settings, args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (c *cliTest) mustRun(args ...string) string {
	c.t.Helper()
	out, errOut, err := c.run(args...)
	require.NoError(c.t, err, "stderr: %s", errOut)
	return out
}

func TestLoginWhoamiLogout(t *testing.T) {
	c := newCLITest(t, "admin")

	out := c.mustRun("login", "-u", "merchant", "-p", "merchant123")
	assert.Equal(t, "Signed in as merchant [MERCHANT]\n", out)

	out = c.mustRun("whoami", "--refresh")
	assert.Contains(t, out, "state:    authenticated")
	assert.Contains(t, out, "roles:    MERCHANT")

	out = c.mustRun("menu")
	assert.Contains(t, out, "Goods  /goods")
	assert.Contains(t, out, "  Goods List  /goods/list")
	assert.NotContains(t, out, "System")

	assert.Equal(t, "Signed out\n", c.mustRun("logout"))
	assert.Equal(t, "Not signed in\n", c.mustRun("logout"))
	assert.Equal(t, "state:    anonymous\n", c.mustRun("whoami"))
}

func TestLoginFailureIsReported(t *testing.T) {
	c := newCLITest(t, "admin")

	_, errOut, err := c.run("login", "-u", "admin", "-p", "nope")
	require.Error(t, err)
	assert.Contains(t, errOut, "Invalid username or password")

	_, err = os.Stat(c.settings.SessionFile)
	assert.True(t, os.IsNotExist(err), "failed login must not write a session")
}

func TestGetConcurrent(t *testing.T) {
	c := newCLITest(t, "admin")
	c.mustRun("login", "-u", "admin", "-p", "admin123")

	out := c.mustRun("get", "/member/info", "/portal/notice/list", "/admin/system/invite-code")
	assert.Contains(t, out, "# /member/info\n")
	assert.Contains(t, out, `"username": "admin"`)
	assert.Contains(t, out, `"inviteCode": "`+c.backend.InviteCode()+`"`)

	out = c.mustRun("get", "/portal/notice/list")
	assert.NotContains(t, out, "# /portal/notice/list")
	assert.Contains(t, out, `"total": 2`)
}

func TestGetBusinessFailure(t *testing.T) {
	c := newCLITest(t, "admin")

	_, errOut, err := c.run("get", "/debug/business?code=601&message=Out+of+stock")
	require.Error(t, err)
	assert.Contains(t, errOut, "Out of stock")
}

func TestExpiredSessionIsCleared(t *testing.T) {
	c := newCLITest(t, "admin")
	c.mustRun("login", "-u", "admin", "-p", "admin123")
	c.backend.ExpireAll()

	_, errOut, err := c.run("get", "/member/info")
	require.Error(t, err)
	assert.Contains(t, errOut, "Your session has expired")
	assert.Equal(t, "state:    anonymous\n", c.mustRun("whoami"))
}

func TestNavigateStorefrontGuard(t *testing.T) {
	c := newCLITest(t, "store")

	out, errOut, err := c.run("navigate", "/cart", "/goods/7")
	require.NoError(t, err)
	assert.Equal(t,
		"/cart -> /login?redirect=/cart\tSign In - Nebula Store\n"+
			"/goods/7 -> /goods/7\tGoods Detail - Nebula Store\n", out)
	assert.Contains(t, errOut, "Please sign in first")

	c.mustRun("login", "-u", "alice", "-p", "alice123")
	out = c.mustRun("navigate", "/cart", "/nowhere")
	assert.Equal(t,
		"/cart -> /cart\tCart - Nebula Store\n"+
			"/nowhere -> /404\tNot Found - Nebula Store\n", out)
}

func TestDownloadToFile(t *testing.T) {
	c := newCLITest(t, "admin")
	c.mustRun("login", "-u", "admin", "-p", "admin123")

	dest := filepath.Join(t.TempDir(), "log.csv")
	_, errOut, err := c.run("download", "/admin/system/log/export", "-o", dest)
	require.NoError(t, err)
	assert.Contains(t, errOut, "wrote ")

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,username,role\n"))
}

func TestRegisterAndPost(t *testing.T) {
	c := newCLITest(t, "store")

	out := c.mustRun("register", "user", "-u", "bob", "-p", "secret1", "--nickname", "Bob")
	assert.Equal(t, "Registered bob as USER\n", out)

	c.mustRun("login", "-u", "bob", "-p", "secret1")
	out = c.mustRun("post", "/cart/add", "-d", `{"productId": 7, "quantity": 2}`)
	assert.Contains(t, out, `"count": 1`)

	_, _, err := c.run("post", "/cart/add", "-d", `{not json`)
	require.Error(t, err)
}

func TestMetricsAndAuditOutput(t *testing.T) {
	c := newCLITest(t, "admin")
	c.settings.Metrics = true
	c.settings.AuditFile = filepath.Join(t.TempDir(), "audit.jsonl")

	_, errOut, err := c.run("login", "-u", "admin", "-p", "admin123")
	require.NoError(t, err)
	assert.Contains(t, errOut, "gonebula_login_success_total 1")
	assert.Contains(t, errOut, "gonebula_request_success_total 1")

	data, err := os.ReadFile(c.settings.AuditFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"event_type":"login_success"`)
}

func TestUnknownFrontend(t *testing.T) {
	c := newCLITest(t, "kiosk")
	_, _, err := c.run("whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown frontend")
}
