package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		kind        Kind
		wantPayload string
		wantRaw     bool
		wantCode    int
		wantMessage string
		wantFailure bool
	}{
		{
			name:        "success returns data verbatim",
			body:        `{"code":200,"message":"ok","data":{"id":7,"name":"mug"}}`,
			wantPayload: `{"id":7,"name":"mug"}`,
		},
		{
			name:        "success with scalar data",
			body:        `{"code":200,"msg":"success","data":"token-value"}`,
			wantPayload: `"token-value"`,
		},
		{
			name:        "success without data is null",
			body:        `{"code":200}`,
			wantPayload: `null`,
		},
		{
			name:        "failure uses message field",
			body:        `{"code":500,"message":"Coupon expired","data":null}`,
			wantFailure: true,
			wantCode:    500,
			wantMessage: "Coupon expired",
		},
		{
			name:        "failure uses msg field",
			body:        `{"code":400,"msg":"Stock insufficient"}`,
			wantFailure: true,
			wantCode:    400,
			wantMessage: "Stock insufficient",
		},
		{
			name:        "msg wins over message",
			body:        `{"code":400,"msg":"first","message":"second"}`,
			wantFailure: true,
			wantCode:    400,
			wantMessage: "first",
		},
		{
			name:        "empty msg falls through to message",
			body:        `{"code":400,"msg":"","message":"second"}`,
			wantFailure: true,
			wantCode:    400,
			wantMessage: "second",
		},
		{
			name:        "failure without message uses fallback",
			body:        `{"code":501}`,
			wantFailure: true,
			wantCode:    501,
			wantMessage: DefaultFailureMessage,
		},
		{
			name:        "string code is not success",
			body:        `{"code":"200","data":1}`,
			wantFailure: true,
			wantMessage: DefaultFailureMessage,
		},
		{
			name:        "invalid json is a failure",
			body:        `<html>gateway</html>`,
			wantFailure: true,
			wantMessage: DefaultFailureMessage,
		},
		{
			name:        "binary bypasses envelope",
			body:        `{"code":500,"message":"looks like an envelope"}`,
			kind:        KindBinary,
			wantPayload: `{"code":500,"message":"looks like an envelope"}`,
			wantRaw:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize([]byte(tt.body), tt.kind)
			if tt.wantFailure {
				require.False(t, got.OK())
				require.NotNil(t, got.Failure)
				assert.Equal(t, tt.wantCode, got.Failure.Code)
				assert.Equal(t, tt.wantMessage, got.Failure.Message)
				return
			}
			require.True(t, got.OK())
			assert.Equal(t, tt.wantRaw, got.Raw)
			assert.Equal(t, tt.wantPayload, string(got.Payload))
		})
	}
}

func TestMessageOr(t *testing.T) {
	assert.Equal(t, "Server error", MessageOr(nil, "Server error"))
	assert.Equal(t, "Server error", MessageOr([]byte("not json"), "Server error"))
	assert.Equal(t, "boom", MessageOr([]byte(`{"message":"boom"}`), "Server error"))
}

func TestDecode(t *testing.T) {
	type profile struct {
		Username string `json:"username"`
	}

	p, err := Decode[profile]([]byte(`{"username":"alice"}`))
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)

	empty, err := Decode[profile](nil)
	require.NoError(t, err)
	assert.Equal(t, profile{}, empty)

	_, err = Decode[profile]([]byte(`[1,2]`))
	require.Error(t, err)
}

func TestFailEncodesChosenSynonym(t *testing.T) {
	withMsg, err := json.Marshal(Fail(400, "bad", true))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":400,"msg":"bad","data":null}`, string(withMsg))

	withMessage, err := json.Marshal(Fail(400, "bad", false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":400,"message":"bad","data":null}`, string(withMessage))

	res := Normalize(withMsg, KindJSON)
	require.NotNil(t, res.Failure)
	assert.Equal(t, "bad", res.Failure.Message)
}
