package goNebula

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestErrorMatchesKindSentinel(t *testing.T) {
	tests := []struct {
		kind     ErrorKind
		sentinel error
		name     string
	}{
		{KindBusiness, ErrBusiness, "business"},
		{KindUnauthorized, ErrSessionExpired, "unauthorized"},
		{KindForbidden, ErrForbidden, "forbidden"},
		{KindNotFound, ErrNotFound, "not_found"},
		{KindHTTP, ErrHTTPStatus, "http"},
		{KindNetwork, ErrNetwork, "network"},
	}
	all := []error{ErrBusiness, ErrSessionExpired, ErrForbidden, ErrNotFound, ErrHTTPStatus, ErrNetwork}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &RequestError{Kind: tc.kind, Method: "GET", Path: "/x"})
			assert.Equal(t, tc.name, tc.kind.String())
			for _, s := range all {
				assert.Equal(t, s == tc.sentinel, errors.Is(err, s), "kind %s vs %v", tc.kind, s)
			}
			re, ok := AsRequestError(err)
			assert.True(t, ok)
			assert.Equal(t, tc.kind, re.Kind)
		})
	}

	assert.Equal(t, "unknown", ErrorKind(0).String())
	assert.False(t, errors.Is(&RequestError{}, ErrBusiness))
}

func TestRequestErrorMessage(t *testing.T) {
	net := &RequestError{Kind: KindNetwork, Method: "GET", Path: "/cart/list", Message: "Network error", Err: context.DeadlineExceeded}
	assert.Equal(t, "GET /cart/list: Network error: context deadline exceeded", net.Error())
	assert.ErrorIs(t, net, context.DeadlineExceeded)

	biz := &RequestError{Kind: KindBusiness, Method: "POST", Path: "/cart/add", Code: 601, Message: "Out of stock"}
	assert.Equal(t, "POST /cart/add: code 601: Out of stock", biz.Error())

	status := &RequestError{Kind: KindHTTP, Method: "GET", Path: "/x", Status: 502, Message: "Server error"}
	assert.Equal(t, "GET /x: status 502: Server error", status.Error())

	_, ok := AsRequestError(errors.New("plain"))
	assert.False(t, ok)
}
