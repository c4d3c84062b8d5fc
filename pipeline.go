package goNebula

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goNebula/envelope"
	"github.com/MrEthical07/goNebula/internal/dispatch"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerRequestID     = "X-Request-ID"
	jsonContentType     = "application/json;charset=utf-8"
)

// ErrDecodePayload is returned by Call when a resolved payload does not fit
// the requested type.
var ErrDecodePayload = errors.New("payload decode failed")

// Execute sends one request and applies the response contract.
//
// It resolves with the envelope data of a JSON success, or the raw body for
// ResponseBinary. Every other outcome notifies the user once and returns a
// *RequestError. A 401 additionally runs the session-expired flow before
// returning. Execute is safe for concurrent use.
func (c *Client) Execute(ctx context.Context, req Request) ([]byte, error) {
	if c == nil || c.http == nil {
		return nil, ErrClientNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(req.Path, "/") {
		return nil, fmt.Errorf("%w: path %q must start with '/'", ErrInvalidRequest, req.Path)
	}

	reqID := RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = WithRequestID(ctx, reqID)
	}

	httpReq, err := c.newHTTPRequest(ctx, method, req, reqID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	done := c.progress.Start()
	defer done()

	start := time.Now()
	outcome, transportErr := c.roundTrip(httpReq, req.Kind)
	elapsed := time.Since(start)
	if c.metrics != nil {
		c.metrics.Observe(MetricRequestLatency, elapsed)
	}

	d := dispatch.Classify(outcome, c.config.dispatchMessages())

	c.logger.Debug("request finished",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", req.Path),
		zap.Int("status", outcome.Status),
		zap.String("action", d.Action.String()),
		zap.Duration("duration", elapsed),
	)

	if !d.Action.Rejects() {
		c.metricInc(MetricRequestSuccess)
		return d.Payload, nil
	}

	rerr := &RequestError{
		Status:    outcome.Status,
		Code:      d.Code,
		Message:   d.Message,
		Method:    method,
		Path:      req.Path,
		RequestID: reqID,
	}

	switch d.Action {
	case dispatch.RejectBusiness:
		rerr.Kind = KindBusiness
		c.metricInc(MetricBusinessFailure)
		c.notifier.Error(d.Message)
	case dispatch.SessionExpired:
		rerr.Kind = KindUnauthorized
		c.handleSessionExpired(ctx)
	case dispatch.Forbidden:
		rerr.Kind = KindForbidden
		c.metricInc(MetricForbidden)
		c.notifier.Error(d.Message)
		c.emitAudit(ctx, AuditEvent{
			EventType: auditEventForbidden,
			Username:  c.store.Get(ctx).Username(),
			Method:    method,
			Path:      req.Path,
			Status:    outcome.Status,
		})
	case dispatch.NotFound:
		rerr.Kind = KindNotFound
		c.metricInc(MetricNotFound)
		c.notifier.Error(d.Message)
	case dispatch.HTTPError:
		rerr.Kind = KindHTTP
		c.metricInc(MetricHTTPFailure)
		c.notifier.Error(d.Message)
	default:
		rerr.Kind = KindNetwork
		rerr.Err = transportErr
		c.metricInc(MetricNetworkFailure)
		c.notifier.Error(d.Message)
		c.logger.Warn("request failed without response",
			zap.String("request_id", reqID),
			zap.String("path", req.Path),
			zap.Error(transportErr),
		)
	}

	return nil, rerr
}

func (c *Client) newHTTPRequest(ctx context.Context, method string, req Request, reqID string) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		switch b := req.Body.(type) {
		case []byte:
			body = bytes.NewReader(b)
		case string:
			body = strings.NewReader(b)
		case io.Reader:
			body = b
		default:
			data, err := json.Marshal(b)
			if err != nil {
				return nil, err
			}
			body = bytes.NewReader(data)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	if req.Body != nil {
		httpReq.Header.Set(headerContentType, jsonContentType)
	}
	if req.Kind == ResponseBinary {
		httpReq.Header.Set("Accept", "*/*")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}
	httpReq.Header.Set(headerRequestID, reqID)
	if ua := c.config.Transport.UserAgent; ua != "" {
		httpReq.Header.Set("User-Agent", ua)
	}
	if token := c.store.Token(ctx); token != "" {
		httpReq.Header.Set(headerAuthorization, "Bearer "+token)
	}

	return httpReq, nil
}

// roundTrip performs the exchange. A nil error with Responded false never
// happens; any transport or body read failure is reported as no response.
func (c *Client) roundTrip(req *http.Request, kind ResponseKind) (dispatch.Outcome, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return dispatch.Outcome{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return dispatch.Outcome{}, err
	}

	return dispatch.Outcome{
		Responded: true,
		Status:    resp.StatusCode,
		Body:      data,
		Kind:      kind,
	}, nil
}

// Get issues a GET for an enveloped JSON resource.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.Execute(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Execute(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.Execute(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.Execute(ctx, Request{Method: http.MethodDelete, Path: path, Query: query})
}

// Download fetches a binary resource; the body is returned verbatim.
func (c *Client) Download(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.Execute(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Kind: ResponseBinary})
}

// Call executes req and decodes the resolved payload into T.
func Call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var zero T
	payload, err := c.Execute(ctx, req)
	if err != nil {
		return zero, err
	}
	out, err := envelope.Decode[T](payload)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDecodePayload, err)
	}
	return out, nil
}
