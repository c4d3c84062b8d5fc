package goNebula

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/goNebula/internal/audit"
	"go.uber.org/zap"
)

const (
	auditEventLoginSuccess   = "login_success"
	auditEventLoginFailure   = "login_failure"
	auditEventLogout         = "logout"
	auditEventSessionExpired = "session_expired"
	auditEventForbidden      = "forbidden"
)

// NoOpSink drops audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink writes audit events into a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// ZapSink logs audit events through a zap logger.
type ZapSink = internalaudit.ZapSink

// NewChannelSink returns a sink backed by a channel of the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewZapSink returns a sink logging through logger.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return internalaudit.NewZapSink(logger)
}

func newAuditDispatcher(cfg AuditConfig, frontend Frontend, sink AuditSink, logger *zap.Logger) *internalaudit.Dispatcher {
	var s internalaudit.Sink
	if sink != nil {
		s = sink
	}
	return internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Enabled,
		BufferSize: cfg.BufferSize,
		DropIfFull: cfg.DropIfFull,
		Frontend:   string(frontend),
	}, s, logger)
}

func (c *Client) emitAudit(ctx context.Context, event AuditEvent) {
	if c == nil || c.audit == nil {
		return
	}
	if event.RequestID == "" {
		event.RequestID = RequestIDFromContext(ctx)
	}
	c.audit.Emit(ctx, event)
}

// auditFlowEvent adapts emitAudit to the flow callback shape.
func (c *Client) auditFlowEvent(ctx context.Context, event string, success bool, username string, err error, metadata func() map[string]string) {
	if c == nil || c.audit == nil {
		return
	}
	e := AuditEvent{
		EventType: event,
		Username:  username,
		Success:   success,
	}
	if err != nil {
		e.Error = err.Error()
	}
	if metadata != nil {
		e.Metadata = metadata()
	}
	c.emitAudit(ctx, e)
}
