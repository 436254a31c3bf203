package frontauth

import (
	"context"
	"strconv"
	"time"

	internalaudit "github.com/nordframe/frontauth/internal/audit"
	"github.com/nordframe/frontauth/internal/envelope"
)

// Engine is the built, immutable-after-Build authentication core. It wires
// together the envelope codec (C1), credential resolver (C2), cookie
// manager (C3), login orchestrator (C4), response builder (C5), and the
// authentication-info model (C6) behind a single handle.
type Engine struct {
	static  StaticOptions
	dynamic DynamicOptionsSource

	codec *envelope.Codec

	backends   map[string]LoginService
	validator  ValidatorFunc
	autoBind   SideServiceFunc
	autoCreate SideServiceFunc

	metrics *Metrics
	audit   *internalaudit.Dispatcher

	now func() time.Time
}

// Close stops the engine's async audit dispatcher, draining any buffered
// events through the configured sink first. Safe to call on an Engine that
// never enabled audit.
func (e *Engine) Close() {
	e.audit.Close()
}

// AuditDropped reports how many audit events were discarded due to
// backpressure (only relevant when AuditConfig.DropIfFull is set).
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters and
// latency histogram.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// dynamicOptions re-reads the per-request options from the configured
// source (spec §5 "Options hot-reload"). A Builder that never called
// WithDynamicOptionsSource gets the snapshot captured at Build time on
// every call, which behaves exactly like a static config.
func (e *Engine) dynamicOptions() DynamicOptions {
	if e.dynamic == nil {
		return DynamicOptions{}
	}
	return e.dynamic()
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID uint64, deviceID, scheme string, err error) {
	if e.audit == nil {
		return
	}
	event := internalaudit.Event{
		Timestamp: e.clock().UTC(),
		EventType: eventType,
		DeviceID:  deviceID,
		Scheme:    scheme,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		event.Metadata = map[string]string{"user_agent": ua}
	}
	if userID != 0 {
		event.UserID = strconv.FormatUint(userID, 10)
	}
	if err != nil {
		event.Error = err.Error()
	}
	e.audit.Emit(ctx, event)
}
