package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the calculator endpoints over a session Store.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSessionLimit):
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

// ---------------------------------------------------------------------------
// Handlers: keypad and session lifecycle
// ---------------------------------------------------------------------------

// Keypad handles GET /calculator/keypad
func (h *Handler) Keypad(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, Keypad())
}

// CreateSession handles POST /calculator/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	ctx, span := tracer.Start(ctx, "calculator.session.create")
	defer span.End()

	sess, err := h.store.Create()
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "create", "cannot create session", err, statusFor(err), w)
		return
	}

	span.SetAttributes(attribute.String("calculator.session.id", sess.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator session created",
		zap.String("session_id", sess.ID),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	handlers.WriteJSON(w, http.StatusCreated, SessionResponse{ID: sess.ID, State: sess.State})
}

// GetSession handles GET /calculator/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.get",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	sess, err := h.store.Get(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "get", "session not found", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, State: sess.State})
}

// DeleteSession handles DELETE /calculator/sessions/{id}
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "calculator.session.delete",
		trace.WithAttributes(attribute.String("calculator.session.id", id)),
	)
	defer span.End()

	if err := h.store.Delete(id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "delete", "session not found", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	logger.Info("calculator session deleted",
		zap.String("session_id", id),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
	)

	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Handlers: state transitions
// ---------------------------------------------------------------------------

// Dispatch handles POST /calculator/sessions/{id}/actions
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.applyAction(w, r, Action{}, fmt.Errorf("invalid request body: %w", err))
		return
	}

	action, err := ParseAction(req.Type, req.Value)
	h.applyAction(w, r, action, err)
}

// PressKey handles POST /calculator/sessions/{id}/keys/{key}. The key is a
// keypad label; "/" must be sent percent-encoded.
func (h *Handler) PressKey(w http.ResponseWriter, r *http.Request) {
	label, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		h.applyAction(w, r, Action{}, fmt.Errorf("invalid key: %w", err))
		return
	}

	action, err := KeyAction(label)
	h.applyAction(w, r, action, err)
}

// applyAction is the shared implementation for every session transition.
// parseErr is the outcome of decoding the action from the request.
func (h *Handler) applyAction(w http.ResponseWriter, r *http.Request, action Action, parseErr error) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	id := chi.URLParam(r, "id")

	opName := string(action.Type)
	if opName == "" {
		opName = "action"
	}

	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName),
		trace.WithAttributes(
			attribute.String("calculator.session.id", id),
			attribute.String("calculator.action", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	if parseErr != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, parseErr.Error(), parseErr, http.StatusBadRequest, w)
		return
	}

	if action.Payload != "" {
		span.SetAttributes(attribute.String("calculator.action.value", action.Payload))
	}

	start := time.Now()
	sess, err := h.store.Dispatch(id, action)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "session not found", err, statusFor(err), w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("action", opName))
	actionsCounter.Add(ctx, 1, attrs)
	actionHistogram.Record(ctx, elapsed, attrs)

	if action.Type == ActionEvaluate {
		recordResult(ctx, sess.State.Current.String(), attrs)
	}

	span.AddEvent("action.applied", trace.WithAttributes(
		attribute.String("current_operand", sess.State.Current.String()),
		attribute.String("previous_operand", sess.State.Previous.String()),
		attribute.String("operator", string(sess.State.Operator)),
		attribute.Bool("overwrite", sess.State.Overwrite),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator action applied",
		zap.String("session_id", id),
		zap.String("action", opName),
		zap.String("value", action.Payload),
		zap.String("current_operand", sess.State.Current.String()),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, SessionResponse{ID: sess.ID, State: sess.State})
}

// recordResult publishes a finite numeric result on the result gauge.
func recordResult(ctx context.Context, text string, attrs metric.MeasurementOption) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return
	}
	resultGauge.Record(ctx, f, attrs)
}

// ---------------------------------------------------------------------------
// Handler: stateless evaluation
// ---------------------------------------------------------------------------

// Evaluate handles POST /calculator/evaluate: applies the evaluation rule to
// a pair of textual operands without touching any session.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(attribute.String("request.id", requestID)),
	)
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	op, err := ParseOperator(req.Operator)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid operator", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.operation", op.Name()),
		attribute.String("calculator.operand.previous", req.Previous),
		attribute.String("calculator.operand.current", req.Current),
	)

	start := time.Now()
	result := Compute(req.Previous, req.Current, op)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	attrs := metric.WithAttributes(attribute.String("action", "evaluate"))
	actionsCounter.Add(ctx, 1, attrs)
	actionHistogram.Record(ctx, elapsed, attrs)
	recordResult(ctx, result, attrs)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.String("result", result),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculator evaluation completed",
		zap.String("operation", op.Name()),
		zap.String("previous", req.Previous),
		zap.String("current", req.Current),
		zap.String("result", result),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, EvaluateResponse{
		Operator: string(op),
		Previous: req.Previous,
		Current:  req.Current,
		Result:   result,
	})
}

// ---------------------------------------------------------------------------
// Handler: key replay (demonstrates nested spans)
// ---------------------------------------------------------------------------

// Replay handles POST /calculator/replay: runs a sequence of key presses
// through the reducer, creating a child span for every key. No session is
// created; the starting state comes from the request or is fresh.
func (h *Handler) Replay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, "calculator.replay",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var req ReplayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	if len(req.Keys) == 0 {
		observability.RecordError(ctx, span, logger, errorCounter, "replay", "no keys provided", fmt.Errorf("keys array is empty"), http.StatusBadRequest, w)
		return
	}

	state := NewState()
	if req.State != nil {
		if err := validateState(*req.State); err != nil {
			observability.RecordError(ctx, span, logger, errorCounter, "replay", "invalid initial state", err, http.StatusBadRequest, w)
			return
		}
		state = *req.State
	}
	initial := state

	span.SetAttributes(attribute.Int("replay.keys_count", len(req.Keys)))

	logger.Info("starting key replay",
		zap.Int("keys", len(req.Keys)),
		zap.String("request_id", requestID),
	)

	steps := make([]ReplayStep, 0, len(req.Keys))

	for i, key := range req.Keys {
		_, stepSpan := tracer.Start(ctx, fmt.Sprintf("calculator.replay.step.%d", i),
			trace.WithAttributes(
				attribute.Int("replay.step.index", i),
				attribute.String("replay.step.key", key),
				attribute.String("replay.step.input", state.Current.String()),
			),
		)

		stepStart := time.Now()
		action, err := KeyAction(key)
		if err != nil {
			err = fmt.Errorf("step %d: %w", i, err)

			stepSpan.RecordError(err)
			stepSpan.SetStatus(codes.Error, err.Error())
			stepSpan.End()

			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("failed at step %d", i))

			errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("action", "replay")))

			logger.Error("replay step failed",
				zap.Int("step", i),
				zap.String("key", key),
				zap.Error(err),
				zap.String("request_id", requestID),
			)

			handlers.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		state = Reduce(state, action)
		stepElapsed := float64(time.Since(stepStart).Microseconds()) / 1000.0

		attrs := metric.WithAttributes(attribute.String("action", string(action.Type)))
		actionsCounter.Add(ctx, 1, attrs)
		actionHistogram.Record(ctx, stepElapsed, attrs)

		stepSpan.SetAttributes(
			attribute.String("replay.step.action", string(action.Type)),
			attribute.String("replay.step.result", state.Current.String()),
		)
		stepSpan.SetStatus(codes.Ok, "")
		stepSpan.End()

		logger.Debug("replay step applied",
			zap.Int("step", i),
			zap.String("key", key),
			zap.String("current_operand", state.Current.String()),
			zap.Float64("duration_ms", stepElapsed),
		)

		steps = append(steps, ReplayStep{Key: key, State: state})
	}

	recordResult(ctx, state.Current.String(), metric.WithAttributes(attribute.String("action", "replay")))

	span.AddEvent("replay.complete", trace.WithAttributes(
		attribute.String("current_operand", state.Current.String()),
		attribute.Int("total_steps", len(steps)),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("key replay completed",
		zap.String("current_operand", state.Current.String()),
		zap.Int("steps", len(steps)),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, ReplayResponse{
		Initial: initial,
		Steps:   steps,
		State:   state,
	})
}

// validateState rejects client-supplied states the reducer could never
// produce on its own.
func validateState(s State) error {
	if s.Operator != OpNone {
		if _, err := ParseOperator(string(s.Operator)); err != nil {
			return err
		}
	}
	if s.Previous.IsSet() != (s.Operator != OpNone) {
		return fmt.Errorf("previous operand and operator must be set together")
	}
	return nil
}
