package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"procurement-approval/internal/infrastructure/logger"
	"procurement-approval/internal/shared/apperror"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// storeTimeout caps each redis round trip made while guarding a request.
const storeTimeout = 2 * time.Second

type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Idempotency guards mutating routes: the key is method + route + actor +
// Ax-Request-Id. Must run after Actor. Completed responses below 500 are
// replayed for ttl; a reused id with a different body is a conflict.
func Idempotency(rdb *redis.Client, ttl time.Duration, log *zap.Logger) echo.MiddlewareFunc {
	log = logger.OrNop(log).Named("idempotency")
	store := &replayStore{rdb: rdb, ttl: ttl}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			reqID, ok := normalizeRequestID(req.Header.Get(headerRequestID))
			if !ok {
				msg := "invalid " + headerRequestID + " format"
				if req.Header.Get(headerRequestID) == "" {
					msg = "missing " + headerRequestID
				}
				return writeError(c, apperror.ErrBadRequest.WithMessage(msg))
			}
			sentAt, err := parseRequestAt(req.Header.Get(headerRequestAt))
			if err != nil {
				return writeError(c, apperror.ErrBadRequest.WithMessage(err.Error()))
			}
			if !withinSkew(sentAt, time.Now().UTC()) {
				return writeError(c, apperror.ErrBadRequest.WithMessage(headerRequestAt+" too skewed"))
			}
			actorID, ok := ActorID(c)
			if !ok {
				return writeError(c, apperror.ErrUnauthorized)
			}

			var body []byte
			if req.Body != nil {
				body, _ = io.ReadAll(req.Body)
			}
			req.Body = io.NopCloser(bytes.NewReader(body))

			key := replayKey(req.Method, c.Path(), actorID, reqID)
			entry := storedResponse{
				Fingerprint: fingerprint(body),
				RequestID:   reqID,
				SentAt:      sentAt,
				StoredAt:    time.Now().UTC(),
			}

			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()
			reserved, err := store.reserve(ctx, key, entry)
			if err != nil {
				log.Error("reserve idempotency key failed", zap.String("key", key), zap.Error(err))
				return writeError(c, apperror.ErrUnavailable.WithMessage("idempotency store unavailable"))
			}
			if !reserved {
				prev, err := store.get(ctx, key)
				if err != nil {
					log.Warn("load idempotency entry failed", zap.String("key", key), zap.Error(err))
				}
				switch {
				case prev.Fingerprint != "" && prev.Fingerprint != entry.Fingerprint:
					return writeError(c, apperror.ErrConflict.WithMessage(headerRequestID+" reused with different body"))
				case prev.replayable():
					c.Response().Header().Set(headerReplay, "true")
					return c.Blob(prev.Status, echo.MIMEApplicationJSON, prev.Body)
				default:
					return writeError(c, apperror.ErrConflict.WithMessage("request is already in progress"))
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the key outlives the request context
			bg := context.WithoutCancel(req.Context())
			if cw.status >= http.StatusInternalServerError {
				if err := store.release(bg, key); err != nil {
					log.Warn("release idempotency key failed", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			entry.Status = cw.status
			entry.Body = cw.buf.Bytes()
			entry.StoredAt = time.Now().UTC()
			if err := store.finish(bg, key, entry); err != nil {
				log.Warn("save idempotency entry failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
