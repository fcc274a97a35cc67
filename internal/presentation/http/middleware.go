package http

import (
	"context"
	"fmt"
	"net"
	stdhttp "net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"

	"eduvista/site/internal/domain/audit"
	"eduvista/site/internal/domain/auth"
	"eduvista/site/internal/platform/metrics"
)

const (
	rateLimitMessage = "You're sending requests a bit too quickly. Please wait a moment and try again."
	metadataRole     = "role"
)

func (s *Server) requestIDMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		reqID := uuid.NewString()
		goCtx := context.WithValue(ctx.Context(), requestIDContextKey, reqID)

		info := clientInfo{UserAgent: ctx.Header("User-Agent")}
		if req, _ := humago.Unwrap(ctx); req != nil {
			info.IP = clientIPFromRequest(req)
		}
		goCtx = context.WithValue(goCtx, clientContextKey, info)

		ctx = huma.WithContext(ctx, goCtx)
		ctx.SetHeader("X-Request-ID", reqID)

		if hub := sentry.GetHubFromContext(goCtx); hub != nil {
			hub.Scope().SetTag("request_id", reqID)
		}

		next(ctx)
	}
}

func (s *Server) rateLimitMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if s.rateLimiter == nil {
			next(ctx)
			return
		}

		req, _ := humago.Unwrap(ctx)
		if req == nil {
			next(ctx)
			return
		}

		ip := clientFromContext(ctx.Context()).IP
		allowed, wait := s.rateLimiter.Allow(ip)
		if allowed {
			next(ctx)
			return
		}

		if s.logger != nil {
			fields := logrus.Fields{
				"ip":          ip,
				"path":        req.URL.Path,
				"retry_after": wait.String(),
			}
			if requestID := RequestIDFromContext(ctx.Context()); requestID != "" {
				fields["request_id"] = requestID
			}
			s.logger.WithError(eris.New("rate limit exceeded")).WithFields(fields).Warn("request rate limited")
		}

		ctx.SetHeader("Retry-After", strconv.Itoa(int(wait/time.Second)))

		if strings.HasPrefix(req.URL.Path, "/api/") {
			_ = huma.WriteErr(s.api, ctx, stdhttp.StatusTooManyRequests, rateLimitMessage)
			return
		}

		resp := s.renderErrorResponse(ctx.Context(), stdhttp.StatusTooManyRequests, rateLimitMessage)
		ctx.SetHeader("Content-Type", resp.ContentType)
		ctx.SetStatus(stdhttp.StatusTooManyRequests)
		_, _ = ctx.BodyWriter().Write(resp.Body)
	}
}

func (s *Server) metricsMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()
		next(ctx)

		route := "unmatched"
		if op := ctx.Operation(); op != nil {
			route = op.Path
		}
		metrics.ObserveHTTPRequest(ctx.Method(), route, strconv.Itoa(statusOf(ctx)), time.Since(start).Seconds())
	}
}

func (s *Server) loggingMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if s.logger == nil {
			next(ctx)
			return
		}

		start := time.Now()
		next(ctx)

		status := statusOf(ctx)
		fields := logrus.Fields{
			"method":      ctx.Method(),
			"status":      status,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
		}

		if op := ctx.Operation(); op != nil {
			fields["route"] = op.Path
		}

		if req, _ := humago.Unwrap(ctx); req != nil {
			fields["path"] = req.URL.Path
			fields["remote_addr"] = req.RemoteAddr
		}

		if requestID := RequestIDFromContext(ctx.Context()); requestID != "" {
			fields["request_id"] = requestID
		}

		entry := s.logger.WithFields(fields)
		if status >= 500 {
			entry.Error("request failed")
		} else {
			entry.Info("request completed")
		}
	}
}

// authMiddleware guards operations that carry a role in their metadata and
// writes an audit entry for every mutating request it lets through.
func (s *Server) authMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		role, protected := requiredRole(ctx.Operation())
		if !protected {
			next(ctx)
			return
		}

		principal, err := s.auth.Authenticate(ctx.Context(), bearerToken(ctx.Header("Authorization")))
		if err == nil {
			err = auth.Authorize(principal, role)
		}
		if err != nil {
			_ = huma.WriteErr(s.api, ctx, statusForError(err), errorMessage(err))
			return
		}

		goCtx := context.WithValue(ctx.Context(), principalContextKey, principal)
		if hub := sentry.GetHubFromContext(goCtx); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: strconv.FormatUint(uint64(principal.UserID), 10), Email: principal.Email})
		}
		ctx = huma.WithContext(ctx, goCtx)

		next(ctx)

		if s.audit == nil || !isMutating(ctx.Method()) {
			return
		}

		info := clientFromContext(goCtx)
		entry := audit.Entry{
			ActorID:    principal.UserID,
			ActorEmail: principal.Email,
			Action:     ctx.Method(),
			Path:       ctx.URL().Path,
			Status:     statusOf(ctx),
			IP:         info.IP,
			UserAgent:  info.UserAgent,
		}
		// The handler may have been cancelled with the request; the entry
		// must still be written.
		s.audit.Record(context.WithoutCancel(goCtx), entry)
	}
}

func (s *Server) recoveryMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			if rec := recover(); rec != nil {
				var err error
				switch v := rec.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("panic: %v", v)
				}

				s.recordError(ctx.Context(), err, "panic recovered", nil)

				if hub := sentry.GetHubFromContext(ctx.Context()); hub != nil {
					hub.RecoverWithContext(ctx.Context(), rec)
					hub.Flush(2 * time.Second)
				}

				_ = huma.WriteErr(s.api, ctx, stdhttp.StatusInternalServerError, internalErrorMessage)
			}
		}()

		next(ctx)
	}
}

func (s *Server) sentryMiddleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if s.sentry == nil {
			next(ctx)
			return
		}

		hub := s.sentry.Clone()
		scope := hub.Scope()
		scope.SetTag("http.method", ctx.Method())
		if op := ctx.Operation(); op != nil {
			scope.SetTag("http.route", op.Path)
		}

		goCtx := sentry.SetHubOnContext(ctx.Context(), hub)
		ctx = huma.WithContext(ctx, goCtx)

		defer hub.Flush(2 * time.Second)

		next(ctx)
	}
}

func requiredRole(op *huma.Operation) (auth.Role, bool) {
	if op == nil || op.Metadata == nil {
		return "", false
	}
	role, ok := op.Metadata[metadataRole].(auth.Role)
	return role, ok && role != ""
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func isMutating(method string) bool {
	switch method {
	case stdhttp.MethodPost, stdhttp.MethodPut, stdhttp.MethodPatch, stdhttp.MethodDelete:
		return true
	}
	return false
}

func statusOf(ctx huma.Context) int {
	if status := ctx.Status(); status != 0 {
		return status
	}
	return stdhttp.StatusOK
}

func clientIPFromRequest(req *stdhttp.Request) string {
	if req == nil {
		return ""
	}

	if forwarded := strings.TrimSpace(req.Header.Get("X-Forwarded-For")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			candidate := strings.TrimSpace(parts[0])
			if candidate != "" {
				return candidate
			}
		}
	}

	if realIP := strings.TrimSpace(req.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(req.RemoteAddr)
	}
	return host
}
