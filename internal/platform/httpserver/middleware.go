package httpserver

import (
	"context"
	"net"
	"net/http"
	"strings"

	"questboard/contexts/task-engagement/submission-service/application/commands"
	"questboard/internal/platform/auth"
)

type actorKey struct{}

// member authenticates the bearer token and provisions the caller's member
// record before the handler runs.
func (s *Server) member(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := s.authenticate(w, r)
		if !ok {
			return
		}
		member, err := s.submissions.Handler.EnsureMemberHandler(r.Context(), commands.EnsureMemberCommand{
			MemberID:    principal.MemberID,
			Email:       principal.Email,
			DisplayName: principal.Name,
			Active:      principal.Active,
		})
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		ctx := auth.WithPrincipal(r.Context(), principal)
		ctx = context.WithValue(ctx, actorKey{}, commands.Actor{
			MemberID: member.MemberID,
			Active:   member.Active,
		})
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) moderator(next http.HandlerFunc) http.HandlerFunc {
	return s.member(func(w http.ResponseWriter, r *http.Request) {
		principal, _ := auth.PrincipalFrom(r.Context())
		if !principal.IsModerator() {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "moderator role is required", nil)
			return
		}
		next(w, r)
	})
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (auth.Principal, bool) {
	if s.verifier == nil {
		writeError(w, http.StatusUnauthorized, "AUTH_NOT_CONFIGURED", auth.ErrNotConfigured.Error(), nil)
		return auth.Principal{}, false
	}
	token, err := auth.BearerToken(r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil)
		return auth.Principal{}, false
	}
	principal, err := s.verifier.Verify(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", auth.ErrInvalidToken.Error(), nil)
		return auth.Principal{}, false
	}
	return principal, true
}

// throttle guards expensive routes per member, falling back to client IP.
func (s *Server) throttle(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.uploadLimiter == nil {
			next(w, r)
			return
		}
		key := route + ":" + clientIP(r)
		if actor, ok := actorFrom(r.Context()); ok {
			key = route + ":" + actor.MemberID
		}
		allowed, err := s.uploadLimiter.Allow(r.Context(), key)
		if err != nil {
			// Fail open on limiter errors.
			s.logger.Warn("upload throttle unavailable",
				"event", "http_throttle_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"route", route,
				"error", err.Error(),
			)
		} else if !allowed {
			if s.throttled != nil {
				s.throttled.Throttled(route)
			}
			writeError(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "too many requests, slow down", nil)
			return
		}
		next(w, r)
	}
}

func actorFrom(ctx context.Context) (commands.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(commands.Actor)
	return actor, ok
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
