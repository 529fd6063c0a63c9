package chi

import (
	"net/http"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/chatdesk/internal/logger"
	"github.com/kailas-cloud/chatdesk/internal/repository/session"
)

const (
	sessionCookie = "chatdesk_session"
	sessionHeader = "X-Session-ID"
)

// sessionFor resolves the caller's session from the X-Session-ID header or
// the session cookie, creating one when neither names a live session. The
// id is echoed back in both. The returned request's logger carries the id.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session.Session, *http.Request) {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
	}

	sess, created := s.sessions.GetOrCreate(id)
	r = r.WithContext(logpkg.WithFields(r.Context(), zap.String("session_id", sess.ID)))
	if created {
		logpkg.FromContext(r.Context()).Debug("Session created")
	}
	w.Header().Set(sessionHeader, sess.ID)
	if created || id != sess.ID {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess, r
}
