package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sessionCookie = "famlife_session"

// sessionTTL bounds how long an idle login stays valid.
const sessionTTL = 7 * 24 * time.Hour

type session struct {
	Username  string
	Name      string
	CreatedAt time.Time
}

// sessionStore keeps logged-in sessions in memory, keyed by an opaque UUID
// token. Restarting the server logs everyone out, which is acceptable for a
// household-sized deployment.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]session)}
}

func (s *sessionStore) Create(username, name string) string {
	token := uuid.New().String()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = session{Username: username, Name: name, CreatedAt: time.Now()}
	return token
}

func (s *sessionStore) Get(token string) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return session{}, false
	}
	if time.Since(sess.CreatedAt) > sessionTTL {
		delete(s.sessions, token)
		return session{}, false
	}
	return sess, true
}

func (s *sessionStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// checkCredentials validates a login against the fixed credential table.
func (s *Server) checkCredentials(username, password string) (name string, ok bool) {
	user, exists := s.users[username]
	// Compare even for unknown users to keep timing uniform.
	expected := user.Password
	if subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 || !exists {
		return "", false
	}
	return user.Name, true
}

// requireAuth gates requests on a valid session cookie. API paths get a JSON
// 401; browser paths redirect to the login form.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err == nil {
			if sess, ok := s.sessions.Get(cookie.Value); ok {
				next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
				return
			}
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			httpError(w, http.StatusUnauthorized, "authentication_error", "not logged in")
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}
