package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mintaslang/dew/internal/config"
	"github.com/mintaslang/dew/internal/types"
)

// SessionStore holds per-client session data keyed by session id. Ids are
// uuids carried in a cookie signed with HMAC-SHA256, so a client cannot
// forge or swap session ids.
type SessionStore struct {
	config config.SessionConfig

	mutex    sync.RWMutex
	sessions map[string]map[string]types.Value
}

// NewSessionStore creates a store for the given session configuration.
func NewSessionStore(cfg config.SessionConfig) *SessionStore {
	if cfg.CookieName == "" {
		cfg.CookieName = "dew_session"
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 3600
	}
	if cfg.Secret == "" {
		cfg.Secret = "change_me_in_production"
	}
	return &SessionStore{
		config:   cfg,
		sessions: make(map[string]map[string]types.Value),
	}
}

func (s *SessionStore) sign(id string) string {
	mac := hmac.New(sha256.New, []byte(s.config.Secret))
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}

// cookieValue is "<id>.<signature>".
func (s *SessionStore) cookieValue(id string) string {
	return id + "." + s.sign(id)
}

// verifyCookie extracts and verifies a session id from a cookie value. A
// missing or tampered signature yields false.
func (s *SessionStore) verifyCookie(value string) (string, bool) {
	dot := strings.LastIndex(value, ".")
	if dot <= 0 {
		return "", false
	}
	id, sig := value[:dot], value[dot+1:]
	expected := s.sign(id)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return id, true
}

// SessionID resolves a request to its session id, minting a new session
// when the cookie is absent or invalid. The second return is the Set-Cookie
// string to attach when a new session was created, empty otherwise.
func (s *SessionStore) SessionID(req *Request) (string, string) {
	if raw, ok := req.Cookies[s.config.CookieName]; ok {
		if id, valid := s.verifyCookie(raw); valid {
			return id, ""
		}
	}
	id := uuid.NewString()
	return id, s.buildCookie(id)
}

func (s *SessionStore) buildCookie(id string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s; Max-Age=%d; Path=/", s.config.CookieName, s.cookieValue(id), s.config.MaxAge)
	if s.config.HTTPOnly {
		b.WriteString("; HttpOnly")
	}
	if s.config.Secure {
		b.WriteString("; Secure")
	}
	if s.config.SameSite != "" {
		b.WriteString("; SameSite=" + s.config.SameSite)
	}
	return b.String()
}

// Get reads a session binding.
func (s *SessionStore) Get(id, key string) (types.Value, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return types.Null(), false
	}
	v, ok := session[key]
	return v, ok
}

// Set writes a session binding.
func (s *SessionStore) Set(id, key string, value types.Value) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		session = map[string]types.Value{}
		s.sessions[id] = session
	}
	session[key] = value
}

// Destroy drops a session and all its bindings.
func (s *SessionStore) Destroy(id string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.sessions, id)
}

// CSRFToken mints a token and stores it in the session.
func (s *SessionStore) CSRFToken(id string) string {
	token := uuid.NewString()
	s.Set(id, "_csrf_token", types.Str(token))
	return token
}

// VerifyCSRF compares a submitted token against the session's stored one.
func (s *SessionStore) VerifyCSRF(id, token string) bool {
	stored, ok := s.Get(id, "_csrf_token")
	if !ok || token == "" {
		return false
	}
	return hmac.Equal([]byte(stored.Text()), []byte(token))
}
