package client

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/taskmanager/domain"
)

// Session holds the signed-in user and token. Managers read it through
// UserSource and the HTTP client through TokenSource.
type Session struct {
	auth   Authenticator
	logger *zap.Logger

	mu      sync.RWMutex
	user    *domain.User
	token   string
	loading bool
}

func NewSession(auth Authenticator, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{auth: auth, logger: logger}
}

// SignIn replaces the current identity on success and leaves it untouched on failure.
func (s *Session) SignIn(ctx context.Context, email, password string) error {
	creds, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	if creds.Token == "" || creds.User == nil {
		return domain.NewError(domain.ErrCodeInternal, "sign-in response carried no credentials")
	}
	s.set(creds.User, creds.Token)
	s.logger.Debug("signed in", zap.String("user_id", creds.User.ID))
	return nil
}

// SignUp registers the account and signs it in.
func (s *Session) SignUp(ctx context.Context, email, password, name string) error {
	if _, err := s.auth.SignUp(ctx, email, password, name); err != nil {
		return err
	}
	return s.SignIn(ctx, email, password)
}

// SignOut revokes the server session. Local state is cleared even when the
// revocation fails.
func (s *Session) SignOut(ctx context.Context) error {
	token := s.Token()
	s.set(nil, "")
	if token == "" {
		return nil
	}
	return s.auth.SignOut(ctx, token)
}

// Restore resumes a previously issued token. Loading reports true meanwhile.
func (s *Session) Restore(ctx context.Context, token string) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	user, err := s.auth.CurrentUser(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.user, s.token = nil, ""
		return err
	}
	s.user, s.token = user, token
	return nil
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) set(user *domain.User, token string) {
	s.mu.Lock()
	s.user, s.token = user, token
	s.mu.Unlock()
}
