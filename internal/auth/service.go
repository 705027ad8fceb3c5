// Package auth is the operator identity provider: login, passphrase-gated
// registration, logout and token verification. The admission core receives
// the resulting principal and never touches credentials.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"portaria/internal/audit"
	"portaria/internal/auth/broadcast"
	"portaria/internal/auth/models"
	"portaria/internal/auth/store/session"
	"portaria/internal/auth/store/user"
	"portaria/internal/platform/metrics"
	dErrors "portaria/pkg/domain-errors"
	"portaria/pkg/platform/sentinel"
	"portaria/pkg/requestcontext"
)

// DefaultSessionTTL bounds how long an issued token stays valid.
const DefaultSessionTTL = 12 * time.Hour

// Service authenticates operators and maintains their sessions.
type Service struct {
	users       user.Store
	sessions    session.Store
	jwt         *JWTService
	audit       *audit.Service
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger
	metrics     *metrics.Metrics
	passphrase  string
	sessionTTL  time.Duration
}

type Config struct {
	Passphrase string
	SessionTTL time.Duration
}

func NewService(
	users user.Store,
	sessions session.Store,
	jwt *JWTService,
	auditLog *audit.Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		users:       users,
		sessions:    sessions,
		jwt:         jwt,
		audit:       auditLog,
		broadcaster: broadcast.New(),
		logger:      logger,
		metrics:     m,
		passphrase:  cfg.Passphrase,
		sessionTTL:  ttl,
	}
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResult, error) {
	if req.Email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Email and password are required")
	}

	account, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up operator")
	}
	if bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(req.Password)) != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	}

	result, err := s.openSession(ctx, account.Operator)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.ActionUserLogin,
		"Usuário "+account.Name+" fez login",
		&audit.Actor{ID: account.ID.String(), Name: account.Name}, audit.LevelInfo)

	s.metrics.IncrementOperatorLogins()
	s.logger.InfoContext(ctx, "operator logged in",
		"operator_id", account.ID.String(),
		"device", requestcontext.Device(ctx),
		"client_ip", requestcontext.ClientIP(ctx),
	)
	s.broadcaster.Notify(&result.Operator)
	return result, nil
}

// Register creates a new admin operator. It is gated by the shared
// passphrase supplied by the caller, not by an existing session.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResult, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Email, password, and name are required")
	}
	if subtle.ConstantTimeCompare([]byte(req.Passphrase), []byte(s.passphrase)) != 1 {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid admin password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	account := &models.Account{
		Operator: models.Operator{
			ID:    uuid.New(),
			Email: strings.ToLower(req.Email),
			Name:  req.Name,
			Role:  models.RoleAdmin,
		},
		PasswordHash: hash,
		CreatedAt:    requestcontext.Now(ctx).UTC(),
	}
	if err := s.users.Create(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create operator")
	}

	result, err := s.openSession(ctx, account.Operator)
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, audit.ActionUserRegistration,
		"Novo usuário "+account.Name+" foi registrado",
		&audit.Actor{ID: account.ID.String(), Name: account.Name}, audit.LevelInfo)

	s.broadcaster.Notify(&result.Operator)
	return result, nil
}

// Logout deletes the session carried by the token; outstanding copies of the
// token fail verification from then on.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return err
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "session expired or revoked")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}

	s.audit.Log(ctx, audit.ActionUserLogout,
		"Usuário fez logout",
		&audit.Actor{ID: claims.OperatorID, Name: claims.Name}, audit.LevelInfo)

	s.broadcaster.Notify(nil)
	return nil
}

// Verify validates a token and confirms its session is still open, returning
// the principal. Used by the auth middleware.
func (s *Service) Verify(ctx context.Context, token string) (*models.Operator, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "session expired or revoked")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	operatorID, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	return &models.Operator{
		ID:   operatorID,
		Name: claims.Name,
		Role: models.Role(claims.Role),
	}, nil
}

// Subscribe registers fn on the auth-state observable and returns an
// unsubscribe handle. fn receives the principal on login/registration and
// nil on logout.
func (s *Service) Subscribe(fn func(*models.Operator)) func() {
	return s.broadcaster.Subscribe(fn)
}

func (s *Service) openSession(ctx context.Context, operator models.Operator) (*models.LoginResult, error) {
	now := requestcontext.Now(ctx).UTC()
	sess := &models.Session{
		ID:         uuid.New(),
		OperatorID: operator.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save session")
	}
	token, err := s.jwt.GenerateToken(operator, sess.ID, s.sessionTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return &models.LoginResult{Operator: operator, Token: token}, nil
}
