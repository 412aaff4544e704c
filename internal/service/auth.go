package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/resetcode"
	"github.com/Skotchmaster/storefront/internal/transport"
	pkghash "github.com/Skotchmaster/storefront/pkg/hash"
	jwthelp "github.com/Skotchmaster/storefront/pkg/jwt"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// ClientMeta is stored alongside each refresh token.
type ClientMeta struct {
	UserAgent string
	IP        string
}

// Session is the outcome of register, login and refresh.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
	RefreshExp   time.Time
}

type AuthService struct {
	Repo          *repo.GormRepo
	Resets        resetcode.Store
	Events        mykafka.Publisher
	JWTSecret     []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return DefaultAccessTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return DefaultRefreshTTL
}

func (s *AuthService) CreateAccessToken(u *models.User, now time.Time) (string, error) {
	return tokens.SignAccess(tokens.AccessClaims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL())),
		},
	}, s.JWTSecret)
}

func (s *AuthService) CreateRefreshToken(userID uint, now time.Time) (token, jti string, err error) {
	jti = jwthelp.NewJTI()
	token, err = tokens.SignRefresh(tokens.RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL())),
		},
	}, s.RefreshSecret)
	return token, jti, err
}

// newRefreshRow signs a refresh token and builds the row that backs it.
func (s *AuthService) newRefreshRow(userID uint, meta ClientMeta, now time.Time) (string, *models.RefreshToken, error) {
	token, jti, err := s.CreateRefreshToken(userID, now)
	if err != nil {
		return "", nil, err
	}
	return token, &models.RefreshToken{
		UserID:     userID,
		JTI:        jti,
		TokenHash:  jwthelp.Sha256Hex(token),
		DeviceInfo: truncate(meta.UserAgent, 255),
		IPAddress:  truncate(meta.IP, 64),
		ExpiresAt:  now.Add(s.refreshTTL()),
	}, nil
}

func (s *AuthService) issue(ctx context.Context, u *models.User, meta ClientMeta) (*Session, error) {
	now := s.now()
	access, err := s.CreateAccessToken(u, now)
	if err != nil {
		return nil, err
	}
	refresh, row, err := s.newRefreshRow(u.ID, meta, now)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.CreateRefreshToken(ctx, row); err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: access, RefreshToken: refresh, RefreshExp: row.ExpiresAt}, nil
}

func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest, meta ClientMeta) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}
	pwHash, err := pkghash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			l.Warn("register_error", "status", 409, "reason", "email already registered")
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	sess, err := s.issue(ctx, user, meta)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, user.ID, "user_registered", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	l.Info("user_registered", "user_id", user.ID)
	return sess, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest, meta ClientMeta) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown email")
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}
	if !pkghash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password", "user_id", user.ID)
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	if !user.IsActive {
		l.Warn("login_failed", "status", 403, "reason", "account disabled", "user_id", user.ID)
		return nil, ErrAccountDisabled
	}

	sess, err := s.issue(ctx, user, meta)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}
	return sess, nil
}

// Refresh rotates a refresh token. The presented token must match a live
// row; it is revoked and replaced in one transaction, so replaying it fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta ClientMeta) (*Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")
	now := s.now()

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil {
		l.Warn("refresh_failed", "status", 403, "reason", "bad token", "error", err)
		return nil, ErrInvalidRefreshToken
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		l.Warn("refresh_failed", "status", 403, "reason", "bad claims")
		return nil, ErrInvalidRefreshToken
	}

	row, err := s.Repo.FindRefreshByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 403, "reason", "unknown token")
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if row.UserID != uint(userID) || row.TokenHash != jwthelp.Sha256Hex(refreshToken) || !row.Active(now) {
		l.Warn("refresh_failed", "status", 403, "reason", "revoked or expired", "user_id", row.UserID)
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Repo.GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	if !user.IsActive {
		l.Warn("refresh_failed", "status", 403, "reason", "account disabled", "user_id", user.ID)
		return nil, ErrAccountDisabled
	}

	next, nextRow, err := s.newRefreshRow(user.ID, meta, now)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.RotateRefreshToken(ctx, row.JTI, row.TokenHash, nextRow, now); err != nil {
		if errors.Is(err, repo.ErrTokenRevoked) || errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 403, "reason", "lost rotation race", "user_id", user.ID)
			return nil, ErrInvalidRefreshToken
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	access, err := s.CreateAccessToken(user, now)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, AccessToken: access, RefreshToken: next, RefreshExp: nextRow.ExpiresAt}, nil
}

// Logout revokes the presented refresh token, if any.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.Repo.RevokeRefreshToken(ctx, jwthelp.Sha256Hex(refreshToken), s.now())
}

func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, userID)
	return u, fromRepo(err, "user")
}

// RequestPasswordChange parks the new hash behind a six digit code that
// expires after resetcode.DefaultTTL. The code is logged for delivery.
func (s *AuthService) RequestPasswordChange(ctx context.Context, userID uint, req transport.PasswordChangeRequest) error {
	l := logging.FromContext(ctx).With("svc", "auth.password_request", "user_id", userID)

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		return fromRepo(err, "user")
	}
	if req.CurrentPassword != "" && !pkghash.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		l.Warn("password_request_failed", "status", 400, "reason", "current password mismatch")
		return fmt.Errorf("%w: current password is incorrect", ErrValidation)
	}
	if len(req.NewPassword) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	pwHash, err := pkghash.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	code, err := pkghash.NumericCode()
	if err != nil {
		return err
	}
	if err := s.Resets.Put(ctx, userID, resetcode.Entry{Code: code, PasswordHash: pwHash}, resetcode.DefaultTTL); err != nil {
		l.Error("password_request_failed", "status", 500, "error", err)
		return err
	}

	l.Info("password_change_code", "email", user.Email, "code", code)
	return nil
}

func (s *AuthService) ConfirmPasswordChange(ctx context.Context, userID uint, code string) error {
	l := logging.FromContext(ctx).With("svc", "auth.password_confirm", "user_id", userID)

	entry, err := s.Resets.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, resetcode.ErrNotFound) {
			return fmt.Errorf("%w: no pending password change or code expired", ErrValidation)
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(entry.Code), []byte(code)) != 1 {
		l.Warn("password_confirm_failed", "status", 400, "reason", "wrong code")
		return fmt.Errorf("%w: invalid code", ErrValidation)
	}

	if err := s.Repo.UpdatePassword(ctx, userID, entry.PasswordHash, s.now()); err != nil {
		return fromRepo(err, "user")
	}
	if err := s.Resets.Delete(ctx, userID); err != nil {
		l.Warn("password_confirm_cleanup_failed", "error", err)
	}

	publish(ctx, s.Events, mykafka.TopicUserEvents, userID, "password_changed", map[string]any{"user_id": userID})
	l.Info("password_changed")
	return nil
}

// truncate caps s at n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
