package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"zando/internal/backend"
	"zando/internal/domain"
	applog "zando/internal/log"
	"zando/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

// DefaultSessionTTL applies when the token carries no exp claim.
const DefaultSessionTTL = 5 * time.Hour

type AuthService struct {
	API      AuthAPI
	Users    *repos.UserRepo
	Sessions *Registry
	TTL      time.Duration
	Now      func() time.Time
}

func NewAuthService(api AuthAPI, users *repos.UserRepo, sessions *Registry, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{API: api, Users: users, Sessions: sessions, TTL: ttl, Now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*Session, error) {
	u, err := s.API.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		if st := backend.StatusCode(err); st == http.StatusUnauthorized || st == http.StatusBadRequest || st == http.StatusNotFound {
			return nil, ErrBadCreds
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	return s.start(ctx, sid, u)
}

// GoogleLogin signs in with an ID token from Google Identity Services.
func (s *AuthService) GoogleLogin(ctx context.Context, sid, idToken string) (*Session, error) {
	u, err := s.API.GoogleLogin(ctx, idToken)
	if err != nil {
		if backend.StatusCode(err) == http.StatusUnauthorized {
			return nil, ErrBadCreds
		}
		return nil, fmt.Errorf("google login: %w", err)
	}
	return s.start(ctx, sid, u)
}

func (s *AuthService) start(ctx context.Context, sid string, u domain.User) (*Session, error) {
	if u.Token == "" {
		return nil, fmt.Errorf("login: backend issued no token")
	}
	if u.Name == "" {
		u.Name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	u.ExpiresAt = TokenExpiry(u.Token, s.Now(), s.TTL)
	if err := s.Users.BindSession(sid, &u); err != nil {
		return nil, err
	}
	sess, err := s.Sessions.Open(ctx, sid, &u)
	if err != nil {
		applog.Logger().Warn().Err(err).Int64("user_id", u.ID).Msg("session stores partially loaded")
	}
	return sess, nil
}

func (s *AuthService) Logout(sid string) error {
	s.Sessions.Close(sid)
	return s.Users.UnbindSession(sid)
}

// Current returns the live session for sid, restoring it from the session
// table after a restart. Expired sessions are ended; nil means anonymous.
func (s *AuthService) Current(ctx context.Context, sid string) (*Session, error) {
	if sid == "" {
		return nil, nil
	}
	now := s.Now()
	if sess, ok := s.Sessions.Get(sid); ok {
		if sess.User.Expired(now) {
			return nil, s.Logout(sid)
		}
		return sess, nil
	}
	u, err := s.Users.SessionUser(sid)
	if repos.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.Expired(now) {
		return nil, s.Logout(sid)
	}
	sess, err := s.Sessions.Resume(ctx, sid, u)
	if err != nil {
		applog.Logger().Warn().Err(err).Int64("user_id", u.ID).Msg("session stores partially loaded")
	}
	return sess, nil
}

func (s *AuthService) Register(ctx context.Context, in backend.RegisterRequest) error {
	return s.API.Register(ctx, in)
}

func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	return s.API.VerifyOTP(ctx, email, otp)
}

func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	return s.API.ResendOTP(ctx, email)
}

// TokenExpiry reads the exp claim of a JWT without verifying it (the backend
// does that on every call). Tokens without one expire ttl after issued.
func TokenExpiry(token string, issued time.Time, ttl time.Duration) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time
		}
	}
	return issued.Add(ttl)
}
