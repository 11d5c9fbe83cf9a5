package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/commercive/dashboard-api/internal/notification"
	"github.com/commercive/dashboard-api/internal/user"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	kindConfirm = "confirm"
	kindReset   = "reset"

	confirmTTL = 24 * time.Hour
	resetTTL   = time.Hour
)

var (
	ErrUserExists         = utils.NewError(http.StatusConflict, "User_already_exists")
	ErrInvalidCredentials = utils.NewError(http.StatusUnauthorized, "Invalid email or password")
	ErrNotConfirmed       = utils.NewError(http.StatusForbidden, "Email_not_confirmed")
	ErrInvalidToken       = utils.NewError(http.StatusBadRequest, "Invalid or expired token")
	ErrInvalidRefresh     = utils.NewError(http.StatusUnauthorized, "Invalid refresh token")
	ErrAlreadySignedUp    = utils.NewError(http.StatusConflict, "Already Signed Up")
	ErrAlreadyRequested   = utils.NewError(http.StatusConflict, "Already Requested")
)

// Users is the account persistence the auth flows need.
type Users interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id string) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	MarkConfirmed(ctx context.Context, id string) error
	SetPassword(ctx context.Context, id, hash string) error
	FindSignupRequest(ctx context.Context, email string) (*user.SignupRequest, error)
	CreateSignupRequest(ctx context.Context, req *user.SignupRequest) error
}

// Enroller creates the pending affiliate row for a new account.
type Enroller interface {
	EnrollAffiliate(ctx context.Context, userID, storeURL string) (string, error)
}

type Mailer interface {
	NotifyNewSignup(ctx context.Context, s notification.Signup)
	SendEmail(ctx context.Context, e notification.Email)
}

// Service implements sign-up, login and the token flows.
type Service struct {
	Users      Users
	Affiliates Enroller
	Mailer     Mailer
	Tokens     TokenStore
	Sessions   Sessions
	Issuer     *TokenIssuer
	RefreshTTL time.Duration
	// BaseURL prefixes the links put in e-mails.
	BaseURL string
	Log     zerolog.Logger

	now func() time.Time
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// Signup creates an unconfirmed account, enrolls it as a pending affiliate
// and sends the confirmation e-mail. The affiliate enrolment, webhook and
// e-mail are best-effort.
func (s *Service) Signup(ctx context.Context, in SignupDTO) (*user.User, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		UserName:     strings.TrimSpace(in.UserName),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Role:         user.RoleUser,
		VisiblePages: []string{},
		VisibleStore: []string{},
		PasswordHash: hash,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	affiliateID, err := s.Affiliates.EnrollAffiliate(ctx, u.ID, in.StoreURL)
	if err != nil {
		s.Log.Warn().Err(err).Str("user_id", u.ID).Msg("affiliate enrolment after signup failed")
	}
	s.Mailer.NotifyNewSignup(ctx, notification.Signup{
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		AffiliateID: affiliateID,
	})

	if err := s.sendLink(ctx, u, kindConfirm, confirmTTL, "/confirm", "Confirm your Commercive account"); err != nil {
		s.Log.Warn().Err(err).Str("user_id", u.ID).Msg("confirmation token not stored")
	}
	return u, nil
}

func (s *Service) sendLink(ctx context.Context, u *user.User, kind string, ttl time.Duration, path, subject string) error {
	tok, err := utils.NewToken()
	if err != nil {
		return err
	}
	if err := s.Tokens.Put(ctx, kind, tok, u.ID, ttl); err != nil {
		return err
	}
	link := strings.TrimRight(s.BaseURL, "/") + path + "?token=" + url.QueryEscape(tok)
	s.Mailer.SendEmail(ctx, notification.Email{
		To:      u.Email,
		Subject: subject,
		HTML:    fmt.Sprintf(`<p>Hi %s,</p><p><a href="%s">%s</a></p>`, u.FirstName, link, subject),
	})
	return nil
}

// Confirm consumes a confirmation token.
func (s *Service) Confirm(ctx context.Context, token string) error {
	userID, err := s.Tokens.Take(ctx, kindConfirm, token)
	if errors.Is(err, ErrTokenNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	return s.Users.MarkConfirmed(ctx, userID)
}

// Session is what a successful login or refresh hands back.
type Session struct {
	AccessToken    string
	RefreshToken   string
	RefreshExpires time.Time
	UserID         string
	Role           string
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.Confirmed {
		return nil, ErrNotConfirmed
	}
	return s.issue(ctx, u.ID, string(u.Role), uuid.NewString())
}

func (s *Service) issue(ctx context.Context, userID, role, family string) (*Session, error) {
	access, err := s.Issuer.Generate(userID, role)
	if err != nil {
		return nil, err
	}
	raw, err := genRaw()
	if err != nil {
		return nil, err
	}
	rt := &RefreshToken{
		UserID:    userID,
		FamilyID:  family,
		Hash:      hashRaw(raw),
		Role:      role,
		ExpiresAt: s.clock().Add(s.RefreshTTL),
	}
	if err := s.Sessions.Create(ctx, rt); err != nil {
		return nil, err
	}
	return &Session{AccessToken: access, RefreshToken: raw, RefreshExpires: rt.ExpiresAt, UserID: userID, Role: role}, nil
}

// Refresh rotates a refresh token. Presenting an already rotated token
// revokes its whole family.
func (s *Service) Refresh(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, ErrInvalidRefresh
	}
	cur, err := s.Sessions.FindByHash(ctx, hashRaw(raw))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidRefresh
	}
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if cur.RevokedAt != nil {
		s.Log.Warn().Str("user_id", cur.UserID).Str("family", cur.FamilyID).Msg("refresh token reuse, revoking family")
		if err := s.Sessions.RevokeFamily(ctx, cur.FamilyID, now); err != nil {
			return nil, err
		}
		return nil, ErrInvalidRefresh
	}
	if now.After(cur.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}
	if err := s.Sessions.Revoke(ctx, cur.ID, now); err != nil {
		return nil, err
	}
	// Role is re-read so admin changes apply on the next refresh.
	role := cur.Role
	if u, err := s.Users.FindByID(ctx, cur.UserID); err == nil {
		role = string(u.Role)
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidRefresh
	} else {
		return nil, err
	}
	return s.issue(ctx, cur.UserID, role, cur.FamilyID)
}

// Logout revokes the presented refresh token. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	cur, err := s.Sessions.FindByHash(ctx, hashRaw(raw))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Sessions.Revoke(ctx, cur.ID, s.clock())
}

// Forgot e-mails a reset link when the account exists. It never reports
// whether it does.
func (s *Service) Forgot(ctx context.Context, email string) error {
	u, err := s.Users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.sendLink(ctx, u, kindReset, resetTTL, "/reset-password", "Reset your Commercive password")
}

// Reset consumes a reset token, sets the password and signs out every
// session of the account.
func (s *Service) Reset(ctx context.Context, token, password string) error {
	userID, err := s.Tokens.Take(ctx, kindReset, token)
	if errors.Is(err, ErrTokenNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.Users.SetPassword(ctx, userID, hash); err != nil {
		return err
	}
	return s.Sessions.RevokeUser(ctx, userID, s.clock())
}

// RequestSignup records an access request for someone without an account.
func (s *Service) RequestSignup(ctx context.Context, in SignupRequestDTO) (*user.SignupRequest, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return nil, ErrAlreadySignedUp
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if _, err := s.Users.FindSignupRequest(ctx, email); err == nil {
		return nil, ErrAlreadyRequested
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	req := &user.SignupRequest{
		Email:       email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		UserName:    in.UserName,
		PhoneNumber: in.PhoneNumber,
		Status:      user.RequestPending,
	}
	if err := s.Users.CreateSignupRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func genRaw() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func hashRaw(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
