package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/commercive/dashboard-api/internal/notification"
	"github.com/commercive/dashboard-api/internal/user"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memUsers struct {
	byID     map[string]*user.User
	requests map[string]*user.SignupRequest
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*user.User{}, requests: map[string]*user.SignupRequest{}}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	if u, ok := m.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.byID {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) MarkConfirmed(_ context.Context, id string) error {
	m.byID[id].Confirmed = true
	return nil
}

func (m *memUsers) SetPassword(_ context.Context, id, hash string) error {
	m.byID[id].PasswordHash = hash
	return nil
}

func (m *memUsers) FindSignupRequest(_ context.Context, email string) (*user.SignupRequest, error) {
	if r, ok := m.requests[email]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUsers) CreateSignupRequest(_ context.Context, req *user.SignupRequest) error {
	m.requests[req.Email] = req
	return nil
}

type fakeEnroller struct {
	id  string
	err error
}

func (f fakeEnroller) EnrollAffiliate(context.Context, string, string) (string, error) {
	return f.id, f.err
}

type fakeMailer struct {
	mu      sync.Mutex
	signups []notification.Signup
	emails  []notification.Email
}

func (f *fakeMailer) NotifyNewSignup(_ context.Context, s notification.Signup) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signups = append(f.signups, s)
}

func (f *fakeMailer) SendEmail(_ context.Context, e notification.Email) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, e)
}

var tokenRe = regexp.MustCompile(`token=([A-Za-z0-9]+)`)

func (f *fakeMailer) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.emails)
	m := tokenRe.FindStringSubmatch(f.emails[len(f.emails)-1].HTML)
	require.Len(t, m, 2)
	return m[1]
}

type memSessions struct {
	rows []*RefreshToken
}

func (m *memSessions) Create(_ context.Context, rt *RefreshToken) error {
	rt.ID = uint(len(m.rows) + 1)
	m.rows = append(m.rows, rt)
	return nil
}

func (m *memSessions) FindByHash(_ context.Context, hash string) (*RefreshToken, error) {
	for _, rt := range m.rows {
		if rt.Hash == hash {
			cp := *rt
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memSessions) revokeWhere(at time.Time, match func(*RefreshToken) bool) {
	for _, rt := range m.rows {
		if rt.RevokedAt == nil && match(rt) {
			t := at
			rt.RevokedAt = &t
		}
	}
}

func (m *memSessions) Revoke(_ context.Context, id uint, at time.Time) error {
	m.revokeWhere(at, func(rt *RefreshToken) bool { return rt.ID == id })
	return nil
}

func (m *memSessions) RevokeFamily(_ context.Context, family string, at time.Time) error {
	m.revokeWhere(at, func(rt *RefreshToken) bool { return rt.FamilyID == family })
	return nil
}

func (m *memSessions) RevokeUser(_ context.Context, userID string, at time.Time) error {
	m.revokeWhere(at, func(rt *RefreshToken) bool { return rt.UserID == userID })
	return nil
}

func (m *memSessions) active() int {
	n := 0
	for _, rt := range m.rows {
		if rt.RevokedAt == nil {
			n++
		}
	}
	return n
}

type fixture struct {
	svc      *Service
	users    *memUsers
	mailer   *fakeMailer
	sessions *memSessions
}

func newFixture(enroller Enroller) *fixture {
	f := &fixture{users: newMemUsers(), mailer: &fakeMailer{}, sessions: &memSessions{}}
	f.svc = &Service{
		Users:      f.users,
		Affiliates: enroller,
		Mailer:     f.mailer,
		Tokens:     NewMemoryTokenStore(),
		Sessions:   f.sessions,
		Issuer:     NewTokenIssuer("test-secret", 15*time.Minute),
		RefreshTTL: time.Hour,
		BaseURL:    "https://dashboard.example.com",
		Log:        zerolog.Nop(),
	}
	return f
}

var signup = SignupDTO{Email: "Ann@Example.com", Password: "s3cretpass", FirstName: "Ann", LastName: "Lee"}

func TestSignupConfirmLogin(t *testing.T) {
	f := newFixture(fakeEnroller{id: "AFF-ABCDEFGH"})
	ctx := context.Background()

	u, err := f.svc.Signup(ctx, signup)
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, user.RoleUser, u.Role)
	require.Len(t, f.mailer.signups, 1)
	assert.Equal(t, notification.Signup{Email: "ann@example.com", FirstName: "Ann", LastName: "Lee", AffiliateID: "AFF-ABCDEFGH"}, f.mailer.signups[0])

	_, err = f.svc.Login(ctx, "ann@example.com", "s3cretpass")
	assert.ErrorIs(t, err, ErrNotConfirmed)

	require.NoError(t, f.svc.Confirm(ctx, f.mailer.lastToken(t)))

	s, err := f.svc.Login(ctx, "ANN@example.com", "s3cretpass")
	require.NoError(t, err)
	claims, err := f.svc.Issuer.Parse(s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.Subject)
	assert.Equal(t, "user", claims.Role)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture(fakeEnroller{id: "AFF-ABCDEFGH"})
	_, err := f.svc.Signup(context.Background(), signup)
	require.NoError(t, err)

	_, err = f.svc.Signup(context.Background(), signup)
	var se utils.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode())
	assert.Equal(t, "User_already_exists", se.Error())
}

func TestSignupSurvivesEnrolmentFailure(t *testing.T) {
	f := newFixture(fakeEnroller{err: errors.New("db down")})
	_, err := f.svc.Signup(context.Background(), signup)
	require.NoError(t, err)
	require.Len(t, f.mailer.signups, 1)
	assert.Empty(t, f.mailer.signups[0].AffiliateID)
}

func TestConfirmTokenIsSingleUse(t *testing.T) {
	f := newFixture(fakeEnroller{})
	_, err := f.svc.Signup(context.Background(), signup)
	require.NoError(t, err)
	tok := f.mailer.lastToken(t)

	require.NoError(t, f.svc.Confirm(context.Background(), tok))
	assert.ErrorIs(t, f.svc.Confirm(context.Background(), tok), ErrInvalidToken)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(fakeEnroller{})
	_, err := f.svc.Login(context.Background(), "nobody@example.com", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Signup(context.Background(), signup)
	require.NoError(t, err)
	_, err = f.svc.Login(context.Background(), signup.Email, "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func confirmedLogin(t *testing.T, f *fixture) *Session {
	t.Helper()
	u, err := f.svc.Signup(context.Background(), signup)
	require.NoError(t, err)
	u.Confirmed = true
	s, err := f.svc.Login(context.Background(), signup.Email, signup.Password)
	require.NoError(t, err)
	return s
}

func TestRefreshRotatesAndDetectsReuse(t *testing.T) {
	f := newFixture(fakeEnroller{})
	first := confirmedLogin(t, f)

	second, err := f.svc.Refresh(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Equal(t, 1, f.sessions.active())

	_, err = f.svc.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
	assert.Equal(t, 0, f.sessions.active())

	_, err = f.svc.Refresh(context.Background(), second.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	f := newFixture(fakeEnroller{})
	s := confirmedLogin(t, f)
	f.users.byID[s.UserID].Role = user.RoleAdmin

	next, err := f.svc.Refresh(context.Background(), s.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", next.Role)
}

func TestRefreshExpired(t *testing.T) {
	f := newFixture(fakeEnroller{})
	s := confirmedLogin(t, f)
	f.svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err := f.svc.Refresh(context.Background(), s.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestForgotAndReset(t *testing.T) {
	f := newFixture(fakeEnroller{})
	confirmedLogin(t, f)
	sent := len(f.mailer.emails)

	require.NoError(t, f.svc.Forgot(context.Background(), "unknown@example.com"))
	assert.Len(t, f.mailer.emails, sent)

	require.NoError(t, f.svc.Forgot(context.Background(), signup.Email))
	tok := f.mailer.lastToken(t)
	require.NoError(t, f.svc.Reset(context.Background(), tok, "newpassword"))
	assert.Equal(t, 0, f.sessions.active())

	_, err := f.svc.Login(context.Background(), signup.Email, signup.Password)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(context.Background(), signup.Email, "newpassword")
	assert.NoError(t, err)

	assert.ErrorIs(t, f.svc.Reset(context.Background(), tok, "another1"), ErrInvalidToken)
}

func TestRequestSignup(t *testing.T) {
	f := newFixture(fakeEnroller{})
	in := SignupRequestDTO{Email: "new@example.com", FirstName: "New"}

	req, err := f.svc.RequestSignup(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, user.RequestPending, req.Status)

	_, err = f.svc.RequestSignup(context.Background(), in)
	assert.ErrorIs(t, err, ErrAlreadyRequested)

	_, err = f.svc.Signup(context.Background(), signup)
	require.NoError(t, err)
	_, err = f.svc.RequestSignup(context.Background(), SignupRequestDTO{Email: signup.Email, FirstName: "Ann"})
	assert.ErrorIs(t, err, ErrAlreadySignedUp)
}

func TestRefreshHandlerClearsCookieOnFailure(t *testing.T) {
	f := newFixture(fakeEnroller{})
	h := NewHandler(f.svc, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "bogus"})
	h.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestLoginHandlerSetsCookie(t *testing.T) {
	f := newFixture(fakeEnroller{})
	confirmedLogin(t, f)
	h := NewHandler(f.svc, true)

	rec := httptest.NewRecorder()
	body := `{"email":"ann@example.com","password":"s3cretpass"}`
	h.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"token_type":"Bearer"`)
	assert.Contains(t, rec.Body.String(), `"expires_in":900`)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "/auth", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)
}
