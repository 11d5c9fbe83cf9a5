package affiliate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commercive/dashboard-api/internal/auth"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memStore struct {
	rows      []*Affiliate
	reassigns map[uint][2]string
	failFor   uint
}

func (m *memStore) Create(_ context.Context, a *Affiliate) error {
	a.ID = uint(len(m.rows) + 1)
	m.rows = append(m.rows, a)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id uint) (*Affiliate, error) {
	for _, a := range m.rows {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) FindByUserID(_ context.Context, userID string) (*Affiliate, error) {
	for _, a := range m.rows {
		if a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) AffiliateIDExists(_ context.Context, id string) (bool, error) {
	for _, a := range m.rows {
		if a.AffiliateID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id uint, status Status) error {
	for _, a := range m.rows {
		if a.ID == id {
			a.Status = status
		}
	}
	return nil
}

func (m *memStore) SetFormURL(_ context.Context, id uint, formURL string) error {
	for _, a := range m.rows {
		if a.ID == id {
			a.FormURL = formURL
		}
	}
	return nil
}

func (m *memStore) ListAll(context.Context) ([]Affiliate, error) {
	out := make([]Affiliate, 0, len(m.rows))
	for _, a := range m.rows {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memStore) ReassignID(_ context.Context, id uint, oldID, newID string) error {
	if id == m.failFor {
		return errors.New("constraint violation")
	}
	if m.reassigns == nil {
		m.reassigns = map[uint][2]string{}
	}
	m.reassigns[id] = [2]string{oldID, newID}
	for _, a := range m.rows {
		if a.ID == id {
			a.AffiliateID = newID
		}
	}
	return nil
}

// sequence hands out the given ids in order.
func sequence(ids ...string) func() (string, error) {
	i := 0
	return func() (string, error) {
		id := ids[i%len(ids)]
		i++
		return id, nil
	}
}

func TestEnrollCreatesPendingAffiliate(t *testing.T) {
	store := &memStore{}
	svc := NewService(store, "https://dashboard.commercive.co")

	a, err := svc.Enroll(context.Background(), "u1", "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)
	assert.True(t, utils.IsValidAffiliateID(a.AffiliateID), a.AffiliateID)

	_, err = svc.Enroll(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollRetriesOnCollision(t *testing.T) {
	store := &memStore{rows: []*Affiliate{{ID: 1, AffiliateID: "AFF-AAAAAAAA", UserID: "u0"}}}
	svc := NewService(store, "")
	svc.newID = sequence("AFF-AAAAAAAA", "AFF-AAAAAAAA", "AFF-BBBBBBBB")

	id, err := svc.EnrollAffiliate(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "AFF-BBBBBBBB", id)
}

func TestEnrollGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := &memStore{rows: []*Affiliate{{ID: 1, AffiliateID: "AFF-AAAAAAAA", UserID: "u0"}}}
	svc := NewService(store, "")
	svc.newID = sequence("AFF-AAAAAAAA")

	_, err := svc.Enroll(context.Background(), "u1", "")
	assert.ErrorIs(t, err, ErrIDExhausted)
	assert.Len(t, store.rows, 1)
}

func TestChangeStatus(t *testing.T) {
	store := &memStore{rows: []*Affiliate{
		{ID: 1, AffiliateID: "AFF-AAAAAAAA", UserID: "u1", Status: StatusPending},
		{ID: 2, AffiliateID: "AFF-BBBBBBBB", UserID: "u2", Status: StatusCompleted},
	}}
	svc := NewService(store, "")

	a, err := svc.ChangeStatus(context.Background(), 1, StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, a.Status)
	assert.Equal(t, StatusApproved, store.rows[0].Status)

	_, err = svc.ChangeStatus(context.Background(), 2, StatusPending)
	assert.ErrorIs(t, err, ErrCompleted)
	assert.Equal(t, StatusCompleted, store.rows[1].Status)

	_, err = svc.ChangeStatus(context.Background(), 1, "Paused")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.ChangeStatus(context.Background(), 9, StatusApproved)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLinks(t *testing.T) {
	a := &Affiliate{AffiliateID: "AFF-ABC12345"}
	assert.Equal(t, "https://dashboard.commercive.co/affiliate-form?ref=AFF-ABC12345", a.Link("https://dashboard.commercive.co/"))

	a.FormURL = "https://short.link/x"
	assert.Equal(t, "https://short.link/x", a.Link("https://dashboard.commercive.co"))

	assert.Equal(t, "https://d.co/affiliate-form?ref=a+b%26c", FallbackLink("https://d.co", "a b&c"))
}

func TestRegenerateLink(t *testing.T) {
	store := &memStore{rows: []*Affiliate{{ID: 1, AffiliateID: "AFF-ABC12345", UserID: "u1", FormURL: "https://old"}}}
	svc := NewService(store, "https://dashboard.commercive.co")

	a, err := svc.RegenerateLink(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://dashboard.commercive.co/affiliate-form?ref=AFF-ABC12345", a.FormURL)
	assert.Equal(t, a.FormURL, store.rows[0].FormURL)

	_, err = svc.RegenerateLink(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrNotEnrolled)
}

type countRecorder struct{ n int }

func (c *countRecorder) AddBackfilled(n int) { c.n += n }

func TestBackfillRepairsMalformedIDs(t *testing.T) {
	store := &memStore{rows: []*Affiliate{
		{ID: 1, AffiliateID: "AFF-GOOD1234", UserID: "u1"},
		{ID: 2, AffiliateID: "legacy-7", UserID: "u2"},
		{ID: 3, AffiliateID: "", UserID: "u3"},
		{ID: 4, AffiliateID: "aff-lower123", UserID: "u4"},
	}}
	store.failFor = 4
	svc := NewService(store, "")
	svc.newID = sequence("AFF-NEW00001", "AFF-NEW00002", "AFF-NEW00003")
	rec := &countRecorder{}

	report, err := NewBackfill(svc, rec, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BackfillReport{Scanned: 4, Repaired: 2, Failed: 1}, report)
	assert.Equal(t, 2, rec.n)
	assert.Equal(t, [2]string{"legacy-7", "AFF-NEW00001"}, store.reassigns[2])
	assert.Equal(t, [2]string{"", "AFF-NEW00002"}, store.reassigns[3])
	assert.Equal(t, "AFF-GOOD1234", store.rows[0].AffiliateID)

	store.failFor = 0
	svc.newID = sequence("AFF-NEW00004")
	report, err = NewBackfill(svc, rec, zerolog.Nop()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Repaired)
}

func TestMineHandlerReportsNone(t *testing.T) {
	h := NewHandler(NewService(&memStore{}, ""), nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/partners/me/affiliate", nil)
	req = req.WithContext(auth.WithUser(req.Context(), "u1", "user"))
	rec := httptest.NewRecorder()
	h.Mine(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"None"`)
}

func TestEnrollHandlerConflict(t *testing.T) {
	store := &memStore{rows: []*Affiliate{{ID: 1, AffiliateID: "AFF-ABC12345", UserID: "u1"}}}
	h := NewHandler(NewService(store, ""), nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/partners/me/affiliate", strings.NewReader(`{}`))
	req = req.WithContext(auth.WithUser(req.Context(), "u1", "user"))
	rec := httptest.NewRecorder()
	h.Enroll(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
