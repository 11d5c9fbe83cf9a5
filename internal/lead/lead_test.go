package lead

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct{ leads []Lead }

func (m *memStore) Create(_ context.Context, l *Lead) error {
	m.leads = append(m.leads, *l)
	return nil
}

func (m *memStore) List(_ context.Context, source string, _ utils.Page) ([]Lead, int64, error) {
	var out []Lead
	for _, l := range m.leads {
		if source == "" || l.Source == source {
			out = append(out, l)
		}
	}
	return out, int64(len(out)), nil
}

func TestConversionRate(t *testing.T) {
	assert.Zero(t, ConversionRate(5, 0))
	assert.InDelta(t, 50.0, ConversionRate(2, 4), 1e-9)
	assert.InDelta(t, 150.0, ConversionRate(3, 2), 1e-9)
}

func TestSubmitAttributesRef(t *testing.T) {
	store := &memStore{}
	h := NewHandler(store)

	body := `{"name":"Jo","email":"JO@Example.com","webUrl":"https://shop.example"}`
	req := httptest.NewRequest(http.MethodPost, "/affiliate-form?ref=AFF-12345678", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.leads, 1)
	assert.Equal(t, "AFF-12345678", store.leads[0].Source)
	assert.Equal(t, "jo@example.com", store.leads[0].Email)
	assert.Len(t, store.leads[0].ID, 36)
}

func TestSubmitRejectsBadRef(t *testing.T) {
	store := &memStore{}
	h := NewHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/affiliate-form?ref=bogus", strings.NewReader(`{"name":"Jo","email":"jo@example.com"}`))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/affiliate-form", strings.NewReader(`{"name":"","email":"x"}`))
	rec = httptest.NewRecorder()
	h.Submit(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name"`)
	assert.Empty(t, store.leads)
}
