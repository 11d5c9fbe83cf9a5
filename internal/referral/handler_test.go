package referral

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memStore struct {
	byID map[uint]*Referral
	next uint
}

func (m *memStore) Save(_ context.Context, ref *Referral) error {
	m.next++
	ref.ID = m.next
	m.byID[ref.ID] = ref
	return nil
}

func (m *memStore) FindByID(_ context.Context, id uint) (*Referral, error) {
	if r, ok := m.byID[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) Update(_ context.Context, ref *Referral) error {
	m.byID[ref.ID] = ref
	return nil
}

func (m *memStore) Delete(_ context.Context, id uint) error {
	if _, ok := m.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStore) ListViews(context.Context, Filter, utils.Page) ([]View, int64, error) {
	return nil, 0, nil
}

func (m *memStore) Summaries(context.Context) ([]Summary, error) { return nil, nil }

func newTestRouter() (*mux.Router, *memStore, *memImportStore) {
	store := &memStore{byID: map[uint]*Referral{}}
	imports := newMemImportStore()
	h := NewHandler(store, newImporter(imports))
	r := mux.NewRouter()
	r.HandleFunc("/admin/referrals", h.Create).Methods("POST")
	r.HandleFunc("/admin/referrals/template", h.Template).Methods("GET")
	r.HandleFunc("/admin/referrals/import", h.Import).Methods("POST")
	r.HandleFunc("/admin/referrals/import/preview", h.Preview).Methods("POST")
	r.HandleFunc("/admin/referrals/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/admin/referrals/{id}", h.Delete).Methods("DELETE")
	return r, store, imports
}

func multipartUpload(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("agent_name", "ops"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportEndpoint(t *testing.T) {
	r, _, imports := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "/admin/referrals/import", "orders.csv", sampleCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"imported":3,"settings":2}`, rec.Body.String())
	assert.Equal(t, "ops", imports.referrals["CUST001-ORD-001"].AgentName)
}

func TestImportEndpointRejectsExtension(t *testing.T) {
	r, _, imports := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "/admin/referrals/import", "orders.txt", sampleCSV))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Please select a valid CSV, XLS, or XLSX file."}`, rec.Body.String())
	assert.Zero(t, imports.calls)
}

func TestImportEndpointDuplicateIsConflict(t *testing.T) {
	r, _, imports := newTestRouter()
	body := header +
		"2024-09-27,,C1,S,,AFF-12345678,ORD-7,1,1,10,\n" +
		"2024-09-27,,C1,S,,AFF-12345678,ORD-7,1,1,10,\n"

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "/admin/referrals/import", "orders.csv", body))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `ORD-7`)
	assert.Empty(t, imports.referrals)
}

func TestPreviewDoesNotWrite(t *testing.T) {
	r, _, imports := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, multipartUpload(t, "/admin/referrals/import/preview", "orders.csv", sampleCSV))
	require.Equal(t, http.StatusOK, rec.Code)

	var out PreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Rows, 3)
	assert.Equal(t, 2, out.Settings)
	assert.Zero(t, imports.calls)
}

func TestTemplateEndpoint(t *testing.T) {
	r, _, _ := newTestRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/referrals/template", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "# Instructions:")
}

func TestCreateAndUpdateReferralRecomputesUUID(t *testing.T) {
	r, store, _ := newTestRouter()

	rec := httptest.NewRecorder()
	body := `{"affiliate_id":"AFF-12345678","customer_number":"C1","order_number":"O1","order_time":"45562","invoice_total":99}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/referrals", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, "C1-O1", store.byID[1].UUID)
	assert.Equal(t, "2024-09-27", store.byID[1].OrderTime.Format("2006-01-02"))

	rec = httptest.NewRecorder()
	body = `{"affiliate_id":"AFF-12345678","customer_number":"C1","order_number":"O2","order_time":"2024-09-30"}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/referrals/1", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "C1-O2", store.byID[1].UUID)

	rec = httptest.NewRecorder()
	body = `{"affiliate_id":"AFF-1","customer_number":"","order_number":"O2","order_time":"2024-09-30"}`
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/referrals", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "customer_number")
	assert.Contains(t, rec.Body.String(), "affiliate_id")
}

func TestDeleteReferralMissing(t *testing.T) {
	r, _, _ := newTestRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/referrals/42", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
