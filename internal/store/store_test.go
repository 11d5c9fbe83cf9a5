package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "shop.myshopify.com", NormalizeURL(" https://Shop.myshopify.com/ "))
	assert.Equal(t, "shop.example.com/path", NormalizeURL("http://shop.example.com/path/"))
}

func TestLinkKey(t *testing.T) {
	assert.Equal(t, "u1-s1", LinkKey("u1", "s1"))
}

func TestRepositoryListForUser(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectQuery(`SELECT .+ FROM "stores" JOIN store_to_user ON store_to_user.store_id = stores.id WHERE store_to_user.user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "store_name", "store_url"}).AddRow("s1", "Shop", "shop.example.com"))

	list, err := NewRepository(db).ListForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "shop.example.com", list[0].StoreURL)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryDeleteMissing(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "store_to_user"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM "stores"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := NewRepository(db).Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

type memStorer struct {
	stores map[string]*Store
	links  map[string]Link
}

func newMem() *memStorer {
	return &memStorer{stores: map[string]*Store{}, links: map[string]Link{}}
}

func (m *memStorer) Create(_ context.Context, s *Store) error {
	m.stores[s.ID] = s
	return nil
}

func (m *memStorer) FindByID(_ context.Context, id string) (*Store, error) {
	if s, ok := m.stores[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStorer) Update(_ context.Context, s *Store) error {
	m.stores[s.ID] = s
	return nil
}

func (m *memStorer) Delete(_ context.Context, id string) error {
	if _, ok := m.stores[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.stores, id)
	return nil
}

func (m *memStorer) List(context.Context, string, utils.Page) ([]Store, int64, error) {
	var out []Store
	for _, s := range m.stores {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (m *memStorer) LinkUser(_ context.Context, userID, storeID string) error {
	m.links[LinkKey(userID, storeID)] = Link{UUID: LinkKey(userID, storeID), UserID: userID, StoreID: storeID}
	return nil
}

func (m *memStorer) UnlinkUser(_ context.Context, userID, storeID string) error {
	delete(m.links, LinkKey(userID, storeID))
	return nil
}

func (m *memStorer) ReplaceLinks(_ context.Context, userID string, ids []string) error {
	for k, l := range m.links {
		if l.UserID == userID {
			delete(m.links, k)
		}
	}
	for _, id := range ids {
		m.links[LinkKey(userID, id)] = Link{UUID: LinkKey(userID, id), UserID: userID, StoreID: id}
	}
	return nil
}

func router(m *memStorer) *mux.Router {
	h := NewHandler(m)
	r := mux.NewRouter()
	r.HandleFunc("/admin/stores", h.Create).Methods("POST")
	r.HandleFunc("/admin/stores/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/admin/stores/{id}/users/{userID}", h.Link).Methods("POST")
	r.HandleFunc("/admin/users/{userID}/stores", h.ReplaceLinks).Methods("PUT")
	return r
}

func TestCreateAndLink(t *testing.T) {
	m := newMem()
	r := router(m)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/stores", strings.NewReader(`{"store_name":"Shop","store_url":"https://Shop.example.com/"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, m.stores, 1)
	var id string
	for k, s := range m.stores {
		id = k
		assert.Equal(t, "shop.example.com", s.StoreURL)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/stores/"+id+"/users/u1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, m.links, "u1-"+id)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/stores/missing/users/u1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRequiresFields(t *testing.T) {
	rec := httptest.NewRecorder()
	router(newMem()).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/stores", strings.NewReader(`{"store_name":"Shop"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "store_url")
}

func TestReplaceLinks(t *testing.T) {
	m := newMem()
	m.links["u1-old"] = Link{UUID: "u1-old", UserID: "u1", StoreID: "old"}
	m.links["u2-old"] = Link{UUID: "u2-old", UserID: "u2", StoreID: "old"}

	rec := httptest.NewRecorder()
	router(m).ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/users/u1/stores", strings.NewReader(`{"store_ids":["a","b"]}`)))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, m.links, "u1-old")
	assert.Contains(t, m.links, "u2-old")
	assert.Contains(t, m.links, "u1-a")
	assert.Contains(t, m.links, "u1-b")
}
