package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/commercive/dashboard-api/internal/appstate"
	"github.com/commercive/dashboard-api/internal/store"
	"github.com/commercive/dashboard-api/internal/user"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memStore struct {
	items   map[string]*Item
	listed  string
	created []Item
}

func (m *memStore) CreateMany(_ context.Context, items []Item) error {
	m.created = append(m.created, items...)
	return nil
}

func (m *memStore) FindByID(_ context.Context, id string) (*Item, error) {
	if it, ok := m.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) Update(_ context.Context, it *Item) error {
	m.items[it.InventoryID] = it
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memStore) ListByStore(_ context.Context, storeURL, _ string, _ utils.Page) ([]Item, int64, error) {
	m.listed = storeURL
	return []Item{}, 0, nil
}

func withState(r *http.Request) *http.Request {
	st := &appstate.State{
		User:   &user.User{ID: "u1", Role: user.RoleUser},
		Stores: []store.Store{{ID: "s1", StoreURL: "one.example.com"}},
	}
	st.SelectedStore = &st.Stores[0]
	return r.WithContext(appstate.WithState(r.Context(), st))
}

func TestListUsesSelectedStore(t *testing.T) {
	m := &memStore{}
	rec := httptest.NewRecorder()
	NewHandler(m).List(rec, withState(httptest.NewRequest(http.MethodGet, "/inventory", nil)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "one.example.com", m.listed)
}

func TestListRejectsForeignStore(t *testing.T) {
	m := &memStore{}
	rec := httptest.NewRecorder()
	NewHandler(m).List(rec, withState(httptest.NewRequest(http.MethodGet, "/inventory?store_url=https://other.example.com", nil)))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, m.listed)
}

func TestCreateAssignsIDs(t *testing.T) {
	m := &memStore{}
	body := `{"items":[{"store_url":"https://One.example.com/","product_name":" Mug ","sku":"M-1","inventory_level":{"main":3,"east":2}}]}`
	rec := httptest.NewRecorder()
	NewHandler(m).Create(rec, httptest.NewRequest(http.MethodPost, "/admin/inventory", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, m.created, 1)
	it := m.created[0]
	assert.NotEmpty(t, it.InventoryID)
	assert.Equal(t, "one.example.com", it.StoreURL)
	assert.Equal(t, "Mug", it.ProductName)
	assert.Equal(t, 5, it.Available())
}

func TestCreateRejectsEmptyBatch(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(&memStore{}).Create(rec, httptest.NewRequest(http.MethodPost, "/admin/inventory", strings.NewReader(`{"items":[]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAndDelete(t *testing.T) {
	m := &memStore{items: map[string]*Item{"i1": {InventoryID: "i1", StoreURL: "one.example.com", ProductName: "Mug"}}}
	r := mux.NewRouter()
	h := NewHandler(m)
	r.HandleFunc("/admin/inventory/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/admin/inventory/{id}", h.Delete).Methods("DELETE")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/admin/inventory/i1", strings.NewReader(`{"store_url":"one.example.com","product_name":"Cup","back_orders":2}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Cup", m.items["i1"].ProductName)
	assert.Equal(t, 2, m.items["i1"].BackOrders)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/inventory/i1", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/inventory/i1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRepositoryListByStore(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "inventory" WHERE store_url = \$1 AND`).
		WithArgs("one.example.com", "%mug%", "%mug%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "inventory" WHERE store_url = \$1 AND`).
		WillReturnRows(sqlmock.NewRows([]string{"inventory_id", "store_url", "product_name"}).AddRow("i1", "one.example.com", "Mug"))

	list, total, err := NewRepository(db).ListByStore(context.Background(), "one.example.com", "MUG", utils.Page{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
