package appstate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/commercive/dashboard-api/internal/affiliate"
	"github.com/commercive/dashboard-api/internal/store"
	"github.com/commercive/dashboard-api/internal/user"
	"gorm.io/gorm"
)

// State is what a signed-in account can see: who it is, its affiliate row
// (nil when not enrolled), its stores and the store it is working on.
type State struct {
	User          *user.User           `json:"user"`
	Affiliate     *affiliate.Affiliate `json:"affiliate"`
	Stores        []store.Store        `json:"stores"`
	SelectedStore *store.Store         `json:"selected_store"`
}

// HasPermission reports whether page may be shown. Admins see everything;
// others need an approved affiliate row and the page in visible_pages,
// where home also grants dashboard.
func (s *State) HasPermission(page string) bool {
	if s == nil || s.User == nil {
		return false
	}
	if s.User.IsAdmin() {
		return true
	}
	if s.Affiliate == nil || s.Affiliate.Status != affiliate.StatusApproved {
		return false
	}
	if slices.Contains(s.User.VisiblePages, page) {
		return true
	}
	return page == user.PageDashboard && slices.Contains(s.User.VisiblePages, user.PageHome)
}

// Permissions lists every page the state grants.
func (s *State) Permissions() []string {
	out := []string{}
	for _, p := range user.AllPages {
		if s.HasPermission(p) {
			out = append(out, p)
		}
	}
	return out
}

// CanSeeStore reports whether storeURL is one of the account's stores.
func (s *State) CanSeeStore(storeURL string) bool {
	if s == nil {
		return false
	}
	if s.User != nil && s.User.IsAdmin() {
		return true
	}
	for _, st := range s.Stores {
		if st.StoreURL == storeURL {
			return true
		}
	}
	return false
}

type Users interface {
	FindByID(ctx context.Context, id string) (*user.User, error)
}

type Affiliates interface {
	FindByUserID(ctx context.Context, userID string) (*affiliate.Affiliate, error)
}

type Stores interface {
	ListAll(ctx context.Context) ([]store.Store, error)
	ListForUser(ctx context.Context, userID string) ([]store.Store, error)
}

// Container loads State from the repositories. It keeps no state itself.
type Container struct {
	users      Users
	affiliates Affiliates
	stores     Stores
}

func NewContainer(users Users, affiliates Affiliates, stores Stores) *Container {
	return &Container{users: users, affiliates: affiliates, stores: stores}
}

// Load builds the state of userID. selectedStoreID picks the working
// store when it is one of the account's stores; otherwise the first one is used.
func (c *Container) Load(ctx context.Context, userID, selectedStoreID string) (*State, error) {
	u, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	st := &State{User: u}

	a, err := c.affiliates.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		st.Affiliate = a
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("load affiliate: %w", err)
	}

	if u.IsAdmin() {
		st.Stores, err = c.stores.ListAll(ctx)
	} else {
		st.Stores, err = c.stores.ListForUser(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("load stores: %w", err)
	}
	if st.Stores == nil {
		st.Stores = []store.Store{}
	}
	st.SelectedStore = pick(st.Stores, selectedStoreID)
	return st, nil
}

// Refresh reloads st keeping its store selection when still allowed.
func (c *Container) Refresh(ctx context.Context, st *State) (*State, error) {
	var selected string
	if st.SelectedStore != nil {
		selected = st.SelectedStore.ID
	}
	return c.Load(ctx, st.User.ID, selected)
}

func pick(stores []store.Store, id string) *store.Store {
	if len(stores) == 0 {
		return nil
	}
	for i := range stores {
		if stores[i].ID == id {
			return &stores[i]
		}
	}
	return &stores[0]
}
