package appstate

import (
	"context"
	"errors"
	"net/http"

	"github.com/commercive/dashboard-api/internal/auth"
	"github.com/commercive/dashboard-api/internal/utils"
	"gorm.io/gorm"
)

// StoreHeader carries the id of the store the client is working on.
const StoreHeader = "X-Store-ID"

type ctxKey struct{}

func WithState(ctx context.Context, st *State) context.Context {
	return context.WithValue(ctx, ctxKey{}, st)
}

// FromContext returns the state attached by Attach, or nil.
func FromContext(ctx context.Context) *State {
	st, _ := ctx.Value(ctxKey{}).(*State)
	return st
}

// Attach loads the state of the authenticated account for each request.
// It must run after auth.Authenticate.
func (c *Container) Attach(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := c.Load(r.Context(), auth.UserID(r.Context()), r.Header.Get(StoreHeader))
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(w, http.StatusUnauthorized, "Account not found")
			return
		}
		if err != nil {
			utils.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithState(r.Context(), st)))
	})
}

// RequirePage refuses requests whose state does not grant page.
func RequirePage(page string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).HasPermission(page) {
				utils.Fail(w, http.StatusForbidden, "You do not have access to this page")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type MeResponse struct {
	*State
	Permissions []string `json:"permissions"`
}

// GET /me
func Me(w http.ResponseWriter, r *http.Request) {
	st := FromContext(r.Context())
	if st == nil {
		utils.Fail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.JSON(w, http.StatusOK, MeResponse{State: st, Permissions: st.Permissions()})
}
