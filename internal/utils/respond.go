package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Fail writes a single error message.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// WriteError maps err to a response. Validation failures carry the field
// map, rejections their own message, anything else a generic 500 that is
// logged with the request logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		JSON(w, http.StatusBadRequest, map[string]any{"errors": ve.Fields})
		return
	}
	var se StatusError
	if errors.As(err, &se) {
		Fail(w, se.StatusCode(), se.Error())
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		Fail(w, http.StatusNotFound, ErrNotFound.Msg)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	Fail(w, http.StatusInternalServerError, "Internal server error")
}

// DecodeJSON decodes the body into dst and validates it.
func DecodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return NewValidationError("body", "malformed JSON")
	}
	return Validate(dst)
}

// Page is the pagination window read from ?page=&limit=.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// ParsePage reads page and limit with defaults 1 and 20, limit capped at 100.
func ParsePage(r *http.Request) Page {
	p := Page{Page: 1, Limit: 20}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Paginated is the list envelope returned by admin screens.
type Paginated[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}
