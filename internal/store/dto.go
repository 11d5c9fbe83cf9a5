package store

import "strings"

type StoreDTO struct {
	StoreName          string `json:"store_name" validate:"required,max=255"`
	StoreURL           string `json:"store_url" validate:"required,max=255"`
	IsInventoryFetched bool   `json:"is_inventory_fetched"`
	IsStoreListed      bool   `json:"is_store_listed"`
}

type LinksDTO struct {
	StoreIDs []string `json:"store_ids"`
}

// NormalizeURL strips the scheme and trailing slash so one shop has one key.
func NormalizeURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimRight(u, "/")
}

func (d StoreDTO) apply(s *Store) {
	s.StoreName = strings.TrimSpace(d.StoreName)
	s.StoreURL = NormalizeURL(d.StoreURL)
	s.IsInventoryFetched = d.IsInventoryFetched
	s.IsStoreListed = d.IsStoreListed
}
