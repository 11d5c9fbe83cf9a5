package referral

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/commercive/dashboard-api/internal/commission"
	"github.com/commercive/dashboard-api/internal/utils"
	"github.com/rs/zerolog"
)

// Columns is the fixed order of an import sheet.
var Columns = []string{
	"time",
	"affiliate_commission",
	"customer_number",
	"store_name",
	"commission_rate",
	"affiliate_id",
	"order_number",
	"quantity_of_orders",
	"quantity_of_products",
	"invoice_total",
	"total_commission",
}

const (
	colTime = iota
	colAffiliateCommission
	colCustomerNumber
	colStoreName
	colCommissionRate
	colAffiliateID
	colOrderNumber
	colQuantityOfOrders
	colQuantityOfProducts
	colInvoiceTotal
	colTotalCommission
)

// DuplicateOrderError rejects a batch that lists the same order twice.
type DuplicateOrderError struct {
	OrderNumber string
}

func (e *DuplicateOrderError) Error() string {
	return fmt.Sprintf("Order Number %q is duplicated!", e.OrderNumber)
}

func (e *DuplicateOrderError) StatusCode() int { return http.StatusConflict }

var ErrEmptyFile = utils.NewError(http.StatusBadRequest, "The file has no data rows.")

// RowError points at the sheet row that failed to parse. Row is 1-based
// and counts the header.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row %d: %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) StatusCode() int { return http.StatusUnprocessableEntity }

func (e *RowError) Unwrap() error { return e.Err }

// Row is one parsed import line.
type Row struct {
	Line                int               `json:"line"`
	Time                string            `json:"time"`
	OrderTime           time.Time         `json:"-"`
	AffiliateCommission commission.Method `json:"affiliate_commission"`
	HasCommission       bool              `json:"-"`
	CustomerNumber      string            `json:"customer_number"`
	StoreName           string            `json:"store_name"`
	CommissionRate      float64           `json:"commission_rate"`
	AffiliateID         string            `json:"affiliate_id"`
	OrderNumber         string            `json:"order_number"`
	QuantityOfOrders    int               `json:"quantity_of_orders"`
	QuantityOfProducts  int               `json:"quantity_of_products"`
	InvoiceTotal        float64           `json:"invoice_total"`
	TotalCommission     float64           `json:"total_commission"`
	UUID                string            `json:"uuid"`
}

// Referral converts the row into the stored record.
func (r Row) Referral(agentName string) Referral {
	return Referral{
		UUID:               r.UUID,
		AffiliateID:        r.AffiliateID,
		AgentName:          agentName,
		CustomerNumber:     r.CustomerNumber,
		OrderNumber:        r.OrderNumber,
		OrderTime:          r.OrderTime,
		QuantityOfOrder:    r.QuantityOfOrders,
		QuantityOfProducts: r.QuantityOfProducts,
		InvoiceTotal:       r.InvoiceTotal,
		StoreName:          r.StoreName,
	}
}

// ImportStore persists a whole batch atomically.
type ImportStore interface {
	UpsertBatch(ctx context.Context, referrals []Referral, settings []commission.Setting) error
}

// SettingsSource loads the stored commission settings of an affiliate.
type SettingsSource interface {
	ListByAffiliate(ctx context.Context, affiliateID string) ([]commission.Setting, error)
}

// ImportResult is returned to the admin after a successful import.
type ImportResult struct {
	Imported int `json:"imported"`
	Settings int `json:"settings"`
}

// Recorder receives import outcomes for metrics.
type Recorder interface {
	ObserveImport(outcome string, rows int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveImport(string, int) {}

// Importer reconciles uploaded spreadsheets with the referrals table.
type Importer struct {
	store    ImportStore
	settings SettingsSource
	recorder Recorder
	log      zerolog.Logger
}

// NewImporter wires the importer. A nil settings source prices every row
// from the sheet alone.
func NewImporter(store ImportStore, settings SettingsSource, recorder Recorder, log zerolog.Logger) *Importer {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Importer{store: store, settings: settings, recorder: recorder, log: log}
}

// Parse reads and validates every row without writing anything. The file
// type is checked before a single byte is read.
func (im *Importer) Parse(ctx context.Context, name string, r io.Reader) ([]Row, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}
	raw, err := readRows(format, r)
	if err != nil {
		return nil, utils.NewError(http.StatusBadRequest, "Could not read the file: "+err.Error())
	}
	rows, err := ParseRows(raw)
	if err != nil {
		return nil, err
	}
	if err := im.price(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// price sets each row's total commission the way referral_view will once
// the batch lands: the batch's settings over the stored ones, customer
// before the affiliate default.
func (im *Importer) price(ctx context.Context, rows []Row) error {
	var merged []commission.Setting
	if im.settings != nil {
		loaded := map[string]bool{}
		for _, row := range rows {
			if loaded[row.AffiliateID] {
				continue
			}
			loaded[row.AffiliateID] = true
			stored, err := im.settings.ListByAffiliate(ctx, row.AffiliateID)
			if err != nil {
				return fmt.Errorf("load settings for %s: %w", row.AffiliateID, err)
			}
			merged = append(merged, stored...)
		}
	}
	idx := commission.Index(append(merged, SettingsFromRows(rows)...))
	for i := range rows {
		s := commission.Resolve(idx, rows[i].AffiliateID, rows[i].CustomerNumber)
		rows[i].TotalCommission = commission.Compute(s.CommissionMethod, s.CommissionRate, rows[i].InvoiceTotal)
	}
	return nil
}

// Import parses the file and upserts the whole batch, or nothing.
func (im *Importer) Import(ctx context.Context, name string, r io.Reader, agentName string) (ImportResult, error) {
	rows, err := im.Parse(ctx, name, r)
	if err != nil {
		im.recorder.ObserveImport("rejected", 0)
		return ImportResult{}, err
	}

	referrals := make([]Referral, 0, len(rows))
	for _, row := range rows {
		referrals = append(referrals, row.Referral(agentName))
	}
	settings := SettingsFromRows(rows)

	if err := im.store.UpsertBatch(ctx, referrals, settings); err != nil {
		im.recorder.ObserveImport("failed", 0)
		return ImportResult{}, fmt.Errorf("upsert referrals: %w", err)
	}
	im.recorder.ObserveImport("imported", len(referrals))
	im.log.Info().Str("file", name).Int("rows", len(referrals)).Int("settings", len(settings)).Msg("referrals imported")
	return ImportResult{Imported: len(referrals), Settings: len(settings)}, nil
}

// ParseRows drops the header, skips blank and # rows, and rejects the
// batch on the first bad row or duplicated order.
func ParseRows(raw [][]string) ([]Row, error) {
	if len(raw) > 0 {
		raw = raw[1:]
	}
	rows := make([]Row, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, cells := range raw {
		line := i + 2
		if isBlank(cells) || strings.HasPrefix(strings.TrimSpace(cells[0]), "#") {
			continue
		}
		row, err := parseRow(line, cells)
		if err != nil {
			return nil, err
		}
		if seen[row.UUID] {
			return nil, &DuplicateOrderError{OrderNumber: row.OrderNumber}
		}
		seen[row.UUID] = true
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func parseRow(line int, cells []string) (Row, error) {
	cell := func(i int) string {
		if i < len(cells) {
			return strings.TrimSpace(cells[i])
		}
		return ""
	}
	fail := func(col int, err error) (Row, error) {
		return Row{}, &RowError{Row: line, Column: Columns[col], Err: err}
	}

	row := Row{
		Line:           line,
		CustomerNumber: cell(colCustomerNumber),
		StoreName:      cell(colStoreName),
		AffiliateID:    cell(colAffiliateID),
		OrderNumber:    cell(colOrderNumber),
	}

	ts, err := ParseOrderTime(cell(colTime))
	if err != nil {
		return fail(colTime, err)
	}
	row.OrderTime, row.Time = ts, ts.Format(ISOLayout)

	if row.CustomerNumber == "" {
		return fail(colCustomerNumber, errRequired)
	}
	if row.OrderNumber == "" {
		return fail(colOrderNumber, errRequired)
	}
	if !utils.IsValidAffiliateID(row.AffiliateID) {
		return fail(colAffiliateID, fmt.Errorf("invalid affiliate ID %q", row.AffiliateID))
	}

	if v := cell(colAffiliateCommission); v != "" {
		m, err := commission.ParseMethod(v)
		if err != nil {
			return fail(colAffiliateCommission, errors.New("must be per_order or percentage"))
		}
		row.AffiliateCommission = m
		row.HasCommission = true
	}
	if row.CommissionRate, err = parseNumber(cell(colCommissionRate)); err != nil {
		return fail(colCommissionRate, err)
	}
	if row.QuantityOfOrders, err = parseCount(cell(colQuantityOfOrders)); err != nil {
		return fail(colQuantityOfOrders, err)
	}
	if row.QuantityOfProducts, err = parseCount(cell(colQuantityOfProducts)); err != nil {
		return fail(colQuantityOfProducts, err)
	}
	if row.InvoiceTotal, err = parseNumber(cell(colInvoiceTotal)); err != nil {
		return fail(colInvoiceTotal, err)
	}
	row.TotalCommission = commission.Compute(row.AffiliateCommission, row.CommissionRate, row.InvoiceTotal)
	row.UUID = Key(row.CustomerNumber, row.OrderNumber)
	return row, nil
}

// SettingsFromRows collects one commission setting per (affiliate,
// customer) pair that carries a method. Later rows win.
func SettingsFromRows(rows []Row) []commission.Setting {
	idx := map[string]int{}
	var out []commission.Setting
	for _, row := range rows {
		if !row.HasCommission {
			continue
		}
		s := commission.NewSetting(row.AffiliateID, row.CustomerNumber, row.AffiliateCommission, row.CommissionRate)
		if i, ok := idx[s.UID]; ok {
			out[i] = s
			continue
		}
		idx[s.UID] = len(out)
		out = append(out, s)
	}
	return out
}

var errRequired = errors.New("is required")

func parseNumber(s string) (float64, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return f, nil
}

// maxCount bounds the quantity columns.
const maxCount = 1_000_000_000

func parseCount(s string) (int, error) {
	f, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if f > maxCount {
		return 0, fmt.Errorf("%v is out of range (max %d)", f, maxCount)
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	return int(f), nil
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
