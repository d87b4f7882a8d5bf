package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

// GenerateRequest body para POST /api/reconciliation/generate.
type GenerateRequest struct {
	Date                   string `json:"date" validate:"required,datetime=2006-01-02"`
	LocationID             int64  `json:"location_id" validate:"required,gt=0"`
	Shift                  string `json:"shift" validate:"required"`
	Overwrite              bool   `json:"overwrite"`
	HasTwoCashRegisters    *bool  `json:"has_two_cash_registers,omitempty"`
	ForceCashDiscrepancies bool   `json:"force_cash_discrepancies"`
}

// BatchRequest body para POST /api/reconciliation/generate/batch.
type BatchRequest struct {
	Date                   string `json:"date" validate:"required,datetime=2006-01-02"`
	Shift                  string `json:"shift" validate:"required"`
	Overwrite              bool   `json:"overwrite"`
	ForceCashDiscrepancies bool   `json:"force_cash_discrepancies"`
}

// GenerateResponse resumen de una generación.
type GenerateResponse struct {
	Key                string `json:"key"`
	Date               string `json:"date"`
	LocationID         int64  `json:"location_id"`
	Shift              string `json:"shift"`
	StockRows          int    `json:"stock_rows"`
	CashRows           int    `json:"cash_rows"`
	ForcedCashRows     int    `json:"forced_cash_rows"`
	DeletedStockRows   int64  `json:"deleted_stock_rows"`
	DeletedCashRows    int64  `json:"deleted_cash_rows"`
	SourceStockRecords int    `json:"source_stock_records"`
	SourceClosings     int    `json:"source_closings"`
}

// StockDiscrepancyResponse fila de diferencia de stock.
type StockDiscrepancyResponse struct {
	ID                 string           `json:"id"`
	Date               string           `json:"date"`
	LocationID         int64            `json:"location_id"`
	Shift              string           `json:"shift"`
	ProductID          string           `json:"product_id"`
	ProductName        string           `json:"product_name"`
	ExpectedClosingQty int64            `json:"expected_closing_qty"`
	ActualClosingQty   int64            `json:"actual_closing_qty"`
	DifferenceQty      int64            `json:"difference_qty"`
	DifferencePercent  *decimal.Decimal `json:"difference_percent"` // null si el esperado es 0
	UnitValue          decimal.Decimal  `json:"unit_value"`
	MonetaryValue      decimal.Decimal  `json:"monetary_value"`
	Severity           string           `json:"severity"`
	CreatedAt          time.Time        `json:"created_at"`
}

// CashDiscrepancyResponse fila de diferencia de caja.
type CashDiscrepancyResponse struct {
	ID                string          `json:"id"`
	Date              string          `json:"date"`
	LocationID        int64           `json:"location_id"`
	Shift             string          `json:"shift"`
	RegisterIndex     int             `json:"register_index"`
	ExpectedAmount    decimal.Decimal `json:"expected_amount"`
	ActualAmount      decimal.Decimal `json:"actual_amount"`
	DifferenceAmount  decimal.Decimal `json:"difference_amount"`
	DifferencePercent decimal.Decimal `json:"difference_percent"`
	Severity          string          `json:"severity"`
	Forced            bool            `json:"forced"`
	CreatedAt         time.Time       `json:"created_at"`
}

// LocationCashResponse vista combinada de las cajas de un local.
type LocationCashResponse struct {
	Date             string                    `json:"date"`
	LocationID       int64                     `json:"location_id"`
	DifferenceAmount decimal.Decimal           `json:"difference_amount"`
	Severity         string                    `json:"severity"`
	Registers        []CashDiscrepancyResponse `json:"registers"`
}

// CompensationResponse veredicto de compensación stock/caja.
type CompensationResponse struct {
	Date                   string          `json:"date"`
	LocationID             int64           `json:"location_id"`
	Shift                  *string         `json:"shift,omitempty"`
	StockValue             decimal.Decimal `json:"stock_value"`
	CashValue              decimal.Decimal `json:"cash_value"`
	NetDifference          decimal.Decimal `json:"net_difference"`
	Status                 string          `json:"status"`
	CompensationPercentage decimal.Decimal `json:"compensation_percentage"`
}

// HistoryResponse diferencias de un rango de fechas.
type HistoryResponse struct {
	LocationID int64                      `json:"location_id"`
	From       string                     `json:"from"`
	To         string                     `json:"to"`
	Stock      []StockDiscrepancyResponse `json:"stock"`
	Cash       []CashDiscrepancyResponse  `json:"cash"`
}

// SummaryResponse estadísticas de un período.
type SummaryResponse struct {
	LocationID          int64           `json:"location_id"`
	From                string          `json:"from"`
	To                  string          `json:"to"`
	Days                int             `json:"days"`
	StockRows           int             `json:"stock_rows"`
	CashRows            int             `json:"cash_rows"`
	StockBySeverity     map[string]int  `json:"stock_by_severity"`
	CashBySeverity      map[string]int  `json:"cash_by_severity"`
	StockMonetaryTotal  decimal.Decimal `json:"stock_monetary_total"`
	CashDifferenceTotal decimal.Decimal `json:"cash_difference_total"`
	LastDate            *string         `json:"last_date"`
}

// BatchOutcomeResponse resultado de un local dentro del lote.
type BatchOutcomeResponse struct {
	LocationID int64             `json:"location_id"`
	Status     string            `json:"status"`
	Result     *GenerateResponse `json:"result,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// LastDateResponse última fecha con diferencias (null si no hay).
type LastDateResponse struct {
	LocationID int64   `json:"location_id"`
	LastDate   *string `json:"last_date"`
}

// ToGenerateResponse mapea el resultado del caso de uso.
func ToGenerateResponse(r *reconciliation.GenerateResult) GenerateResponse {
	return GenerateResponse{
		Key:                r.Key.String(),
		Date:               r.Key.Date.Format(entity.DateLayout),
		LocationID:         r.Key.LocationID,
		Shift:              string(r.Key.Shift),
		StockRows:          r.StockRows,
		CashRows:           r.CashRows,
		ForcedCashRows:     r.ForcedCashRows,
		DeletedStockRows:   r.DeletedStockRows,
		DeletedCashRows:    r.DeletedCashRows,
		SourceStockRecords: r.SourceStockRecords,
		SourceClosings:     r.SourceClosings,
	}
}

func ToStockResponses(list []*entity.StockDiscrepancy) []StockDiscrepancyResponse {
	out := make([]StockDiscrepancyResponse, 0, len(list))
	for _, d := range list {
		out = append(out, StockDiscrepancyResponse{
			ID:                 d.ID,
			Date:               d.Date.Format(entity.DateLayout),
			LocationID:         d.LocationID,
			Shift:              string(d.Shift),
			ProductID:          d.ProductID,
			ProductName:        d.ProductName,
			ExpectedClosingQty: d.ExpectedClosingQty,
			ActualClosingQty:   d.ActualClosingQty,
			DifferenceQty:      d.DifferenceQty,
			DifferencePercent:  d.DifferencePercent,
			UnitValue:          d.UnitValue,
			MonetaryValue:      d.MonetaryValue,
			Severity:           string(d.Severity),
			CreatedAt:          d.CreatedAt,
		})
	}
	return out
}

func ToCashResponses(list []*entity.CashDiscrepancy) []CashDiscrepancyResponse {
	out := make([]CashDiscrepancyResponse, 0, len(list))
	for _, d := range list {
		out = append(out, CashDiscrepancyResponse{
			ID:                d.ID,
			Date:              d.Date.Format(entity.DateLayout),
			LocationID:        d.LocationID,
			Shift:             string(d.Shift),
			RegisterIndex:     d.RegisterIndex,
			ExpectedAmount:    d.ExpectedAmount,
			ActualAmount:      d.ActualAmount,
			DifferenceAmount:  d.DifferenceAmount,
			DifferencePercent: d.DifferencePercent,
			Severity:          string(d.Severity),
			Forced:            d.Forced,
			CreatedAt:         d.CreatedAt,
		})
	}
	return out
}

func ToLocationCashResponse(l *entity.LocationCashDiscrepancy) LocationCashResponse {
	return LocationCashResponse{
		Date:             l.Date.Format(entity.DateLayout),
		LocationID:       l.LocationID,
		DifferenceAmount: l.DifferenceAmount,
		Severity:         string(l.Severity),
		Registers:        ToCashResponses(l.Registers),
	}
}

func ToCompensationResponse(v *entity.CompensationVerdict) CompensationResponse {
	resp := CompensationResponse{
		Date:                   v.Date.Format(entity.DateLayout),
		LocationID:             v.LocationID,
		StockValue:             v.StockValue,
		CashValue:              v.CashValue,
		NetDifference:          v.NetDifference,
		Status:                 string(v.Status),
		CompensationPercentage: v.CompensationPercentage,
	}
	if v.Shift != nil {
		s := string(*v.Shift)
		resp.Shift = &s
	}
	return resp
}

func ToHistoryResponse(h *reconciliation.History) HistoryResponse {
	return HistoryResponse{
		LocationID: h.LocationID,
		From:       h.From.Format(entity.DateLayout),
		To:         h.To.Format(entity.DateLayout),
		Stock:      ToStockResponses(h.Stock),
		Cash:       ToCashResponses(h.Cash),
	}
}

func ToSummaryResponse(s *reconciliation.Summary) SummaryResponse {
	resp := SummaryResponse{
		LocationID:          s.LocationID,
		From:                s.From.Format(entity.DateLayout),
		To:                  s.To.Format(entity.DateLayout),
		Days:                s.Days,
		StockRows:           s.StockRows,
		CashRows:            s.CashRows,
		StockBySeverity:     severityCounts(s.StockBySeverity),
		CashBySeverity:      severityCounts(s.CashBySeverity),
		StockMonetaryTotal:  s.StockMonetaryTotal,
		CashDifferenceTotal: s.CashDifferenceTotal,
		LastDate:            FormatDatePtr(s.LastDate),
	}
	return resp
}

func ToBatchResponses(outcomes []reconciliation.BatchOutcome) []BatchOutcomeResponse {
	out := make([]BatchOutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		item := BatchOutcomeResponse{LocationID: o.LocationID, Status: o.Status}
		if o.Result != nil {
			r := ToGenerateResponse(o.Result)
			item.Result = &r
		}
		if o.Err != nil {
			item.Error = o.Err.Error()
		}
		out = append(out, item)
	}
	return out
}

// FormatDatePtr formatea una fecha opcional como YYYY-MM-DD.
func FormatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(entity.DateLayout)
	return &s
}

func severityCounts(m map[entity.Severity]int) map[string]int {
	out := map[string]int{
		string(entity.SeverityNone):   0,
		string(entity.SeverityMedium): 0,
		string(entity.SeverityHigh):   0,
	}
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
