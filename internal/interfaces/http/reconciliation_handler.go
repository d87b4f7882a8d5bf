package http

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/conciliacion-api/internal/application/dto"
	"github.com/jhoicas/conciliacion-api/internal/application/reconciliation"
	"github.com/jhoicas/conciliacion-api/internal/domain"
	"github.com/jhoicas/conciliacion-api/internal/domain/entity"
)

var validate = validator.New()

// ReconciliationHandler expone la generación y consulta de diferencias stock/caja (protegido).
type ReconciliationHandler struct {
	generate     *reconciliation.GenerateUseCase
	batch        *reconciliation.BatchUseCase
	query        *reconciliation.QueryUseCase
	compensation *reconciliation.CompensationUseCase
	report       *reconciliation.ReportUseCase
	log          zerolog.Logger
}

// NewReconciliationHandler construye el handler.
func NewReconciliationHandler(
	generate *reconciliation.GenerateUseCase,
	batch *reconciliation.BatchUseCase,
	query *reconciliation.QueryUseCase,
	compensation *reconciliation.CompensationUseCase,
	report *reconciliation.ReportUseCase,
	log zerolog.Logger,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		generate:     generate,
		batch:        batch,
		query:        query,
		compensation: compensation,
		report:       report,
		log:          log,
	}
}

// Generate godoc
// @Summary      Generar diferencias de stock y caja
// @Description  Calcula y escribe las diferencias de una fecha, local y turno. Sin overwrite,
//
//	una clave ya generada responde 409 sin modificar nada.
//
// @Tags         reconciliation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.GenerateRequest  true  "date, location_id, shift, overwrite, force_cash_discrepancies"
// @Success      201   {object}  dto.GenerateResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/reconciliation/generate [post]
func (h *ReconciliationHandler) Generate(c *fiber.Ctx) error {
	var in dto.GenerateRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	date, shift, err := parseDateShift(in.Date, in.Shift)
	if err != nil {
		return h.writeError(c, err)
	}
	if !CanAccessLocation(c, in.LocationID) {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "el local no corresponde al usuario"})
	}
	res, err := h.generate.Generate(c.UserContext(), reconciliation.GenerateInput{
		Date:                   date,
		LocationID:             in.LocationID,
		Shift:                  shift,
		Overwrite:              in.Overwrite,
		HasTwoCashRegisters:    in.HasTwoCashRegisters,
		ForceCashDiscrepancies: in.ForceCashDiscrepancies,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToGenerateResponse(res))
}

// GenerateBatch godoc
// @Summary      Generar diferencias de todos los locales
// @Tags         reconciliation
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchRequest  true  "date, shift, overwrite, force_cash_discrepancies"
// @Success      200   {array}   dto.BatchOutcomeResponse
// @Failure      400   {object}  dto.ValidationErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/reconciliation/generate/batch [post]
func (h *ReconciliationHandler) GenerateBatch(c *fiber.Ctx) error {
	var in dto.BatchRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	date, shift, err := parseDateShift(in.Date, in.Shift)
	if err != nil {
		return h.writeError(c, err)
	}
	outcomes, err := h.batch.GenerateAll(c.UserContext(), reconciliation.BatchInput{
		Date:                   date,
		Shift:                  shift,
		Overwrite:              in.Overwrite,
		ForceCashDiscrepancies: in.ForceCashDiscrepancies,
	})
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(outcomes),
		"locations": dto.ToBatchResponses(outcomes),
	})
}

// GetStock godoc
// @Summary      Diferencias de stock de un día
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        date         query  string  true   "YYYY-MM-DD"
// @Param        location_id  query  int     true   "Local"
// @Param        shift        query  string  false  "mañana | tarde (vacío = ambos)"
// @Success      200  {array}   dto.StockDiscrepancyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/stock [get]
func (h *ReconciliationHandler) GetStock(c *fiber.Ctx) error {
	date, locationID, shift, err := dayQuery(c)
	if err != nil {
		return h.writeError(c, err)
	}
	list, err := h.query.GetStockDiscrepancies(c.UserContext(), date, locationID, shift)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "stock": dto.ToStockResponses(list)})
}

// GetCash godoc
// @Summary      Diferencias de caja de un día (por caja)
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        date         query  string  true   "YYYY-MM-DD"
// @Param        location_id  query  int     true   "Local"
// @Param        shift        query  string  false  "mañana | tarde"
// @Success      200  {array}   dto.CashDiscrepancyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/cash [get]
func (h *ReconciliationHandler) GetCash(c *fiber.Ctx) error {
	date, locationID, shift, err := dayQuery(c)
	if err != nil {
		return h.writeError(c, err)
	}
	list, err := h.query.GetCashDiscrepancies(c.UserContext(), date, locationID, shift)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "cash": dto.ToCashResponses(list)})
}

// GetLocationCash godoc
// @Summary      Diferencia de caja combinada del local
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        date         query  string  true   "YYYY-MM-DD"
// @Param        location_id  query  int     true   "Local"
// @Param        shift        query  string  false  "mañana | tarde"
// @Success      200  {object}  dto.LocationCashResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/cash/location [get]
func (h *ReconciliationHandler) GetLocationCash(c *fiber.Ctx) error {
	date, locationID, shift, err := dayQuery(c)
	if err != nil {
		return h.writeError(c, err)
	}
	combined, err := h.query.GetLocationCash(c.UserContext(), date, locationID, shift)
	if err != nil {
		return h.writeError(c, err)
	}
	if combined == nil {
		combined = &entity.LocationCashDiscrepancy{
			Date:             date,
			LocationID:       locationID,
			DifferenceAmount: decimal.Zero,
			Severity:         entity.SeverityNone,
		}
	}
	return c.JSON(dto.ToLocationCashResponse(combined))
}

// GetCompensation godoc
// @Summary      Análisis de compensación stock/caja
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        date         query  string  true   "YYYY-MM-DD"
// @Param        location_id  query  int     true   "Local"
// @Param        shift        query  string  false  "mañana | tarde (vacío = día completo)"
// @Success      200  {object}  dto.CompensationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/compensation [get]
func (h *ReconciliationHandler) GetCompensation(c *fiber.Ctx) error {
	date, locationID, shift, err := dayQuery(c)
	if err != nil {
		return h.writeError(c, err)
	}
	v, err := h.compensation.Analyze(c.UserContext(), date, locationID, shift)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.ToCompensationResponse(v))
}

// GetLastDate godoc
// @Summary      Última fecha con diferencias registradas
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  int  true  "Local"
// @Success      200  {object}  dto.LastDateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/last-date [get]
func (h *ReconciliationHandler) GetLastDate(c *fiber.Ctx) error {
	locationID := int64(c.QueryInt("location_id", 0))
	last, err := h.query.GetLastDiscrepancyDate(c.UserContext(), locationID)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.LastDateResponse{LocationID: locationID, LastDate: dto.FormatDatePtr(last)})
}

// GetHistory godoc
// @Summary      Historial de diferencias en un rango
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  int     true  "Local"
// @Param        from         query  string  true  "YYYY-MM-DD"
// @Param        to           query  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/history [get]
func (h *ReconciliationHandler) GetHistory(c *fiber.Ctx) error {
	locationID, from, to, err := rangeQuery(c)
	if err != nil {
		return h.writeError(c, err)
	}
	hist, err := h.query.GetHistory(c.UserContext(), locationID, from, to)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.ToHistoryResponse(hist))
}

// GetSummary godoc
// @Summary      Resumen del período (conteos por severidad y totales)
// @Tags         reconciliation
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  int     true  "Local"
// @Param        from         query  string  true  "YYYY-MM-DD"
// @Param        to           query  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.SummaryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/summary [get]
func (h *ReconciliationHandler) GetSummary(c *fiber.Ctx) error {
	locationID, from, to, err := rangeQuery(c)
	if err != nil {
		return h.writeError(c, err)
	}
	s, err := h.query.GetSummary(c.UserContext(), locationID, from, to)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(dto.ToSummaryResponse(s))
}

// GetReportPDF godoc
// @Summary      Reporte PDF de la conciliación del día
// @Tags         reconciliation
// @Security     Bearer
// @Produce      application/pdf
// @Param        date         query  string  true   "YYYY-MM-DD"
// @Param        location_id  query  int     true   "Local"
// @Param        shift        query  string  false  "mañana | tarde"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reconciliation/report.pdf [get]
func (h *ReconciliationHandler) GetReportPDF(c *fiber.Ctx) error {
	date, locationID, shift, err := dayQuery(c)
	if err != nil {
		return h.writeError(c, err)
	}
	pdf, err := h.report.GeneratePDF(c.UserContext(), date, locationID, shift)
	if err != nil {
		return h.writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="conciliacion-%d-%s.pdf"`, locationID, date.Format(entity.DateLayout)))
	return c.Send(pdf)
}

// writeError traduce la taxonomía de errores de dominio a HTTP.
func (h *ReconciliationHandler) writeError(c *fiber.Ctx, err error) error {
	var txe *domain.TransactionError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidLocation):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "INVALID_LOCATION", Message: err.Error()})
	case errors.Is(err, domain.ErrAlreadyExists):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_EXISTS", Message: err.Error()})
	case errors.Is(err, domain.ErrNoSourceData):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "NO_SOURCE_DATA", Message: err.Error()})
	case errors.As(err, &txe):
		h.log.Error().Err(err).Str("key", txe.Key).Str("op", txe.Op).Msg("fallo de transacción")
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "TRANSACTION", Message: "no se pudo escribir el registro de diferencias"})
	case errors.Is(err, domain.ErrComputationAssertion):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "COMPUTATION_ASSERTION", Message: err.Error()})
	}
	h.log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// bindAndValidate parsea el body y corre las tags de validator.
// Si devuelve false la respuesta ya fue escrita.
func bindAndValidate(c *fiber.Ctx, req any) (bool, error) {
	if err := c.BodyParser(req); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ValidationErrorResponse{
			Code:    "VALIDATION",
			Message: "datos inválidos",
			Fields:  fields,
		})
	}
	return true, nil
}

func parseDateShift(rawDate, rawShift string) (time.Time, entity.Shift, error) {
	date, err := entity.ParseDate(rawDate)
	if err != nil {
		return time.Time{}, "", domain.Invalid("fecha inválida %q", rawDate)
	}
	shift, ok := entity.ParseShift(rawShift)
	if !ok {
		return time.Time{}, "", domain.Invalid("turno inválido %q", rawShift)
	}
	return date, shift, nil
}

// dayQuery lee date, location_id y shift (opcional) del query string.
func dayQuery(c *fiber.Ctx) (time.Time, int64, *entity.Shift, error) {
	date, err := entity.ParseDate(c.Query("date"))
	if err != nil {
		return time.Time{}, 0, nil, domain.Invalid("fecha inválida %q", c.Query("date"))
	}
	locationID := int64(c.QueryInt("location_id", 0))
	var shift *entity.Shift
	if raw := c.Query("shift"); raw != "" {
		s, ok := entity.ParseShift(raw)
		if !ok {
			return time.Time{}, 0, nil, domain.Invalid("turno inválido %q", raw)
		}
		shift = &s
	}
	return date, locationID, shift, nil
}

func rangeQuery(c *fiber.Ctx) (int64, time.Time, time.Time, error) {
	from, err := entity.ParseDate(c.Query("from"))
	if err != nil {
		return 0, time.Time{}, time.Time{}, domain.Invalid("from inválido %q", c.Query("from"))
	}
	to, err := entity.ParseDate(c.Query("to"))
	if err != nil {
		return 0, time.Time{}, time.Time{}, domain.Invalid("to inválido %q", c.Query("to"))
	}
	return int64(c.QueryInt("location_id", 0)), from, to, nil
}
