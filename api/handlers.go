/*
handlers.go - HTTP API handlers for the budget forecasting engine

PURPOSE:
  Exposes the budget engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Budgets:
    GET    /api/budgets                     List all budgets
    POST   /api/budgets                     Create budget (with lines)
    GET    /api/budgets/{budgetID}          Get budget with lines and patterns
    DELETE /api/budgets/{budgetID}          Delete budget and its archives

  Lines:
    POST   /api/budgets/{budgetID}/lines    Add a line to a budget
    GET    /api/budgets/{budgetID}/lines    List a budget's lines
    GET    /api/lines/{lineID}              Get one line
    DELETE /api/lines/{lineID}              Delete a line

  Patterns:
    POST   /api/lines/{lineID}/patterns     Add a pattern to a line
    GET    /api/lines/{lineID}/patterns     List a line's patterns
    GET    /api/patterns/{patternID}        Get one pattern
    DELETE /api/patterns/{patternID}        Delete a pattern

  Occurrences:
    GET    /api/patterns/{patternID}/occurrences?from&to  Expand one pattern
    GET    /api/lines/{lineID}/occurrences?from&to        Compose a line

  Forecast:
    GET    /api/budgets/{budgetID}/forecast?months&balance&from
           Freezes overdue periods first, then projects the horizon.

  Archives:
    POST   /api/budgets/{budgetID}/archive            Freeze one period
    GET    /api/budgets/{budgetID}/archives           List archived periods
    GET    /api/budgets/{budgetID}/archives/{year}/{month}  Get one snapshot

  Calendar:
    GET    /api/calendar/{year}/holidays    Danish bank holidays for a year
    GET    /api/calendar/bank-day?date=     Bank-day lookup for one date

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Database access (memory or SQLite)
  - Factory: JSON to domain conversion
  - Expander/Archiver/Projector: Engine services sharing one calendar
  - Publisher: Period-archived event sink (noop without a broker)

REQUEST FLOW:
  1. Parse HTTP request
  2. Convert through the factory (validation happens there)
  3. Call domain logic (expand, compose, project, archive)
  4. Serialize response
  5. Map domain errors onto HTTP status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (budget.IsClientError)
  - 404: Missing records (budget.IsNotFound)
  - 409: Archival conflicts that surface to clients (budget.IsConflict)
  - 500: Everything else

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
  - scheduler.go: Background rollover sweep sharing the Archiver
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/events"
	"github.com/warp/budget-engine/factory"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    budget.Store
	Factory  *factory.BudgetFactory
	Calendar budget.HolidayCalendar
	Expander *budget.Expander
	Adjuster *budget.Adjuster
	Archiver *budget.Archiver
	Projector *budget.Projector

	Publisher    events.Publisher
	LargeExpense budget.LargeExpensePolicy

	// ForecastMonths is the default horizon length.
	ForecastMonths int

	// Now is the clock used for catch-up and forecasting. Tests pin it.
	Now func() budget.Date
}

// NewHandler creates a handler wired to the Danish holiday calendar.
func NewHandler(store budget.Store) *Handler {
	calendar := budget.NewDanishCalendar()
	expander := budget.NewExpander(calendar)
	return &Handler{
		Store:          store,
		Factory:        factory.NewBudgetFactory(),
		Calendar:       calendar,
		Expander:       expander,
		Adjuster:       budget.NewAdjuster(calendar),
		Archiver:       budget.NewArchiver(store, expander),
		Projector:      budget.NewProjector(store, expander),
		Publisher:      events.NoopPublisher{},
		LargeExpense:   budget.DefaultLargeExpensePolicy(),
		ForecastMonths: 12,
		Now:            budget.Today,
	}
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// ListBudgets returns all budgets with their lines.
// GET /api/budgets
func (h *Handler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.Store.ListBudgets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list budgets", err)
		return
	}

	dtos := make([]factory.BudgetJSON, len(budgets))
	for i, b := range budgets {
		dtos[i] = h.Factory.ToJSON(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBudget returns a single budget with lines and patterns.
// GET /api/budgets/{budgetID}
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id := budget.BudgetID(chi.URLParam(r, "budgetID"))

	b, err := h.Store.GetBudget(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get budget", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.ToJSON(*b))
}

// CreateBudget creates a budget, optionally with lines and patterns in the
// same document. Everything lands in one transaction.
// POST /api/budgets
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var bj factory.BudgetJSON
	if err := json.NewDecoder(r.Body).Decode(&bj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	ensureBudgetIDs(&bj)

	b, err := h.Factory.BudgetFromJSON(bj)
	if err != nil {
		writeDomainError(w, "Invalid budget", err)
		return
	}

	ctx := r.Context()
	if err := h.saveBudgetTree(ctx, b); err != nil {
		writeDomainError(w, "Failed to create budget", err)
		return
	}

	created, err := h.Store.GetBudget(ctx, b.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload budget", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.ToJSON(*created))
}

// DeleteBudget removes a budget with its lines, patterns and archives.
// DELETE /api/budgets/{budgetID}
func (h *Handler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	id := budget.BudgetID(chi.URLParam(r, "budgetID"))

	if err := h.Store.DeleteBudget(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete budget", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": string(id)})
}

// saveBudgetTree persists a budget and its lines, transactionally when the
// store supports it.
func (h *Handler) saveBudgetTree(ctx context.Context, b budget.Budget) error {
	write := func(s budget.Store) error {
		if err := s.SaveBudget(ctx, b); err != nil {
			return err
		}
		for _, line := range b.Lines {
			if err := s.SaveLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	}

	if txs, ok := h.Store.(budget.TxStore); ok {
		return txs.WithTx(ctx, write)
	}
	return write(h.Store)
}

// =============================================================================
// LINE HANDLERS
// =============================================================================

// CreateLine adds a line (with its patterns) to a budget.
// POST /api/budgets/{budgetID}/lines
func (h *Handler) CreateLine(w http.ResponseWriter, r *http.Request) {
	budgetID := budget.BudgetID(chi.URLParam(r, "budgetID"))

	b, err := h.Store.GetBudget(r.Context(), budgetID)
	if err != nil {
		writeDomainError(w, "Failed to get budget", err)
		return
	}

	var lj factory.LineJSON
	if err := json.NewDecoder(r.Body).Decode(&lj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	ensureLineIDs(&lj)

	line, err := h.Factory.LineFromJSON(budgetID, lj)
	if err != nil {
		writeDomainError(w, "Invalid line", err)
		return
	}

	// Direction plus category is a line's archival identity; a second line
	// claiming it would collide at freeze time.
	for _, existing := range b.Lines {
		if existing.ID != line.ID && existing.Direction == line.Direction && existing.Category == line.Category {
			writeDomainError(w, "Invalid line",
				fmt.Errorf("%w: a %s line for category %q already exists", budget.ErrInvalidLine, line.Direction, line.Category))
			return
		}
	}

	if err := h.Store.SaveLine(r.Context(), line); err != nil {
		writeDomainError(w, "Failed to create line", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.LineToJSON(line))
}

// ListLines returns a budget's lines in position order.
// GET /api/budgets/{budgetID}/lines
func (h *Handler) ListLines(w http.ResponseWriter, r *http.Request) {
	id := budget.BudgetID(chi.URLParam(r, "budgetID"))

	b, err := h.Store.GetBudget(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get budget", err)
		return
	}

	dtos := make([]factory.LineJSON, len(b.Lines))
	for i, line := range b.Lines {
		dtos[i] = h.Factory.LineToJSON(line)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLine returns one line with its patterns.
// GET /api/lines/{lineID}
func (h *Handler) GetLine(w http.ResponseWriter, r *http.Request) {
	id := budget.LineID(chi.URLParam(r, "lineID"))

	line, err := h.Store.GetLine(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get line", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.LineToJSON(*line))
}

// DeleteLine removes a line and its patterns. Archives are untouched.
// DELETE /api/lines/{lineID}
func (h *Handler) DeleteLine(w http.ResponseWriter, r *http.Request) {
	id := budget.LineID(chi.URLParam(r, "lineID"))

	if err := h.Store.DeleteLine(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete line", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": string(id)})
}

// =============================================================================
// PATTERN HANDLERS
// =============================================================================

// CreatePattern adds an amount pattern to a line.
// POST /api/lines/{lineID}/patterns
func (h *Handler) CreatePattern(w http.ResponseWriter, r *http.Request) {
	lineID := budget.LineID(chi.URLParam(r, "lineID"))

	var pj factory.PatternJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if pj.ID == "" {
		pj.ID = uuid.NewString()
	}

	p, err := h.Factory.PatternFromJSON(pj)
	if err != nil {
		writeDomainError(w, "Invalid pattern", err)
		return
	}

	// Subset validity against the line's account pool is a line-level
	// invariant; re-validate the assembled line before writing.
	ctx := r.Context()
	line, err := h.Store.GetLine(ctx, lineID)
	if err != nil {
		writeDomainError(w, "Failed to get line", err)
		return
	}
	candidate := *line
	candidate.Patterns = append(candidate.Patterns, p)
	if err := candidate.Validate(); err != nil {
		writeDomainError(w, "Invalid pattern", err)
		return
	}

	if err := h.Store.SavePattern(ctx, lineID, p); err != nil {
		writeDomainError(w, "Failed to create pattern", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Factory.PatternToJSON(p))
}

// ListPatterns returns a line's patterns in position order.
// GET /api/lines/{lineID}/patterns
func (h *Handler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	id := budget.LineID(chi.URLParam(r, "lineID"))

	line, err := h.Store.GetLine(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get line", err)
		return
	}

	dtos := make([]factory.PatternJSON, len(line.Patterns))
	for i, p := range line.Patterns {
		dtos[i] = h.Factory.PatternToJSON(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetPattern returns one pattern.
// GET /api/patterns/{patternID}
func (h *Handler) GetPattern(w http.ResponseWriter, r *http.Request) {
	id := budget.PatternID(chi.URLParam(r, "patternID"))

	p, err := h.Store.GetPattern(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, h.Factory.PatternToJSON(*p))
}

// DeletePattern removes a pattern. Archives are untouched.
// DELETE /api/patterns/{patternID}
func (h *Handler) DeletePattern(w http.ResponseWriter, r *http.Request) {
	id := budget.PatternID(chi.URLParam(r, "patternID"))

	if err := h.Store.DeletePattern(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to delete pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": string(id)})
}

// =============================================================================
// OCCURRENCE HANDLERS
// =============================================================================

// PatternOccurrences expands a single pattern over a window.
// GET /api/patterns/{patternID}/occurrences?from=2026-01-01&to=2026-03-31
func (h *Handler) PatternOccurrences(w http.ResponseWriter, r *http.Request) {
	id := budget.PatternID(chi.URLParam(r, "patternID"))

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window", err)
		return
	}

	p, err := h.Store.GetPattern(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get pattern", err)
		return
	}

	occs, err := h.Expander.Expand(*p, window)
	if err != nil {
		writeDomainError(w, "Failed to expand pattern", err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceDTOs(occs))
}

// LineOccurrences composes all of a line's patterns over a window.
// GET /api/lines/{lineID}/occurrences?from=2026-01-01&to=2026-03-31
func (h *Handler) LineOccurrences(w http.ResponseWriter, r *http.Request) {
	id := budget.LineID(chi.URLParam(r, "lineID"))

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid window", err)
		return
	}

	line, err := h.Store.GetLine(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get line", err)
		return
	}

	occs, err := h.Expander.Compose(*line, window)
	if err != nil {
		writeDomainError(w, "Failed to compose line", err)
		return
	}
	writeJSON(w, http.StatusOK, toOccurrenceDTOs(occs))
}

// =============================================================================
// FORECAST HANDLER
// =============================================================================

// Forecast projects the balance development. Before projecting it freezes
// every completed period that is still unarchived, so opening a budget
// after months away first rolls the past over.
// GET /api/budgets/{budgetID}/forecast?months=12&balance=1500000&from=2026-01
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := budget.BudgetID(chi.URLParam(r, "budgetID"))
	now := h.Now()
	current := budget.PeriodOf(now)

	months := queryInt(r, "months", h.ForecastMonths)
	if months < 1 {
		writeError(w, http.StatusBadRequest, "Invalid months", nil)
		return
	}
	balance := queryInt64(r, "balance", 0)

	newly, err := h.Archiver.CatchUp(ctx, id, current.Previous())
	if err != nil {
		writeDomainError(w, "Failed to archive completed periods", err)
		return
	}
	h.publishArchivedPeriods(ctx, id, newly)

	// The horizon starts at the current period unless the caller reaches
	// back into frozen history with from=.
	first := current
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := parsePeriod(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid from period", err)
			return
		}
		first = from
	}
	last := first.AddMonths(months - 1)

	b, err := h.Store.GetBudget(ctx, id)
	if err != nil {
		writeDomainError(w, "Failed to get budget", err)
		return
	}

	projection, err := h.Projector.Project(ctx, budget.ProjectionRequest{
		Budget:         *b,
		First:          first,
		Last:           last,
		OpeningBalance: budget.Amount(balance),
		Now:            now,
		LargeExpense:   h.LargeExpense,
	})
	if err != nil {
		writeDomainError(w, "Failed to project forecast", err)
		return
	}

	dto := toForecastDTO(projection, now.String())
	for _, period := range newly {
		dto.ArchivedPeriods = append(dto.ArchivedPeriods, period.String())
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// ARCHIVE HANDLERS
// =============================================================================

// ArchivePeriod freezes one period. Archiving an already-archived period
// returns the existing snapshot with 200 instead of 201.
// POST /api/budgets/{budgetID}/archive
func (h *Handler) ArchivePeriod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := budget.BudgetID(chi.URLParam(r, "budgetID"))

	var req ArchiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	period := budget.NewPeriod(req.Year, time.Month(req.Month))
	if !period.IsValid() {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}

	had, err := h.Store.HasArchivedPeriod(ctx, id, period)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check archive", err)
		return
	}

	snapshot, err := h.Archiver.ArchivePeriod(ctx, id, period)
	if err != nil {
		writeDomainError(w, "Failed to archive period", err)
		return
	}

	status := http.StatusCreated
	if had {
		status = http.StatusOK
	} else {
		h.publishArchivedPeriods(ctx, id, []budget.Period{period})
	}
	writeJSON(w, status, toArchivedPeriodDTO(snapshot, had))
}

// ListArchives returns the archived periods of a budget, oldest first.
// GET /api/budgets/{budgetID}/archives
func (h *Handler) ListArchives(w http.ResponseWriter, r *http.Request) {
	id := budget.BudgetID(chi.URLParam(r, "budgetID"))

	periods, err := h.Store.ListArchivedPeriods(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list archives", err)
		return
	}

	out := make([]string, len(periods))
	for i, p := range periods {
		out[i] = p.String()
	}
	writeJSON(w, http.StatusOK, map[string]any{"budget_id": string(id), "periods": out})
}

// GetArchive returns one frozen period snapshot.
// GET /api/budgets/{budgetID}/archives/{year}/{month}
func (h *Handler) GetArchive(w http.ResponseWriter, r *http.Request) {
	id := budget.BudgetID(chi.URLParam(r, "budgetID"))

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	snapshot, err := h.Store.GetArchivedPeriod(r.Context(), id, budget.NewPeriod(year, time.Month(month)))
	if err != nil {
		writeDomainError(w, "Failed to get archive", err)
		return
	}
	writeJSON(w, http.StatusOK, toArchivedPeriodDTO(snapshot, false))
}

// publishArchivedPeriods announces freshly frozen periods. Event delivery
// must never fail the request, so errors are logged and dropped.
func (h *Handler) publishArchivedPeriods(ctx context.Context, id budget.BudgetID, periods []budget.Period) {
	for _, period := range periods {
		snapshot, err := h.Store.GetArchivedPeriod(ctx, id, period)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load archived period for event",
				"budget_id", id, "period", period.String(), "error", err)
			continue
		}
		if err := h.Publisher.PublishPeriodArchived(ctx, events.NewPeriodArchivedMessage(snapshot)); err != nil {
			slog.ErrorContext(ctx, "Failed to publish period archived event",
				"budget_id", id, "period", period.String(), "error", err)
		}
	}
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// ListHolidays returns the Danish bank holidays of a year.
// GET /api/calendar/{year}/holidays
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	holidays := h.Calendar.HolidaysForYear(year)
	dtos := make([]HolidayDTO, len(holidays))
	for i, holiday := range holidays {
		dtos[i] = HolidayDTO{Date: holiday.Date.String(), Name: holiday.Name}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// BankDayLookup answers whether a date is a bank day, and where the
// neighbouring bank days fall.
// GET /api/calendar/bank-day?date=2026-04-03
func (h *Handler) BankDayLookup(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	date, err := budget.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	isBankDay := date.IsBankDay(h.Calendar)
	next := date
	previous := date
	if !isBankDay {
		next = h.Adjuster.Adjust(date, budget.AdjustNext, false)
		previous = h.Adjuster.Adjust(date, budget.AdjustPrevious, false)
	}

	writeJSON(w, http.StatusOK, BankDayDTO{
		Date:            date.String(),
		BankDay:         isBankDay,
		NextBankDay:     next.String(),
		PreviousBankDay: previous.String(),
	})
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine error classes onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case budget.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case budget.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case budget.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func ensureBudgetIDs(bj *factory.BudgetJSON) {
	if bj.ID == "" {
		bj.ID = uuid.NewString()
	}
	for i := range bj.Lines {
		ensureLineIDs(&bj.Lines[i])
	}
}

func ensureLineIDs(lj *factory.LineJSON) {
	if lj.ID == "" {
		lj.ID = uuid.NewString()
	}
	for i := range lj.Patterns {
		if lj.Patterns[i].ID == "" {
			lj.Patterns[i].ID = uuid.NewString()
		}
	}
}

func parseWindow(r *http.Request) (budget.Window, error) {
	from, err := budget.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return budget.Window{}, err
	}
	to, err := budget.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return budget.Window{}, err
	}
	return budget.NewWindow(from, to), nil
}

func parsePeriod(raw string) (budget.Period, error) {
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return budget.Period{}, err
	}
	return budget.NewPeriod(t.Year(), t.Month()), nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func queryInt64(r *http.Request, key string, fallback int64) int64 {
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return v
		}
	}
	return fallback
}
