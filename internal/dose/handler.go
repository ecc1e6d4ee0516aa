package dose

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rokotuskortti/vaccination-erecord/internal/dates"
	"github.com/rokotuskortti/vaccination-erecord/internal/fielddiff"
	"github.com/rokotuskortti/vaccination-erecord/internal/httputil"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
	"github.com/rokotuskortti/vaccination-erecord/internal/session"
)

// updatableFields is the fixed set of dose columns the update endpoint
// may touch through the diff engine.
var updatableFields = []fielddiff.Field{
	{Name: "vaccine_id", Kind: fielddiff.Int},
	{Name: "date_taken", Kind: fielddiff.Date},
	{Name: "booster_due_date", Kind: fielddiff.Date},
	{Name: "booster_email_reminder", Kind: fielddiff.Bool},
	{Name: "booster_reminder_address", Kind: fielddiff.Text},
	{Name: "comment", Kind: fielddiff.Text},
}

// Handler contains HTTP handlers for dose endpoints
type Handler struct {
	store Store
	codec *dates.Codec
}

func NewHandler(store Store, codec *dates.Codec) *Handler {
	return &Handler{store: store, codec: codec}
}

// CreateRequest represents the record-dose request body. Dates are
// textual in the configured pattern.
type CreateRequest struct {
	VaccineID              *int64  `json:"vaccine_id"`
	DateTaken              string  `json:"date_taken"`
	BoosterDueDate         string  `json:"booster_due_date"`
	BoosterEmailReminder   bool    `json:"booster_email_reminder"`
	BoosterReminderAddress *string `json:"booster_reminder_address"`
	Comment                *string `json:"comment"`
}

// UpdateRequest documents the partial-update request body. Absent
// fields are left untouched; an explicit null clears a nullable field.
// Decoding goes through httputil.Body to keep the two apart.
type UpdateRequest struct {
	VaccineID              *int64  `json:"vaccine_id"`
	DateTaken              *string `json:"date_taken"`
	BoosterDueDate         *string `json:"booster_due_date"`
	BoosterEmailReminder   *bool   `json:"booster_email_reminder"`
	BoosterReminderAddress *string `json:"booster_reminder_address"`
	Comment                *string `json:"comment"`
}

// CreatedResponse acknowledges a created resource.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// Item is one dose in the list response, with dates already rendered
// in the configured pattern.
type Item struct {
	ID                     int64   `json:"id"`
	VaccineID              int64   `json:"vaccine_id"`
	VaccineName            string  `json:"vaccine_name"`
	VaccineAbbreviation    *string `json:"vaccine_abbreviation"`
	DateTaken              string  `json:"date_taken"`
	BoosterDueDate         string  `json:"booster_due_date"`
	BoosterEmailReminder   bool    `json:"booster_email_reminder"`
	BoosterReminderAddress *string `json:"booster_reminder_address"`
	Comment                *string `json:"comment"`
}

// List returns the logged-in user's doses
// @Summary      List own doses
// @Tags         dose
// @Produce      json
// @Success      200 {array} Item
// @Failure      401 {object} httputil.ErrorResponse "Not logged in"
// @Router       /api/dose [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
		return
	}

	doses, err := h.store.ListForUser(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list doses", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list doses", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	items := make([]Item, 0, len(doses))
	for i := range doses {
		items = append(items, h.mapDoseToItem(&doses[i]))
	}
	httputil.RespondJSON(w, items, http.StatusOK)
}

// Create records a new dose for the logged-in user
// @Summary      Record a dose
// @Tags         dose
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Dose fields"
// @Success      201 {object} CreatedResponse
// @Failure      401 {object} httputil.ErrorResponse "Not logged in"
// @Failure      422 {object} httputil.ValidationResponse
// @Router       /api/dose [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid dose create request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	var fieldErrs []httputil.FieldError
	if req.VaccineID == nil {
		fieldErrs = append(fieldErrs, httputil.FieldError{Field: "vaccine_id", Message: "vaccine_id is required"})
	}
	dateTaken := h.codec.Parse(req.DateTaken)
	if !dateTaken.Valid {
		fieldErrs = append(fieldErrs, httputil.FieldError{
			Field:   "date_taken",
			Message: "date_taken must match " + h.codec.Pattern(),
		})
	}
	boosterDue := h.codec.Parse(req.BoosterDueDate)
	if req.BoosterDueDate != "" && !boosterDue.Valid {
		fieldErrs = append(fieldErrs, httputil.FieldError{
			Field:   "booster_due_date",
			Message: "booster_due_date must match " + h.codec.Pattern(),
		})
	}
	if len(fieldErrs) > 0 {
		httputil.RespondValidationErrors(w, fieldErrs)
		return
	}

	created, err := h.store.Create(r.Context(), NewDose{
		UserID:                 userID,
		VaccineID:              *req.VaccineID,
		DateTaken:              timePtr(dateTaken),
		BoosterDueDate:         timePtr(boosterDue),
		BoosterEmailReminder:   req.BoosterEmailReminder,
		BoosterReminderAddress: req.BoosterReminderAddress,
		Comment:                req.Comment,
	})
	if err != nil {
		logger.Error("failed to create dose", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create dose", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("dose recorded", "dose_id", created.ID, "user_id", userID, "vaccine_id", created.VaccineID)
	httputil.RespondJSON(w, CreatedResponse{ID: created.ID}, http.StatusCreated)
}

// Update handles diff-and-apply updates of one dose. The response maps
// each actually-changed field to true.
// @Summary      Update a dose
// @Tags         dose
// @Accept       json
// @Produce      json
// @Param        id path int true "Dose id"
// @Param        request body UpdateRequest true "Fields to update"
// @Success      200 {object} map[string]bool
// @Failure      401 {object} httputil.ErrorResponse "Not logged in"
// @Failure      404 {object} httputil.ErrorResponse "Dose not found"
// @Failure      422 {object} httputil.ValidationResponse
// @Router       /api/dose/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
		return
	}

	doseID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "Dose not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	body, err := httputil.DecodeBody(r.Body)
	if err != nil {
		logger.Warn("invalid dose update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	current, err := h.store.Find(r.Context(), userID, doseID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "Dose not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to find dose for update", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update dose", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	next, fieldErrs, err := h.nextValues(body)
	if err != nil {
		logger.Warn("invalid dose update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if len(fieldErrs) > 0 {
		httputil.RespondValidationErrors(w, fieldErrs)
		return
	}

	changes := fielddiff.Changed(updatableFields, next, currentValues(current))
	if len(changes) > 0 {
		if err := h.store.Update(r.Context(), doseID, changes); err != nil {
			if errors.Is(err, ErrNotFound) {
				httputil.RespondErrorWithCode(w, "Dose not found", httputil.CodeNotFound, http.StatusNotFound)
				return
			}
			logger.Error("failed to update dose", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update dose", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
	}

	httputil.RespondJSON(w, fielddiff.Flags(changes), http.StatusOK)
}

// nextValues builds the requested-state value map from the keys the
// client sent. Null or empty date text clears the date; null on a
// nullable text field clears it; null on a non-nullable field is a
// validation error. Non-empty date text that does not parse is also a
// validation error.
func (h *Handler) nextValues(body httputil.Body) (fielddiff.Values, []httputil.FieldError, error) {
	next := fielddiff.Values{}
	var fieldErrs []httputil.FieldError

	if body.Has("vaccine_id") {
		v, err := body.Int64("vaccine_id")
		if err != nil {
			return nil, nil, err
		}
		if v == nil {
			fieldErrs = append(fieldErrs, httputil.FieldError{Field: "vaccine_id", Message: "vaccine_id must not be null"})
		} else {
			next["vaccine_id"] = *v
		}
	}
	for _, field := range []string{"date_taken", "booster_due_date"} {
		if !body.Has(field) {
			continue
		}
		text, err := body.String(field)
		if err != nil {
			return nil, nil, err
		}
		d := dates.Invalid
		if text != nil {
			d = h.codec.Parse(*text)
			if *text != "" && !d.Valid {
				fieldErrs = append(fieldErrs, httputil.FieldError{
					Field:   field,
					Message: field + " must match " + h.codec.Pattern(),
				})
			}
		}
		next[field] = d
	}
	if body.Has("booster_email_reminder") {
		v, err := body.Bool("booster_email_reminder")
		if err != nil {
			return nil, nil, err
		}
		if v == nil {
			fieldErrs = append(fieldErrs, httputil.FieldError{Field: "booster_email_reminder", Message: "booster_email_reminder must not be null"})
		} else {
			next["booster_email_reminder"] = *v
		}
	}
	for _, field := range []string{"booster_reminder_address", "comment"} {
		if !body.Has(field) {
			continue
		}
		s, err := body.String(field)
		if err != nil {
			return nil, nil, err
		}
		if s == nil {
			next[field] = nil
		} else {
			next[field] = *s
		}
	}

	return next, fieldErrs, nil
}

func currentValues(d *Dose) fielddiff.Values {
	values := fielddiff.Values{
		"vaccine_id":               d.VaccineID,
		"date_taken":               dates.FromTime(d.DateTaken),
		"booster_due_date":         dates.FromTime(d.BoosterDueDate),
		"booster_email_reminder":   d.BoosterEmailReminder,
		"booster_reminder_address": nil,
		"comment":                  nil,
	}
	if d.BoosterReminderAddress != nil {
		values["booster_reminder_address"] = *d.BoosterReminderAddress
	}
	if d.Comment != nil {
		values["comment"] = *d.Comment
	}
	return values
}

func (h *Handler) mapDoseToItem(d *Dose) Item {
	return Item{
		ID:                     d.ID,
		VaccineID:              d.VaccineID,
		VaccineName:            d.VaccineName,
		VaccineAbbreviation:    d.VaccineAbbreviation,
		DateTaken:              h.codec.FormatDate(dates.FromTime(d.DateTaken)),
		BoosterDueDate:         h.codec.FormatDate(dates.FromTime(d.BoosterDueDate)),
		BoosterEmailReminder:   d.BoosterEmailReminder,
		BoosterReminderAddress: d.BoosterReminderAddress,
		Comment:                d.Comment,
	}
}

func timePtr(d dates.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}
