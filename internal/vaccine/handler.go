package vaccine

import (
	"encoding/json"
	"net/http"

	"github.com/rokotuskortti/vaccination-erecord/internal/httputil"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
	"github.com/rokotuskortti/vaccination-erecord/internal/session"
)

// Handler contains HTTP handlers for vaccine endpoints
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// CreateRequest represents the add-vaccine request body
type CreateRequest struct {
	Name         string  `json:"name"`
	Abbreviation *string `json:"abbreviation"`
}

// CreatedResponse acknowledges a created resource.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// List returns vaccines selectable by the logged-in user
// @Summary      List selectable vaccines
// @Tags         vaccine
// @Produce      json
// @Success      200 {array} Vaccine
// @Failure      401 {object} httputil.ErrorResponse "Not logged in"
// @Router       /api/vaccine [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
		return
	}

	vaccines, err := h.store.ListVisibleTo(r.Context(), userID)
	if err != nil {
		logger.Error("failed to list vaccines", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list vaccines", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, vaccines, http.StatusOK)
}

// Create adds a vaccine visible to the logged-in user only
// @Summary      Add a vaccine
// @Tags         vaccine
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Vaccine fields"
// @Success      201 {object} CreatedResponse
// @Failure      401 {object} httputil.ErrorResponse "Not logged in"
// @Failure      422 {object} httputil.ValidationResponse
// @Router       /api/vaccine [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid vaccine create request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		httputil.RespondValidationErrors(w, []httputil.FieldError{
			{Field: "name", Message: "name is required"},
		})
		return
	}

	created, err := h.store.Create(r.Context(), NewVaccine{
		Name:            req.Name,
		Abbreviation:    req.Abbreviation,
		CreatedByUserID: userID,
	})
	if err != nil {
		logger.Error("failed to create vaccine", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create vaccine", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("vaccine created", "vaccine_id", created.ID, "user_id", userID)
	httputil.RespondJSON(w, CreatedResponse{ID: created.ID}, http.StatusCreated)
}
