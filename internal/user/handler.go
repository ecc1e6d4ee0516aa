package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rokotuskortti/vaccination-erecord/internal/fielddiff"
	"github.com/rokotuskortti/vaccination-erecord/internal/httputil"
	"github.com/rokotuskortti/vaccination-erecord/internal/logging"
	"github.com/rokotuskortti/vaccination-erecord/internal/session"
)

// updatableFields is the fixed set of user columns the update endpoint
// may touch through the diff engine. Password changes go through their
// own old-password check instead.
var updatableFields = []fielddiff.Field{
	{Name: "default_reminder_email", Kind: fielddiff.Text},
	{Name: "year_born", Kind: fielddiff.Int},
	{Name: "reminder_days_before_due", Kind: fielddiff.Int},
}

// Handler contains HTTP handlers for user endpoints
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// CreateRequest represents the registration request body
type CreateRequest struct {
	Username              string  `json:"username"`
	Password              string  `json:"password"`
	DefaultReminderEmail  *string `json:"default_reminder_email"`
	YearBorn              *int    `json:"year_born"`
	ReminderDaysBeforeDue *int    `json:"reminder_days_before_due"`
}

// UpdateRequest documents the partial-update request body. Absent
// fields are left untouched; an explicit null clears a nullable field.
// Decoding goes through httputil.Body to keep the two apart.
type UpdateRequest struct {
	NewPassword           *string `json:"new_password"`
	OldPassword           *string `json:"old_password"`
	DefaultReminderEmail  *string `json:"default_reminder_email"`
	YearBorn              *int    `json:"year_born"`
	ReminderDaysBeforeDue *int    `json:"reminder_days_before_due"`
}

// CreatedResponse acknowledges a created resource.
type CreatedResponse struct {
	ID int64 `json:"id"`
}

// ProfileResponse is the current user's profile.
type ProfileResponse struct {
	ID                    int64   `json:"id"`
	Username              string  `json:"username"`
	DefaultReminderEmail  *string `json:"default_reminder_email"`
	YearBorn              *int    `json:"year_born"`
	ReminderDaysBeforeDue *int    `json:"reminder_days_before_due"`
}

// Current returns the logged-in user's details
// @Summary      Get current user
// @Tags         user
// @Produce      json
// @Success      200 {object} ProfileResponse
// @Failure      401 {object} httputil.ErrorResponse "Not logged in"
// @Router       /api/user [get]
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
		return
	}

	u, err := h.store.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
			return
		}
		logger.Error("failed to load current user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, ProfileResponse{
		ID:                    u.ID,
		Username:              u.Username,
		DefaultReminderEmail:  u.DefaultReminderEmail,
		YearBorn:              u.YearBorn,
		ReminderDaysBeforeDue: u.ReminderDaysBeforeDue,
	}, http.StatusOK)
}

// Create handles user registration
// @Summary      Create a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body CreateRequest true "Registration fields"
// @Success      201 {object} CreatedResponse
// @Failure      400 {object} httputil.ErrorResponse "Username exists already"
// @Failure      422 {object} httputil.ValidationResponse
// @Router       /api/user [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid user create request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if fieldErrs := validateCreate(req); len(fieldErrs) > 0 {
		httputil.RespondValidationErrors(w, fieldErrs)
		return
	}

	passwordHash, err := session.HashPassword(req.Password)
	if err != nil {
		logger.Error("failed to hash password", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	newUser, err := h.store.Create(r.Context(), NewUser{
		Username:              req.Username,
		PasswordHash:          passwordHash,
		DefaultReminderEmail:  req.DefaultReminderEmail,
		YearBorn:              req.YearBorn,
		ReminderDaysBeforeDue: req.ReminderDaysBeforeDue,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			logger.Info("unable to create user: username taken", "username", req.Username)
			httputil.RespondErrorWithCode(w, "Username exists already", httputil.CodeUsernameExists, http.StatusBadRequest)
			return
		}
		logger.Error("failed to create user", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("new user created", "user_id", newUser.ID, "username", newUser.Username)
	httputil.RespondJSON(w, CreatedResponse{ID: newUser.ID}, http.StatusCreated)
}

// Update handles diff-and-apply updates of the logged-in user. The
// response maps each actually-changed field to true; a request that
// changes nothing is a no-op success with an empty map.
// @Summary      Update user details
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        request body UpdateRequest true "Fields to update"
// @Success      200 {object} map[string]bool
// @Failure      401 {object} httputil.ErrorResponse "Not logged in"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Router       /api/user [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, httputil.CodeNotLoggedIn, http.StatusUnauthorized)
		return
	}

	body, err := httputil.DecodeBody(r.Body)
	if err != nil {
		logger.Warn("invalid user update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	current, err := h.store.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Warn("user not found when updating", "user_id", userID)
			httputil.RespondErrorWithCode(w, "User not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to load user for update", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	next, err := nextValues(body)
	if err != nil {
		logger.Warn("invalid user update request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	changes := fielddiff.Changed(updatableFields, next, currentValues(current))

	newPassword, err := body.String("new_password")
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	oldPassword, err := body.String("old_password")
	if err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	// Password changes require the old password; a mismatch silently
	// leaves the password untouched, mirroring the rest of the diff.
	if newPassword != nil && *newPassword != "" {
		old := ""
		if oldPassword != nil {
			old = *oldPassword
		}
		if session.VerifyPassword(current.PasswordHash, old) {
			hash, hashErr := session.HashPassword(*newPassword)
			if hashErr != nil {
				logger.Error("failed to hash new password", "error", hashErr.Error())
				httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
				return
			}
			changes["password_hash"] = hash
		} else {
			logger.Debug("old password mismatch, password not updated", "user_id", userID)
		}
	}

	if len(changes) > 0 {
		if err := h.store.Update(r.Context(), userID, changes); err != nil {
			if errors.Is(err, ErrNotFound) {
				httputil.RespondErrorWithCode(w, "User not found", httputil.CodeNotFound, http.StatusNotFound)
				return
			}
			logger.Error("failed to update user", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update user", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
	}

	httputil.RespondJSON(w, fielddiff.Flags(changes), http.StatusOK)
}

func validateCreate(req CreateRequest) []httputil.FieldError {
	var fieldErrs []httputil.FieldError

	if req.Username == "" {
		fieldErrs = append(fieldErrs, httputil.FieldError{Field: "username", Message: "username is required"})
	} else if len(req.Username) > 254 {
		fieldErrs = append(fieldErrs, httputil.FieldError{Field: "username", Message: "username is too long"})
	}

	if req.Password == "" {
		fieldErrs = append(fieldErrs, httputil.FieldError{Field: "password", Message: "password is required"})
	} else if len(req.Password) < 8 {
		fieldErrs = append(fieldErrs, httputil.FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}

	if req.YearBorn != nil {
		if *req.YearBorn < 1850 || *req.YearBorn > time.Now().Year() {
			fieldErrs = append(fieldErrs, httputil.FieldError{Field: "year_born", Message: "year_born is out of range"})
		}
	}

	if req.ReminderDaysBeforeDue != nil && *req.ReminderDaysBeforeDue < 0 {
		fieldErrs = append(fieldErrs, httputil.FieldError{Field: "reminder_days_before_due", Message: "reminder_days_before_due must not be negative"})
	}

	return fieldErrs
}

// nextValues builds the requested-state value map from the keys the
// client sent. A field set to null carries nil and clears the column.
func nextValues(body httputil.Body) (fielddiff.Values, error) {
	next := fielddiff.Values{}

	if body.Has("default_reminder_email") {
		s, err := body.String("default_reminder_email")
		if err != nil {
			return nil, err
		}
		next["default_reminder_email"] = textValue(s)
	}
	if body.Has("year_born") {
		i, err := body.Int("year_born")
		if err != nil {
			return nil, err
		}
		next["year_born"] = intValue(i)
	}
	if body.Has("reminder_days_before_due") {
		i, err := body.Int("reminder_days_before_due")
		if err != nil {
			return nil, err
		}
		next["reminder_days_before_due"] = intValue(i)
	}

	return next, nil
}

func textValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func intValue(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func currentValues(u *User) fielddiff.Values {
	values := fielddiff.Values{
		"default_reminder_email":   nil,
		"year_born":                nil,
		"reminder_days_before_due": nil,
	}
	if u.DefaultReminderEmail != nil {
		values["default_reminder_email"] = *u.DefaultReminderEmail
	}
	if u.YearBorn != nil {
		values["year_born"] = *u.YearBorn
	}
	if u.ReminderDaysBeforeDue != nil {
		values["reminder_days_before_due"] = *u.ReminderDaysBeforeDue
	}
	return values
}
