package vaccine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rokotuskortti/vaccination-erecord/internal/session"
)

type fakeStore struct {
	vaccines []Vaccine
	nextID   int64
}

func (s *fakeStore) ListVisibleTo(_ context.Context, userID int64) ([]Vaccine, error) {
	var own, builtin []Vaccine
	for _, v := range s.vaccines {
		switch {
		case v.CreatedByUserID == nil:
			builtin = append(builtin, v)
		case *v.CreatedByUserID == userID:
			own = append(own, v)
		}
	}
	return append(own, builtin...), nil
}

func (s *fakeStore) Get(_ context.Context, id int64) (*Vaccine, error) {
	for i := range s.vaccines {
		if s.vaccines[i].ID == id {
			return &s.vaccines[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) Create(_ context.Context, nv NewVaccine) (*Vaccine, error) {
	s.nextID++
	owner := nv.CreatedByUserID
	v := Vaccine{ID: s.nextID, Name: nv.Name, Abbreviation: nv.Abbreviation, CreatedByUserID: &owner}
	s.vaccines = append(s.vaccines, v)
	return &v, nil
}

func authedRequest(method, target, body string, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), session.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func TestListVisibility(t *testing.T) {
	otherUser := int64(7)
	store := &fakeStore{
		vaccines: []Vaccine{
			{ID: 1, Name: "MPR"},
			{ID: 2, Name: "Oma rokote", CreatedByUserID: &otherUser},
		},
		nextID: 2,
	}
	handler := NewHandler(store)
	_, err := store.Create(context.Background(), NewVaccine{Name: "Puutiaisaivotulehdus", CreatedByUserID: 1})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(http.MethodGet, "/api/vaccine", "", 1))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "MPR")
	assert.Contains(t, body, "Puutiaisaivotulehdus")
	assert.NotContains(t, body, "Oma rokote")
}

func TestCreateVaccine(t *testing.T) {
	store := &fakeStore{}
	handler := NewHandler(store)

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/api/vaccine",
		`{"name":"Puutiaisaivotulehdus","abbreviation":"TBE"}`, 1))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())

	require.Len(t, store.vaccines, 1)
	require.NotNil(t, store.vaccines[0].CreatedByUserID)
	assert.Equal(t, int64(1), *store.vaccines[0].CreatedByUserID)
}

func TestCreateVaccineRequiresName(t *testing.T) {
	store := &fakeStore{}
	handler := NewHandler(store)

	rec := httptest.NewRecorder()
	handler.Create(rec, authedRequest(http.MethodPost, "/api/vaccine", `{"abbreviation":"TBE"}`, 1))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "name")
	assert.Empty(t, store.vaccines)
}
