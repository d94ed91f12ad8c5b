package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scrypster/kindred/internal/engine"
	"github.com/scrypster/kindred/internal/storage"
	"github.com/scrypster/kindred/internal/storage/sqlite"
	"github.com/scrypster/kindred/pkg/types"
	"github.com/scrypster/kindred/web/handlers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKinshipService is a mock implementation of handlers.KinshipService.
type MockKinshipService struct {
	mock.Mock
}

func (m *MockKinshipService) ClassifyKin(ctx context.Context, req engine.ClassifyRequest) (*types.KinSummary, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.KinSummary), args.Error(1)
}

func (m *MockKinshipService) ResolveKinship(ctx context.Context, req engine.ResolveRequest) (*types.Resolution, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Resolution), args.Error(1)
}

type countingPurger struct{ n int }

func (p *countingPurger) Purge() { p.n++ }

type fixture struct {
	store  *sqlite.RelationshipStore
	purger *countingPurger
	mux    *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.NewRelationshipStore(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{store: store, purger: &countingPurger{}}
	eng := engine.NewKinshipEngine(store, engine.DefaultConfig(), nil)
	f.mux = routes(handlers.NewKinshipHandlers(eng, nil), handlers.NewPeopleHandlers(store, f.purger, nil))
	return f
}

func routes(kin *handlers.KinshipHandlers, people *handlers.PeopleHandlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/people/{id}/kin", kin.GetKin)
	mux.HandleFunc("GET /api/kinship", kin.GetKinship)
	if people != nil {
		mux.HandleFunc("GET /api/people/{id}", people.GetPerson)
		mux.HandleFunc("POST /api/people", people.CreatePerson)
		mux.HandleFunc("POST /api/relationships", people.CreateRelationship)
		mux.HandleFunc("DELETE /api/relationships/{id}", people.DeleteRelationship)
	}
	return mux
}

func (f *fixture) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func (f *fixture) seedFamily(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []types.Person{
		{ID: "gran", DisplayName: "Gran", Gender: types.GenderFemale, IsAlive: true},
		{ID: "dad", DisplayName: "Dad", Gender: types.GenderMale, IsAlive: true},
		{ID: "kid", DisplayName: "Kid", Gender: types.GenderFemale, IsAlive: true},
	} {
		p := p
		require.NoError(t, f.store.StorePerson(ctx, &p))
	}
	require.NoError(t, f.store.StoreRelationship(ctx, &types.RelationshipEdge{PersonA: "gran", PersonB: "dad", Type: types.EdgeParent}))
	require.NoError(t, f.store.StoreRelationship(ctx, &types.RelationshipEdge{PersonA: "dad", PersonB: "kid", Type: types.EdgeParent}))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) handlers.ErrorResponse {
	t.Helper()
	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetKinship_Found(t *testing.T) {
	f := newFixture(t)
	f.seedFamily(t)

	w := f.do(t, "GET", "/api/kinship?from=gran&to=kid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var res types.Resolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Found)
	require.NotNil(t, res.PathLength)
	assert.Equal(t, 2, *res.PathLength)
	assert.Equal(t, "grandparent", res.Term)
	assert.Equal(t, "grandmother", res.DisplayTerm)
	assert.Equal(t, types.CategoryDirect, res.Category)
	require.Len(t, res.Path, 3)
	assert.Equal(t, "gran", res.Path[0].PersonID)
	assert.Nil(t, res.Path[2].RelationshipToNext)
}

func TestGetKinship_NoPathIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.seedFamily(t)

	w := f.do(t, "GET", "/api/kinship?from=gran&to=stranger", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["found"])
	assert.Nil(t, body["path_length"])
	assert.Equal(t, []interface{}{}, body["path"])
}

func TestGetKinship_DepthErrors(t *testing.T) {
	f := newFixture(t)

	for _, q := range []string{"max_depth=abc", "max_depth=0", "max_depth=99"} {
		w := f.do(t, "GET", "/api/kinship?from=a&to=b&"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, handlers.CodeInvalidDepth, decodeError(t, w).Code, q)
	}
}

func TestGetKinship_MissingIDs(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/kinship?from=a", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, handlers.CodeInvalidInput, decodeError(t, w).Code)
}

func TestGetKin(t *testing.T) {
	f := newFixture(t)
	f.seedFamily(t)

	w := f.do(t, "GET", "/api/people/kid/kin?max_depth=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summary types.KinSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "kid", summary.RootID)
	assert.Equal(t, 2, summary.MaxDepth)
	require.Len(t, summary.Parents, 1)
	assert.Equal(t, "dad", summary.Parents[0].ID)
	require.Len(t, summary.Grandparents, 1)
	assert.Equal(t, "gran", summary.Grandparents[0].ID)
	assert.Empty(t, summary.Children)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unavailable", storage.ErrStoreUnavailable, http.StatusServiceUnavailable, handlers.CodeStoreUnavailable},
		{"not found", storage.ErrNotFound, http.StatusNotFound, handlers.CodeNotFound},
		{"invalid", storage.ErrInvalidInput, http.StatusBadRequest, handlers.CodeInvalidInput},
		{"invalid depth", engine.ErrInvalidDepth, http.StatusBadRequest, handlers.CodeInvalidDepth},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, handlers.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockKinshipService)
			svc.On("ResolveKinship", mock.Anything, mock.Anything).Return(nil, tt.err)
			f := &fixture{mux: routes(handlers.NewKinshipHandlers(svc, nil), nil)}

			w := f.do(t, "GET", "/api/kinship?from=a&to=b", nil)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Code)
			if tt.status == http.StatusInternalServerError {
				assert.NotContains(t, resp.Error, "connection reset")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestGetKinship_PassesDepthThrough(t *testing.T) {
	svc := new(MockKinshipService)
	svc.On("ResolveKinship", mock.Anything, mock.MatchedBy(func(req engine.ResolveRequest) bool {
		return req.PersonAID == "a" && req.PersonBID == "b" && req.MaxDepth != nil && *req.MaxDepth == 4
	})).Return(&types.Resolution{Path: []types.PathStep{}}, nil)
	f := &fixture{mux: routes(handlers.NewKinshipHandlers(svc, nil), nil)}

	w := f.do(t, "GET", "/api/kinship?from=a&to=b&max_depth=4", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestCreatePerson(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/api/people", map[string]interface{}{
		"id": "ada", "display_name": "Ada", "gender": "female",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, f.purger.n)

	stored, err := f.store.GetPerson(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, "Ada", stored.DisplayName)
	assert.True(t, stored.IsAlive)

	w = f.do(t, "GET", "/api/people/ada", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display_name":"Ada"`)
}

func TestCreatePerson_GeneratesID(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/api/people", map[string]interface{}{"display_name": "New", "is_alive": false})
	require.Equal(t, http.StatusCreated, w.Code)

	var person types.Person
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &person))
	assert.Regexp(t, `^p-`, person.ID)
	assert.False(t, person.IsAlive)
	assert.Equal(t, types.GenderUnknown, person.Gender)
}

func TestCreatePerson_Rejects(t *testing.T) {
	f := newFixture(t)

	for name, body := range map[string]interface{}{
		"bad gender":    map[string]interface{}{"id": "x", "gender": "robot"},
		"unknown field": map[string]interface{}{"id": "x", "age": 3},
		"malformed":     "{not json",
		"whitespace id": map[string]interface{}{"id": "two words"},
	} {
		w := f.do(t, "POST", "/api/people", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
		assert.Equal(t, handlers.CodeInvalidInput, decodeError(t, w).Code, name)
	}
	assert.Zero(t, f.purger.n)
}

func TestGetPerson_NotFound(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, "GET", "/api/people/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRelationshipLifecycle(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "POST", "/api/relationships", map[string]string{
		"person_a": "mum", "person_b": "son", "type": "parent",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var edge types.RelationshipEdge
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &edge))
	require.NotEmpty(t, edge.ID)

	w = f.do(t, "GET", "/api/kinship?from=mum&to=son", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"term":"parent"`)

	w = f.do(t, "DELETE", "/api/relationships/"+edge.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, "DELETE", "/api/relationships/"+edge.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 2, f.purger.n)
}

func TestCreateRelationship_Rejects(t *testing.T) {
	f := newFixture(t)

	for name, body := range map[string]map[string]string{
		"self loop":    {"person_a": "a", "person_b": "a", "type": "spouse"},
		"unknown type": {"person_a": "a", "person_b": "b", "type": "cousin"},
		"missing side": {"person_a": "a", "type": "parent"},
	} {
		w := f.do(t, "POST", "/api/relationships", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}
