package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple_kitchen/config"
	"couple_kitchen/models"
	"couple_kitchen/services"
	"couple_kitchen/utils"
)

type fakeRepo struct {
	items     []models.ShoppingItem
	createErr error
}

func (f *fakeRepo) List(_ context.Context, coupleID string, date time.Time) ([]models.ShoppingItem, error) {
	out := make([]models.ShoppingItem, 0)
	for _, it := range f.items {
		if it.CoupleID == coupleID && it.ListDate == models.FormatListDate(date) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateMany(_ context.Context, coupleID string, date time.Time, items []models.NewShoppingItem) (int, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	for _, it := range items {
		f.items = append(f.items, models.ShoppingItem{
			ID: fmt.Sprintf("id-%d", len(f.items)+1), CoupleID: coupleID, ListDate: models.FormatListDate(date),
			Name: it.Name, Amount: it.Amount, Category: it.Category, Type: it.Type,
			RecipeID: it.RecipeID, RecipeName: it.RecipeName,
		})
	}
	return len(items), nil
}

func (f *fakeRepo) PatchChecked(_ context.Context, id string, checked bool) (*models.ShoppingItem, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Checked = checked
			it := f.items[i]
			return &it, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeRepo) DeleteGenerated(_ context.Context, coupleID string, date time.Time) (int64, error) {
	kept := make([]models.ShoppingItem, 0, len(f.items))
	var n int64
	for _, it := range f.items {
		if it.CoupleID == coupleID && it.ListDate == models.FormatListDate(date) && it.Type != models.ItemTypeMemo {
			n++
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return n, nil
}

type fakeConsolidator struct {
	text string
	err  error
}

func (f *fakeConsolidator) Consolidate(context.Context, models.ConsolidationRequest) (string, error) {
	return f.text, f.err
}

func newTestServer(t *testing.T, apiKey string, repo *fakeRepo, client services.ConsolidationClient) *httptest.Server {
	cfg := &config.Config{}
	cfg.Auth.APIKey = apiKey

	r := chi.NewRouter()
	RegisterRoutes(r, cfg, NewShoppingHandler(
		services.NewShoppingService(repo),
		services.NewConsolidationService(client, repo),
	))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, headers map[string]string) envelope {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestShoppingAPI_CreateListPatchDelete(t *testing.T) {
	repo := &fakeRepo{}
	srv := newTestServer(t, "", repo, &fakeConsolidator{})

	env := do(t, srv, http.MethodPost, "/shopping",
		`{"coupleId":"c1","date":"2026-10-19","items":[{"name":"鸡蛋","amount":"1盒"},{"name":"保鲜袋","amount":"1卷","category":"other"}]}`, nil)
	require.Equal(t, models.CodeSuccess, env.Code)
	assert.JSONEq(t, `{"count":2}`, string(env.Data))

	env = do(t, srv, http.MethodGet, "/shopping?coupleId=c1&date=2026-10-19", "", nil)
	require.Equal(t, models.CodeSuccess, env.Code)
	var items []models.ShoppingItem
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, models.CategoryDairyEgg, items[0].Category)
	assert.Equal(t, models.ItemTypeMemo, items[0].Type)

	env = do(t, srv, http.MethodPatch, "/shopping/"+items[0].ID, `{"checked":true}`, nil)
	require.Equal(t, models.CodeSuccess, env.Code)
	var patched models.ShoppingItem
	require.NoError(t, json.Unmarshal(env.Data, &patched))
	assert.True(t, patched.Checked)

	env = do(t, srv, http.MethodDelete, "/shopping/"+items[0].ID, "", nil)
	require.Equal(t, models.CodeSuccess, env.Code)
	assert.JSONEq(t, `{"deleted":true}`, string(env.Data))

	env = do(t, srv, http.MethodDelete, "/shopping/"+items[0].ID, "", nil)
	assert.Equal(t, models.CodeItemNotFound, env.Code)
}

func TestShoppingAPI_ParamErrors(t *testing.T) {
	srv := newTestServer(t, "", &fakeRepo{}, &fakeConsolidator{})

	env := do(t, srv, http.MethodGet, "/shopping?coupleId=c1", "", nil)
	assert.Equal(t, models.CodeMissingParams, env.Code)

	env = do(t, srv, http.MethodGet, "/shopping?coupleId=c1&date=19-10-2026", "", nil)
	assert.Equal(t, models.CodeInvalidParams, env.Code)

	env = do(t, srv, http.MethodPost, "/shopping", `{"coupleId":"c1",`, nil)
	assert.Equal(t, models.CodeInvalidParams, env.Code)

	env = do(t, srv, http.MethodPatch, "/shopping/x", `{}`, nil)
	assert.Equal(t, models.CodeMissingParams, env.Code)

	env = do(t, srv, http.MethodPatch, "/shopping/x", `{"checked":false}`, nil)
	assert.Equal(t, models.CodeItemNotFound, env.Code)
}

const consolidationText = `{"common":[{"name":"鸡蛋","amount":"1盒(10个)","category":"dairy_egg"}],
"recipes":[{"recipeId":"r1","recipeName":"番茄炒蛋","items":[{"name":"盐","amount":"适量","category":"seasoning"}]}]}`

const consolidateBody = `{"coupleId":"c1","date":"2026-10-19","recipes":[
{"id":"r1","name":"番茄炒蛋","ingredients":[{"name":"鸡蛋","amount":"3个"},{"name":"盐","amount":"少许"}]},
{"id":"r2","name":"蛋羹","ingredients":[{"name":"鸡蛋","amount":"2个"}]}]}`

func TestShoppingAPI_Consolidate(t *testing.T) {
	repo := &fakeRepo{}
	repo.items = []models.ShoppingItem{
		{ID: "m1", CoupleID: "c1", ListDate: "2026-10-19", Name: "纸巾", Type: models.ItemTypeMemo, Category: models.CategoryOther},
		{ID: "g1", CoupleID: "c1", ListDate: "2026-10-19", Name: "旧的葱", Type: models.ItemTypeCommon, Category: models.CategoryVegetable},
	}
	srv := newTestServer(t, "", repo, &fakeConsolidator{text: consolidationText})

	env := do(t, srv, http.MethodPost, "/shopping/consolidate", consolidateBody, nil)
	require.Equal(t, models.CodeSuccess, env.Code, env.Message)

	var res models.ConsolidateResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, int64(1), res.Deleted)
	assert.Equal(t, 2, res.Created)
	require.Len(t, res.Common, 1)
	assert.Equal(t, "鸡蛋", res.Common[0].Name)

	names := make([]string, 0)
	for _, it := range repo.items {
		names = append(names, it.Name)
	}
	assert.Equal(t, []string{"纸巾", "鸡蛋", "盐"}, names)
}

func TestShoppingAPI_ConsolidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeConsolidator
		body   string
		repo   *fakeRepo
		code   int
	}{
		{"no recipes", &fakeConsolidator{}, `{"coupleId":"c1","date":"2026-10-19","recipes":[]}`, &fakeRepo{}, models.CodeNoRecipes},
		{"missing scope", &fakeConsolidator{}, `{"recipes":[]}`, &fakeRepo{}, models.CodeMissingParams},
		{"invalid shape", &fakeConsolidator{text: "没有结果"}, consolidateBody, &fakeRepo{}, models.CodeConsolidationError},
		{"provider down", &fakeConsolidator{err: errors.New("timeout")}, consolidateBody, &fakeRepo{}, models.CodeThirdPartyAPIError},
		{"partial", &fakeConsolidator{text: consolidationText}, consolidateBody, &fakeRepo{createErr: errors.New("db gone")}, models.CodePartialRegenerate},
		{"blank recipe id", &fakeConsolidator{text: consolidationText},
			`{"coupleId":"c1","date":"2026-10-19","recipes":[{"id":"","name":"番茄炒蛋","ingredients":[]}]}`, &fakeRepo{}, models.CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, "", tt.repo, tt.client)

			env := do(t, srv, http.MethodPost, "/shopping/consolidate", tt.body, nil)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestSignatureMiddleware(t *testing.T) {
	srv := newTestServer(t, "secret", &fakeRepo{}, &fakeConsolidator{})

	env := do(t, srv, http.MethodGet, "/shopping?coupleId=c1&date=2026-10-19", "", nil)
	assert.Equal(t, models.CodeUnauthorized, env.Code)

	timestamp, auth := utils.SignRequest("secret", time.Now())
	env = do(t, srv, http.MethodGet, "/shopping?coupleId=c1&date=2026-10-19", "", map[string]string{
		"timestamp":     timestamp,
		"Authorization": auth,
	})
	assert.Equal(t, models.CodeSuccess, env.Code)

	env = do(t, srv, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, models.CodeSuccess, env.Code)
}
