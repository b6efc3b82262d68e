package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/apibase/internal/model"
	"github.com/hitoshi/apibase/internal/repository"
	"github.com/hitoshi/apibase/internal/task"
)

// mockTaskService はTaskServiceInterfaceのテスト用実装。
type mockTaskService struct {
	listFunc       func(ctx context.Context, skip, limit int) ([]model.Task, int, error)
	listSortedFunc func(ctx context.Context, column string, direction repository.Direction, skip, limit int) ([]model.Task, error)
	listByDoneFunc func(ctx context.Context, done bool) ([]model.Task, error)
	getFunc        func(ctx context.Context, id uuid.UUID) (*model.Task, error)
	createFunc     func(ctx context.Context, params task.CreateParams) (*model.Task, error)
	updateFunc     func(ctx context.Context, id uuid.UUID, params task.UpdateParams) (*model.Task, error)
	deleteFunc     func(ctx context.Context, id uuid.UUID) error
	bulkCreateFunc func(ctx context.Context, params []task.CreateParams) (int, error)
}

func (m *mockTaskService) List(ctx context.Context, skip, limit int) ([]model.Task, int, error) {
	return m.listFunc(ctx, skip, limit)
}

func (m *mockTaskService) ListSorted(ctx context.Context, column string, direction repository.Direction, skip, limit int) ([]model.Task, error) {
	return m.listSortedFunc(ctx, column, direction, skip, limit)
}

func (m *mockTaskService) ListByDone(ctx context.Context, done bool) ([]model.Task, error) {
	return m.listByDoneFunc(ctx, done)
}

func (m *mockTaskService) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	return m.getFunc(ctx, id)
}

func (m *mockTaskService) Create(ctx context.Context, params task.CreateParams) (*model.Task, error) {
	return m.createFunc(ctx, params)
}

func (m *mockTaskService) Update(ctx context.Context, id uuid.UUID, params task.UpdateParams) (*model.Task, error) {
	return m.updateFunc(ctx, id, params)
}

func (m *mockTaskService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockTaskService) BulkCreate(ctx context.Context, params []task.CreateParams) (int, error) {
	return m.bulkCreateFunc(ctx, params)
}

func newTestRouter(service TaskServiceInterface) http.Handler {
	return NewRouter(&RouterDeps{
		CORSAllowedOrigins: []string{"http://localhost:3000"},
		TaskService:        service,
	})
}

func sampleTask() *model.Task {
	return &model.Task{
		Base:        model.Base{ID: uuid.New(), CreatedAt: time.Now()},
		Title:       "買い物",
		Description: "牛乳を買う",
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestTaskHandler_List(t *testing.T) {
	svc := &mockTaskService{
		listFunc: func(ctx context.Context, skip, limit int) ([]model.Task, int, error) {
			if skip != 5 || limit != 10 {
				t.Errorf("skip/limit = %d/%d, want 5/10", skip, limit)
			}
			return []model.Task{*sampleTask()}, 42, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?skip=5&limit=10", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	if body["result"] != "SUCCESS" {
		t.Errorf("result = %v, want SUCCESS", body["result"])
	}
	data := body["data"].(map[string]any)
	if data["total"] != float64(42) {
		t.Errorf("total = %v, want 42", data["total"])
	}
	if len(data["items"].([]any)) != 1 {
		t.Errorf("items = %v, want 1 entry", data["items"])
	}
}

func TestTaskHandler_List_InvalidSkip(t *testing.T) {
	router := newTestRouter(&mockTaskService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?skip=abc", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["result"] != "FAIL" {
		t.Errorf("result = %v, want FAIL", body["result"])
	}
	if body["errorCode"] != model.ErrCodeBadRequest {
		t.Errorf("errorCode = %v, want BAD_REQUEST", body["errorCode"])
	}
}

func TestTaskHandler_List_DoneFilter(t *testing.T) {
	svc := &mockTaskService{
		listByDoneFunc: func(ctx context.Context, done bool) ([]model.Task, error) {
			if !done {
				t.Error("done = false, want true")
			}
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?done=true", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestTaskHandler_List_SortOrder(t *testing.T) {
	svc := &mockTaskService{
		listSortedFunc: func(ctx context.Context, column string, direction repository.Direction, skip, limit int) ([]model.Task, error) {
			if column != "title" {
				t.Errorf("column = %q, want title", column)
			}
			if direction != repository.Asc {
				t.Errorf("direction = %v, want Asc", direction)
			}
			return nil, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?sort=title&order=asc", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestTaskHandler_List_UnknownSortColumn(t *testing.T) {
	svc := &mockTaskService{
		listSortedFunc: func(ctx context.Context, column string, direction repository.Direction, skip, limit int) ([]model.Task, error) {
			return nil, model.NewBadRequestError("ソート対象のカラムは存在しません。")
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks?sort=bogus", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTaskHandler_Get(t *testing.T) {
	want := sampleTask()
	svc := &mockTaskService{
		getFunc: func(ctx context.Context, id uuid.UUID) (*model.Task, error) {
			if id != want.ID {
				t.Errorf("id = %v, want %v", id, want.ID)
			}
			return want, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+want.ID.String(), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	if data["id"] != want.ID.String() {
		t.Errorf("id = %v, want %v", data["id"], want.ID)
	}
	if data["title"] != "買い物" {
		t.Errorf("title = %v, want 買い物", data["title"])
	}
}

func TestTaskHandler_Get_TimestampsAreKST(t *testing.T) {
	stored := sampleTask()
	// DBドライバがUTCで返してもレスポンスは+09:00になること
	stored.CreatedAt = time.Date(2026, 8, 26, 3, 0, 0, 0, time.UTC)
	updated := time.Date(2026, 8, 26, 4, 30, 0, 0, time.UTC)
	stored.UpdatedAt = &updated

	svc := &mockTaskService{
		getFunc: func(ctx context.Context, id uuid.UUID) (*model.Task, error) {
			return stored, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+stored.ID.String(), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)

	createdAt, ok := data["created_at"].(string)
	if !ok || !strings.HasSuffix(createdAt, "+09:00") {
		t.Errorf("created_at = %v, want +09:00 offset", data["created_at"])
	}
	if createdAt != "2026-08-26T12:00:00+09:00" {
		t.Errorf("created_at = %q, want 2026-08-26T12:00:00+09:00", createdAt)
	}
	updatedAt, ok := data["updated_at"].(string)
	if !ok || updatedAt != "2026-08-26T13:30:00+09:00" {
		t.Errorf("updated_at = %v, want 2026-08-26T13:30:00+09:00", data["updated_at"])
	}
}

func TestTaskHandler_Get_InvalidUUID(t *testing.T) {
	router := newTestRouter(&mockTaskService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/not-a-uuid", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTaskHandler_Get_NotFound(t *testing.T) {
	svc := &mockTaskService{
		getFunc: func(ctx context.Context, id uuid.UUID) (*model.Task, error) {
			return nil, model.NewNotFoundError("タスクが見つかりません。")
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/"+uuid.NewString(), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body["errorCode"] != model.ErrCodeNotFound {
		t.Errorf("errorCode = %v, want NOT_FOUND", body["errorCode"])
	}
	if body["path"] == nil || !strings.HasPrefix(body["path"].(string), "/api/v1/tasks/") {
		t.Errorf("path = %v, want /api/v1/tasks/...", body["path"])
	}
}

func TestTaskHandler_Create(t *testing.T) {
	svc := &mockTaskService{
		createFunc: func(ctx context.Context, params task.CreateParams) (*model.Task, error) {
			if params.Title != "新規" {
				t.Errorf("Title = %q, want 新規", params.Title)
			}
			created := sampleTask()
			created.Title = params.Title
			return created, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{"title":"新規","description":"d"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	if body["result"] != "SUCCESS" {
		t.Errorf("result = %v, want SUCCESS", body["result"])
	}
}

func TestTaskHandler_Create_MalformedBody(t *testing.T) {
	router := newTestRouter(&mockTaskService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{not json`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTaskHandler_Update(t *testing.T) {
	want := sampleTask()
	svc := &mockTaskService{
		updateFunc: func(ctx context.Context, id uuid.UUID, params task.UpdateParams) (*model.Task, error) {
			if params.Title == nil || *params.Title != "更新後" {
				t.Errorf("Title = %v, want 更新後", params.Title)
			}
			if params.Description != nil {
				t.Error("Description should stay nil when omitted")
			}
			want.Title = *params.Title
			return want, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/tasks/"+want.ID.String(), strings.NewReader(`{"title":"更新後"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	id := uuid.New()
	called := false
	svc := &mockTaskService{
		deleteFunc: func(ctx context.Context, got uuid.UUID) error {
			called = true
			if got != id {
				t.Errorf("id = %v, want %v", got, id)
			}
			return nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/"+id.String(), nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !called {
		t.Error("expected Delete to be called")
	}
}

func TestTaskHandler_BulkCreate(t *testing.T) {
	svc := &mockTaskService{
		bulkCreateFunc: func(ctx context.Context, params []task.CreateParams) (int, error) {
			if len(params) != 2 {
				t.Errorf("len(params) = %d, want 2", len(params))
			}
			return len(params), nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks/bulk",
		strings.NewReader(`{"tasks":[{"title":"a"},{"title":"b"}]}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]any)
	if data["created"] != float64(2) {
		t.Errorf("created = %v, want 2", data["created"])
	}
}
