package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/apibase/internal/model"
	"github.com/hitoshi/apibase/internal/repository"
	"github.com/hitoshi/apibase/internal/response"
	"github.com/hitoshi/apibase/internal/task"
	"github.com/hitoshi/apibase/internal/timeutil"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// List はskip/limitで区切ったタスク一覧と総件数を返す。
	List(ctx context.Context, skip, limit int) ([]model.Task, int, error)
	// ListSorted は指定カラムでソートしたタスク一覧を返す。
	ListSorted(ctx context.Context, column string, direction repository.Direction, skip, limit int) ([]model.Task, error)
	// ListByDone は完了状態で絞り込んだタスク一覧を返す。
	ListByDone(ctx context.Context, done bool) ([]model.Task, error)
	// Get は指定IDのタスクを返す。
	Get(ctx context.Context, id uuid.UUID) (*model.Task, error)
	// Create はタスクを作成して返す。
	Create(ctx context.Context, params task.CreateParams) (*model.Task, error)
	// Update は指定IDのタスクを部分更新して返す。
	Update(ctx context.Context, id uuid.UUID, params task.UpdateParams) (*model.Task, error)
	// Delete は指定IDのタスクを削除する。
	Delete(ctx context.Context, id uuid.UUID) error
	// BulkCreate は複数タスクを一括作成し、作成件数を返す。
	BulkCreate(ctx context.Context, params []task.CreateParams) (int, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// taskResponse はタスクのAPIレスポンス。
type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// taskListResponse はタスク一覧のAPIレスポンス。
type taskListResponse struct {
	Items []taskResponse `json:"items"`
	Total int            `json:"total"`
	Skip  int            `json:"skip"`
	Limit int            `json:"limit"`
}

// taskCreateRequest はタスク作成リクエストのボディ。
type taskCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// taskUpdateRequest はタスク更新リクエストのボディ。省略されたフィールドは変更しない。
type taskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Done        *bool   `json:"done"`
}

// taskBulkCreateRequest はタスク一括作成リクエストのボディ。
type taskBulkCreateRequest struct {
	Tasks []taskCreateRequest `json:"tasks"`
}

func toTaskResponse(t *model.Task) taskResponse {
	// ドライバのセッションタイムゾーンに依存せず、レスポンスは常にKSTで返す
	var updatedAt *time.Time
	if t.UpdatedAt != nil {
		v := timeutil.In(*t.UpdatedAt)
		updatedAt = &v
	}
	return taskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Done:        t.Done,
		CreatedAt:   timeutil.In(t.CreatedAt),
		UpdatedAt:   updatedAt,
	}
}

func toTaskResponses(tasks []model.Task) []taskResponse {
	items := make([]taskResponse, len(tasks))
	for i := range tasks {
		items[i] = toTaskResponse(&tasks[i])
	}
	return items
}

// parsePagination はskip/limitクエリパラメータを解釈する。limitのデフォルトは20。
func parsePagination(r *http.Request) (skip, limit int, err error) {
	skip, err = parseIntParam(r, "skip", 0)
	if err != nil {
		return 0, 0, err
	}
	limit, err = parseIntParam(r, "limit", 20)
	if err != nil {
		return 0, 0, err
	}
	if skip < 0 || limit < 0 {
		return 0, 0, model.NewBadRequestError("skipとlimitは0以上で指定してください。")
	}
	return skip, limit, nil
}

func parseIntParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewBadRequestError(name + " は整数で指定してください。")
	}
	return v, nil
}

// List はタスク一覧を取得する。
// GET /api/v1/tasks?skip=&limit=&done=&sort=&order=
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parsePagination(r)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	q := r.URL.Query()

	// 完了状態フィルタ
	if raw := q.Get("done"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			response.WriteServiceError(w, r, model.NewBadRequestError("done はtrue/falseで指定してください。"))
			return
		}
		tasks, err := h.service.ListByDone(r.Context(), done)
		if err != nil {
			response.WriteServiceError(w, r, err)
			return
		}
		response.WriteSuccess(w, http.StatusOK, taskListResponse{
			Items: toTaskResponses(tasks),
			Total: len(tasks),
			Skip:  0,
			Limit: len(tasks),
		}, "")
		return
	}

	// ソート指定
	if column := q.Get("sort"); column != "" {
		direction := repository.Desc
		switch q.Get("order") {
		case "", "desc":
		case "asc":
			direction = repository.Asc
		default:
			response.WriteServiceError(w, r, model.NewBadRequestError("order はasc/descで指定してください。"))
			return
		}
		tasks, err := h.service.ListSorted(r.Context(), column, direction, skip, limit)
		if err != nil {
			response.WriteServiceError(w, r, err)
			return
		}
		response.WriteSuccess(w, http.StatusOK, taskListResponse{
			Items: toTaskResponses(tasks),
			Total: len(tasks),
			Skip:  skip,
			Limit: limit,
		}, "")
		return
	}

	tasks, total, err := h.service.List(r.Context(), skip, limit)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteSuccess(w, http.StatusOK, taskListResponse{
		Items: toTaskResponses(tasks),
		Total: total,
		Skip:  skip,
		Limit: limit,
	}, "")
}

// Get は指定IDのタスクを取得する。
// GET /api/v1/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteServiceError(w, r, model.NewBadRequestError("IDはUUID形式で指定してください。"))
		return
	}

	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteSuccess(w, http.StatusOK, toTaskResponse(t), "")
}

// Create はタスクを作成する。
// POST /api/v1/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteServiceError(w, r, model.NewBadRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	t, err := h.service.Create(r.Context(), task.CreateParams{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteSuccess(w, http.StatusCreated, toTaskResponse(t), "タスクを作成しました。")
}

// Update は指定IDのタスクを部分更新する。
// PATCH /api/v1/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteServiceError(w, r, model.NewBadRequestError("IDはUUID形式で指定してください。"))
		return
	}

	var req taskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteServiceError(w, r, model.NewBadRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	t, err := h.service.Update(r.Context(), id, task.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Done:        req.Done,
	})
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteSuccess(w, http.StatusOK, toTaskResponse(t), "タスクを更新しました。")
}

// Delete は指定IDのタスクを削除する。
// DELETE /api/v1/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteServiceError(w, r, model.NewBadRequestError("IDはUUID形式で指定してください。"))
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteSuccess(w, http.StatusOK, nil, "タスクを削除しました。")
}

// BulkCreate は複数タスクを一括作成する。
// POST /api/v1/tasks/bulk
func (h *TaskHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var req taskBulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteServiceError(w, r, model.NewBadRequestError("リクエストボディの解析に失敗しました。"))
		return
	}

	params := make([]task.CreateParams, len(req.Tasks))
	for i, t := range req.Tasks {
		params[i] = task.CreateParams{Title: t.Title, Description: t.Description}
	}

	n, err := h.service.BulkCreate(r.Context(), params)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteSuccess(w, http.StatusCreated, map[string]int{"created": n}, "タスクを一括作成しました。")
}
