// Package task はサンプルリソースTaskのドメインロジックを提供する。
// 新しいリソースのサービス層を書く際の雛形を兼ねる。
package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/hitoshi/apibase/internal/model"
	"github.com/hitoshi/apibase/internal/repository"
	"github.com/hitoshi/apibase/internal/timeutil"
)

// CreateParams はタスク作成の入力。
type CreateParams struct {
	Title       string
	Description string
}

// UpdateParams はタスク更新の入力。nilのフィールドは変更しない。
type UpdateParams struct {
	Title       *string
	Description *string
	Done        *bool
}

// Service はタスク管理のサービス層。
// 読み取りはReadOnlyセッション、書き込みはトランザクションで実行する。
type Service struct {
	uow *repository.UnitOfWork
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(uow *repository.UnitOfWork) *Service {
	return &Service{uow: uow}
}

// List はskip/limitで区切ったタスク一覧と総件数を返す。
func (s *Service) List(ctx context.Context, skip, limit int) ([]model.Task, int, error) {
	var (
		tasks []model.Task
		total int
	)
	err := s.uow.ReadOnly(ctx, func(ctx context.Context, db bun.IDB) error {
		repo := repository.NewRepo[model.Task](db)

		var err error
		tasks, err = repo.GetAll(ctx, skip, limit)
		if err != nil {
			return fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
		}
		total, err = repo.Count(ctx, nil)
		if err != nil {
			return fmt.Errorf("タスク件数の取得に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// ListSorted は指定カラムでソートしたタスク一覧を返す。
// 未知のカラムはBAD_REQUESTとして分類する。
func (s *Service) ListSorted(ctx context.Context, column string, direction repository.Direction, skip, limit int) ([]model.Task, error) {
	var tasks []model.Task
	err := s.uow.ReadOnly(ctx, func(ctx context.Context, db bun.IDB) error {
		repo := repository.NewRepo[model.Task](db)

		var err error
		tasks, err = repo.OrderBy(ctx, column, direction, skip, limit)
		if errors.Is(err, repository.ErrUnknownColumn) {
			return model.NewBadRequestError(fmt.Sprintf("ソート対象のカラム %q は存在しません。", column))
		}
		if err != nil {
			return fmt.Errorf("タスク一覧の取得に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListByDone は完了状態で絞り込んだタスク一覧を返す。
func (s *Service) ListByDone(ctx context.Context, done bool) ([]model.Task, error) {
	var tasks []model.Task
	err := s.uow.ReadOnly(ctx, func(ctx context.Context, db bun.IDB) error {
		repo := repository.NewRepo[model.Task](db)

		var err error
		tasks, err = repo.FilterBy(ctx, repository.Criteria{repository.Eq("done", done)})
		if err != nil {
			return fmt.Errorf("タスクの絞り込みに失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get は指定IDのタスクを返す。見つからない場合はNOT_FOUND。
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task *model.Task
	err := s.uow.ReadOnly(ctx, func(ctx context.Context, db bun.IDB) error {
		repo := repository.NewRepo[model.Task](db)

		var err error
		task, err = repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("タスクの取得に失敗しました: %w", err)
		}
		if task == nil {
			return model.NewNotFoundError(fmt.Sprintf("タスク %s が見つかりません。", id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Create はタスクを作成して返す。
func (s *Service) Create(ctx context.Context, params CreateParams) (*model.Task, error) {
	if strings.TrimSpace(params.Title) == "" {
		return nil, model.NewBadRequestError("タイトルは必須です。")
	}

	task := &model.Task{
		Title:       params.Title,
		Description: params.Description,
	}
	err := s.uow.Transactional(ctx, func(ctx context.Context, tx bun.Tx) error {
		repo := repository.NewRepo[model.Task](tx)
		if err := repo.Create(ctx, task); err != nil {
			return fmt.Errorf("タスクの作成に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update は指定IDのタスクを部分更新して返す。見つからない場合はNOT_FOUND。
func (s *Service) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*model.Task, error) {
	if params.Title != nil && strings.TrimSpace(*params.Title) == "" {
		return nil, model.NewBadRequestError("タイトルを空にすることはできません。")
	}

	var task *model.Task
	err := s.uow.Transactional(ctx, func(ctx context.Context, tx bun.Tx) error {
		repo := repository.NewRepo[model.Task](tx)

		var err error
		task, err = repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("タスクの取得に失敗しました: %w", err)
		}
		if task == nil {
			return model.NewNotFoundError(fmt.Sprintf("タスク %s が見つかりません。", id))
		}

		if params.Title != nil {
			task.Title = *params.Title
		}
		if params.Description != nil {
			task.Description = *params.Description
		}
		if params.Done != nil {
			task.Done = *params.Done
		}

		if err := repo.Update(ctx, task); err != nil {
			return fmt.Errorf("タスクの更新に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete は指定IDのタスクを削除する。見つからない場合はNOT_FOUND。
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.uow.Transactional(ctx, func(ctx context.Context, tx bun.Tx) error {
		repo := repository.NewRepo[model.Task](tx)

		task, err := repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("タスクの取得に失敗しました: %w", err)
		}
		if task == nil {
			return model.NewNotFoundError(fmt.Sprintf("タスク %s が見つかりません。", id))
		}

		if err := repo.Delete(ctx, task); err != nil {
			return fmt.Errorf("タスクの削除に失敗しました: %w", err)
		}
		return nil
	})
}

// BulkCreate は複数タスクを同一トランザクションで一括作成し、作成件数を返す。
// 一括挿入はモデルフックを通らないため、IDと作成時刻はここで付与する。
func (s *Service) BulkCreate(ctx context.Context, params []CreateParams) (int, error) {
	if len(params) == 0 {
		return 0, model.NewBadRequestError("作成するタスクがありません。")
	}

	rows := make([]map[string]any, len(params))
	for i, p := range params {
		if strings.TrimSpace(p.Title) == "" {
			return 0, model.NewBadRequestError("タイトルは必須です。")
		}
		rows[i] = map[string]any{
			"id":          uuid.New(),
			"title":       p.Title,
			"description": p.Description,
			"done":        false,
			"created_at":  timeutil.Now(),
		}
	}

	err := s.uow.Transactional(ctx, func(ctx context.Context, tx bun.Tx) error {
		repo := repository.NewRepo[model.Task](tx)
		if err := repo.BulkInsert(ctx, rows); err != nil {
			return fmt.Errorf("タスクの一括作成に失敗しました: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}
