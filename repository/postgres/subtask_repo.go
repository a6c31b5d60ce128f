package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskmanager/domain"
	"github.com/fastygo/taskmanager/repository"
)

const subtaskColumns = `id, title, parent_task_id, user_id, status, order_index, created_at, updated_at`

type subtaskRepository struct {
	pool *pgxpool.Pool
}

// NewSubtaskRepository returns a Postgres-backed implementation of SubtaskRepository.
func NewSubtaskRepository(pool *pgxpool.Pool) repository.SubtaskRepository {
	return &subtaskRepository{pool: pool}
}

func (r *subtaskRepository) List(ctx context.Context, filter repository.SubtaskFilter) ([]domain.Subtask, error) {
	const query = `
	SELECT ` + subtaskColumns + `
	FROM subtasks
	WHERE user_id = $1 AND parent_task_id = $2
	ORDER BY order_index ASC, created_at ASC
	`
	return r.query(ctx, r.pool, query, filter.UserID, filter.ParentTaskID)
}

// Create locks the parent task row so concurrent inserts for the same parent
// observe each other's order index.
func (r *subtaskRepository) Create(ctx context.Context, subtask *domain.Subtask) (*domain.Subtask, error) {
	if subtask == nil || subtask.UserID == "" || subtask.ParentTaskID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if subtask.ID == "" {
		subtask.ID = uuid.NewString()
	}

	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const lockParent = `SELECT id FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`
		var parentID string
		if err := tx.QueryRow(ctx, lockParent, subtask.ParentTaskID, subtask.UserID).Scan(&parentID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return err
		}

		const insert = `
		INSERT INTO subtasks (id, title, parent_task_id, user_id, status, order_index)
		VALUES ($1, $2, $3, $4, $5,
			COALESCE((SELECT MAX(order_index) + 1 FROM subtasks WHERE parent_task_id = $3 AND user_id = $4), 0))
		RETURNING order_index, created_at, updated_at
		`
		return tx.QueryRow(ctx, insert,
			subtask.ID,
			subtask.Title,
			subtask.ParentTaskID,
			subtask.UserID,
			string(subtask.Status),
		).Scan(&subtask.OrderIndex, &subtask.CreatedAt, &subtask.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return subtask, nil
}

func (r *subtaskRepository) Update(ctx context.Context, userID, id string, patch domain.SubtaskPatch) (*domain.Subtask, error) {
	const query = `
	UPDATE subtasks
	SET title = COALESCE($3, title),
		status = COALESCE($4, status),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING ` + subtaskColumns

	return scanSubtask(r.pool.QueryRow(ctx, query, id, userID, nullable(patch.Title), nullable(patch.Status)))
}

func (r *subtaskRepository) SetOrder(ctx context.Context, userID, id string, index int) (*domain.Subtask, error) {
	if index < 0 {
		return nil, domain.ErrInvalidOrder
	}
	const query = `
	UPDATE subtasks
	SET order_index = $3,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING ` + subtaskColumns

	return scanSubtask(r.pool.QueryRow(ctx, query, id, userID, index))
}

func (r *subtaskRepository) Reorder(ctx context.Context, userID, parentTaskID string, orderedIDs []string) ([]domain.Subtask, error) {
	var result []domain.Subtask
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const update = `
		UPDATE subtasks
		SET order_index = $4,
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND parent_task_id = $3
		`
		for i, id := range orderedIDs {
			tag, err := tx.Exec(ctx, update, id, userID, parentTaskID, i)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return domain.WrapError(domain.ErrCodeNotFound, "subtask not found", fmt.Errorf("id %s", id))
			}
		}

		const list = `
		SELECT ` + subtaskColumns + `
		FROM subtasks
		WHERE user_id = $1 AND parent_task_id = $2
		ORDER BY order_index ASC, created_at ASC
		`
		var err error
		result, err = r.query(ctx, tx, list, userID, parentTaskID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *subtaskRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM subtasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubtaskNotFound
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *subtaskRepository) query(ctx context.Context, q querier, sql string, args ...any) ([]domain.Subtask, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subtasks := make([]domain.Subtask, 0)
	for rows.Next() {
		subtask, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, *subtask)
	}
	return subtasks, rows.Err()
}

func scanSubtask(row rowScanner) (*domain.Subtask, error) {
	var (
		subtask domain.Subtask
		status  string
	)

	if err := row.Scan(
		&subtask.ID,
		&subtask.Title,
		&subtask.ParentTaskID,
		&subtask.UserID,
		&status,
		&subtask.OrderIndex,
		&subtask.CreatedAt,
		&subtask.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSubtaskNotFound
		}
		return nil, err
	}

	subtask.Status = domain.Status(status)
	return &subtask, nil
}
