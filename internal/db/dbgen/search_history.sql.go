package dbgen

import (
	"context"
)

const createSearchHistory = `
INSERT INTO search_history (id, user_id, project_id, selection_type, selection_id, title, result_count)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, user_id, project_id, selection_type, selection_id, title, result_count, created_at
`

type CreateSearchHistoryParams struct {
	ID            string
	UserID        string
	ProjectID     string
	SelectionType string
	SelectionID   string
	Title         string
	ResultCount   int32
}

func (q *Queries) CreateSearchHistory(ctx context.Context, arg CreateSearchHistoryParams) (SearchHistory, error) {
	row := q.db.QueryRow(ctx, createSearchHistory,
		arg.ID,
		arg.UserID,
		arg.ProjectID,
		arg.SelectionType,
		arg.SelectionID,
		arg.Title,
		arg.ResultCount,
	)
	var i SearchHistory
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ProjectID,
		&i.SelectionType,
		&i.SelectionID,
		&i.Title,
		&i.ResultCount,
		&i.CreatedAt,
	)
	return i, err
}

const listSearchHistory = `
SELECT id, user_id, project_id, selection_type, selection_id, title, result_count, created_at
FROM search_history
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`

type ListSearchHistoryParams struct {
	UserID string
	Limit  int32
}

func (q *Queries) ListSearchHistory(ctx context.Context, arg ListSearchHistoryParams) ([]SearchHistory, error) {
	rows, err := q.db.Query(ctx, listSearchHistory, arg.UserID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SearchHistory
	for rows.Next() {
		var i SearchHistory
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.ProjectID,
			&i.SelectionType,
			&i.SelectionID,
			&i.Title,
			&i.ResultCount,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
