package dbgen

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   pgtype.Timestamptz
}

type SearchHistory struct {
	ID            string
	UserID        string
	ProjectID     string
	SelectionType string
	SelectionID   string
	Title         string
	ResultCount   int32
	CreatedAt     pgtype.Timestamptz
}
