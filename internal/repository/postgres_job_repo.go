package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/applymate/applymate/internal/model"
)

// PostgresJobRepo はPostgreSQLを使用した求人応募レコードリポジトリ。
type PostgresJobRepo struct {
	db *sql.DB
}

// NewPostgresJobRepo はPostgresJobRepoを生成する。
func NewPostgresJobRepo(db *sql.DB) *PostgresJobRepo {
	return &PostgresJobRepo{db: db}
}

// ListByOwner は指定ユーザーの全レコードをcreated_at降順で返す。
func (r *PostgresJobRepo) ListByOwner(ctx context.Context, userID string) ([]*model.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, position, company, location, status, mode, notes,
		        created_at, updated_at
		 FROM jobs
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("応募レコード一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("応募レコードの読み取りに失敗しました: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("応募レコード一覧の走査に失敗しました: %w", err)
	}

	return jobs, nil
}

// FindByOwnerAndID は指定ユーザーの指定IDレコードを取得する。見つからない場合はnilを返す。
func (r *PostgresJobRepo) FindByOwnerAndID(ctx context.Context, userID, id string) (*model.Job, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, position, company, location, status, mode, notes,
		        created_at, updated_at
		 FROM jobs
		 WHERE user_id = $1 AND id = $2`,
		userID, id,
	)

	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("応募レコードの取得に失敗しました: %w", err)
	}

	return job, nil
}

// Insert はレコードを作成する。
func (r *PostgresJobRepo) Insert(ctx context.Context, job *model.Job) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (id, user_id, position, company, location, status, mode,
		                   notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.ID, job.UserID, job.Position, job.Company, job.Location,
		job.Status, job.Mode, nullString(job.Notes),
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("応募レコードの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はレコードの全フィールドを置換する。
// オーナー不一致または未存在の場合はfalseを返す。
func (r *PostgresJobRepo) Update(ctx context.Context, job *model.Job) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET
		    position = $3, company = $4, location = $5,
		    status = $6, mode = $7, notes = $8, updated_at = $9
		 WHERE user_id = $1 AND id = $2`,
		job.UserID, job.ID,
		job.Position, job.Company, job.Location,
		job.Status, job.Mode, nullString(job.Notes), job.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("応募レコードの更新に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("応募レコードの更新結果の取得に失敗しました: %w", err)
	}
	return affected > 0, nil
}

// DeleteByOwnerAndID は指定ユーザーの指定IDレコードを削除する。
// 削除対象が存在しない場合はfalseを返す。
func (r *PostgresJobRepo) DeleteByOwnerAndID(ctx context.Context, userID, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE user_id = $1 AND id = $2`,
		userID, id,
	)
	if err != nil {
		return false, fmt.Errorf("応募レコードの削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("応募レコードの削除結果の取得に失敗しました: %w", err)
	}
	return affected > 0, nil
}

// rowScanner はsql.Rowとsql.Rowsに共通のScanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob は1行をmodel.Jobに読み取る。
func scanJob(row rowScanner) (*model.Job, error) {
	job := &model.Job{}
	var notes sql.NullString

	if err := row.Scan(
		&job.ID, &job.UserID, &job.Position, &job.Company, &job.Location,
		&job.Status, &job.Mode, &notes,
		&job.CreatedAt, &job.UpdatedAt,
	); err != nil {
		return nil, err
	}

	job.Notes = nullStringValue(notes)
	return job, nil
}

// nullString は空文字列をsql.NullStringに変換する。
// メモは空文字列と未設定を同一に扱うため、空の場合はNULLで保存する。
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullStringValue はsql.NullStringから文字列を取得する。
func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// compile-time interface check
var _ JobRepository = (*PostgresJobRepo)(nil)
