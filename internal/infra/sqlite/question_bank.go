package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"ark-trip-service/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS questions (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL
);`

// QuestionBank keeps the question catalog in a single-file SQLite database,
// the zero-ops option for a one-trip deployment.
type QuestionBank struct {
	db *sql.DB
}

func Open(path string) (*QuestionBank, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &QuestionBank{db: db}, nil
}

func (b *QuestionBank) Close() error {
	return b.db.Close()
}

func (b *QuestionBank) Get(ctx context.Context, id string) (domain.Question, error) {
	var raw string
	err := b.db.QueryRowContext(ctx, `SELECT data FROM questions WHERE id=?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	var q domain.Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal question: %w", err)
	}
	return q, nil
}

func (b *QuestionBank) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT data FROM questions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []domain.Question
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return out, nil
}

func (b *QuestionBank) Save(ctx context.Context, q domain.Question) (domain.Question, error) {
	if q.ID == "" {
		q.ID = "custom-" + uuid.NewString()
	}
	data, err := json.Marshal(q)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal question: %w", err)
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO questions (id, data) VALUES (?, ?)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data`,
		q.ID, string(data))
	if err != nil {
		return domain.Question{}, fmt.Errorf("save question: %w", err)
	}
	return q, nil
}

func (b *QuestionBank) Delete(ctx context.Context, id string) error {
	res, err := b.db.ExecContext(ctx, `DELETE FROM questions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if n == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}
