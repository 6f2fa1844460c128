package sqlite

import (
	"context"
	"database/sql"

	"github.com/sandevgo/syllabot/internal/core"
)

// storedTopics reads the topics of a syllabus in insertion order.
func storedTopics(ctx context.Context, db *sql.DB, syllabusID string) ([]core.Topic, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, syllabus_id, title, importance, description, created_at
		 FROM topics WHERE syllabus_id = ? ORDER BY position`, syllabusID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []core.Topic
	for rows.Next() {
		var t core.Topic
		var importance string
		if err := rows.Scan(&t.ID, &t.SyllabusID, &t.Title, &importance, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Importance = core.Importance(importance)
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func countSyllabi(ctx context.Context, db *sql.DB, userID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM syllabi WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
