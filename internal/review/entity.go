// AngelaMos | 2026
// entity.go

package review

import (
	"time"
)

type Review struct {
	ID             int64     `db:"id"`
	TitleID        int64     `db:"title_id"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	Text           string    `db:"text"`
	Score          int       `db:"score"`
	CreatedAt      time.Time `db:"created_at"`
}

type Comment struct {
	ID             int64     `db:"id"`
	ReviewID       int64     `db:"review_id"`
	AuthorID       string    `db:"author_id"`
	AuthorUsername string    `db:"author_username"`
	Text           string    `db:"text"`
	CreatedAt      time.Time `db:"created_at"`
}
