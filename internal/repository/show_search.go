package repository

import (
	"context"
	"strings"
	"time"
)

// ShowSearchQuery defines filters and pagination for the public show search.
type ShowSearchQuery struct {
	Title      string // movie title, substring match
	Theater    string // theater name, substring match
	City       string // exact city, case-insensitive
	Language   string
	TimeFilter string // "upcoming" (default), "active" or "any"
	Page       int
	PageSize   int
}

// PublicShowRow is one search hit: a show joined with its movie, screen and
// theater.  Only approved movies in approved, active theaters are returned.
type PublicShowRow struct {
	ID          uint64    `json:"id"`
	MovieID     uint64    `json:"movieId"`
	Title       string    `json:"title"`
	ScreenID    uint64    `json:"screenId"`
	ScreenName  string    `json:"screenName"`
	TheaterID   uint64    `json:"theaterId"`
	TheaterName string    `json:"theaterName"`
	City        string    `json:"city"`
	Language    string    `json:"language"`
	Format      string    `json:"format"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Available   int       `json:"availableSeats"`
}

// SearchUpcoming returns one page of matching shows and the total count.
func (r *ShowRepo) SearchUpcoming(ctx context.Context, q ShowSearchQuery) ([]PublicShowRow, int64, error) {
	where := []string{"s.status IN ('scheduled','ongoing')", "m.is_approved = 1", "t.is_approved = 1", "t.is_active = 1"}
	args := []any{}

	switch strings.ToLower(q.TimeFilter) {
	case "any":
	case "active":
		where = append(where, "s.end_time >= UTC_TIMESTAMP()")
	default:
		where = append(where, "s.start_time >= UTC_TIMESTAMP()")
	}

	if q.Title != "" {
		where = append(where, "LOWER(m.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Title)+"%")
	}
	if q.Theater != "" {
		where = append(where, "LOWER(t.name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Theater)+"%")
	}
	if q.City != "" {
		where = append(where, "LOWER(t.city) = ?")
		args = append(args, strings.ToLower(q.City))
	}
	if q.Language != "" {
		where = append(where, "LOWER(s.language) = ?")
		args = append(args, strings.ToLower(q.Language))
	}
	cond := strings.Join(where, " AND ")

	const from = `
		FROM shows s
		JOIN movies m   ON m.id = s.movie_id
		JOIN screens sc ON sc.id = s.screen_id
		JOIN theaters t ON t.id = s.theater_id
		WHERE `

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+cond, args...).Scan(&total); err != nil {
		return nil, 0, translate(err, "show")
	}

	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			s.id, m.id, m.title, sc.id, sc.name, t.id, t.name, t.city, s.language, s.format,
			s.start_time, s.end_time,
			(SELECT COUNT(*) FROM show_seats ss WHERE ss.show_id = s.id AND ss.status = 'available')` +
		from + cond + `
		ORDER BY s.start_time ASC, s.id ASC
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, translate(err, "show")
	}
	defer rows.Close()

	out := make([]PublicShowRow, 0, limit)
	for rows.Next() {
		var d PublicShowRow
		if err := rows.Scan(
			&d.ID,
			&d.MovieID,
			&d.Title,
			&d.ScreenID,
			&d.ScreenName,
			&d.TheaterID,
			&d.TheaterName,
			&d.City,
			&d.Language,
			&d.Format,
			&d.StartTime,
			&d.EndTime,
			&d.Available,
		); err != nil {
			return nil, 0, translate(err, "show")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, translate(err, "show")
	}
	return out, total, nil
}
