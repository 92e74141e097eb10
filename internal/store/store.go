package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/utakatalp/matchday-face/internal/league"
)

// Store wraps a read-only Postgres connection pool.
type Store struct {
	DB *sql.DB
}

// NewStore opens a Postgres connection pool using the given connection string
// and verifies it before returning.
func NewStore(ctx context.Context, connStr string, maxOpenConns int) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	// verify early
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// UpcomingMatches returns up to limit fixtures dated today or later, earliest first,
// with both team names resolved.
func (s *Store) UpcomingMatches(ctx context.Context, limit int) ([]*league.Match, error) {
	if limit <= 0 || limit > league.UpcomingLimit {
		limit = league.UpcomingLimit
	}
	q := fmt.Sprintf(`
    SELECT
      m.match_id,
      m.date,
      t1.team_id,
      t1.name,
      t2.team_id,
      t2.name
    FROM matches m
    JOIN teams t1 ON m.home_team_id = t1.team_id
    JOIN teams t2 ON m.away_team_id = t2.team_id
    WHERE m.date >= CURRENT_DATE
    ORDER BY m.date ASC, m.match_id ASC
    LIMIT %d
    `, limit)

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*league.Match, 0, limit)
	for rows.Next() {
		m := &league.Match{Home: &league.Team{}, Away: &league.Team{}}
		var date matchDate
		if err := rows.Scan(
			&m.ID,
			&date,
			&m.Home.ID,
			&m.Home.Name,
			&m.Away.ID,
			&m.Away.Name,
		); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		m.Date = date.Time
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating match rows: %w", err)
	}
	return matches, nil
}
