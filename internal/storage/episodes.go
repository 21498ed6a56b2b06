package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Episode sources besides policy names.
const (
	SourceHuman = "human"
	SourceSSH   = "ssh"
)

// CauseWin is the stored cause of an episode that filled the board.
const CauseWin = "board_full"

// Episode is one finished episode.
type Episode struct {
	ID          int64
	EnvID       string
	GridSize    int
	Reward      int
	Length      int // steps taken
	SnakeLength int // body length at the end
	Cause       string
	Source      string // "human", "ssh" or a policy name
	Seed        int64
	CreatedAt   time.Time
}

const episodeColumns = `id, env_id, grid_size, reward, length, snake_length, cause, source, seed, created_at`

// SaveEpisode records a finished episode.
// Returns the ID of the inserted record.
func (s *Store) SaveEpisode(ep Episode) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO episodes (env_id, grid_size, reward, length, snake_length, cause, source, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.EnvID, ep.GridSize, ep.Reward, ep.Length, ep.SnakeLength, ep.Cause, ep.Source, ep.Seed,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save episode: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// SaveEpisodes records a batch of episodes in one transaction.
func (s *Store) SaveEpisodes(eps []Episode) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(
		`INSERT INTO episodes (env_id, grid_size, reward, length, snake_length, cause, source, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ep := range eps {
		if _, err := stmt.Exec(ep.EnvID, ep.GridSize, ep.Reward, ep.Length, ep.SnakeLength, ep.Cause, ep.Source, ep.Seed); err != nil {
			return fmt.Errorf("storage: cannot save episode: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit episodes: %w", err)
	}
	return nil
}

// TopEpisodes retrieves the best N episodes for the given environment.
// Results are ordered by reward, then final snake length, descending.
func (s *Store) TopEpisodes(envID string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 10
	}

	return s.queryEpisodes(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 WHERE env_id = ?
		 ORDER BY reward DESC, snake_length DESC, id ASC
		 LIMIT ?`,
		envID, limit,
	)
}

// RecentEpisodes retrieves the most recent episodes across all environments.
func (s *Store) RecentEpisodes(limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 20
	}

	return s.queryEpisodes(
		`SELECT `+episodeColumns+`
		 FROM episodes
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
}

func (s *Store) queryEpisodes(query string, args ...any) ([]Episode, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var ep Episode
		var createdAt any
		if err := rows.Scan(
			&ep.ID,
			&ep.EnvID,
			&ep.GridSize,
			&ep.Reward,
			&ep.Length,
			&ep.SnakeLength,
			&ep.Cause,
			&ep.Source,
			&ep.Seed,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		ep.CreatedAt = parseTime(createdAt)
		episodes = append(episodes, ep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// BestReward returns the highest episode reward for the given environment.
// ok is false if no episodes exist.
func (s *Store) BestReward(envID string) (best int, ok bool, err error) {
	var reward sql.NullInt64
	err = s.db.QueryRow(
		"SELECT MAX(reward) FROM episodes WHERE env_id = ?",
		envID,
	).Scan(&reward)
	if err != nil {
		return 0, false, fmt.Errorf("storage: cannot query best reward: %w", err)
	}

	if !reward.Valid {
		return 0, false, nil
	}
	return int(reward.Int64), true, nil
}

// ClearEpisodes deletes all episodes for the given environment.
// Returns the number of deleted rows.
func (s *Store) ClearEpisodes(envID string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM episodes WHERE env_id = ?", envID)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count deleted rows: %w", err)
	}
	return n, nil
}

// EnvStats contains aggregated statistics for an environment.
type EnvStats struct {
	EnvID          string
	Episodes       int
	Wins           int
	BestReward     int
	AvgReward      float64
	AvgLength      float64
	MaxSnakeLength int
	LastPlayed     time.Time
}

// GetEnvStats retrieves aggregated statistics for a specific environment.
func (s *Store) GetEnvStats(envID string) (*EnvStats, error) {
	stats := &EnvStats{EnvID: envID}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN cause = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(reward), 0),
		        COALESCE(AVG(reward), 0),
		        COALESCE(AVG(length), 0),
		        COALESCE(MAX(snake_length), 0),
		        MAX(created_at)
		 FROM episodes WHERE env_id = ?`,
		CauseWin, envID,
	).Scan(
		&stats.Episodes,
		&stats.Wins,
		&stats.BestReward,
		&stats.AvgReward,
		&stats.AvgLength,
		&stats.MaxSnakeLength,
		&lastPlayed,
	)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get env stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// GetAllEnvStats retrieves statistics for every environment with episodes.
func (s *Store) GetAllEnvStats() (map[string]*EnvStats, error) {
	rows, err := s.db.Query(
		`SELECT env_id, COUNT(*),
		        SUM(CASE WHEN cause = ? THEN 1 ELSE 0 END),
		        MAX(reward), AVG(reward), AVG(length), MAX(snake_length), MAX(created_at)
		 FROM episodes
		 GROUP BY env_id`,
		CauseWin,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all env stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*EnvStats)
	for rows.Next() {
		var st EnvStats
		var lastPlayed any
		if err := rows.Scan(
			&st.EnvID,
			&st.Episodes,
			&st.Wins,
			&st.BestReward,
			&st.AvgReward,
			&st.AvgLength,
			&st.MaxSnakeLength,
			&lastPlayed,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		st.LastPlayed = parseTime(lastPlayed)
		stats[st.EnvID] = &st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
