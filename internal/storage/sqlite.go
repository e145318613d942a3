// Package storage persists finished episodes in SQLite and reads and
// writes engine history files.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for episode persistence.
type Store struct {
	db *sql.DB
}

// Episode is one finished episode.
type Episode struct {
	ID           string
	Engine       string
	Seed         uint64
	Reward       float64
	Steps        int
	DungeonLevel int
	Gold         int
	EndReason    string
	History      []byte // engine history, uncompressed; only filled by EpisodeByID
	CreatedAt    time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			engine TEXT NOT NULL,
			seed INTEGER NOT NULL,
			reward REAL NOT NULL,
			steps INTEGER NOT NULL,
			dungeon_level INTEGER NOT NULL,
			gold INTEGER NOT NULL,
			end_reason TEXT NOT NULL DEFAULT '',
			history BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_engine ON episodes(engine);
		CREATE INDEX IF NOT EXISTS idx_episodes_top ON episodes(engine, reward DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEpisode records an episode and returns its ID. A new UUID is
// assigned when ep.ID is empty. The history is stored zstd-compressed.
func (s *Store) SaveEpisode(ep Episode) (string, error) {
	if ep.ID == "" {
		ep.ID = uuid.New().String()
	}
	blob, err := compressBlob(ep.History)
	if err != nil {
		return "", fmt.Errorf("storage: cannot compress history: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO episodes
		 (id, engine, seed, reward, steps, dungeon_level, gold, end_reason, history)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.ID, ep.Engine, int64(ep.Seed), ep.Reward, ep.Steps, ep.DungeonLevel, ep.Gold, ep.EndReason, blob,
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save episode: %w", err)
	}
	return ep.ID, nil
}

// TopEpisodes retrieves the best N episodes for the given engine.
// Results are ordered by reward descending, then by most recent.
func (s *Store) TopEpisodes(engine string, limit int) ([]Episode, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, engine, seed, reward, steps, dungeon_level, gold, end_reason, created_at
		 FROM episodes
		 WHERE engine = ?
		 ORDER BY reward DESC, created_at DESC
		 LIMIT ?`,
		engine, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []Episode
	for rows.Next() {
		var e Episode
		var seed int64
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Engine, &seed, &e.Reward, &e.Steps, &e.DungeonLevel,
			&e.Gold, &e.EndReason, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Seed = uint64(seed)
		e.CreatedAt = parseTime(createdAt)
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return episodes, nil
}

// EpisodeByID retrieves one episode with its history.
// Returns nil, nil when no such episode exists.
func (s *Store) EpisodeByID(id string) (*Episode, error) {
	var e Episode
	var seed int64
	var blob []byte
	var createdAt any

	err := s.db.QueryRow(
		`SELECT id, engine, seed, reward, steps, dungeon_level, gold, end_reason, history, created_at
		 FROM episodes
		 WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.Engine, &seed, &e.Reward, &e.Steps, &e.DungeonLevel, &e.Gold, &e.EndReason, &blob, &createdAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episode: %w", err)
	}

	e.Seed = uint64(seed)
	e.CreatedAt = parseTime(createdAt)
	if e.History, err = decompressBlob(blob); err != nil {
		return nil, fmt.Errorf("storage: cannot decompress history: %w", err)
	}
	return &e, nil
}

// ClearEpisodes deletes all episodes of the given engine.
func (s *Store) ClearEpisodes(engine string) error {
	_, err := s.db.Exec("DELETE FROM episodes WHERE engine = ?", engine)
	if err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}

// EpisodeStats contains aggregated statistics for an engine.
type EpisodeStats struct {
	Engine     string
	Count      int
	BestReward float64
	AvgReward  float64
	MaxLevel   int
	TotalSteps int64
	LastPlayed time.Time
}

// EpisodeStats retrieves aggregated statistics for a specific engine.
func (s *Store) EpisodeStats(engine string) (*EpisodeStats, error) {
	stats := &EpisodeStats{Engine: engine}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(reward), 0), COALESCE(AVG(reward), 0),
		        COALESCE(MAX(dungeon_level), 0), COALESCE(SUM(steps), 0)
		 FROM episodes WHERE engine = ?`,
		engine,
	).Scan(&stats.Count, &stats.BestReward, &stats.AvgReward, &stats.MaxLevel, &stats.TotalSteps)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get episode stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM episodes WHERE engine = ? ORDER BY created_at DESC LIMIT 1`,
		engine,
	).Scan(&lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = parseTime(lastPlayed)
	}

	return stats, nil
}

// parseTime handles both time.Time and string datetimes from the driver.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
