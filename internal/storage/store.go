package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/raine/pricemate/internal/estimate"
)

// KV is durable text key-value storage. Callers namespace their keys with a
// fixed prefix per concern.
type KV interface {
	// GetValue returns the stored value and whether the key exists.
	GetValue(key string) (string, bool, error)
	SetValue(key, value string) error
	DeleteValue(key string) error
}

// VisionCacheEntry represents a cached image analysis result.
type VisionCacheEntry struct {
	Brand       string
	Model       string
	DamageScore float64
	Description string
}

// EstimateRecord is a priced submission as persisted by the backend.
type EstimateRecord struct {
	ID          string
	Form        estimate.FormData
	ImageMIME   string
	DamageScore *float64
	Result      estimate.Result
	CreatedAt   time.Time
}

// SQLiteStore implements KV, the vision cache and estimate records on SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ KV = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	// Only works once the file exists, which init guarantees.
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Debug().Err(err).Str("dbPath", dbPath).Msg("failed to restrict database permissions")
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	kvQuery := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(kvQuery); err != nil {
		return fmt.Errorf("failed to create kv table: %w", err)
	}

	visionCacheQuery := `
	CREATE TABLE IF NOT EXISTS vision_cache (
		image_hash TEXT PRIMARY KEY,
		brand TEXT,
		model TEXT,
		damage_score REAL NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(visionCacheQuery); err != nil {
		return fmt.Errorf("failed to create vision_cache table: %w", err)
	}

	estimatesQuery := `
	CREATE TABLE IF NOT EXISTS estimates (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		form TEXT NOT NULL,
		image_mime TEXT,
		damage_score REAL,
		result TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	`
	if _, err := s.db.Exec(estimatesQuery); err != nil {
		return fmt.Errorf("failed to create estimates table: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetValue retrieves a value by key.
func (s *SQLiteStore) GetValue(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query key %q: %w", key, err)
	}
	return value, true, nil
}

// SetValue stores or replaces a value.
func (s *SQLiteStore) SetValue(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO kv (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

// DeleteValue removes a key. Deleting a missing key is not an error.
func (s *SQLiteStore) DeleteValue(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

// GetVisionCache retrieves a cached analysis result by image hash.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetVisionCache(imageHash string) (*VisionCacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entry VisionCacheEntry
	var brand, model sql.NullString
	err := s.db.QueryRow(
		"SELECT brand, model, damage_score, description FROM vision_cache WHERE image_hash = ?",
		imageHash,
	).Scan(&brand, &model, &entry.DamageScore, &entry.Description)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vision cache: %w", err)
	}

	entry.Brand = brand.String
	entry.Model = model.String

	return &entry, nil
}

// SetVisionCache stores an analysis result in the cache.
func (s *SQLiteStore) SetVisionCache(imageHash string, entry *VisionCacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO vision_cache (image_hash, brand, model, damage_score, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(image_hash) DO UPDATE SET
			brand = excluded.brand,
			model = excluded.model,
			damage_score = excluded.damage_score,
			description = excluded.description,
			created_at = CURRENT_TIMESTAMP
	`, imageHash, nullString(entry.Brand), nullString(entry.Model), entry.DamageScore, entry.Description)

	if err != nil {
		return fmt.Errorf("failed to cache vision result: %w", err)
	}
	return nil
}

// SaveEstimate inserts a new estimate record. IDs are never reused, so an
// existing ID is an error.
func (s *SQLiteStore) SaveEstimate(rec *EstimateRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	formJSON, err := json.Marshal(rec.Form)
	if err != nil {
		return fmt.Errorf("failed to marshal form: %w", err)
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var damage sql.NullFloat64
	if rec.DamageScore != nil {
		damage = sql.NullFloat64{Float64: *rec.DamageScore, Valid: true}
	}

	_, err = s.db.Exec(
		`INSERT INTO estimates (id, category, form, image_mime, damage_score, result, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Form.Category, string(formJSON), nullString(rec.ImageMIME), damage, string(resultJSON), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save estimate: %w", err)
	}
	return nil
}

// GetEstimate retrieves an estimate record by ID.
// Returns nil, nil if the estimate doesn't exist.
func (s *SQLiteStore) GetEstimate(id string) (*EstimateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var formJSON, resultJSON string
	var imageMIME sql.NullString
	var damage sql.NullFloat64
	rec := EstimateRecord{ID: id}

	err := s.db.QueryRow(
		"SELECT form, image_mime, damage_score, result, created_at FROM estimates WHERE id = ?",
		id,
	).Scan(&formJSON, &imageMIME, &damage, &resultJSON, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query estimate: %w", err)
	}

	if err := json.Unmarshal([]byte(formJSON), &rec.Form); err != nil {
		return nil, fmt.Errorf("failed to unmarshal form for estimate %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result for estimate %s: %w", id, err)
	}
	rec.ImageMIME = imageMIME.String
	if damage.Valid {
		v := damage.Float64
		rec.DamageScore = &v
	}

	return &rec, nil
}

// CountEstimates returns the number of stored estimates.
func (s *SQLiteStore) CountEstimates() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM estimates").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count estimates: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
