// Package sqlite is the default on-disk vector store. Vectors live as
// little-endian float32 blobs in a single SQLite database under the index
// directory; search is brute-force cosine, which is plenty for a corpus of
// configuration files and keeps the index format trivial to inspect.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"infraguard/internal/domain"
)

const dbFileName = "vectors.db"

// Storage implements domain.VectorStore on a local SQLite database.
type Storage struct {
	mu        sync.RWMutex
	db        *sql.DB
	dimension int
}

// Open creates or opens the store under dataPath (a directory).
func Open(dataPath string) (*Storage, error) {
	if dataPath == "" {
		dataPath = "vector_db"
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}
	db, err := sql.Open("sqlite3", filepath.Join(dataPath, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	s.dimension = s.loadDimension()
	return s, nil
}

// Exists reports whether an index database is present under dataPath.
func Exists(dataPath string) bool {
	if dataPath == "" {
		dataPath = "vector_db"
	}
	_, err := os.Stat(filepath.Join(dataPath, dbFileName))
	return err == nil
}

func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		chunk_id TEXT NOT NULL,
		source TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		content TEXT NOT NULL,
		embedding BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Storage) loadDimension() int {
	var v string
	if err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'dimension'`).Scan(&v); err != nil {
		return 0
	}
	d, _ := strconv.Atoi(v)
	return d
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension > 0 && s.dimension != dimension {
		return fmt.Errorf("index dimension is %d, embedder produces %d; re-ingest from scratch", s.dimension, dimension)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('dimension', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(dimension))
	if err != nil {
		return err
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, document_id, chunk_id, source, chunk_index, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		if s.dimension > 0 && len(vectors[i]) != s.dimension {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(vectors[i]), s.dimension)
		}
		_, err = stmt.ExecContext(ctx,
			uuid.NewString(),
			chunk.DocumentID,
			chunk.ChunkID,
			chunk.Source,
			chunk.Index,
			chunk.Text,
			encodeVector(vectors[i]),
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ChunkID, err)
		}
	}
	return tx.Commit()
}

func (s *Storage) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT document_id, chunk_id, source, chunk_index, content, embedding FROM chunks
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var scored []domain.SearchResult
	for rows.Next() {
		var c domain.Chunk
		var blob []byte
		if err := rows.Scan(&c.DocumentID, &c.ChunkID, &c.Source, &c.Index, &c.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		scored = append(scored, domain.SearchResult{
			Chunk: c,
			Score: cosine(decodeVector(blob), vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM chunks`)
	return err
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return v
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
