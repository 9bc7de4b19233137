// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/cryptobench/lib/clock"
	"github.com/bureau-foundation/cryptobench/lib/codec"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
)

// ErrNotFound is returned when no row has the requested ID.
var ErrNotFound = errors.New("not found")

const (
	kindSeries     = "series"
	kindComparison = "comparison"

	defaultListLimit = 50
)

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the database file. Its parent directory must exist.
	Path string

	// PoolSize defaults to 4.
	PoolSize int

	// Compression is applied to stored bodies. Bodies that do not
	// shrink are stored uncompressed regardless.
	Compression codec.Compression

	Clock  clock.Clock
	Logger *slog.Logger
}

// Store is safe for concurrent use.
type Store struct {
	pool        *pool
	compression codec.Compression
	clock       clock.Clock
	logger      *slog.Logger
}

// Record is the listing view of one stored evaluation.
type Record struct {
	ID          string            `json:"id"`
	Algorithm   string            `json:"algorithm"`
	Volume      int               `json:"volume"`
	Seed        uint64            `json:"seed"`
	StartedAt   time.Time         `json:"started_at"`
	DurationMS  float64           `json:"duration_ms"`
	Status      evaluation.Status `json:"status"`
	CPUTimeMS   float64           `json:"cpu_time_ms"`
	MemoryMB    float64           `json:"memory_mb"`
	GroupID     string            `json:"group_id,omitempty"`
	Compression codec.Compression `json:"compression"`
	BodySize    int               `json:"body_size"`
	StoredSize  int               `json:"stored_size"`
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Algorithm string
	Status    evaluation.Status
	GroupID   string
	// Limit defaults to 50.
	Limit int
}

// Open opens or creates the database at config.Path.
func Open(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("result store: Path is required")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	p, err := openPool(config.Path, config.PoolSize, logger)
	if err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}
	return &Store{
		pool:        p,
		compression: config.Compression,
		clock:       clock.OrReal(config.Clock),
		logger:      logger,
	}, nil
}

// Close blocks until every borrowed connection is returned.
func (s *Store) Close() error {
	return s.pool.close()
}

// SaveEvaluation stores a standalone evaluation. Saving an ID that
// already exists replaces it.
func (s *Store) SaveEvaluation(ctx context.Context, e evaluation.Evaluation) (err error) {
	conn, err := s.pool.take(ctx)
	if err != nil {
		return fmt.Errorf("result store: save evaluation: %w", err)
	}
	defer s.pool.put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("result store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	return s.insertEvaluation(conn, e, "", 0)
}

// SaveSeries stores a series and each of its evaluations.
func (s *Store) SaveSeries(ctx context.Context, series evaluation.Series) error {
	header := series
	header.Evaluations = nil
	return s.saveGroup(ctx, kindSeries, series.ID, series.Status, header, series.Evaluations)
}

// SaveComparison stores a comparison and each of its evaluations.
func (s *Store) SaveComparison(ctx context.Context, comparison evaluation.Comparison) error {
	header := comparison
	header.Evaluations = nil
	return s.saveGroup(ctx, kindComparison, comparison.ID, comparison.Status, header, comparison.Evaluations)
}

func (s *Store) saveGroup(ctx context.Context, kind, id string, status evaluation.Status, header any, members []evaluation.Evaluation) (err error) {
	if id == "" {
		return fmt.Errorf("result store: %s has no ID", kind)
	}
	blob, err := codec.Pack(header, s.compression)
	if err != nil {
		return fmt.Errorf("result store: packing %s %s: %w", kind, id, err)
	}

	conn, err := s.pool.take(ctx)
	if err != nil {
		return fmt.Errorf("result store: save %s: %w", kind, err)
	}
	defer s.pool.put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("result store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	err = sqlitex.Execute(conn, `INSERT OR REPLACE INTO run_groups
		(id, kind, saved_at, status, compression, body_size, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{id, kind, s.clock.Now().UnixNano(), string(status), int(blob.Compression), blob.Size, blob.Data},
	})
	if err != nil {
		return fmt.Errorf("result store: insert %s %s: %w", kind, id, err)
	}
	err = sqlitex.Execute(conn, "DELETE FROM evaluations WHERE group_id = ?", &sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("result store: clearing members of %s: %w", id, err)
	}
	for position, member := range members {
		if err = s.insertEvaluation(conn, member, id, position); err != nil {
			return err
		}
	}

	s.logger.Debug("group stored", "kind", kind, "id", id, "evaluations", len(members))
	return nil
}

func (s *Store) insertEvaluation(conn *sqlite.Conn, e evaluation.Evaluation, groupID string, position int) error {
	if e.ID == "" {
		return fmt.Errorf("result store: evaluation has no ID")
	}
	blob, err := codec.Pack(e, s.compression)
	if err != nil {
		return fmt.Errorf("result store: packing evaluation %s: %w", e.ID, err)
	}

	var group any
	if groupID != "" {
		group = groupID
	}

	err = sqlitex.Execute(conn, `INSERT OR REPLACE INTO evaluations
		(id, algorithm, challenge_type, volume, seed, started_at,
		 duration_ms, status, cpu_time_ms, memory_mb, group_id, position,
		 compression, body_size, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, &sqlitex.ExecOptions{
		Args: []any{
			e.ID,
			e.Algorithm.String(),
			string(e.ChallengeType),
			e.Volume,
			// SQLite integers are signed; the seed round-trips through
			// the same bit pattern.
			int64(e.Seed),
			e.StartedAt.UnixNano(),
			e.DurationMS,
			string(e.Status),
			e.Summary.CPUTimeMS,
			e.Summary.MemoryMB,
			group,
			position,
			int(blob.Compression),
			blob.Size,
			blob.Data,
		},
	})
	if err != nil {
		return fmt.Errorf("result store: insert evaluation %s: %w", e.ID, err)
	}
	s.logger.Debug("evaluation stored",
		"id", e.ID,
		"compression", blob.Compression.String(),
		"body_size", blob.Size,
		"stored_size", len(blob.Data),
	)
	return nil
}

// Evaluation loads one evaluation by ID.
func (s *Store) Evaluation(ctx context.Context, id string) (evaluation.Evaluation, error) {
	var e evaluation.Evaluation
	if err := s.loadBody(ctx, "evaluations", id, &e); err != nil {
		return evaluation.Evaluation{}, err
	}
	return e, nil
}

// RawEvaluation returns the uncompressed CBOR body of one evaluation.
func (s *Store) RawEvaluation(ctx context.Context, id string) ([]byte, error) {
	blob, err := s.readBlob(ctx, "SELECT compression, body_size, body FROM evaluations WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	return codec.Decompress(blob.Data, blob.Compression, blob.Size)
}

// Series loads a series and its evaluations in volume order.
func (s *Store) Series(ctx context.Context, id string) (evaluation.Series, error) {
	var series evaluation.Series
	if err := s.loadGroup(ctx, kindSeries, id, &series); err != nil {
		return evaluation.Series{}, err
	}
	members, err := s.members(ctx, id)
	if err != nil {
		return evaluation.Series{}, err
	}
	series.Evaluations = members
	return series, nil
}

// Comparison loads a comparison and its evaluations in run order.
func (s *Store) Comparison(ctx context.Context, id string) (evaluation.Comparison, error) {
	var comparison evaluation.Comparison
	if err := s.loadGroup(ctx, kindComparison, id, &comparison); err != nil {
		return evaluation.Comparison{}, err
	}
	members, err := s.members(ctx, id)
	if err != nil {
		return evaluation.Comparison{}, err
	}
	comparison.Evaluations = members
	return comparison, nil
}

func (s *Store) loadGroup(ctx context.Context, kind, id string, v any) error {
	blob, err := s.readBlob(ctx, "SELECT compression, body_size, body FROM run_groups WHERE id = ? AND kind = '"+kind+"'", id)
	if err != nil {
		return err
	}
	if err := codec.Unpack(blob, v); err != nil {
		return fmt.Errorf("result store: %s %s: %w", kind, id, err)
	}
	return nil
}

func (s *Store) loadBody(ctx context.Context, table, id string, v any) error {
	blob, err := s.readBlob(ctx, "SELECT compression, body_size, body FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return err
	}
	if err := codec.Unpack(blob, v); err != nil {
		return fmt.Errorf("result store: %s: %w", id, err)
	}
	return nil
}

func (s *Store) readBlob(ctx context.Context, query, id string) (codec.Blob, error) {
	conn, err := s.pool.take(ctx)
	if err != nil {
		return codec.Blob{}, fmt.Errorf("result store: %w", err)
	}
	defer s.pool.put(conn)

	var (
		blob  codec.Blob
		found bool
	)
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			blob = scanBlob(stmt, 0)
			return nil
		},
	})
	if err != nil {
		return codec.Blob{}, fmt.Errorf("result store: reading %s: %w", id, err)
	}
	if !found {
		return codec.Blob{}, fmt.Errorf("result store: %q: %w", id, ErrNotFound)
	}
	return blob, nil
}

// scanBlob reads (compression, body_size, body) starting at column.
func scanBlob(stmt *sqlite.Stmt, column int) codec.Blob {
	data := make([]byte, stmt.ColumnLen(column+2))
	stmt.ColumnBytes(column+2, data)
	return codec.Blob{
		Compression: codec.Compression(stmt.ColumnInt(column)),
		Size:        stmt.ColumnInt(column + 1),
		Data:        data,
	}
}

func (s *Store) members(ctx context.Context, groupID string) ([]evaluation.Evaluation, error) {
	conn, err := s.pool.take(ctx)
	if err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}
	defer s.pool.put(conn)

	var members []evaluation.Evaluation
	err = sqlitex.Execute(conn, `SELECT id, compression, body_size, body FROM evaluations
		WHERE group_id = ? ORDER BY position`, &sqlitex.ExecOptions{
		Args: []any{groupID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var member evaluation.Evaluation
			if err := codec.Unpack(scanBlob(stmt, 1), &member); err != nil {
				return fmt.Errorf("evaluation %s: %w", stmt.ColumnText(0), err)
			}
			members = append(members, member)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("result store: members of %s: %w", groupID, err)
	}
	return members, nil
}

// List returns stored evaluations matching filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]Record, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Algorithm != "" {
		conditions = append(conditions, "algorithm = ?")
		args = append(args, filter.Algorithm)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.GroupID != "" {
		conditions = append(conditions, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := "SELECT id, algorithm, volume, seed, started_at, duration_ms, status, " +
		"cpu_time_ms, memory_mb, group_id, compression, body_size, length(body) " +
		"FROM evaluations"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC, id LIMIT ?"
	args = append(args, limit)

	conn, err := s.pool.take(ctx)
	if err != nil {
		return nil, fmt.Errorf("result store: %w", err)
	}
	defer s.pool.put(conn)

	var records []Record
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			records = append(records, scanRecord(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("result store: list: %w", err)
	}
	return records, nil
}

func scanRecord(stmt *sqlite.Stmt) Record {
	// Columns: id(0), algorithm(1), volume(2), seed(3), started_at(4),
	// duration_ms(5), status(6), cpu_time_ms(7), memory_mb(8),
	// group_id(9), compression(10), body_size(11), length(body)(12)
	return Record{
		ID:          stmt.ColumnText(0),
		Algorithm:   stmt.ColumnText(1),
		Volume:      stmt.ColumnInt(2),
		Seed:        uint64(stmt.ColumnInt64(3)),
		StartedAt:   time.Unix(0, stmt.ColumnInt64(4)).UTC(),
		DurationMS:  stmt.ColumnFloat(5),
		Status:      evaluation.Status(stmt.ColumnText(6)),
		CPUTimeMS:   stmt.ColumnFloat(7),
		MemoryMB:    stmt.ColumnFloat(8),
		GroupID:     stmt.ColumnText(9),
		Compression: codec.Compression(stmt.ColumnInt(10)),
		BodySize:    stmt.ColumnInt(11),
		StoredSize:  stmt.ColumnInt(12),
	}
}
