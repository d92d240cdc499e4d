package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

//go:embed migrations
var migrationsFS embed.FS

const contractCounter = "contract"

// Config selects the SQL backend
type Config struct {
	Dialect Dialect
	// DSN is a file path for sqlite or a connection URL for postgres
	DSN          string
	MaxOpenConns int
}

// Storage is a database/sql implementation of the storage interface
type Storage struct {
	db      *sql.DB
	dialect Dialect
}

var _ storage.Storage = (*Storage)(nil)

// Open connects to the configured database and applies migrations
func Open(ctx context.Context, cfg Config) (*Storage, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("sql dsn is required")
	}
	if cfg.Dialect == DialectSQLite {
		dsn = filepath.Clean(dsn) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open(cfg.Dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Dialect, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Dialect, err)
	}
	if err := applyMigrations(ctx, db, cfg.Dialect, migrationsFS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s database: %w", cfg.Dialect, err)
	}
	return New(db, cfg.Dialect), nil
}

// New wraps an already migrated database handle
func New(db *sql.DB, d Dialect) *Storage {
	return &Storage{db: db, dialect: d}
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// Instance operations

func (s *Storage) GetInstance(ctx context.Context, addr model.ContractAddress) (*model.Instance, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT contract_name, module_ref, state FROM instances WHERE contract_index = ? AND contract_subindex = ?`),
		addr.Index, addr.Subindex,
	)

	inst := &model.Instance{Address: addr}
	var ref string
	if err := row.Scan(&inst.ContractName, &ref, &inst.State); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("get instance %s: %w", addr, err)
	}
	inst.ModuleRef = model.ModuleRef(ref)
	return inst, nil
}

func (s *Storage) NextContractIndex(ctx context.Context) (uint64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value`),
		contractCounter,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("allocate contract index: %w", err)
	}
	return uint64(next - 1), nil
}

// Commit writes the batch inside one database transaction
func (s *Storage) Commit(ctx context.Context, batch *storage.Batch) error {
	if batch.Empty() {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := s.dialect.rebind(`INSERT INTO instances (contract_index, contract_subindex, contract_name, module_ref, state)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (contract_index, contract_subindex) DO UPDATE SET
    contract_name = excluded.contract_name,
    module_ref = excluded.module_ref,
    state = excluded.state`)
	for _, inst := range batch.Instances {
		if _, err := tx.ExecContext(ctx, upsert,
			inst.Address.Index, inst.Address.Subindex, inst.ContractName, string(inst.ModuleRef), inst.State,
		); err != nil {
			return fmt.Errorf("write instance %s: %w", inst.Address, err)
		}
	}

	insertEvent := s.dialect.rebind(`INSERT INTO events (tx_id, contract_index, contract_subindex, seq, event_type, payload, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for _, ev := range batch.Events {
		if _, err := tx.ExecContext(ctx, insertEvent,
			ev.TxID, ev.Contract.Index, ev.Contract.Subindex, ev.Seq, string(ev.Type), string(ev.Payload), ev.Timestamp.UnixNano(),
		); err != nil {
			return fmt.Errorf("write event %s/%d: %w", ev.TxID, ev.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Event operations

func (s *Storage) ListEvents(ctx context.Context, addr model.ContractAddress, limit int) ([]model.Event, error) {
	query := `SELECT tx_id, seq, event_type, payload, created_at FROM events
WHERE contract_index = ? AND contract_subindex = ?
ORDER BY id DESC`
	args := []any{addr.Index, addr.Subindex}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list events %s: %w", addr, err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		ev := model.Event{Contract: addr}
		var typ, payload string
		var created int64
		if err := rows.Scan(&ev.TxID, &ev.Seq, &typ, &payload, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Type = model.EventType(typ)
		ev.Payload = []byte(payload)
		ev.Timestamp = time.Unix(0, created).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events %s: %w", addr, err)
	}

	// newest first from the query, oldest first for callers
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// Credential operations

func (s *Storage) SaveCredential(ctx context.Context, cred *model.Credential) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO credentials (account, password_hash, created_at) VALUES (?, ?, ?) ON CONFLICT (account) DO NOTHING`),
		string(cred.Account), cred.PasswordHash, cred.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	if n == 0 {
		return model.ErrAccountExists
	}
	return nil
}

func (s *Storage) GetCredential(ctx context.Context, account model.AccountID) (*model.Credential, error) {
	var hash string
	var created int64
	err := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT password_hash, created_at FROM credentials WHERE account = ?`),
		string(account),
	).Scan(&hash, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAccountNotFound
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}
	return &model.Credential{
		Account:      account,
		PasswordHash: hash,
		CreatedAt:    time.Unix(0, created).UTC(),
	}, nil
}
