package sqlstore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/versusleague/internal/model"
	"github.com/mcoot/versusleague/internal/storage"
)

func newMockStore(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, DialectPostgres), mock
}

func TestPostgresGetInstance(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT contract_name, module_ref, state FROM instances WHERE contract_index = \$1 AND contract_subindex = \$2`).
		WithArgs(uint64(2), uint64(0)).
		WillReturnRows(sqlmock.NewRows([]string{"contract_name", "module_ref", "state"}).
			AddRow("versus_league", "ref-1", []byte(`{"layout":1}`)))

	inst, err := store.GetInstance(context.Background(), model.ContractAddress{Index: 2})
	require.NoError(t, err)
	assert.Equal(t, "versus_league", inst.ContractName)
	assert.Equal(t, model.ModuleRef("ref-1"), inst.ModuleRef)
	assert.JSONEq(t, `{"layout":1}`, string(inst.State))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetInstanceNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT contract_name`).
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetInstance(context.Background(), model.ContractAddress{Index: 5})
	assert.ErrorIs(t, err, model.ErrInstanceNotFound)
}

func TestPostgresNextContractIndex(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`UPDATE counters SET value = value \+ 1 WHERE name = \$1 RETURNING value`).
		WithArgs("contract").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(8)))

	idx, err := store.NextContractIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), idx)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommitIsTransactional(t *testing.T) {
	store, mock := newMockStore(t)
	ts := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO instances .* VALUES \(\$1, \$2, \$3, \$4, \$5\)`).
		WithArgs(uint64(1), uint64(0), "versus_league", "ref-2", []byte(`{}`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO events`).
		WithArgs("tx-1", uint64(1), uint64(0), 0, "AdminChanged", `{}`, ts.UnixNano()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := store.Commit(context.Background(), &storage.Batch{
		Instances: []*model.Instance{{Address: model.ContractAddress{Index: 1}, ContractName: "versus_league", ModuleRef: "ref-2", State: []byte(`{}`)}},
		Events:    []model.Event{{TxID: "tx-1", Contract: model.ContractAddress{Index: 1}, Seq: 0, Type: model.EventAdminChanged, Payload: []byte(`{}`), Timestamp: ts}},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCommitRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO instances`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO events`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := store.Commit(context.Background(), &storage.Batch{
		Instances: []*model.Instance{{Address: model.ContractAddress{Index: 1}, ContractName: "c", ModuleRef: "m", State: []byte(`{}`)}},
		Events:    []model.Event{{TxID: "tx-1", Contract: model.ContractAddress{Index: 1}, Type: model.EventBattleResult, Payload: []byte(`{}`)}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveCredentialDuplicate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO credentials .* ON CONFLICT \(account\) DO NOTHING`).
		WithArgs("alice", "hash", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.SaveCredential(context.Background(), &model.Credential{Account: "alice", PasswordHash: "hash", CreatedAt: time.Now()})
	assert.ErrorIs(t, err, model.ErrAccountExists)
}

func TestPostgresListEventsReturnsOldestFirst(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT tx_id, seq, event_type, payload, created_at FROM events .* LIMIT \$3`).
		WithArgs(uint64(1), uint64(0), 2).
		WillReturnRows(sqlmock.NewRows([]string{"tx_id", "seq", "event_type", "payload", "created_at"}).
			AddRow("tx-2", 0, "BattleResult", `{"player":"bob","isWin":false}`, int64(20)).
			AddRow("tx-1", 0, "AdminChanged", `{}`, int64(10)))

	events, err := store.ListEvents(context.Background(), model.ContractAddress{Index: 1}, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "tx-1", events[0].TxID)
	assert.Equal(t, model.EventBattleResult, events[1].Type)
	assert.Equal(t, time.Unix(0, 20).UTC(), events[1].Timestamp)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "a = $1 AND b = $2", DialectPostgres.rebind("a = ? AND b = ?"))
	assert.Equal(t, "a = ? AND b = ?", DialectSQLite.rebind("a = ? AND b = ?"))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect(" Postgres ")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)

	_, err = ParseDialect("mysql")
	assert.Error(t, err)
}

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE x (id INT);\n-- +migrate Down\nDROP TABLE x;\n"
	assert.Equal(t, "\nCREATE TABLE x (id INT);\n", extractUpMigration(content))
	assert.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}
