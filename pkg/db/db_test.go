package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_unknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.EqualError(t, err, "unknown database driver: oracle")
	assert.EqualError(t, Migrate(nil, "oracle", ""), "unknown database driver: oracle")
}

func TestMigrate_sqlite(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	dbh, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer dbh.Close()

	a.NoError(Migrate(dbh, DriverSQLite, ""))

	// a second run has nothing to do
	a.NoError(Migrate(dbh, DriverSQLite, ""))

	for _, table := range []string{"bounties", "rounds", "round_adjustments"} {
		var count int
		row := dbh.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`, table)
		a.NoError(row.Scan(&count))
		a.Equal(1, count, table)
	}
}

func TestMigrate_path(t *testing.T) {
	dbh, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer dbh.Close()

	assert.NoError(t, Migrate(dbh, DriverSQLite, "migrations/sqlite"))
}
