package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLDB(t *testing.T) {
	t.Run("sqlite driver is registered and usable", func(t *testing.T) {
		db, err := openSQLDB("sqlite", "file::memory:?cache=shared")
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, db.Ping())

		var one int
		require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
		assert.Equal(t, 1, one)
	})

	t.Run("empty DSN is rejected", func(t *testing.T) {
		_, err := openSQLDB("sqlite", "")
		assert.Error(t, err)
	})

	t.Run("unknown driver is rejected", func(t *testing.T) {
		_, err := openSQLDB("oracle", "dsn")
		assert.Error(t, err)
	})
}

func TestSelectDialect(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql", "sqlite"} {
		dial, err := selectDialect(driver)
		require.NoError(t, err, driver)
		assert.NotNil(t, dial)
	}

	_, err := selectDialect("oracle")
	assert.Error(t, err)
}
