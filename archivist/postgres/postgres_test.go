package postgres

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bobinette/archivist/archivist/testutil"
)

// createDriver connects to the database given by ARCHIVIST_POSTGRES_DSN and
// recreates the tables. Tests are skipped when it is not set.
func createDriver(t *testing.T) (*Driver, func()) {
	dsn := os.Getenv("ARCHIVIST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ARCHIVIST_POSTGRES_DSN not set")
	}

	driver := Driver{}
	require.NoError(t, driver.Open(Configuration{DSN: dsn, MaxOpenConns: 16}))

	reset := func() {
		m := driver.db.Migrator()
		require.NoError(t, m.DropTable(&documentRow{}, &versionRow{}, &auditRow{}))
		require.NoError(t, migrate(driver.db))
	}
	reset()

	return &driver, func() {
		reset()
		driver.Close()
	}
}

func TestDocumentStore(t *testing.T) {
	driver, f := createDriver(t)
	defer f()

	testutil.TestDocumentStore(t, &DocumentStore{Driver: driver})
}

func TestAuditLog(t *testing.T) {
	driver, f := createDriver(t)
	defer f()

	testutil.TestAuditLog(t, &AuditLog{Driver: driver})
}
