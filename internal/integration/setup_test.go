package integration

import (
	"testing"
	"time"

	"github.com/dimitrije/internal-ops/internal/access"
	"github.com/dimitrije/internal-ops/internal/models"
	"github.com/dimitrije/internal-ops/internal/testutil"
)

// setupTest starts a migrated database. Integration tests need Docker and are
// skipped with -short.
func setupTest(t *testing.T) (*testutil.TestDB, *testutil.Fixtures) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	tdb := testutil.SetupTestDB(t)
	return tdb, testutil.NewFixtures(tdb.DB)
}

func actorOf(t *testing.T, u *models.User) access.Actor {
	t.Helper()
	role, err := access.ParseRole(string(u.Role))
	if err != nil {
		t.Fatalf("unknown role %q: %v", u.Role, err)
	}
	return access.NewActor(u.ID, role)
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}
