package services

import (
	"testing"

	"gorm.io/gorm"

	"hestia/internal/models"
	"hestia/internal/testutil"
)

// testSetup bundles the database and the baseline fixtures most service
// tests start from: one user with one active monthly category.
type testSetup struct {
	db       *gorm.DB
	user     *models.User
	category *models.Category
}

func newTestSetup(t *testing.T) *testSetup {
	t.Helper()

	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db)
	category := testutil.CreateTestCategory(t, db, user.ID)

	return &testSetup{db: db, user: user, category: category}
}

func (s *testSetup) teardown(t *testing.T) {
	t.Helper()
	testutil.TeardownTestDB(t, s.db)
}
