package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"washtrack-backend/internal/config"
	"washtrack-backend/internal/db"
	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB connects to the database named by TEST_DATABASE_URL, applying
// migrations first. Tests that need it are skipped when the variable is
// unset so the suite still runs without Postgres.
func testDB(t *testing.T) *db.Postgres {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, db.Migrate(url))
	pg, err := db.New(context.Background(), config.Config{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pg.Close)
	return pg
}

func seedBranchWithEmployee(t *testing.T, pg *db.Postgres, slug string) (branchID, employeeID int64) {
	t.Helper()
	ctx := context.Background()
	err := pg.Pool.QueryRow(ctx, `
		INSERT INTO branches (name, slug) VALUES ($1, $2) RETURNING id
	`, "Branch "+slug, slug).Scan(&branchID)
	require.NoError(t, err)
	err = pg.Pool.QueryRow(ctx, `
		INSERT INTO employees (branch_id, name, start_date) VALUES ($1, $2, CURRENT_DATE) RETURNING id
	`, branchID, "Employee "+slug).Scan(&employeeID)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pg.Pool.Exec(ctx, `DELETE FROM attendance WHERE branch_id = $1`, branchID)
		_, _ = pg.Pool.Exec(ctx, `DELETE FROM leave_requests WHERE branch_id = $1`, branchID)
		_, _ = pg.Pool.Exec(ctx, `DELETE FROM payroll_records WHERE branch_id = $1`, branchID)
		_, _ = pg.Pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, employeeID)
		_, _ = pg.Pool.Exec(ctx, `DELETE FROM branches WHERE id = $1`, branchID)
	})
	return branchID, employeeID
}

func uniqueSlug(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

func TestAttendanceUpsert_RejectsEmployeeOfOtherBranch(t *testing.T) {
	pg := testDB(t)
	ctx := context.Background()
	repo := repository.AttendanceRepository{DB: pg}

	branchA, _ := seedBranchWithEmployee(t, pg, uniqueSlug("att-a"))
	_, employeeB := seedBranchWithEmployee(t, pg, uniqueSlug("att-b"))

	_, err := repo.Upsert(ctx, repository.UpsertAttendanceInput{
		BranchID:   branchA,
		EmployeeID: employeeB,
		Date:       time.Now().UTC(),
		Status:     domain.AttendancePresent,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAttendanceUpsert_DoesNotOverwriteOtherBranchRow(t *testing.T) {
	pg := testDB(t)
	ctx := context.Background()
	repo := repository.AttendanceRepository{DB: pg}

	branchA, _ := seedBranchWithEmployee(t, pg, uniqueSlug("ovr-a"))
	branchB, employeeB := seedBranchWithEmployee(t, pg, uniqueSlug("ovr-b"))
	day := time.Now().UTC()

	checkIn := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
	orig, err := repo.Upsert(ctx, repository.UpsertAttendanceInput{
		BranchID:   branchB,
		EmployeeID: employeeB,
		Date:       day,
		CheckIn:    &checkIn,
		Status:     domain.AttendancePresent,
	})
	require.NoError(t, err)

	_, err = repo.Upsert(ctx, repository.UpsertAttendanceInput{
		BranchID:   branchA,
		EmployeeID: employeeB,
		Date:       day,
		Status:     domain.AttendanceAbsent,
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var status string
	var branchID int64
	err = pg.Pool.QueryRow(ctx, `
		SELECT branch_id, status FROM attendance WHERE id = $1
	`, orig.ID).Scan(&branchID, &status)
	require.NoError(t, err)
	assert.Equal(t, branchB, branchID)
	assert.Equal(t, string(domain.AttendancePresent), status)
}

func TestAttendanceUpsert_SameBranchSucceeds(t *testing.T) {
	pg := testDB(t)
	ctx := context.Background()
	repo := repository.AttendanceRepository{DB: pg}

	branchA, employeeA := seedBranchWithEmployee(t, pg, uniqueSlug("ok"))

	rec, err := repo.Upsert(ctx, repository.UpsertAttendanceInput{
		BranchID:   branchA,
		EmployeeID: employeeA,
		Date:       time.Now().UTC(),
		Status:     domain.AttendanceLate,
	})
	require.NoError(t, err)
	assert.Equal(t, branchA, rec.BranchID)
	assert.Equal(t, employeeA, rec.EmployeeID)
	assert.Equal(t, domain.AttendanceLate, rec.Status)
}

func TestLeaveCreate_RejectsEmployeeOfOtherBranch(t *testing.T) {
	pg := testDB(t)
	ctx := context.Background()
	repo := repository.LeaveRepository{DB: pg}

	branchA, _ := seedBranchWithEmployee(t, pg, uniqueSlug("lv-a"))
	_, employeeB := seedBranchWithEmployee(t, pg, uniqueSlug("lv-b"))

	day := time.Now().UTC()
	_, err := repo.Create(ctx, repository.CreateLeaveInput{
		BranchID:   branchA,
		EmployeeID: employeeB,
		Type:       "annual",
		StartDate:  day,
		EndDate:    day.AddDate(0, 0, 2),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestPayrollCreate_RejectsEmployeeOfOtherBranch(t *testing.T) {
	pg := testDB(t)
	ctx := context.Background()
	repo := repository.PayrollRepository{DB: pg}

	branchA, _ := seedBranchWithEmployee(t, pg, uniqueSlug("pay-a"))
	_, employeeB := seedBranchWithEmployee(t, pg, uniqueSlug("pay-b"))

	now := time.Now().UTC()
	_, err := repo.Create(ctx, repository.CreatePayrollInput{
		BranchID:   branchA,
		EmployeeID: employeeB,
		Month:      int(now.Month()),
		Year:       now.Year(),
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
