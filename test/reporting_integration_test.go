//go:build integration

package integration

import (
	"context"
	"errors"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	repo "github.com/ogurasousui/codex-reporting-api/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-reporting-api/internal/core/employee"
	"github.com/ogurasousui/codex-reporting-api/internal/core/reporting"
	"github.com/ogurasousui/codex-reporting-api/internal/platform/config"
	pg "github.com/ogurasousui/codex-reporting-api/internal/platform/db/postgres"
)

const (
	migrationsDir = "../assets/migrations"
	seedsDir      = "../assets/seeds"

	lennonID = "16a596ae-edd3-4847-99fe-c4518e82c86f"
	starrID  = "03aa1462-ffa9-4978-901b-7c001562cf6f"
	bestID   = "62c1084e-6e34-4630-93fd-9153afb65309"
)

func TestReportingStructureIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	if err := applySeeds(cfg.Database.DSN(), seedsDir); err != nil {
		t.Fatalf("failed to apply seeds: %v", err)
	}

	ctx := context.Background()
	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	txManager := pg.NewTransactionManager(pool)
	employeeRepo := repo.NewEmployeeRepository(pool)
	reportingSvc := reporting.NewService(employeeRepo, txManager, reporting.WithTimeout(5*time.Second))

	cases := []struct {
		id   string
		want int
	}{
		{id: lennonID, want: 4},
		{id: starrID, want: 2},
		{id: bestID, want: 0},
	}
	for _, tc := range cases {
		rs, err := reportingSvc.GetReportingStructure(ctx, reporting.GetReportingStructureInput{EmployeeID: tc.id})
		if err != nil {
			t.Fatalf("GetReportingStructure(%s) error: %v", tc.id, err)
		}
		if !rs.Found() {
			t.Fatalf("expected %s to be found", tc.id)
		}
		if *rs.NumberOfReports != tc.want {
			t.Fatalf("expected %d reports for %s, got %d", tc.want, tc.id, *rs.NumberOfReports)
		}
	}

	missing, err := reportingSvc.GetReportingStructure(ctx, reporting.GetReportingStructureInput{EmployeeID: "00000000-0000-0000-0000-000000000000"})
	if err != nil {
		t.Fatalf("unexpected error for missing employee: %v", err)
	}
	if missing.Found() {
		t.Fatal("expected missing employee to be absent")
	}

	employeeSvc := employee.NewService(employeeRepo, nil, txManager)
	first := "Stuart"
	parent := bestID
	created, err := employeeSvc.CreateEmployee(ctx, employee.CreateEmployeeInput{Attributes: employee.Attributes{FirstName: &first, ParentID: &parent}})
	if err != nil {
		t.Fatalf("CreateEmployee error: %v", err)
	}

	rs, err := reportingSvc.GetReportingStructure(ctx, reporting.GetReportingStructureInput{EmployeeID: lennonID})
	if err != nil {
		t.Fatalf("GetReportingStructure error: %v", err)
	}
	if *rs.NumberOfReports != 5 {
		t.Fatalf("expected 5 reports after insert, got %d", *rs.NumberOfReports)
	}

	// Lennon を新しい社員の部下にすると循環するため拒否されます。
	cyclicParent := created.ID
	if _, err := employeeSvc.ReplaceEmployee(ctx, employee.ReplaceEmployeeInput{ID: lennonID, Attributes: employee.Attributes{ParentID: &cyclicParent}}); !errors.Is(err, employee.ErrHierarchyCycle) {
		t.Fatalf("expected ErrHierarchyCycle, got %v", err)
	}

	if err := employeeSvc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: starrID}); !errors.Is(err, employee.ErrEmployeeHasReports) {
		t.Fatalf("expected ErrEmployeeHasReports, got %v", err)
	}
	if err := employeeSvc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: created.ID}); err != nil {
		t.Fatalf("DeleteEmployee error: %v", err)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Drop(); err != nil {
		return err
	}
	m2, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m2.Close()
	if err := m2.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func applySeeds(dsn, dir string) error {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("x-migrations-table", "schema_seeds")
	u.RawQuery = q.Encode()

	m, err := migrate.New("file://"+dir, u.String())
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func configPathFromEnv() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "../assets/local.yaml"
}
