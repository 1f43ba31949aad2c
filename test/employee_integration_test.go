//go:build integration

package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	repo "github.com/ogurasousui/headcount-dashboard/internal/adapters/repository/postgres"
	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
	"github.com/ogurasousui/headcount-dashboard/internal/core/livestate"
	"github.com/ogurasousui/headcount-dashboard/internal/core/mutation"
	"github.com/ogurasousui/headcount-dashboard/internal/platform/config"
	pg "github.com/ogurasousui/headcount-dashboard/internal/platform/db/postgres"
)

const migrationsDir = "../assets/migrations"

func TestEmployeeSyncIntegration(t *testing.T) {
	cfg, err := config.Load(configPathFromEnv())
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if !cfg.Database.Enabled() {
		t.Skip("database is not configured")
	}

	if err := resetMigrations(cfg.Database.DSN(), migrationsDir); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	listener := pg.NewListener(pg.PoolDialer(pool), cfg.Sync.NotifyChannel, 100*time.Millisecond, nil)
	go func() { _ = listener.Run(ctx) }()

	gateway := repo.NewEmployeeGateway(pool, listener)
	if channel, err := gateway.NotifyTriggerChannel(ctx); err != nil || channel != cfg.Sync.NotifyChannel {
		t.Fatalf("trigger channel = %q, %v; want %q", channel, err, cfg.Sync.NotifyChannel)
	}
	store := livestate.New(gateway, nil)
	t.Cleanup(store.Teardown)

	if err := store.Start(ctx); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	svc := mutation.NewService(mutation.Deps{
		Repository: gateway,
		Store:      store,
		Tx:         pg.NewTransactionManager(pool),
	}, mutation.DefaultOptions())

	id, err := svc.AddEmployee(ctx, mutation.AddEmployeeInput{Name: "Integration", Team: "Eng", Position: "Tester"})
	if err != nil {
		t.Fatalf("AddEmployee error: %v", err)
	}

	created, ok := store.Find(id)
	if !ok {
		t.Fatalf("expected %s to be in the store after refetch", id)
	}
	if created.Status != employee.StatusActive || created.Photo != employee.AvatarURL("Integration") {
		t.Fatalf("unexpected created employee: %+v", created)
	}

	if written, err := svc.CycleStatus(ctx, created); err != nil || written != employee.StatusPending {
		t.Fatalf("CycleStatus = %s, %v", written, err)
	}
	if got, _ := store.Find(id); got.Status != employee.StatusPending {
		t.Fatalf("expected Pending after cycle, got %s", got.Status)
	}

	if err := svc.MoveEmployee(ctx, mutation.NewDragPayload(created), "Design"); err != nil {
		t.Fatalf("MoveEmployee error: %v", err)
	}

	// 別接続からの書き込みも変更通知経由で反映されます。
	if _, err := pool.Exec(ctx, `UPDATE employees SET levelling = 'L3' WHERE id = $1`, id); err != nil {
		t.Fatalf("external update error: %v", err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for {
		got, _ := store.Find(id)
		if got != nil && got.Level == "L3" && got.Team == "Design" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("change notification was not applied: %+v", got)
		}
		time.Sleep(50 * time.Millisecond)
	}

	current, _ := store.Find(id)
	if err := svc.DeleteEmployee(ctx, current, mutation.Confirmed(true)); err != nil {
		t.Fatalf("DeleteEmployee error: %v", err)
	}
	if _, ok := store.Find(id); ok {
		t.Fatalf("expected %s to be removed", id)
	}
	if err := gateway.Remove(ctx, id); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func resetMigrations(dsn, dir string) error {
	m, err := migrate.New("file://"+dir, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
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
