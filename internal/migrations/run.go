// Package migrations применяет версионированные SQL миграции схемы.
//
// Миграции встроены в бинарник и запускаются только командой `contrarianctl migrate`.
// Веб-сервер лишь проверяет, что схема находится на последней версии.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// регистрирует драйвер pgx для database/sql
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

//go:embed sql/*.sql
var files embed.FS

// ErrNotMigrated возвращается, если схема отстает от последней миграции или помечена dirty.
var ErrNotMigrated = errors.New("database schema is not migrated")

// Migrator управляет миграциями одной базы. Держит собственное подключение,
// потому что драйвер migrate закрывает переданный ему *sql.DB.
type Migrator struct {
	m      *migrate.Migrate
	latest uint
}

// New открывает подключение по dsn и готовит встроенные миграции.
func New(dsn string) (*Migrator, error) {
	const op = "migrations.New"

	latest, err := latestVersion()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx_v5", driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Migrator{m: m, latest: latest}, nil
}

// Up применяет все непримененные миграции.
func (mg *Migrator) Up() error {
	const op = "migrations.Up"
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Down откатывает steps последних миграций, при steps <= 0 откатывает все.
func (mg *Migrator) Down(steps int) error {
	const op = "migrations.Down"
	var err error
	if steps <= 0 {
		err = mg.m.Down()
	} else {
		err = mg.m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Version возвращает текущую версию схемы. Для пустой базы версия 0.
func (mg *Migrator) Version() (uint, bool, error) {
	const op = "migrations.Version"
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	return v, dirty, nil
}

// Latest возвращает номер последней встроенной миграции.
func (mg *Migrator) Latest() uint {
	return mg.latest
}

// State собирает версию схемы для диагностики.
func (mg *Migrator) State() (*models.MigrationState, error) {
	v, dirty, err := mg.Version()
	if err != nil {
		return nil, err
	}
	return &models.MigrationState{Version: v, Latest: mg.latest, Dirty: dirty}, nil
}

// Check возвращает ErrNotMigrated, если схема не на последней версии.
func (mg *Migrator) Check() error {
	const op = "migrations.Check"
	v, dirty, err := mg.Version()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if dirty {
		return fmt.Errorf("%s: %w: version %d is dirty", op, ErrNotMigrated, v)
	}
	if v < mg.latest {
		return fmt.Errorf("%s: %w: version %d, latest %d", op, ErrNotMigrated, v, mg.latest)
	}
	return nil
}

// Close закрывает источник миграций и подключение к базе.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

func latestVersion() (uint, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return lastOf(src)
}

func lastOf(src source.Driver) (uint, error) {
	v, err := src.First()
	if err != nil {
		return 0, err
	}
	for {
		next, err := src.Next(v)
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist) {
			return v, nil
		}
		if err != nil {
			return 0, err
		}
		v = next
	}
}
