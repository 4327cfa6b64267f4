// Package diagnostics собирает для администратора отчет о состоянии базы:
// окружение, версию миграций и описание таблиц. Отчет только читает схему.
package diagnostics

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/sl"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// FixHint возвращается вместо исправления схемы на запрос с fix=true.
const FixHint = "Schema changes are applied only by versioned migrations: run `contrarianctl migrate up`. Nothing was modified."

// TableLister читает описание таблиц.
type TableLister interface {
	ListTables(ctx context.Context) ([]models.TableInfo, error)
}

// MigrationStater возвращает версию схемы.
type MigrationStater interface {
	State() (*models.MigrationState, error)
}

// Service собирает отчет.
type Service struct {
	tables     TableLister
	migrations MigrationStater
	envInfo    map[string]string
	log        *slog.Logger
}

// NewDiagnosticsService создает новый экземпляр Service.
func NewDiagnosticsService(log *slog.Logger, cfg *config.Config, tables TableLister, migrations MigrationStater) *Service {
	return &Service{
		tables:     tables,
		migrations: migrations,
		envInfo:    EnvInfo(cfg),
		log:        log,
	}
}

// EnvInfo описывает окружение без секретов.
func EnvInfo(cfg *config.Config) map[string]string {
	return map[string]string{
		"APP_ENV":          cfg.Env,
		"DATABASE_ENGINE":  "postgres (pgx)",
		"DATABASE_HOST":    cfg.DatabaseHost(),
		"PAYPAL_ENABLED":   strconv.FormatBool(cfg.PayPal.Enabled),
		"PAYPAL_BASE_URL":  cfg.PayPal.BaseURL,
		"REDIS_ADDRESS":    cfg.AddressRedis,
		"SESSION_TTL":      cfg.SessionTTL.String(),
		"MIGRATION_CHECKS": strconv.FormatBool(!cfg.SkipMigrationCheck),
	}
}

// Diagnose собирает отчет. Ошибки попадают в поле Error, отчет возвращается всегда.
func (s *Service) Diagnose(ctx context.Context, fixRequested bool) *models.Diagnosis {
	d := &models.Diagnosis{
		EnvInfo: s.envInfo,
		Tables:  []models.TableInfo{},
	}
	if fixRequested {
		d.FixResult = FixHint
	}

	var errs []error
	state, err := s.migrations.State()
	if err != nil {
		s.log.Error("failed to read migration state", sl.Err(err))
		errs = append(errs, err)
	} else {
		d.Migrations = state
	}

	tables, err := s.tables.ListTables(ctx)
	if err != nil {
		s.log.Error("failed to list tables", sl.Err(err))
		errs = append(errs, err)
	} else {
		d.Tables = tables
	}

	if err := errors.Join(errs...); err != nil {
		d.Error = err.Error()
	}
	return d
}
