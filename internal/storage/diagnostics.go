package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

// ListTables возвращает таблицы текущей схемы с колонками в порядке их объявления.
func (s *Storage) ListTables(ctx context.Context) ([]models.TableInfo, error) {
	const op = "storage.ListTables"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT c.table_name, c.column_name, c.data_type,
			c.is_nullable = 'YES', c.column_default
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = current_schema() AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	tables := make([]models.TableInfo, 0)
	for rows.Next() {
		var (
			table string
			col   models.ColumnInfo
			def   sql.NullString
		)
		if err := rows.Scan(&table, &col.Name, &col.Type, &col.Nullable, &def); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if def.Valid {
			col.Default = &def.String
		}
		if n := len(tables); n == 0 || tables[n-1].Name != table {
			tables = append(tables, models.TableInfo{Name: table})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tables, nil
}
