package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

const planColumns = `id, code, name, cost, is_active, tier, description1, description2,
	external_plan_id, external_style_json`

func scanPlan(row rowScanner) (*models.PlanChoice, error) {
	p := &models.PlanChoice{}
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Cost, &p.IsActive, &p.Tier,
		&p.Description1, &p.Description2, &p.ExternalPlanID, &p.ExternalStyleJSON); err != nil {
		return nil, err
	}
	return p, nil
}

// ListActivePlans возвращает активные тарифы по возрастанию цены.
func (s *Storage) ListActivePlans(ctx context.Context) ([]*models.PlanChoice, error) {
	const op = "storage.ListActivePlans"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT `+planColumns+` FROM plan_choices
		WHERE is_active ORDER BY cost, code`)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	var result []*models.PlanChoice
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetPlanByCode возвращает тариф по коду, в том числе неактивный.
func (s *Storage) GetPlanByCode(ctx context.Context, code string) (*models.PlanChoice, error) {
	const op = "storage.GetPlanByCode"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p, err := scanPlan(s.DB.QueryRowContext(ctx, `SELECT `+planColumns+` FROM plan_choices WHERE code = $1`, code))
	if err != nil {
		return nil, wrap(op, err)
	}
	return p, nil
}

// UpsertPlan создает тариф или обновляет существующий с тем же кодом.
func (s *Storage) UpsertPlan(ctx context.Context, p models.PlanChoice) (int64, error) {
	const op = "storage.UpsertPlan"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO plan_choices (code, name, cost, is_active, tier, description1, description2,
			      external_plan_id, external_style_json)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  ON CONFLICT (code) DO UPDATE SET
			      name = EXCLUDED.name,
			      cost = EXCLUDED.cost,
			      is_active = EXCLUDED.is_active,
			      tier = EXCLUDED.tier,
			      description1 = EXCLUDED.description1,
			      description2 = EXCLUDED.description2,
			      external_plan_id = EXCLUDED.external_plan_id,
			      external_style_json = EXCLUDED.external_style_json
			  RETURNING id`
	var id int64
	if err := s.DB.QueryRowContext(ctx, query, p.Code, p.Name, p.Cost, p.IsActive, p.Tier,
		p.Description1, p.Description2, p.ExternalPlanID, p.ExternalStyleJSON).Scan(&id); err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}
