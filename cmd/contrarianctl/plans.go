package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/contrarian-report/internal/cache"
	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

const seedTimeout = 30 * time.Second

// PlanUpserter создает или обновляет тариф по коду.
type PlanUpserter interface {
	UpsertPlan(ctx context.Context, p models.PlanChoice) (int64, error)
}

// Invalidator сбрасывает ключи кеша.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

func (c *cli) plansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Manage subscription plans",
	}
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create or update plans listed in the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), seedTimeout)
			defer cancel()

			res, err := c.open(ctx, true)
			if err != nil {
				return err
			}
			defer res.close(c)

			n, err := seedPlans(ctx, res.db, res.cache, c.cfg.Plans)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d plans seeded\n", n)
			return nil
		},
	}
	cmd.AddCommand(seed)
	return cmd
}

func seedPlans(ctx context.Context, repo PlanUpserter, cc Invalidator, plans []config.Plan) (int, error) {
	const op = "contrarianctl.seedPlans"

	for _, p := range plans {
		if p.Code == "" || p.Name == "" {
			return 0, fmt.Errorf("%s: plan code and name are required", op)
		}
		tier := models.TierStandard
		if p.Premium {
			tier = models.TierPremium
		}
		_, err := repo.UpsertPlan(ctx, models.PlanChoice{
			Code:              p.Code,
			Name:              p.Name,
			Cost:              p.Cost,
			IsActive:          p.IsActive,
			Tier:              tier,
			Description1:      p.Description1,
			Description2:      p.Description2,
			ExternalPlanID:    p.ExternalPlanID,
			ExternalStyleJSON: p.ExternalStyleJSON,
		})
		if err != nil {
			return 0, fmt.Errorf("%s: plan %s: %w", op, p.Code, err)
		}
	}
	if err := cc.Invalidate(ctx, cache.PlansKey); err != nil {
		return len(plans), fmt.Errorf("%s: %w", op, err)
	}
	return len(plans), nil
}
