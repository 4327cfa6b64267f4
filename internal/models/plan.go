package models

import "fmt"

// Tier уровень доступа к статьям.
type Tier string

const (
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

const (
	// PlanCodeStandard код стандартного тарифа.
	PlanCodeStandard = "ST"
	// PlanCodePremium код премиального тарифа.
	PlanCodePremium = "PR"
)

// PlanChoice описывает тарифный план. Cost хранится в центах.
type PlanChoice struct {
	ID                int64  `json:"id"`
	Code              string `json:"code"`
	Name              string `json:"name"`
	Cost              int64  `json:"cost"`
	IsActive          bool   `json:"is_active"`
	Tier              Tier   `json:"tier"`
	Description1      string `json:"description1"`
	Description2      string `json:"description2"`
	ExternalPlanID    string `json:"external_plan_id"`
	ExternalStyleJSON string `json:"external_style_json"`
}

// IsPremium сообщает, открывает ли план премиальные статьи.
func (p *PlanChoice) IsPremium() bool {
	return p.Tier == TierPremium
}

// FormatCost печатает сумму в центах как доллары: 299 -> "2.99".
func FormatCost(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
