package market

import (
	"testing"

	"investment-agent/internal/types"
)

func TestAssessRiskBenign(t *testing.T) {
	cond := types.MarketConditions{
		VIX:               15,
		Inflation:         2,
		Unemployment:      3.5,
		FedFundsRate:      3,
		ConsumerSentiment: 90,
	}
	assessRisk(&cond)

	if cond.RiskScore != 0 {
		t.Errorf("Expected risk score 0, got %d", cond.RiskScore)
	}
	if cond.Condition != "Risk-On - Growth Opportunities" {
		t.Errorf("Unexpected condition: %s", cond.Condition)
	}
	if len(cond.RiskDetails) != 0 {
		t.Errorf("Expected no risk details, got %v", cond.RiskDetails)
	}
}

func TestAssessRiskStressed(t *testing.T) {
	cond := types.MarketConditions{
		VIX:               35,
		Inflation:         6,
		Unemployment:      7,
		FedFundsRate:      7,
		ConsumerSentiment: 60,
	}
	assessRisk(&cond)

	if cond.RiskScore != 11 {
		t.Errorf("Expected risk score 11, got %d", cond.RiskScore)
	}
	if cond.Condition != "High Risk - Defensive Strategy" {
		t.Errorf("Unexpected condition: %s", cond.Condition)
	}
	if len(cond.RiskDetails) != 5 {
		t.Errorf("Expected 5 risk details, got %d", len(cond.RiskDetails))
	}
}

func TestAssessRiskModerate(t *testing.T) {
	cond := types.MarketConditions{
		VIX:               26,
		Inflation:         4,
		Unemployment:      4.5,
		FedFundsRate:      3,
		ConsumerSentiment: 90,
	}
	assessRisk(&cond)

	if cond.RiskScore != 4 {
		t.Errorf("Expected risk score 4, got %d", cond.RiskScore)
	}
	if cond.Condition != "Moderate Risk - Cautious Approach" {
		t.Errorf("Unexpected condition: %s", cond.Condition)
	}
}

func TestConditionBands(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, "Risk-On - Growth Opportunities"},
		{1, "Risk-On - Growth Opportunities"},
		{2, "Low Risk - Selective Opportunities"},
		{3, "Low Risk - Selective Opportunities"},
		{4, "Moderate Risk - Cautious Approach"},
		{5, "Moderate Risk - Cautious Approach"},
		{6, "High Risk - Defensive Strategy"},
		{11, "High Risk - Defensive Strategy"},
	}
	for _, c := range cases {
		if got := conditionFor(c.score); got != c.want {
			t.Errorf("conditionFor(%d) = %q, want %q", c.score, got, c.want)
		}
	}
}

func TestAdviceCoversAllBands(t *testing.T) {
	seen := map[string]bool{}
	for _, score := range []int{0, 2, 4, 6} {
		advice := Advice(score)
		if advice == "" {
			t.Fatalf("Empty advice for score %d", score)
		}
		if seen[advice] {
			t.Errorf("Advice for score %d duplicates another band", score)
		}
		seen[advice] = true
	}
}
