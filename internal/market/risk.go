package market

import (
	"fmt"

	"investment-agent/internal/types"
)

// assessRisk scores the indicator set and fills in RiskScore, Condition and
// RiskDetails. Each indicator contributes 0 to 3 points; higher is riskier.
func assessRisk(cond *types.MarketConditions) {
	score := 0
	var details []string

	switch {
	case cond.VIX > 30:
		score += 3
		details = append(details, fmt.Sprintf("High market volatility (VIX: %.1f)", cond.VIX))
	case cond.VIX > 25:
		score += 2
		details = append(details, fmt.Sprintf("Elevated market volatility (VIX: %.1f)", cond.VIX))
	case cond.VIX > 20:
		score++
		details = append(details, fmt.Sprintf("Moderate market volatility (VIX: %.1f)", cond.VIX))
	}

	switch {
	case cond.Inflation > 5:
		score += 2
		details = append(details, fmt.Sprintf("High inflation concern (%.1f%%)", cond.Inflation))
	case cond.Inflation > 3:
		score++
		details = append(details, fmt.Sprintf("Moderate inflation (%.1f%%)", cond.Inflation))
	}

	switch {
	case cond.Unemployment > 6:
		score += 2
		details = append(details, fmt.Sprintf("High unemployment (%.1f%%)", cond.Unemployment))
	case cond.Unemployment > 4:
		score++
		details = append(details, fmt.Sprintf("Elevated unemployment (%.1f%%)", cond.Unemployment))
	}

	switch {
	case cond.FedFundsRate > 6:
		score += 2
		details = append(details, fmt.Sprintf("High interest rates (%.2f%%)", cond.FedFundsRate))
	case cond.FedFundsRate > 4:
		score++
		details = append(details, fmt.Sprintf("Elevated interest rates (%.2f%%)", cond.FedFundsRate))
	}

	switch {
	case cond.ConsumerSentiment < 70:
		score += 2
		details = append(details, fmt.Sprintf("Poor consumer sentiment (%.1f)", cond.ConsumerSentiment))
	case cond.ConsumerSentiment < 85:
		score++
		details = append(details, fmt.Sprintf("Weak consumer sentiment (%.1f)", cond.ConsumerSentiment))
	}

	cond.RiskScore = score
	cond.Condition = conditionFor(score)
	cond.RiskDetails = details
}

func conditionFor(riskScore int) string {
	switch {
	case riskScore >= 6:
		return "High Risk - Defensive Strategy"
	case riskScore >= 4:
		return "Moderate Risk - Cautious Approach"
	case riskScore >= 2:
		return "Low Risk - Selective Opportunities"
	default:
		return "Risk-On - Growth Opportunities"
	}
}

// Advice maps a risk score to positioning guidance for commentary.
func Advice(riskScore int) string {
	switch {
	case riskScore >= 6:
		return "Focus on defensive assets: bonds, utilities, consumer staples."
	case riskScore >= 4:
		return "Balanced approach: mix defensive and growth positions."
	case riskScore >= 2:
		return "Selective growth opportunities: favor quality names."
	default:
		return "Growth-oriented strategy: cyclical and growth sectors in play."
	}
}
