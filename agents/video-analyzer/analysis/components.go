package analysis

import (
	"strings"

	"github.com/TradersPost/pinescript-agents/internal/models"
)

// MaxRoleSentences caps the sentences kept per strategy role.
const MaxRoleSentences = 3

var (
	entryTriggers  = []string{"enter", "buy", "long", "entry signal"}
	exitTriggers   = []string{"exit", "sell", "close", "take profit", "stop loss"}
	riskTriggers   = []string{"risk", "position size", "money management", "drawdown"}
	marketTriggers = []string{"trend", "ranging", "volatile", "breakout"}
)

// IdentifyComponents splits text at every '.' and files each sentence under
// every role whose trigger words it contains. A sentence can land in several
// roles. Sentences keep their original case, trimmed.
func IdentifyComponents(text string) *models.StrategyComponents {
	c := &models.StrategyComponents{
		EntryConditions:  []string{},
		ExitConditions:   []string{},
		RiskManagement:   []string{},
		MarketConditions: []string{},
	}

	for _, sentence := range strings.Split(text, ".") {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(sentence)

		if containsAny(lower, entryTriggers) {
			c.EntryConditions = append(c.EntryConditions, trimmed)
		}
		if containsAny(lower, exitTriggers) {
			c.ExitConditions = append(c.ExitConditions, trimmed)
		}
		if containsAny(lower, riskTriggers) {
			c.RiskManagement = append(c.RiskManagement, trimmed)
		}
		if containsAny(lower, marketTriggers) {
			c.MarketConditions = append(c.MarketConditions, trimmed)
		}
	}

	c.EntryConditions = firstN(c.EntryConditions, MaxRoleSentences)
	c.ExitConditions = firstN(c.ExitConditions, MaxRoleSentences)
	c.RiskManagement = firstN(c.RiskManagement, MaxRoleSentences)
	c.MarketConditions = firstN(c.MarketConditions, MaxRoleSentences)

	return c
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func firstN(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
