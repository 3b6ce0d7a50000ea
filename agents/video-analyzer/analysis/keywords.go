package analysis

import ahocorasick "github.com/cloudflare/ahocorasick"

// Category names a keyword table.
type Category string

const (
	CategoryIndicators Category = "indicators"
	CategoryPatterns   Category = "patterns"
	CategoryStrategies Category = "strategies"
	CategoryConditions Category = "conditions"
	CategoryTimeframes Category = "timeframes"
)

// Categories lists every keyword category in table order.
var Categories = []Category{
	CategoryIndicators,
	CategoryPatterns,
	CategoryStrategies,
	CategoryConditions,
	CategoryTimeframes,
}

// tradingKeywords holds the lowercase phrases searched for in each category.
// "momentum" is listed under both indicators and strategies.
var tradingKeywords = map[Category][]string{
	CategoryIndicators: {
		"rsi", "macd", "moving average", "ema", "sma", "bollinger bands",
		"stochastic", "volume", "atr", "adx", "ichimoku", "fibonacci",
		"pivot points", "support resistance", "vwap", "momentum",
	},
	CategoryPatterns: {
		"breakout", "trend", "reversal", "divergence", "convergence",
		"cross", "crossover", "golden cross", "death cross", "squeeze",
		"flag", "pennant", "triangle", "head and shoulders", "double top",
		"double bottom", "cup and handle",
	},
	CategoryStrategies: {
		"scalping", "day trading", "swing trading", "position trading",
		"mean reversion", "trend following", "momentum", "arbitrage",
		"pairs trading", "grid trading", "martingale", "dca",
	},
	CategoryConditions: {
		"entry", "exit", "stop loss", "take profit", "risk management",
		"position sizing", "trailing stop", "break even", "signal",
		"confirmation", "filter", "trigger",
	},
	CategoryTimeframes: {
		"1 minute", "5 minute", "15 minute", "30 minute", "1 hour",
		"4 hour", "daily", "weekly", "monthly", "multi timeframe",
		"higher timeframe", "lower timeframe",
	},
}

// Keywords returns a copy of the phrases for a category.
func Keywords(c Category) []string {
	return append([]string(nil), tradingKeywords[c]...)
}

// keywordTable pairs a category's phrases with an automaton built over them.
// Each category gets its own automaton because phrases repeat across categories.
type keywordTable struct {
	keywords []string
	matcher  *ahocorasick.Matcher
}

func newKeywordTable(keywords []string) *keywordTable {
	return &keywordTable{
		keywords: keywords,
		matcher:  ahocorasick.NewStringMatcher(keywords),
	}
}

// find returns the keywords occurring anywhere in text, in table order.
func (t *keywordTable) find(text []byte) []string {
	hit := make(map[int]bool)
	for _, idx := range t.matcher.Match(text) {
		hit[idx] = true
	}

	found := make([]string, 0, len(hit))
	for i, kw := range t.keywords {
		if hit[i] {
			found = append(found, kw)
		}
	}
	return found
}
