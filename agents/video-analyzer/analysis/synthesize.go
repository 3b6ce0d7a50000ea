package analysis

import (
	"strings"
	"unicode/utf8"

	"github.com/TradersPost/pinescript-agents/internal/models"
)

const (
	TypeStrategy  = "strategy"
	TypeIndicator = "indicator"
	TypeUnknown   = "unknown"

	FeasibilityFull    = "full"
	FeasibilityPartial = "partial"

	maxMainIndicators  = 5
	maxTradingPatterns = 3
	maxMarketFilters   = 2
	maxSummaryTerms    = 5
	maxComplexity      = 10
	fullFeasibilityMax = 7
)

var summaryStopWords = map[string]bool{
	"when": true, "then": true, "that": true, "this": true, "with": true,
}

// BuildSpec assembles the indicator/strategy description for one video.
func BuildSpec(concepts *models.ConceptFindings, components *models.StrategyComponents, metadata *models.VideoMetadata) *models.PineScriptSpec {
	source := models.VideoSource{Title: "Unknown", Author: "Unknown"}
	if metadata != nil {
		if metadata.Title != "" {
			source.Title = metadata.Title
		}
		if metadata.Author != "" {
			source.Author = metadata.Author
		}
		source.URL = metadata.URL
	}

	strategyType := "custom"
	if len(concepts.Strategies) > 0 {
		strategyType = concepts.Strategies[0]
	}

	timeframes := concepts.Timeframes
	if len(timeframes) == 0 {
		timeframes = []string{"not specified"}
	}

	score := ComplexityScore(concepts, components)

	return &models.PineScriptSpec{
		VideoSource:     source,
		DetectedType:    DetectType(concepts, components),
		MainIndicators:  firstN(concepts.Indicators, maxMainIndicators),
		TradingPatterns: firstN(concepts.Patterns, maxTradingPatterns),
		StrategyType:    strategyType,
		Timeframes:      timeframes,
		ImplementationRequirements: models.ImplementationRequirements{
			EntryLogic:   SummarizeConditions(components.EntryConditions),
			ExitLogic:    SummarizeConditions(components.ExitConditions),
			RiskRules:    SummarizeConditions(components.RiskManagement),
			MarketFilter: firstN(components.MarketConditions, maxMarketFilters),
		},
		SpecificParameters: concepts.SpecificValues,
		ComplexityScore:    score,
		Feasibility:        assessFeasibility(score),
	}
}

// DetectType reports "strategy" when more than two entry/exit sentences were
// found, "indicator" when any indicator keyword was found, else "unknown".
func DetectType(concepts *models.ConceptFindings, components *models.StrategyComponents) string {
	if len(components.EntryConditions)+len(components.ExitConditions) > 2 {
		return TypeStrategy
	}
	if len(concepts.Indicators) > 0 {
		return TypeIndicator
	}
	return TypeUnknown
}

// SummarizeConditions reduces each of the first three sentences to its first
// five words longer than four characters. Sentences with no such word are
// dropped, so the result can be shorter than the input.
func SummarizeConditions(conditions []string) []string {
	summaries := []string{}
	for _, condition := range firstN(conditions, MaxRoleSentences) {
		var terms []string
		for _, word := range strings.Fields(condition) {
			if utf8.RuneCountInString(word) > 4 && !summaryStopWords[strings.ToLower(word)] {
				terms = append(terms, word)
			}
		}
		if len(terms) > 0 {
			summaries = append(summaries, strings.Join(firstN(terms, maxSummaryTerms), " "))
		}
	}
	return summaries
}

// ComplexityScore rates how many signals were detected, from 1 to 10.
func ComplexityScore(concepts *models.ConceptFindings, components *models.StrategyComponents) int {
	score := 1
	score += min(len(concepts.Indicators), 3)
	score += min(len(concepts.Patterns), 2)
	if len(components.EntryConditions) > 0 {
		score++
	}
	if len(components.ExitConditions) > 0 {
		score++
	}
	if len(components.RiskManagement) > 0 {
		score++
	}
	if len(concepts.Timeframes) > 1 {
		score++
	}
	return min(score, maxComplexity)
}

func assessFeasibility(score int) models.Feasibility {
	overall := FeasibilityPartial
	if score <= fullFeasibilityMax {
		overall = FeasibilityFull
	}
	return models.Feasibility{
		Overall:     overall,
		Notes:       []string{},
		Limitations: []string{},
	}
}
