package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TradersPost/pinescript-agents/internal/models"
)

func buildFor(text string, metadata *models.VideoMetadata) *models.PineScriptSpec {
	return BuildSpec(NewExtractor().Extract(text), IdentifyComponents(text), metadata)
}

func TestBuildSpecSampleTranscript(t *testing.T) {
	meta := &models.VideoMetadata{Title: "RSI basics", Author: "Trader Joe", URL: "https://youtu.be/abc"}
	spec := buildFor(sampleTranscript, meta)

	assert.Equal(t, models.VideoSource{Title: "RSI basics", Author: "Trader Joe", URL: "https://youtu.be/abc"}, spec.VideoSource)
	assert.Equal(t, TypeIndicator, spec.DetectedType)
	assert.Equal(t, []string{"rsi"}, spec.MainIndicators)
	assert.Equal(t, []string{"cross"}, spec.TradingPatterns)
	assert.Equal(t, "custom", spec.StrategyType)
	assert.Equal(t, []string{"not specified"}, spec.Timeframes)
	assert.Equal(t, []string{"Enter crosses"}, spec.ImplementationRequirements.EntryLogic)
	assert.Empty(t, spec.ImplementationRequirements.ExitLogic)
	assert.Empty(t, spec.ImplementationRequirements.RiskRules)
	assert.Equal(t, 5, spec.ComplexityScore)
	assert.Equal(t, FeasibilityFull, spec.Feasibility.Overall)
	assert.Empty(t, spec.Feasibility.Notes)
	assert.Empty(t, spec.Feasibility.Limitations)
}

func TestBuildSpecNoMatches(t *testing.T) {
	spec := buildFor("Hello world. Nothing to see here", nil)

	assert.Equal(t, 1, spec.ComplexityScore)
	assert.Equal(t, FeasibilityFull, spec.Feasibility.Overall)
	assert.Equal(t, TypeUnknown, spec.DetectedType)
	assert.Equal(t, "Unknown", spec.VideoSource.Title)
	assert.Equal(t, "Unknown", spec.VideoSource.Author)
	assert.Empty(t, spec.MainIndicators)
	assert.Empty(t, spec.SpecificParameters)
}

func TestBuildSpecStrategyDetection(t *testing.T) {
	text := "Buy the dip. Sell the rip. Close everything on friday."
	spec := buildFor(text, nil)

	assert.Equal(t, TypeStrategy, spec.DetectedType)
}

func TestBuildSpecStrategyTypeIsFirstInTableOrder(t *testing.T) {
	spec := buildFor("this is a martingale scalping system", nil)

	assert.Equal(t, "scalping", spec.StrategyType)
}

func TestBuildSpecCapsIndicatorsAndPatterns(t *testing.T) {
	text := "rsi macd ema sma atr adx vwap. trend reversal divergence flag pennant"
	spec := buildFor(text, nil)

	assert.Len(t, spec.MainIndicators, 5)
	assert.Len(t, spec.TradingPatterns, 3)
}

func TestBuildSpecMarketFilter(t *testing.T) {
	text := "Trend one. Trend two. Trend three."
	spec := buildFor(text, nil)

	assert.Equal(t, []string{"Trend one", "Trend two"}, spec.ImplementationRequirements.MarketFilter)
}

func TestComplexityScoreMaximum(t *testing.T) {
	text := "Use rsi, macd and atr on a breakout with a trend filter. " +
		"Enter long on the signal. Exit at the target. Keep risk small. " +
		"Check the daily and weekly charts."
	spec := buildFor(text, nil)

	assert.Equal(t, 10, spec.ComplexityScore)
	assert.Equal(t, FeasibilityPartial, spec.Feasibility.Overall)
}

func TestComplexityScoreBounds(t *testing.T) {
	texts := []string{
		"",
		sampleTranscript,
		"rsi macd ema sma atr adx. trend flag. buy. sell. risk. daily weekly monthly.",
	}
	for _, text := range texts {
		score := buildFor(text, nil).ComplexityScore
		assert.GreaterOrEqual(t, score, 1)
		assert.LessOrEqual(t, score, 10)
	}
}

func TestSummarizeConditions(t *testing.T) {
	tests := []struct {
		name       string
		conditions []string
		want       []string
	}{
		{"empty", nil, []string{}},
		{"keeps long words", []string{"Enter long when RSI crosses 30"}, []string{"Enter crosses"}},
		{"caps at five words", []string{"alpha bravo charlie delta foxtrot golf hotel india"}, []string{"alpha bravo charlie delta foxtrot"}},
		{"drops sentences without long words", []string{"Stop loss at 2%", "Close above resistance"}, []string{"Close above resistance"}},
		{"only first three sentences", []string{"first", "second", "third", "fourth"}, []string{"first", "second", "third"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SummarizeConditions(tt.conditions))
		})
	}
}
