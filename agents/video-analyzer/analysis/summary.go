package analysis

import (
	"fmt"
	"strings"

	"github.com/TradersPost/pinescript-agents/internal/models"
)

// FormatSummary renders the human-readable report printed after an analysis.
func FormatSummary(spec *models.PineScriptSpec) string {
	req := spec.ImplementationRequirements

	return fmt.Sprintf(`
📹 VIDEO ANALYSIS COMPLETE
========================

**Source**: %s
**Author**: %s

**Detected Type**: %s
**Complexity**: %d/10
**Strategy Style**: %s

**Main Components Identified**:
• Indicators: %s
• Patterns: %s
• Timeframes: %s

**Trading Logic**:
• Entry: %d conditions found
• Exit: %d conditions found
• Risk: %d rules found

**Feasibility**: %s

Is this understanding correct? Reply 'yes' to proceed or describe what needs adjustment.
`,
		spec.VideoSource.Title,
		spec.VideoSource.Author,
		strings.ToUpper(spec.DetectedType),
		spec.ComplexityScore,
		spec.StrategyType,
		joinOrDefault(spec.MainIndicators, "None specific"),
		joinOrDefault(spec.TradingPatterns, "None specific"),
		strings.Join(spec.Timeframes, ", "),
		len(req.EntryLogic),
		len(req.ExitLogic),
		len(req.RiskRules),
		strings.ToUpper(spec.Feasibility.Overall),
	)
}

func joinOrDefault(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
