package analysis

import (
	"regexp"
	"strings"
	"sync"

	"github.com/TradersPost/pinescript-agents/internal/models"
)

// MaxSpecificValues caps the distinct values kept per numeric pattern.
const MaxSpecificValues = 5

// numberPattern captures a numeric parameter; group 1 is the value.
type numberPattern struct {
	valueType string
	re        *regexp.Regexp
}

var numberPatterns = []numberPattern{
	{"periods", regexp.MustCompile(`(\d+)\s*(?:period|length|bar|candle)`)},
	{"percentages", regexp.MustCompile(`(\d+\.?\d*)\s*(?:%|percent)`)},
	{"pips", regexp.MustCompile(`(\d+)\s*(?:pip|point)`)},
	{"levels", regexp.MustCompile(`(?:level|zone|area)\s*(?:at|around)?\s*(\d+\.?\d*)`)},
}

// Extractor finds keyword concepts and numeric parameters in transcript text.
// It is safe for concurrent use.
type Extractor struct {
	mu     sync.Mutex
	tables map[Category]*keywordTable
}

func NewExtractor() *Extractor {
	tables := make(map[Category]*keywordTable, len(Categories))
	for _, c := range Categories {
		tables[c] = newKeywordTable(tradingKeywords[c])
	}
	return &Extractor{tables: tables}
}

// Extract scans text for every category's keywords (plain substring match,
// no word boundaries) and for the numeric parameter patterns.
func (e *Extractor) Extract(text string) *models.ConceptFindings {
	lower := strings.ToLower(text)

	e.mu.Lock()
	buf := []byte(lower)
	findings := &models.ConceptFindings{
		Indicators:     e.tables[CategoryIndicators].find(buf),
		Patterns:       e.tables[CategoryPatterns].find(buf),
		Strategies:     e.tables[CategoryStrategies].find(buf),
		Conditions:     e.tables[CategoryConditions].find(buf),
		Timeframes:     e.tables[CategoryTimeframes].find(buf),
		SpecificValues: []models.SpecificValue{},
	}
	e.mu.Unlock()

	for _, p := range numberPatterns {
		values := distinctCaptures(p.re, lower, MaxSpecificValues)
		if len(values) == 0 {
			continue
		}
		findings.SpecificValues = append(findings.SpecificValues, models.SpecificValue{
			Type:   p.valueType,
			Values: values,
		})
	}

	return findings
}

// distinctCaptures returns up to limit distinct group-1 captures in first-seen order.
func distinctCaptures(re *regexp.Regexp, text string, limit int) []string {
	seen := make(map[string]bool)
	var values []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		v := m[1]
		if seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
		if len(values) == limit {
			break
		}
	}
	return values
}
