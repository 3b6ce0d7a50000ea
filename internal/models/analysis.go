package models

// VideoMetadata describes the analyzed video. Error is set instead of failing
// the analysis when the metadata lookup did not succeed.
type VideoMetadata struct {
	Title       string `json:"title,omitempty"`
	Author      string `json:"author,omitempty"`
	Length      int    `json:"length"` // seconds
	Description string `json:"description,omitempty"`
	PublishDate string `json:"publish_date,omitempty"`
	Views       int64  `json:"views"`
	URL         string `json:"url"`
	Error       string `json:"error,omitempty"`
}

// SpecificValue holds the distinct numeric strings captured for one value type
// (periods, percentages, pips, levels).
type SpecificValue struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// ConceptFindings lists the keyword phrases found per category.
type ConceptFindings struct {
	Indicators     []string        `json:"indicators"`
	Patterns       []string        `json:"patterns"`
	Strategies     []string        `json:"strategies"`
	Conditions     []string        `json:"conditions"`
	Timeframes     []string        `json:"timeframes"`
	SpecificValues []SpecificValue `json:"specific_values"`
}

// StrategyComponents holds transcript sentences filed under each strategy role.
type StrategyComponents struct {
	EntryConditions  []string `json:"entry_conditions"`
	ExitConditions   []string `json:"exit_conditions"`
	RiskManagement   []string `json:"risk_management"`
	MarketConditions []string `json:"market_conditions"`
}

type VideoSource struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	URL    string `json:"url"`
}

type ImplementationRequirements struct {
	EntryLogic   []string `json:"entry_logic"`
	ExitLogic    []string `json:"exit_logic"`
	RiskRules    []string `json:"risk_rules"`
	MarketFilter []string `json:"market_filter"`
}

type Feasibility struct {
	Overall     string   `json:"overall"` // "full" or "partial"
	Notes       []string `json:"notes"`
	Limitations []string `json:"limitations"`
}

// PineScriptSpec is the candidate indicator/strategy description built from a transcript.
type PineScriptSpec struct {
	VideoSource                VideoSource                `json:"video_source"`
	DetectedType               string                     `json:"detected_type"`
	MainIndicators             []string                   `json:"main_indicators"`
	TradingPatterns            []string                   `json:"trading_patterns"`
	StrategyType               string                     `json:"strategy_type"`
	Timeframes                 []string                   `json:"timeframes"`
	ImplementationRequirements ImplementationRequirements `json:"implementation_requirements"`
	SpecificParameters         []SpecificValue            `json:"specific_parameters"`
	ComplexityScore            int                        `json:"complexity_score"` // 1-10
	Feasibility                Feasibility                `json:"feasibility"`
}

// AnalysisResult is the record printed and persisted for one video.
type AnalysisResult struct {
	Success          bool                `json:"success"`
	Error            string              `json:"error,omitempty"`
	Summary          string              `json:"summary,omitempty"`
	DetailedSpec     *PineScriptSpec     `json:"detailed_spec,omitempty"`
	RawConcepts      *ConceptFindings    `json:"raw_concepts,omitempty"`
	RawComponents    *StrategyComponents `json:"raw_components,omitempty"`
	TranscriptLength int                 `json:"transcript_length,omitempty"`
	AnalysisID       string              `json:"analysis_id,omitempty"`
	Metadata         *VideoMetadata      `json:"metadata,omitempty"`
}
