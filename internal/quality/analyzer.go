// Package quality scores extracted text and decides whether OCR should run.
//
// The analyzer is a pure function of the input text and a fixed set of
// thresholds: no I/O, no side effects beyond logging. Scoring starts at 100
// and applies independent additive penalties, so it is fully unit-testable
// with plain strings.
package quality

import (
	"log/slog"
	"regexp"
	"strings"
)

// Level bands a quality score for reporting.
type Level string

const (
	LevelExcellent  Level = "EXCELLENT"
	LevelGood       Level = "GOOD"
	LevelAcceptable Level = "ACCEPTABLE"
	LevelPoor       Level = "POOR"
	LevelCritical   Level = "CRITICAL"
)

// Dominant failure reasons, in evaluation order.
const (
	ReasonEmpty                = "empty_text"
	ReasonTooShort             = "too_short"
	ReasonTooManyReplacement   = "too_many_replacement_chars"
	ReasonHighReplacementRatio = "high_replacement_ratio"
	ReasonInsufficientWords    = "insufficient_words"
	ReasonLowASCIIRatio        = "low_ascii_ratio"
	ReasonShortWords           = "short_words"
	ReasonPunctuationNoise     = "punctuation_noise"
	ReasonDenseWordless        = "dense_wordless"
	ReasonGoodQuality          = "good_quality"
)

// scanLikeReasons force the OCR decision even when the score is borderline.
// Excess replacement characters and wordless blobs are strong signals of a
// scanned or glyph-corrupted source.
var scanLikeReasons = map[string]struct{}{
	ReasonTooManyReplacement:   {},
	ReasonHighReplacementRatio: {},
	ReasonInsufficientWords:    {},
	ReasonLowASCIIRatio:        {},
}

// Metrics holds the raw measurements the score is derived from.
type Metrics struct {
	TotalChars       int     `json:"total_chars"`
	WordCount        int     `json:"word_count"`
	ReplacementChars int     `json:"replacement_chars"`
	ReplacementRatio float64 `json:"replacement_ratio"`
	ASCIIRatio       float64 `json:"ascii_ratio"`
	PunctuationRatio float64 `json:"punctuation_ratio"`
	AvgWordLength    float64 `json:"avg_word_length"`
}

// Penalty records one deduction applied while scoring. Retained for
// diagnosability; the OCR decision does not depend on it.
type Penalty struct {
	Cause  string `json:"cause"`
	Points int    `json:"points"`
}

// Report is the outcome of analyzing one text blob.
type Report struct {
	NeedsOCR  bool      `json:"needs_ocr"`
	Score     int       `json:"quality_score"`
	Level     Level     `json:"quality_level"`
	Reason    string    `json:"reason"`
	Metrics   Metrics   `json:"metrics"`
	Penalties []Penalty `json:"penalties,omitempty"`
}

// Thresholds configures the analyzer. The zero value is usable after
// defaults() fills it in.
type Thresholds struct {
	MinTextLength       int     `mapstructure:"min_text_length"`
	MaxReplacementChars int     `mapstructure:"max_replacement_chars"`
	MinWordCount        int     `mapstructure:"min_word_count"`
	MaxReplacementRatio float64 `mapstructure:"max_replacement_ratio"`
	MinASCIIRatio       float64 `mapstructure:"min_ascii_ratio"`
	OCRTriggerScore     int     `mapstructure:"ocr_trigger_score"`
}

func (t *Thresholds) defaults() {
	if t.MinTextLength <= 0 {
		t.MinTextLength = 50
	}
	if t.MaxReplacementChars <= 0 {
		t.MaxReplacementChars = 5
	}
	if t.MinWordCount <= 0 {
		t.MinWordCount = 10
	}
	if t.MaxReplacementRatio <= 0 {
		t.MaxReplacementRatio = 0.01
	}
	if t.MinASCIIRatio <= 0 {
		t.MinASCIIRatio = 0.8
	}
	if t.OCRTriggerScore <= 0 {
		t.OCRTriggerScore = 60
	}
}

// Analyzer scores text extraction quality.
type Analyzer struct {
	cfg    Thresholds
	logger *slog.Logger
}

// NewAnalyzer creates an analyzer with the given thresholds.
func NewAnalyzer(cfg Thresholds, logger *slog.Logger) *Analyzer {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// wordRe matches word-like tokens the way the quality heuristics expect:
// runs of letters, digits, or underscores in any script.
var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// punctuation is the ASCII punctuation set used for the density check.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Analyze scores text and decides whether OCR is warranted.
func (a *Analyzer) Analyze(text string) Report {
	if text == "" {
		return Report{
			NeedsOCR: true,
			Score:    0,
			Level:    LevelCritical,
			Reason:   ReasonEmpty,
		}
	}

	m := measure(text)
	score := 100
	var penalties []Penalty
	reason := ReasonGoodQuality

	deduct := func(cause string, points int) {
		if points <= 0 {
			return
		}
		penalties = append(penalties, Penalty{Cause: cause, Points: points})
		score -= points
		if reason == ReasonGoodQuality {
			reason = cause
		}
	}

	if m.TotalChars < a.cfg.MinTextLength {
		deduct(ReasonTooShort, 60)
	}
	if m.ReplacementChars > a.cfg.MaxReplacementChars {
		pts := clampPoints(int(m.ReplacementRatio*500), 60)
		if pts < 1 {
			// A long document can dilute the ratio to a zero-point penalty,
			// but a fired count check must still register as the reason.
			pts = 1
		}
		deduct(ReasonTooManyReplacement, pts)
	} else if m.ReplacementRatio > a.cfg.MaxReplacementRatio {
		deduct(ReasonHighReplacementRatio, clampPoints(int(m.ReplacementRatio*500), 60))
	}
	if m.WordCount < a.cfg.MinWordCount {
		deduct(ReasonInsufficientWords, 25)
	}
	if m.ASCIIRatio < a.cfg.MinASCIIRatio {
		deduct(ReasonLowASCIIRatio, clampPoints(int((a.cfg.MinASCIIRatio-m.ASCIIRatio)*200), 40))
	}
	if m.WordCount > 0 && m.AvgWordLength < 3 {
		deduct(ReasonShortWords, 15)
	}
	if m.PunctuationRatio > 0.3 {
		deduct(ReasonPunctuationNoise, 15)
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	needsOCR := score < a.cfg.OCRTriggerScore
	if _, scanLike := scanLikeReasons[reason]; scanLike {
		needsOCR = true
	}
	// Dense-but-wordless text: characters flowed out but nothing tokenizes,
	// a secondary extraction-failure signal.
	if m.WordCount < 20 && m.TotalChars > 100 {
		needsOCR = true
		if reason == ReasonGoodQuality {
			reason = ReasonDenseWordless
		}
	}

	r := Report{
		NeedsOCR:  needsOCR,
		Score:     score,
		Level:     bandScore(score),
		Reason:    reason,
		Metrics:   m,
		Penalties: penalties,
	}
	if needsOCR {
		a.logger.Warn("poor text quality detected",
			"reason", r.Reason, "score", r.Score,
			"chars", m.TotalChars, "words", m.WordCount,
			"replacement_ratio", m.ReplacementRatio)
	}
	return r
}

// NeedsOCR is the boolean-only convenience over Analyze for callers that
// only want the decision.
func (a *Analyzer) NeedsOCR(text string) bool {
	return a.Analyze(text).NeedsOCR
}

func measure(text string) Metrics {
	var (
		total       int
		asciiCount  int
		punctCount  int
		replacement int
	)
	for _, r := range text {
		total++
		if r < 128 {
			asciiCount++
		}
		if r == '�' {
			replacement++
		}
		if r < 128 && strings.ContainsRune(punctuation, r) {
			punctCount++
		}
	}

	words := wordRe.FindAllString(text, -1)
	wordLen := 0
	for _, w := range words {
		wordLen += len([]rune(w))
	}

	m := Metrics{
		TotalChars:       total,
		WordCount:        len(words),
		ReplacementChars: replacement,
	}
	if total > 0 {
		m.ReplacementRatio = float64(replacement) / float64(total)
		m.ASCIIRatio = float64(asciiCount) / float64(total)
		m.PunctuationRatio = float64(punctCount) / float64(total)
	}
	if len(words) > 0 {
		m.AvgWordLength = float64(wordLen) / float64(len(words))
	}
	return m
}

func bandScore(score int) Level {
	switch {
	case score >= 90:
		return LevelExcellent
	case score >= 75:
		return LevelGood
	case score >= 60:
		return LevelAcceptable
	case score >= 30:
		return LevelPoor
	default:
		return LevelCritical
	}
}

func clampPoints(points, max int) int {
	if points > max {
		return max
	}
	return points
}
