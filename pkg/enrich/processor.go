// Package enrich turns raw voice transcripts into structured ideas. It is
// deliberately heuristic: fast, deterministic, and with no external calls, so
// a worker never blocks on enrichment.
package enrich

import (
	"sort"
	"strings"

	"autoideas-be/internal/entity"
)

const maxTitleLen = 50

// ProcessedContent is the enrichment output attached to an idea before
// clustering and posting.
type ProcessedContent struct {
	Title         string
	CanonicalText string
	Category      string
	Sentiment     string
	KeyPoints     []string
}

var categoryByQuestionKeyword = map[string]string{
	"workflow": "workflow_friction",
	"member":   "member_experience",
	"decision": "decision_support",
	"wish":     "wishlist",
}

var positiveWords = []string{"good", "great", "excellent", "love", "wonderful", "fantastic", "better"}
var negativeWords = []string{"bad", "terrible", "hate", "awful", "worse", "problem", "issue", "difficult"}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"is": {}, "are": {}, "was": {}, "were": {},
}

// Processor derives a title, category, sentiment and key points from a
// transcript using the workshop's question list as context.
type Processor struct{}

func NewProcessor() *Processor {
	return &Processor{}
}

func (p *Processor) Process(transcript string, questionID *string, workshop *entity.Workshop) *ProcessedContent {
	canonical := CleanTranscript(transcript)

	questionText := ""
	if questionID != nil && workshop != nil {
		for _, q := range workshop.Questions {
			if q.Id == *questionID {
				questionText = q.Text
				break
			}
		}
	}

	return &ProcessedContent{
		Title:         Title(canonical),
		CanonicalText: canonical,
		Category:      Category(questionText),
		Sentiment:     Sentiment(canonical),
		KeyPoints:     KeyPoints(canonical),
	}
}

// Title takes the first sentence, truncated to 50 characters.
func Title(text string) string {
	title := text
	if idx := strings.Index(text, "."); idx >= 0 {
		title = strings.TrimSpace(text[:idx])
	}
	if title == "" {
		title = text
	}
	if len(title) > maxTitleLen {
		return title[:maxTitleLen-3] + "..."
	}
	return title
}

// CleanTranscript collapses whitespace and capitalizes the first letter.
func CleanTranscript(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// Category maps the question text to an idea category. Unknown or missing
// questions land in "general".
func Category(questionText string) string {
	lower := strings.ToLower(questionText)
	for keyword, category := range categoryByQuestionKeyword {
		if strings.Contains(lower, keyword) {
			return category
		}
	}
	return "general"
}

// Sentiment is keyword counting: positive, negative, mixed, or neutral.
func Sentiment(text string) string {
	lower := strings.ToLower(text)

	positive := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	negative := 0
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return "positive"
	case negative > positive:
		return "negative"
	case positive > 0 && negative > 0:
		return "mixed"
	default:
		return "neutral"
	}
}

// KeyPoints returns up to the first three non-empty sentences.
func KeyPoints(text string) []string {
	var points []string
	for _, sentence := range strings.Split(text, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		points = append(points, sentence)
		if len(points) == 3 {
			break
		}
	}
	if len(points) == 0 {
		return []string{text}
	}
	return points
}

// Topics returns the most frequent non-stop-words in the text, longest
// streak of use first, capped at limit. Used for theme summaries.
func Topics(text string, limit int) []string {
	counts := map[string]int{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?;:\"'")
		if len(w) <= 3 {
			continue
		}
		if _, skip := stopWords[w]; skip {
			continue
		}
		counts[w]++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	if len(words) > limit {
		words = words[:limit]
	}
	return words
}
