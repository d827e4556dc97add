package relevance

// Pre-classification gate. Decides whether a query bypasses normal category
// routing because it is off-topic or too vague to act on.

import "strings"

type Outcome int

const (
	PassThrough Outcome = iota
	OffTopic
	Unclear
)

func (o Outcome) String() string {
	switch o {
	case OffTopic:
		return "off_topic"
	case Unclear:
		return "unclear"
	default:
		return "pass_through"
	}
}

// Diagnostic reason tags for off-topic decisions. Advisory only: response
// wording may vary by tag, but the gating decision does not depend on it.
const (
	ReasonEmptyQuery       = "empty_query"
	ReasonTooShort         = "too_short"
	ReasonSpecialCharsOnly = "special_chars_only"
	ReasonDismissive       = "dismissive"
	ReasonIrrelevant       = "irrelevant"
)

// Decision is the gate verdict for one query
type Decision struct {
	Outcome Outcome
	Reason  string
	Score   Score
}

const (
	offTopicThreshold = 30
	// Secondary keyword check only applies to borderline scores.
	keywordCheckCeiling = 50
	unclearCeiling      = 45
	vagueScoreCeiling   = 60
)

// Ordered so a query matching several categories always gets the same tag.
var offTopicCategories = []struct {
	name     string
	keywords []string
}{
	{"entertainment", []string{"game", "movie", "netflix", "youtube", "tiktok", "music"}},
	{"personal", []string{"girlfriend", "boyfriend", "dating", "love", "relationship"}},
	{"sports", []string{"cricket", "football", "match", "ipl"}},
	{"random", []string{"weather", "food", "travel", "shopping"}},
}

// Career-related terms that veto the secondary keyword check, so queries like
// "career in gaming industry" are not flagged off-topic.
var careerTerms = []string{
	"placement", "career", "job", "interview", "skill", "learning",
	"study", "prepare", "practice", "training", "professional", "work",
}

var vaguePhrases = []string{
	"what about", "tell me about", "i want to know", "can you",
	"something", "anything", "stuff", "things", "random",
	"just curious", "wondering", "thinking about",
}

// Evaluate scores a query and gates it. The empty string is always off-topic
// with the empty_query reason, checked before scoring.
func Evaluate(query string) Decision {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return Decision{Outcome: OffTopic, Reason: ReasonEmptyQuery}
	}

	score := Calculate(query)

	if score.Value < offTopicThreshold {
		return Decision{Outcome: OffTopic, Reason: offTopicReason(lower), Score: score}
	}

	if isUnclear(lower, score) {
		return Decision{Outcome: Unclear, Score: score}
	}

	if score.Value < keywordCheckCeiling {
		if category, ok := matchOffTopicCategory(lower); ok {
			return Decision{Outcome: OffTopic, Reason: category, Score: score}
		}
	}

	return Decision{Outcome: PassThrough, Score: score}
}

func offTopicReason(lower string) string {
	words := strings.Fields(lower)
	switch {
	case len(words) == 0:
		return ReasonEmptyQuery
	case len(words) == 1 && len(words[0]) <= 3:
		return ReasonTooShort
	case isOnlySpecialChars(lower):
		return ReasonSpecialCharsOnly
	case containsAny(lower, []string{"whatever", "nevermind", "forget"}):
		return ReasonDismissive
	default:
		return ReasonIrrelevant
	}
}

func isUnclear(lower string, score Score) bool {
	if score.Value <= unclearCeiling {
		return true
	}
	if score.WordCount <= 2 && score.Value < vagueScoreCeiling {
		return true
	}
	if containsAny(lower, vaguePhrases) && score.Value < vagueScoreCeiling {
		return true
	}
	return false
}

func matchOffTopicCategory(lower string) (string, bool) {
	if containsAny(lower, careerTerms) {
		return "", false
	}
	for _, category := range offTopicCategories {
		if containsAny(lower, category.keywords) {
			return category.name, true
		}
	}
	return "", false
}
