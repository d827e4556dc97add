package relevance

// Lexical relevance scoring for student queries. A score of 0-100 estimates
// how on-topic (placement/study related) a query is; the gate uses it to
// short-circuit off-topic and unclear queries before classification.

import (
	"strings"
	"unicode"
)

const (
	baselineScore     = 50
	highKeywordWeight = 30
	mediumWeight      = 15
	lowWeight         = 20
)

// Keyword tables are package-level data so membership and weights are
// testable independently of the scoring rules.
var highRelevanceKeywords = []string{
	"assessment", "test", "exam", "quiz", "result", "score", "grade",
	"placement", "interview", "job", "career", "aptitude", "technical",
	"coding", "programming", "algorithm", "data structure", "learning",
	"study", "practice", "prepare", "skill", "improve", "performance",
	"training", "course", "syllabus", "topic", "subject",
}

var mediumRelevanceKeywords = []string{
	"question", "answer", "help", "guide", "how to", "what is",
	"explain", "understand", "know", "learn", "teach", "tutorial",
	"profile", "account", "password", "email", "settings", "dashboard",
}

var lowRelevanceKeywords = []string{
	"game", "gaming", "movie", "film", "music", "song", "sport", "cricket",
	"football", "party", "fun", "bored", "boring", "love", "dating",
	"girlfriend", "boyfriend", "relationship", "weather", "food", "recipe",
	"travel", "vacation", "shopping", "fashion", "celebrity", "gossip",
	"meme", "joke", "funny", "netflix", "youtube", "tiktok", "instagram",
	"facebook", "twitter", "snapchat", "anime", "cartoon",
	"bloody", "sweet", "cool", "awesome", "nice", "wow", "damn",
	"hell", "shit", "crap", "stupid", "dumb", "lol", "lmao", "omg",
	"wtf", "bruh", "bro", "dude", "mate", "yolo", "swag", "lit",
}

var dismissivePhrases = []string{
	"whatever", "nevermind", "forget it", "leave it", "who cares", "doesnt matter",
}

var slangWords = map[string]struct{}{
	"bloody": {}, "sweet": {}, "cool": {}, "awesome": {}, "nice": {}, "wow": {},
	"damn": {}, "hell": {}, "shit": {}, "crap": {}, "stupid": {}, "dumb": {},
	"lol": {}, "lmao": {}, "omg": {}, "wtf": {}, "bruh": {}, "bro": {},
	"dude": {}, "mate": {}, "yolo": {}, "swag": {}, "lit": {}, "sick": {},
	"fire": {}, "dope": {}, "rad": {}, "wicked": {}, "epic": {}, "savage": {},
}

// Short tokens that are meaningful on their own.
var shortWordAllowList = map[string]struct{}{"hi": {}, "ok": {}, "no": {}}

const specialChars = "!?.,;:()[]{}@#$%^&*+=~`|\\/<>"

// Score holds the clamped relevance value together with the signal counts
// that produced it.
type Score struct {
	Value         int
	HighMatches   int
	MediumMatches int
	LowMatches    int
	WordCount     int
}

// Calculate computes a 0-100 relevance score for any input string. It is a
// total function: empty, whitespace-only and garbage input yield 0 rather
// than an error.
func Calculate(query string) Score {
	lower := strings.ToLower(strings.TrimSpace(query))
	words := strings.Fields(lower)

	score := Score{WordCount: len(words)}

	if lower == "" {
		return score
	}
	if isOnlySpecialChars(lower) {
		return score
	}
	if len(lower) > 3 && alphaFraction(lower) < 0.3 {
		return score
	}

	value := baselineScore

	for _, keyword := range highRelevanceKeywords {
		if strings.Contains(lower, keyword) {
			score.HighMatches++
		}
	}
	for _, keyword := range mediumRelevanceKeywords {
		if strings.Contains(lower, keyword) {
			score.MediumMatches++
		}
	}
	for _, keyword := range lowRelevanceKeywords {
		if strings.Contains(lower, keyword) {
			score.LowMatches++
		}
	}

	value += score.HighMatches * highKeywordWeight
	value += score.MediumMatches * mediumWeight
	value -= score.LowMatches * lowWeight

	// Question marks indicate inquiry
	if strings.HasSuffix(lower, "?") {
		value += 5
	}

	// Structural gibberish detection, independent of the keyword tables
	for _, word := range words {
		if len(word) > 2 && isSingleRune(word) {
			value -= 30
			break
		}
	}

	shortWords := 0
	for _, word := range words {
		if len(word) <= 2 {
			shortWords++
		}
	}
	if len(words) >= 3 && float64(shortWords) >= float64(len(words))*0.7 {
		value -= 25
	}

	noVowelWords := 0
	for _, word := range words {
		if len(word) > 3 && !strings.ContainsAny(word, "aeiou") {
			noVowelWords++
		}
	}
	if len(words) > 0 && float64(noVowelWords) > float64(len(words))*0.5 {
		value -= 30
	}

	// Single-token queries carry almost no signal
	if len(words) == 1 {
		single := words[0]
		if len(single) <= 2 {
			if _, allowed := shortWordAllowList[single]; !allowed {
				value -= 30
			}
		}
		if isAllDigits(single) || !isAlphanumeric(single) {
			value -= 40
		}
	}

	if containsAny(lower, dismissivePhrases) {
		value -= 40
	}

	slangCount := 0
	for _, word := range words {
		if _, ok := slangWords[word]; ok {
			slangCount++
		}
	}
	if len(words) > 0 && float64(slangCount)/float64(len(words)) > 0.4 {
		value -= 30
	}

	if specialCharDensity(query) > 0.3 {
		value -= 25
	}

	score.Value = clamp(value, 0, 100)
	return score
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func isOnlySpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) && !strings.ContainsRune(specialChars, r) {
			return false
		}
	}
	return true
}

func alphaFraction(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	alpha := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return float64(alpha) / float64(len([]rune(s)))
}

func specialCharDensity(s string) float64 {
	if len(s) == 0 {
		return 0
	}
	count := 0
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			count++
		}
	}
	return float64(count) / float64(len([]rune(s)))
}

func isSingleRune(word string) bool {
	runes := []rune(word)
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}

func isAllDigits(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(word) > 0
}

func isAlphanumeric(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return len(word) > 0
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
