package chat

import "strings"

// Canned replies used when every model and retrieval path has failed. Pattern
// order matters: first match wins, and the final entry has no patterns so the
// lookup always produces something.

type cannedReply struct {
	patterns []string
	response string
}

var cannedReplies = []cannedReply{
	{
		patterns: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"},
		response: "Hello! I'm here to help you with your placement portal. You can ask me about your assessments, check your results, or get help navigating the portal.",
	},
	{
		patterns: []string{"how to take", "how do i take", "start assessment", "begin assessment", "attempt"},
		response: "To take an assessment, go to the Assessments page from your dashboard, pick an available assessment, and click 'Start'. Make sure you have a stable internet connection before you begin, because the timer keeps running once you start.",
	},
	{
		patterns: []string{"how to check", "where are my results", "view results", "see my results", "my score"},
		response: "You can view your results on the Results page from your dashboard. Each completed assessment shows your score, the pass mark, and whether you passed. Results appear as soon as your assessment is evaluated.",
	},
	{
		patterns: []string{"rules", "guidelines", "allowed", "malpractice", "cheating"},
		response: "Assessment rules: each assessment can be attempted only once, the timer cannot be paused, and switching tabs or windows may be flagged. Keep your session open until you submit.",
	},
	{
		patterns: []string{"help", "support", "stuck", "problem", "issue", "not working"},
		response: "I can help with assessments, results, and your profile. If something on the portal is not working, try refreshing the page first. For account issues, contact your placement cell through the Support page.",
	},
	{
		// catch-all
		response: "I'm here to help with your placement portal. You can ask me things like 'What assessments are available?', 'Show my results', or 'How do I prepare?'.",
	},
}

// HardcodedReply returns the canned response for a query. It never fails.
func HardcodedReply(query string) string {
	lower := strings.ToLower(query)
	for _, canned := range cannedReplies {
		if len(canned.patterns) == 0 {
			return canned.response
		}
		for _, p := range canned.patterns {
			if strings.Contains(lower, p) {
				return canned.response
			}
		}
	}
	return cannedReplies[len(cannedReplies)-1].response
}
