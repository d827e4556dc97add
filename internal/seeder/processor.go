// backend/internal/seeder/processor.go
package seeder

import (
	"regexp"
	"strings"
)

// ContentProcessor prepares knowledge snippets for indexing: assessment
// descriptions written by placement staff tend to carry HTML fragments and
// markdown leftovers, and long help articles need chunking before they go
// into the vector store.
type ContentProcessor struct {
	multiWhitespace *regexp.Regexp
	htmlTags        *regexp.Regexp
	markdownLinks   *regexp.Regexp
}

func NewContentProcessor() *ContentProcessor {
	return &ContentProcessor{
		multiWhitespace: regexp.MustCompile(`[ \t]+`),
		htmlTags:        regexp.MustCompile(`<[^>]*>`),
		markdownLinks:   regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`),
	}
}

// CleanContent strips markup and normalizes whitespace
func (cp *ContentProcessor) CleanContent(content string) string {
	content = cp.htmlTags.ReplaceAllString(content, "")

	// Keep the display text of markdown links
	content = cp.markdownLinks.ReplaceAllString(content, "$1")

	content = cp.multiWhitespace.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	var cleaned []string
	emptyLines := 0

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			emptyLines++
			if emptyLines <= 1 {
				cleaned = append(cleaned, "")
			}
		} else {
			emptyLines = 0
			cleaned = append(cleaned, line)
		}
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// SplitIntoChunks splits content into smaller chunks for better search
func (cp *ContentProcessor) SplitIntoChunks(content string, maxChunkSize int) []string {
	if len(content) <= maxChunkSize {
		return []string{content}
	}

	paragraphs := strings.Split(content, "\n\n")
	var chunks []string
	var currentChunk strings.Builder

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		if currentChunk.Len() > 0 && currentChunk.Len()+len(paragraph)+2 > maxChunkSize {
			chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
			currentChunk.Reset()
		}

		if currentChunk.Len() > 0 {
			currentChunk.WriteString("\n\n")
		}
		currentChunk.WriteString(paragraph)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
	}

	// A single paragraph over the limit falls back to sentence splitting
	var finalChunks []string
	for _, chunk := range chunks {
		if len(chunk) <= maxChunkSize {
			finalChunks = append(finalChunks, chunk)
		} else {
			finalChunks = append(finalChunks, cp.splitBySentences(chunk, maxChunkSize)...)
		}
	}

	return finalChunks
}

func (cp *ContentProcessor) splitBySentences(text string, maxSize int) []string {
	sentences := regexp.MustCompile(`[.!?]+\s+`).Split(text, -1)
	var chunks []string
	var currentChunk strings.Builder

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		if currentChunk.Len() > 0 && currentChunk.Len()+len(sentence)+2 > maxSize {
			chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
			currentChunk.Reset()
		}

		if currentChunk.Len() > 0 {
			currentChunk.WriteString(". ")
		}
		currentChunk.WriteString(sentence)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(currentChunk.String()))
	}

	return chunks
}

// ExtractMetaTags derives indexing metadata from snippet content
func (cp *ContentProcessor) ExtractMetaTags(content string) map[string]string {
	meta := make(map[string]string)
	contentLower := strings.ToLower(content)

	switch {
	case strings.Contains(contentLower, "result") || strings.Contains(contentLower, "score"):
		meta["category"] = "results"
	case strings.Contains(contentLower, "prepar") || strings.Contains(contentLower, "practice"):
		meta["category"] = "preparation"
	case strings.Contains(contentLower, "assessment") || strings.Contains(contentLower, "test") || strings.Contains(contentLower, "exam"):
		meta["category"] = "assessments"
	case strings.Contains(contentLower, "profile") || strings.Contains(contentLower, "account"):
		meta["category"] = "profile"
	default:
		meta["category"] = "general"
	}

	topics := []string{"aptitude", "coding", "reasoning", "verbal", "technical", "interview", "resume"}
	for _, topic := range topics {
		if strings.Contains(contentLower, topic) {
			meta["topic"] = topic
			break
		}
	}

	return meta
}
