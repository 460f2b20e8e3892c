package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"influencer-scout-be/pkg/llm"
)

const extractionPrompt = `You are an expert in identifying keywords for influencer discovery through web scraping. Your job is to analyze the provided text and extract unique keywords or phrases that can be effectively used to scrape data from websites.

Focus on terms that are:
- Highly relevant to influencer profiles, such as names, niches, platforms, hashtags, or specific identifiers mentioned in the text.
- Include any mentioned age or age range explicitly as a keyword (e.g., "20-25 years").
- Unique, avoiding duplicate or similar keywords. For example, if "UK" is already included, exclude phrases like "The UK" or "UK influencers."

TEXT: %s

Output format (JSON):
{
    "keywords": ["keyword1", "keyword2", "keyword3", ...]
}

CRITICAL: Ensure the following:
1. Include any age or age range exactly as mentioned in the text.
2. Do not include redundant or overlapping phrases (e.g., exclude geographic locations if occurring multiple times).
3. The extracted keywords should be concise, highly relevant, and non-redundant.
4. Prioritize unique and actionable terms suitable for web scraping.`

// Extractor turns a qualification summary into search terms via a
// strict-JSON completion call.
type Extractor struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewExtractor(llmProvider llm.LLMProvider, logger *log.Logger) *Extractor {
	return &Extractor{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

type keywordResponse struct {
	Keywords []string `json:"keywords"`
}

// Extract returns the deduplicated keyword set for a summary. A failed
// model call or unparseable reply yields an empty set and a nil error:
// "no keywords" is a recoverable outcome, not a fault. No retry is made.
func (e *Extractor) Extract(ctx context.Context, summary string) []string {
	prompt := fmt.Sprintf(extractionPrompt, summary)

	response, err := e.llmProvider.Generate(ctx, prompt,
		llm.WithJSONResponse(),
		llm.WithTemperature(0.0),
	)
	if err != nil {
		e.logger.Printf("[KEYWORDS] Extraction call failed: %v", err)
		return nil
	}

	parsed, err := parseKeywords(response)
	if err != nil {
		e.logger.Printf("[KEYWORDS] Failed to parse JSON response: %v", err)
		return nil
	}

	deduped := Dedupe(parsed)
	e.logger.Printf("[KEYWORDS] Extracted %d keywords (%d after dedupe)", len(parsed), len(deduped))
	return deduped
}

// parseKeywords accepts the reply as-is or with prose around the JSON
// object; models in JSON mode still occasionally wrap the payload.
func parseKeywords(response string) ([]string, error) {
	raw := strings.TrimSpace(response)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var kr keywordResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &kr); err != nil {
		return nil, err
	}
	return kr.Keywords, nil
}

// Dedupe drops blanks, exact repeats, and textual superset/subset pairs:
// when one keyword contains another case-insensitively on a word boundary
// ("UK" vs "UK influencers"), only the shorter survives. Order of first
// appearance is preserved.
func Dedupe(terms []string) []string {
	var cleaned []string
	seen := make(map[string]struct{})
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, t)
	}

	var out []string
	for i, t := range cleaned {
		redundant := false
		for j, other := range cleaned {
			if i == j {
				continue
			}
			// t is redundant if some other keyword is wholly contained in it
			// and shorter, or an equal-length earlier duplicate would have
			// been caught above.
			if len(other) < len(t) && containsWord(t, other) {
				redundant = true
				break
			}
		}
		if !redundant {
			out = append(out, t)
		}
	}
	return out
}

// containsWord reports whether needle occurs in haystack as a whole word,
// case-insensitively.
func containsWord(haystack, needle string) bool {
	h := strings.ToLower(haystack)
	n := strings.ToLower(needle)
	idx := 0
	for {
		pos := strings.Index(h[idx:], n)
		if pos < 0 {
			return false
		}
		pos += idx
		beforeOK := pos == 0 || !isWordChar(h[pos-1])
		afterOK := pos+len(n) == len(h) || !isWordChar(h[pos+len(n)])
		if beforeOK && afterOK {
			return true
		}
		idx = pos + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '-'
}
