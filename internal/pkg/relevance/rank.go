package relevance

import (
	"sort"
	"strings"
)

const (
	DefaultTopK = 3

	phraseBonus  = 5
	keyTermBonus = 2
)

// KeyTerms earn a bonus when they appear in both the query and the chunk.
var KeyTerms = []string{"budget", "deadline", "stakeholder", "next steps", "date", "cost", "timeline"}

// ScoredChunk pairs a chunk with its lexical score for one query.
type ScoredChunk struct {
	Index int
	Text  string
	Score int
}

// Score computes the keyword overlap score of chunk against query.
func Score(chunk, query string) int {
	q := strings.ToLower(query)
	c := strings.ToLower(chunk)
	return score(c, q, wordSet(q))
}

func score(chunkLower, queryLower string, queryWords map[string]struct{}) int {
	chunkWords := wordSet(chunkLower)
	total := 0
	for w := range queryWords {
		if _, ok := chunkWords[w]; ok {
			total++
		}
	}
	if strings.Contains(chunkLower, queryLower) {
		total += phraseBonus
	}
	for _, term := range KeyTerms {
		if strings.Contains(queryLower, term) && strings.Contains(chunkLower, term) {
			total += keyTermBonus
		}
	}
	return total
}

// ScoreAll scores every chunk, sorted by descending score. Ties keep their
// original order.
func ScoreAll(chunks []string, query string) []ScoredChunk {
	q := strings.ToLower(query)
	qWords := wordSet(q)

	scored := make([]ScoredChunk, len(chunks))
	for i, chunk := range chunks {
		scored[i] = ScoredChunk{
			Index: i,
			Text:  chunk,
			Score: score(strings.ToLower(chunk), q, qWords),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// Rank returns up to topK chunks with a positive score, best first. An empty
// result means nothing in the document matched the query lexically.
func Rank(chunks []string, query string, topK int) []string {
	if topK <= 0 {
		topK = DefaultTopK
	}
	scored := ScoreAll(chunks, query)
	if len(scored) > topK {
		scored = scored[:topK]
	}

	out := make([]string, 0, len(scored))
	for _, sc := range scored {
		if sc.Score > 0 {
			out = append(out, sc.Text)
		}
	}
	return out
}

func wordSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
