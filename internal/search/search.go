// Package search finds blocks by fuzzy text match.
package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tessella-notes/tessella/internal/model"
)

// Match is one search hit.
type Match struct {
	ID      string
	Content string
	// Rank orders hits; lower is better.
	Rank int
}

// Find returns blocks whose content fuzzy-matches the query, best hits
// first. An empty query matches nothing.
func Find(blocks []*model.Block, query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var matches []Match
	model.Walk(blocks, func(b *model.Block) bool {
		if b.Content == "" {
			return true
		}
		if rank := fuzzy.RankMatchFold(query, b.Content); rank >= 0 {
			matches = append(matches, Match{ID: b.ID, Content: b.Content, Rank: rank})
		}
		return true
	})
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Rank < matches[j].Rank
	})
	return matches
}
