package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Suggestion limits.
const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50
)

// SuggestParams configures a suggestion query.
type SuggestParams struct {
	Query string
	Tags  []string // Restrict to recipes carrying any of these tags
	Limit int

	IncludeFacets bool // Count matching tags
}

// SuggestResult holds ranked recipe suggestions.
type SuggestResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SuggestHit `json:"hits"`
	Tags   []FacetCount `json:"tags,omitempty"`
}

// SuggestHit is one ranked recipe.
type SuggestHit struct {
	RecipeID   int64             `json:"recipe_id"`
	Name       string            `json:"name"`
	Username   string            `json:"username"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// FacetCount is a tag and how many matching recipes carry it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Suggest ranks recipes against free text. Name matches weigh most, then
// content, with a fuzzy name match for typos and a prefix match for
// type-ahead. A blank query returns no hits.
func (s *RecipeIndex) Suggest(ctx context.Context, params SuggestParams) (*SuggestResult, error) {
	q := strings.TrimSpace(params.Query)
	result := &SuggestResult{Query: q, Hits: []SuggestHit{}}
	if q == "" {
		return result, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}
	limit = min(limit, MaxSuggestLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSuggestQuery(q, params.Tags), limit, 0, false)
	req.SortBy([]string{"-_score", "name"})
	req.Fields = []string{"name", "username"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("name")
	req.Highlight.AddField("content")
	if params.IncludeFacets {
		req.AddFacet("tags", bleve.NewFacetRequest("tags", 20))
	}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute suggest: %w", err)
	}

	result.Total = res.Total
	result.TookMs = res.Took.Milliseconds()

	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping search hit with foreign id", "id", hit.ID)
			continue
		}
		h := SuggestHit{RecipeID: id, Score: hit.Score}
		if n, ok := hit.Fields["name"].(string); ok {
			h.Name = n
		}
		if u, ok := hit.Fields["username"].(string); ok {
			h.Username = u
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	if facet, ok := res.Facets["tags"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Tags = append(result.Tags, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

func buildSuggestQuery(text string, tags []string) query.Query {
	nameMatch := bleve.NewMatchQuery(text)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	contentMatch := bleve.NewMatchQuery(text)
	contentMatch.SetField("content")

	fuzzy := bleve.NewMatchQuery(text)
	fuzzy.SetField("name")
	fuzzy.SetFuzziness(1)
	fuzzy.SetBoost(0.8)

	textQueries := []query.Query{nameMatch, contentMatch, fuzzy}
	if len(text) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("name")
		prefix.SetBoost(0.5)
		textQueries = append(textQueries, prefix)
	}

	textQuery := bleve.NewDisjunctionQuery(textQueries...)
	if len(tags) == 0 {
		return textQuery
	}

	tagQueries := make([]query.Query, len(tags))
	for i, tag := range tags {
		tq := bleve.NewTermQuery(tag)
		tq.SetField("tags")
		tagQueries[i] = tq
	}
	return bleve.NewConjunctionQuery(textQuery, bleve.NewDisjunctionQuery(tagQueries...))
}
