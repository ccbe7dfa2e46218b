package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for recipe documents. Names and
// content get English stemming, usernames are split but not stemmed, and
// tags stay whole so "gluten-free" is one term.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	name := bleve.NewTextFieldMapping()
	name.Analyzer = en.AnalyzerName
	name.Store = true
	name.IncludeTermVectors = true
	doc.AddFieldMappingsAt("name", name)

	// Too large to store; searchable only.
	content := bleve.NewTextFieldMapping()
	content.Analyzer = en.AnalyzerName
	content.Store = false
	content.IncludeTermVectors = true
	doc.AddFieldMappingsAt("content", content)

	username := bleve.NewTextFieldMapping()
	username.Analyzer = simple.Name
	username.Store = true
	doc.AddFieldMappingsAt("username", username)

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = keyword.Name
	tags.Store = true
	doc.AddFieldMappingsAt("tags", tags)

	id := bleve.NewTextFieldMapping()
	id.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("id", id)

	for _, field := range []string{"created_at", "updated_at"} {
		ts := bleve.NewNumericFieldMapping()
		ts.Store = true
		doc.AddFieldMappingsAt(field, ts)
	}

	indexMapping.AddDocumentMapping("_default", doc)
	return indexMapping
}
