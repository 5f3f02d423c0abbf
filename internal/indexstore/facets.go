package indexstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search"
)

const facetTopN = 20

// facetFields maps the FacetSet families to the keyword-mapped Bleve
// fields they're computed over.
var facetFields = []struct {
	name  string
	field string
}{
	{"types", "type"},
	{"categories", "category_facet"},
	{"tags", "tags_facet"},
	{"projects", "project_id"},
	{"agents", "agent_types"},
	{"languages", "language"},
}

// Facets computes facet counts over the candidate set matched by text/
// queryType/filter, using Bleve's native facet aggregation (spec §4.1:
// facets reflect the filtered candidate set, not the unfiltered corpus).
func (s *Store) Facets(ctx context.Context, text string, queryType QueryType, filter Filter) (*FacetSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, err := buildQuery(text, queryType, filter)
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(q, 0, 0, false)
	for _, ff := range facetFields {
		fr := bleve.NewFacetRequest(ff.field, facetTopN)
		req.AddFacet(ff.name, fr)
	}

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute facets: %w", err)
	}

	selected := selectedValues(filter)

	fs := &FacetSet{}
	fs.Types = facetCounts(result.Facets["types"], selected["types"])
	fs.Categories = facetCounts(result.Facets["categories"], selected["categories"])
	fs.Tags = facetCounts(result.Facets["tags"], selected["tags"])
	fs.Projects = facetCounts(result.Facets["projects"], selected["projects"])
	fs.Agents = facetCounts(result.Facets["agents"], selected["agents"])
	fs.Languages = facetCounts(result.Facets["languages"], selected["languages"])

	return fs, nil
}

func selectedValues(f Filter) map[string]map[string]bool {
	sel := map[string]map[string]bool{
		"types": {}, "categories": {}, "tags": {}, "projects": {}, "agents": {}, "languages": {},
	}
	if f.Type != "" {
		sel["types"][strings.ToLower(string(f.Type))] = true
	}
	if f.Category != "" {
		sel["categories"][strings.ToLower(f.Category)] = true
	}
	for _, t := range f.Tags {
		sel["tags"][strings.ToLower(t)] = true
	}
	if f.ProjectID != "" {
		sel["projects"][strings.ToLower(f.ProjectID)] = true
	}
	for _, a := range f.AgentTypes {
		sel["agents"][strings.ToLower(a)] = true
	}
	return sel
}

func facetCounts(fr *search.FacetResult, selected map[string]bool) []FacetCount {
	if fr == nil {
		return nil
	}
	out := make([]FacetCount, 0, len(fr.Terms.Terms()))
	for _, t := range fr.Terms.Terms() {
		out = append(out, FacetCount{
			Value:    t.Term,
			Count:    t.Count,
			Selected: selected[t.Term],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// matchedFieldsFromLocations collapses a hit's term-location map into the
// distinct field names it matched in, for C2's relevance-factor
// computation (titleMatch/contentMatch/tagMatch/categoryMatch).
func matchedFieldsFromLocations(locations search.FieldTermLocationMap) []string {
	if len(locations) == 0 {
		return nil
	}
	fields := make([]string, 0, len(locations))
	for field := range locations {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}
