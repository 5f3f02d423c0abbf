package indexstore

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	bq "github.com/blevesearch/bleve/v2/search/query"

	kferrors "github.com/kestrel-labs/knowledgeforge/internal/errors"
)

// weightedFields returns the field/weight pairs a textual query is expanded
// across, in the order they're combined (spec §4.1: title 3.0, content 1.0,
// tags 2.0, category 1.5).
var weightedFields = []struct {
	Field  string
	Weight float64
}{
	{FieldTitle, DefaultFieldWeights[FieldTitle]},
	{FieldContent, DefaultFieldWeights[FieldContent]},
	{FieldTags, DefaultFieldWeights[FieldTags]},
	{FieldCategory, DefaultFieldWeights[FieldCategory]},
}

// buildQuery compiles a query string under queryType into a Bleve query,
// combined with the filter predicates. An empty query string combined with
// queryType=simple and no filters is rejected by the caller before this is
// reached; a filters-only search (empty text) is legal.
func buildQuery(text string, queryType QueryType, filter Filter) (bq.Query, error) {
	text = strings.TrimSpace(text)

	var textQuery bq.Query
	var err error

	switch queryType {
	case "", QueryTypeSimple:
		textQuery = buildSimpleQuery(text)
	case QueryTypePhrase:
		textQuery, err = buildPhraseQuery(text)
	case QueryTypeBoolean:
		textQuery, err = buildBooleanQuery(text)
	case QueryTypeFuzzy:
		textQuery = buildFuzzyQuery(text)
	default:
		return nil, kferrors.InvalidQuery(kferrors.ErrCodeUnknownQueryType, fmt.Sprintf("unknown query type %q", queryType))
	}
	if err != nil {
		return nil, err
	}

	filterQuery := buildFilterQuery(filter)

	if textQuery == nil && filterQuery == nil {
		return bleve.NewMatchNoneQuery(), nil
	}
	if textQuery == nil {
		return filterQuery, nil
	}
	if filterQuery == nil {
		return textQuery, nil
	}

	conj := bleve.NewConjunctionQuery(textQuery, filterQuery)
	return conj, nil
}

// buildSimpleQuery ANDs the query's relevance (not its membership): every
// weighted field gets a disjunction-of-terms match, so documents containing
// more of the query's words score higher without requiring every word to
// be present.
func buildSimpleQuery(text string) bq.Query {
	if text == "" {
		return nil
	}
	disj := bleve.NewDisjunctionQuery()
	for _, wf := range weightedFields {
		mq := bleve.NewMatchQuery(text)
		mq.SetField(wf.Field)
		mq.SetBoost(wf.Weight)
		disj.AddQuery(mq)
	}
	return disj
}

// buildPhraseQuery requires the exact, adjacent word sequence. Surrounding
// quotes are stripped if present.
func buildPhraseQuery(text string) (bq.Query, error) {
	text = strings.Trim(text, `"`)
	if text == "" {
		return nil, kferrors.InvalidQuery(kferrors.ErrCodeQueryEmpty, "phrase query is empty")
	}
	disj := bleve.NewDisjunctionQuery()
	for _, wf := range weightedFields {
		pq := bleve.NewMatchPhraseQuery(text)
		pq.SetField(wf.Field)
		pq.SetBoost(wf.Weight)
		disj.AddQuery(pq)
	}
	return disj, nil
}

// buildFuzzyQuery matches terms within edit distance ceil(len/4) (min 1),
// clamped to Bleve's native maximum fuzziness of 2 (Open Question #1).
func buildFuzzyQuery(text string) bq.Query {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	disj := bleve.NewDisjunctionQuery()
	for _, w := range words {
		fuzziness := fuzzyDistance(w)
		for _, wf := range weightedFields {
			fq := bleve.NewFuzzyQuery(w)
			fq.SetField(wf.Field)
			fq.SetFuzziness(fuzziness)
			fq.SetBoost(wf.Weight)
			disj.AddQuery(fq)
		}
	}
	return disj
}

func fuzzyDistance(word string) int {
	n := len([]rune(word))
	d := int(math.Ceil(float64(n) / 4.0))
	if d < 1 {
		d = 1
	}
	if d > 2 {
		slog.Debug("fuzzy distance clamped to bleve maximum",
			slog.String("word", word), slog.Int("requested", d))
		d = 2
	}
	return d
}

// buildFilterQuery ANDs the structured filter predicates: exact-term
// matches on the keyword-mapped facet fields plus a date range on
// last_modified. Filters restrict the candidate set; they never
// contribute to score.
func buildFilterQuery(f Filter) bq.Query {
	conj := bleve.NewConjunctionQuery()
	any := false

	if f.Type != "" {
		conj.AddQuery(termQuery("type", string(f.Type)))
		any = true
	}
	if f.Category != "" {
		conj.AddQuery(termQuery("category_facet", f.Category))
		any = true
	}
	for _, tag := range f.Tags {
		conj.AddQuery(termQuery("tags_facet", tag))
		any = true
	}
	if f.ProjectID != "" {
		conj.AddQuery(termQuery("project_id", f.ProjectID))
		any = true
	}
	for _, at := range f.AgentTypes {
		conj.AddQuery(termQuery("agent_types", at))
		any = true
	}
	if !f.Since.IsZero() || !f.Until.IsZero() {
		dr := bleve.NewDateRangeQuery(f.Since, f.Until)
		dr.SetField("last_modified")
		conj.AddQuery(dr)
		any = true
	}

	if !any {
		return nil
	}
	return conj
}

func termQuery(field, term string) *bq.TermQuery {
	tq := bleve.NewTermQuery(strings.ToLower(term))
	tq.SetField(field)
	return tq
}

// --- boolean query language -------------------------------------------
//
// Grammar (precedence NOT > AND > OR, per spec §4.1):
//
//	expr   := orExpr
//	orExpr := andExpr ( "OR" andExpr )*
//	andExpr:= notExpr ( "AND" notExpr )*
//	notExpr:= "NOT" notExpr | primary
//	primary:= "(" expr ")" | WORD

type boolToken struct {
	kind string // "AND", "OR", "NOT", "LPAREN", "RPAREN", "WORD"
	text string
}

func tokenizeBoolean(s string) []boolToken {
	var tokens []boolToken
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		word := cur.String()
		switch strings.ToUpper(word) {
		case "AND":
			tokens = append(tokens, boolToken{kind: "AND"})
		case "OR":
			tokens = append(tokens, boolToken{kind: "OR"})
		case "NOT":
			tokens = append(tokens, boolToken{kind: "NOT"})
		default:
			tokens = append(tokens, boolToken{kind: "WORD", text: word})
		}
		cur.Reset()
	}
	for _, r := range s {
		switch {
		case r == '(':
			flush()
			tokens = append(tokens, boolToken{kind: "LPAREN"})
		case r == ')':
			flush()
			tokens = append(tokens, boolToken{kind: "RPAREN"})
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

type boolParser struct {
	tokens []boolToken
	pos    int
}

func (p *boolParser) peek() (boolToken, bool) {
	if p.pos >= len(p.tokens) {
		return boolToken{}, false
	}
	return p.tokens[p.pos], true
}

func (p *boolParser) next() (boolToken, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *boolParser) parseExpr() (bq.Query, error) {
	return p.parseOr()
}

func (p *boolParser) parseOr() (bq.Query, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	terms := []bq.Query{left}
	for {
		t, ok := p.peek()
		if !ok || t.kind != "OR" {
			break
		}
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return bleve.NewDisjunctionQuery(terms...), nil
}

func (p *boolParser) parseAnd() (bq.Query, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	terms := []bq.Query{left}
	for {
		t, ok := p.peek()
		if !ok || t.kind != "AND" {
			break
		}
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		terms = append(terms, right)
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return bleve.NewConjunctionQuery(terms...), nil
}

func (p *boolParser) parseNot() (bq.Query, error) {
	t, ok := p.peek()
	if ok && t.kind == "NOT" {
		p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		must := bleve.NewMatchAllQuery()
		bq := bleve.NewBooleanQuery()
		bq.AddMust(must)
		bq.AddMustNot(inner)
		return bq, nil
	}
	return p.parsePrimary()
}

func (p *boolParser) parsePrimary() (bq.Query, error) {
	t, ok := p.next()
	if !ok {
		return nil, kferrors.InvalidQuery(kferrors.ErrCodeBadBooleanSyn, "unexpected end of boolean query")
	}
	switch t.kind {
	case "LPAREN":
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.next()
		if !ok || closing.kind != "RPAREN" {
			return nil, kferrors.InvalidQuery(kferrors.ErrCodeBadBooleanSyn, "missing closing parenthesis")
		}
		return inner, nil
	case "WORD":
		return buildSimpleQuery(t.text), nil
	default:
		return nil, kferrors.InvalidQuery(kferrors.ErrCodeBadBooleanSyn, fmt.Sprintf("unexpected token %q", t.kind))
	}
}

func buildBooleanQuery(text string) (bq.Query, error) {
	tokens := tokenizeBoolean(text)
	if len(tokens) == 0 {
		return nil, kferrors.InvalidQuery(kferrors.ErrCodeQueryEmpty, "boolean query is empty")
	}
	p := &boolParser{tokens: tokens}
	q, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		extra, _ := p.peek()
		return nil, kferrors.InvalidQuery(kferrors.ErrCodeBadBooleanSyn, fmt.Sprintf("unexpected trailing token %q", extra.kind))
	}
	return q, nil
}

// cacheKeyParts renders a filter into a stable string for C2's cache key
// computation, keeping the field order deterministic.
func cacheKeyParts(f Filter) string {
	var b strings.Builder
	b.WriteString(string(f.Type))
	b.WriteByte('|')
	b.WriteString(f.Category)
	b.WriteByte('|')
	b.WriteString(strings.Join(f.Tags, ","))
	b.WriteByte('|')
	b.WriteString(f.ProjectID)
	b.WriteByte('|')
	b.WriteString(strings.Join(f.AgentTypes, ","))
	b.WriteByte('|')
	if !f.Since.IsZero() {
		b.WriteString(strconv.FormatInt(f.Since.Unix(), 10))
	}
	b.WriteByte('|')
	if !f.Until.IsZero() {
		b.WriteString(strconv.FormatInt(f.Until.Unix(), 10))
	}
	return b.String()
}
