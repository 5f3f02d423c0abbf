// Package indexstore persists entries and serves full-text queries (C1).
//
// Two engines back a single logical store: a row store in SQLite
// (modernc.org/sqlite, pure Go, WAL journal mode by default) holding entry
// metadata and raw content; and an inverted text index in Bleve
// (blevesearch/bleve/v2) holding the weighted title/content/tags/category
// postings that BM25 scoring and the simple/phrase/boolean/fuzzy query
// language run against, plus the keyword fields that filters and facets
// are evaluated on. A write goes to both; a query goes to Bleve for
// candidate scoring, filter predicates and facets, and to SQLite for the
// row data itself (and for Count when no filter is given).
package indexstore
