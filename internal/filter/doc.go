// Package filter implements the faceted property search engine: predicate
// evaluation over property records and ordered batch search.
//
// Search is a single linear pass over the supplied records with no index.
// That fits collections of a few thousand records; larger stores should
// pre-filter before calling Search.
package filter
