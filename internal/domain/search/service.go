// Package search holds the value types shared by the search classifiers,
// the provider clients and the aggregator.
package search

// ServiceType is the category of content a query is routed to.
type ServiceType string

// Service types understood by the classifier.
const (
	Blog        ServiceType = "BLOG"
	News        ServiceType = "NEWS"
	Book        ServiceType = "BOOK"
	Encyc       ServiceType = "ENCYC"
	CafeArticle ServiceType = "CAFEARTICLE"
	WebKR       ServiceType = "WEBKR"
	Shop        ServiceType = "SHOP"
	Doc         ServiceType = "DOC"
)

var descriptions = map[ServiceType]string{
	Blog:        "Blog posts",
	News:        "News articles",
	Book:        "Books",
	Encyc:       "Encyclopedia entries",
	CafeArticle: "Cafe posts",
	WebKR:       "Web documents",
	Shop:        "Shopping items",
	Doc:         "Professional documents",
}

// ServiceTypes returns the service types in the order they are offered to the model.
func ServiceTypes() []ServiceType {
	return []ServiceType{Blog, News, Book, Encyc, CafeArticle, WebKR, Shop, Doc}
}

// IsValid checks if t is one of the supported values.
func (t ServiceType) IsValid() bool {
	_, ok := descriptions[t]
	return ok
}

// Description returns the human readable label, or "" for unknown types.
func (t ServiceType) Description() string {
	return descriptions[t]
}

// SortOrder selects how providers rank results.
type SortOrder string

// Sort orders returned by the sorting classifier.
const (
	Latest     SortOrder = "LATEST"
	Similarity SortOrder = "SIMILARITY"
)

// Request is a single provider query after classification and rewriting.
type Request struct {
	Query       string
	ServiceType ServiceType
	Sort        SortOrder
}
