package models

// ResultsPage is one page of a range query.
type ResultsPage[T any, K any] struct {
	// Items are ordered ascending by sort key.
	Items []T
	// LastEvaluatedKey is the continuation token for the next page, nil on the last page.
	LastEvaluatedKey *K
}

// HasMore reports whether another page can be requested.
func (p *ResultsPage[T, K]) HasMore() bool {
	return p.LastEvaluatedKey != nil
}
