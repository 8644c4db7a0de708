package model

// DocumentQuery holds the filter parameters for a document list call.
// Zero-value string fields are omitted from the outbound query.
type DocumentQuery struct {
	Owner   int
	Page    int
	Limit   int
	DocType string
	// DateFrom and DateTo filter on document creation date (YYYY-MM-DD).
	DateFrom string
	DateTo   string
	Partner  string
}
