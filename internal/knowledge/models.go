package knowledge

// SearchRequest is the query body for the vector search endpoint.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchResult is one scored match returned by the vector search endpoint.
type SearchResult struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// SearchResponse is the response body for the vector search endpoint.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// Document is one snippet submitted for indexing.
type Document struct {
	Text     string                 `json:"text"`
	Source   string                 `json:"source"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// IndexRequest is the body for the indexing endpoint.
type IndexRequest struct {
	Documents []Document `json:"documents"`
}

// IndexResponse reports how many documents the service accepted.
type IndexResponse struct {
	Indexed int `json:"indexed"`
}
