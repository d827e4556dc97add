package knowledge

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/placement-portal/campus-assist/internal/models"
)

// Service wraps the vector search client with the failure policy the chat
// pipeline wants: retrieval problems degrade to an empty document set
// instead of failing the whole query.
type Service struct {
	client *Client
	logger *logrus.Logger
}

func NewService(client *Client, logger *logrus.Logger) *Service {
	return &Service{
		client: client,
		logger: logger,
	}
}

// Search returns the top matching knowledge snippets for a query. On any
// retrieval error it logs and returns an empty slice.
func (s *Service) Search(ctx context.Context, query string, topK int) []models.RetrievedDocument {
	response, err := s.client.Search(ctx, SearchRequest{Query: query, TopK: topK})
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"query": query,
			"error": err.Error(),
		}).Warn("Knowledge search failed, continuing without documents")
		return nil
	}

	docs := make([]models.RetrievedDocument, 0, len(response.Results))
	for _, result := range response.Results {
		if result.Text == "" {
			continue
		}
		docs = append(docs, models.RetrievedDocument{
			Text:   result.Text,
			Source: result.Source,
			Score:  result.Score,
		})
	}
	return docs
}

// IndexSnippet submits one snippet for indexing, with retries. Used by the
// seeding job.
func (s *Service) IndexSnippet(ctx context.Context, text, source string, metadata map[string]interface{}) error {
	req := IndexRequest{
		Documents: []Document{{
			Text:     text,
			Source:   source,
			Metadata: metadata,
		}},
	}

	response, err := s.client.IndexDocumentsWithRetry(ctx, req)
	if err != nil {
		return err
	}
	if response.Indexed == 0 {
		return fmt.Errorf("vector service accepted 0 of 1 documents for %s", source)
	}
	return nil
}
