package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
)

// EmailIndexMapping is applied when the audit index is created.
const EmailIndexMapping = `{
  "mappings": {
    "properties": {
      "id":      {"type": "keyword"},
      "to":      {"type": "keyword"},
      "subject": {"type": "text"},
      "message": {"type": "text"},
      "sentAt":  {"type": "date"}
    }
  }
}`

type EmailAuditor interface {
	Record(ctx context.Context, email Email) error
}

// ElasticsearchAudit indexes every sent email as a document keyed by its ID.
type ElasticsearchAudit struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchAudit(client *elasticsearch.Client, index string) *ElasticsearchAudit {
	return &ElasticsearchAudit{client: client, index: index}
}

func (a *ElasticsearchAudit) Record(ctx context.Context, email Email) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("encode email record: %w", err)
	}

	res, err := a.client.Index(a.index, bytes.NewReader(body),
		a.client.Index.WithContext(ctx),
		a.client.Index.WithDocumentID(email.ID),
	)
	if err != nil {
		return fmt.Errorf("index email record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index email record: %s", res.Status())
	}
	return nil
}
