package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"agreement-radar/types"
)

// ESIndexer mirrors persisted agreements into an Elasticsearch index so they
// can be found by vendor, title or file name.
type ESIndexer struct {
	client *elasticsearch.Client
	index  string
}

// NewESIndexer 初始化 ES 客户端并确保索引存在
func NewESIndexer(ctx context.Context, addresses []string, indexName string) (*ESIndexer, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating the client: %w", err)
	}

	indexer := &ESIndexer{client: es, index: indexName}
	if err := indexer.initMapping(ctx); err != nil {
		return nil, err
	}
	return indexer, nil
}

const agreementMapping = `
{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "agreement_id":     { "type": "keyword" },
      "vendor": {
        "type": "text",
        "fields": { "keyword": { "type": "keyword" } }
      },
      "title":            { "type": "text" },
      "source_file_name": { "type": "text" },
      "effective_on":     { "type": "date", "format": "yyyy-MM-dd" },
      "end_on":           { "type": "date", "format": "yyyy-MM-dd" },
      "auto_renews":      { "type": "boolean" },
      "notice_days":      { "type": "integer" },
      "key_date_kinds":   { "type": "keyword" }
    }
  }
}`

func (e *ESIndexer) initMapping(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(agreementMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index response error: %s", res.String())
	}
	return nil
}

// IndexAgreement upserts one agreement document keyed by its id.
func (e *ESIndexer) IndexAgreement(ctx context.Context, agreement *types.Agreement, keyDates []types.KeyDate) error {
	data, err := json.Marshal(ToDocument(agreement, keyDates))
	if err != nil {
		return err
	}

	res, err := e.client.Index(
		e.index,
		bytes.NewReader(data),
		e.client.Index.WithDocumentID(agreement.ID.String()),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("ES index request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ES index response error: %s", res.String())
	}
	return nil
}

// ToDocument flattens an agreement into its index document.
func ToDocument(agreement *types.Agreement, keyDates []types.KeyDate) types.AgreementDocument {
	doc := types.AgreementDocument{
		ID:             agreement.ID.String(),
		Vendor:         agreement.Vendor,
		Title:          agreement.Title,
		SourceFileName: agreement.SourceFileName,
		AutoRenews:     agreement.AutoRenews,
		NoticeDays:     agreement.NoticeDays,
	}
	if agreement.EffectiveDate != nil {
		doc.EffectiveDate = agreement.EffectiveDate.String()
	}
	if agreement.EndDate != nil {
		doc.EndDate = agreement.EndDate.String()
	}
	for _, kd := range keyDates {
		doc.KeyDateKinds = append(doc.KeyDateKinds, string(kd.Kind))
	}
	return doc
}
