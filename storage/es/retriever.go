package es

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// SearchAgreementIDs runs a BM25 query over vendor, title and file name and
// returns the matching agreement ids by score.
func (e *ESIndexer) SearchAgreementIDs(ctx context.Context, query string, topK int) ([]uuid.UUID, error) {
	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(buildQuery(query, topK)); err != nil {
		return nil, fmt.Errorf("error encoding query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  strings.NewReader(buf.String()),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("error getting response: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error response: %s", res.String())
	}
	return parseHits(res.Body)
}

func buildQuery(query string, topK int) map[string]any {
	if topK <= 0 {
		topK = 20
	}
	return map[string]any{
		"size":    topK,
		"_source": []string{"agreement_id"},
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"vendor^3", "title^2", "source_file_name"},
				"fuzziness": "AUTO",
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string `json:"_id"`
			Source struct {
				AgreementID string `json:"agreement_id"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func parseHits(body io.Reader) ([]uuid.UUID, error) {
	var resp searchResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("error parsing response body: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		raw := hit.Source.AgreementID
		if raw == "" {
			raw = hit.ID
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
