// internal/store/analysis_index.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"cost-optimizer/internal/common/database"
	stderrors "cost-optimizer/internal/common/errors"
	"cost-optimizer/internal/models"
)

// AnalysisIndex archives completed cost analyses in Elasticsearch so
// historical runs stay queryable.
type AnalysisIndex struct {
	es    *database.ElasticsearchClient
	index string
}

func NewAnalysisIndex(es *database.ElasticsearchClient, index string) *AnalysisIndex {
	return &AnalysisIndex{es: es, index: index}
}

// Save indexes one analysis document.
func (a *AnalysisIndex) Save(ctx context.Context, analysis *models.CostAnalysis) error {
	body, err := json.Marshal(analysis)
	if err != nil {
		return stderrors.NewSearchUnavailableError(err)
	}

	req := esapi.IndexRequest{
		Index: a.index,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, a.es.Client)
	if err != nil {
		return stderrors.NewSearchUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return stderrors.NewSearchUnavailableError(fmt.Errorf("index failed: %s", res.Status()))
	}
	return nil
}

// History returns the most recent analyses, newest first.
func (a *AnalysisIndex) History(ctx context.Context, limit int) ([]models.CostAnalysis, error) {
	if limit <= 0 {
		limit = 10
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []map[string]interface{}{
			{"generated_at": map[string]interface{}{"order": "desc"}},
		},
		"size": limit,
	}

	body, _ := json.Marshal(queryBody)
	req := esapi.SearchRequest{
		Index: []string{a.index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, a.es.Client)
	if err != nil {
		return nil, stderrors.NewSearchUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, stderrors.NewSearchUnavailableError(fmt.Errorf("search failed: %s", res.Status()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.CostAnalysis `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, stderrors.NewSearchUnavailableError(err)
	}

	analyses := make([]models.CostAnalysis, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		analyses = append(analyses, hit.Source)
	}
	return analyses, nil
}
