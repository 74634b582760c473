package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
)

type documentRepository struct {
	c *Client
}

func documentsPath(classID string) string {
	return "/classes/" + url.PathEscape(classID) + "/documents"
}

func (r *documentRepository) Create(ctx context.Context, doc *content.Document) error {
	var saved content.Document
	if _, err := r.c.do(ctx, http.MethodPost, documentsPath(doc.ClassID), nil, documentRequest(doc), &saved); err != nil {
		return err
	}
	*doc = saved
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, classID, id string) (*content.Document, error) {
	var doc content.Document
	if _, err := r.c.do(ctx, http.MethodGet, documentsPath(classID)+"/"+url.PathEscape(id), nil, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) GetByPath(ctx context.Context, path string) (*content.Document, error) {
	var doc content.Document
	if _, err := r.c.do(ctx, http.MethodGet, "/documents", url.Values{"path": {path}}, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context, filter content.DocumentFilter) ([]content.Document, content.Range, error) {
	q := url.Values{}
	rangeQuery(q, filter.Range)
	if filter.Sort.Field != "" {
		direction := "ASC"
		if !filter.Sort.Ascending() {
			direction = "DESC"
		}
		sort, _ := json.Marshal([]string{filter.Sort.Field, direction})
		q.Set("sort", string(sort))
	}
	if filter.ParentID != "" {
		q.Set("parent_id", filter.ParentID)
	}
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}
	for _, id := range filter.IDs {
		q.Add("id", id)
	}

	var docs []content.Document
	header, err := r.c.do(ctx, http.MethodGet, documentsPath(filter.ClassID), q, nil, &docs)
	if err != nil {
		return nil, content.Range{}, err
	}
	rng, err := parseContentRange(header)
	return docs, rng, err
}

func (r *documentRepository) Update(ctx context.Context, doc *content.Document) error {
	var saved content.Document
	if _, err := r.c.do(ctx, http.MethodPut, documentsPath(doc.ClassID)+"/"+url.PathEscape(doc.ID), nil, documentRequest(doc), &saved); err != nil {
		return err
	}
	*doc = saved
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, classID, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, documentsPath(classID)+"/"+url.PathEscape(id), nil, nil, nil)
	return err
}

func documentRequest(doc *content.Document) *contentSvc.DocumentRequest {
	return &contentSvc.DocumentRequest{
		ParentID:   doc.ParentID,
		TemplateID: doc.TemplateID,
		Path:       doc.Path,
		Values:     doc.Values,
	}
}
