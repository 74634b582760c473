package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
)

type templateRepository struct {
	c *Client
}

func (r *templateRepository) Create(ctx context.Context, tmpl *content.Template) error {
	var saved content.Template
	if _, err := r.c.do(ctx, http.MethodPost, "/templates", nil, templateRequest(tmpl), &saved); err != nil {
		return err
	}
	*tmpl = saved
	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*content.Template, error) {
	var tmpl content.Template
	if _, err := r.c.do(ctx, http.MethodGet, "/templates/"+url.PathEscape(id), nil, nil, &tmpl); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepository) List(ctx context.Context, filter content.TemplateFilter) ([]content.Template, content.Range, error) {
	q := url.Values{}
	rangeQuery(q, filter.Range)
	if filter.Query != "" {
		q.Set("q", filter.Query)
	}

	var templates []content.Template
	header, err := r.c.do(ctx, http.MethodGet, "/templates", q, nil, &templates)
	if err != nil {
		return nil, content.Range{}, err
	}
	rng, err := parseContentRange(header)
	return templates, rng, err
}

func (r *templateRepository) Update(ctx context.Context, tmpl *content.Template) error {
	var saved content.Template
	if _, err := r.c.do(ctx, http.MethodPut, "/templates/"+url.PathEscape(tmpl.ID), nil, templateRequest(tmpl), &saved); err != nil {
		return err
	}
	*tmpl = saved
	return nil
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, "/templates/"+url.PathEscape(id), nil, nil, nil)
	return err
}

func templateRequest(tmpl *content.Template) *contentSvc.TemplateRequest {
	return &contentSvc.TemplateRequest{Name: tmpl.Name, Body: tmpl.Body}
}
