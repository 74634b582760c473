package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
)

type classRepository struct {
	c *Client
}

func (r *classRepository) Create(ctx context.Context, class *content.Class) error {
	var saved content.Class
	if _, err := r.c.do(ctx, http.MethodPost, "/classes", nil, classRequest(class), &saved); err != nil {
		return err
	}
	*class = saved
	return nil
}

func (r *classRepository) GetByID(ctx context.Context, id string) (*content.Class, error) {
	var class content.Class
	if _, err := r.c.do(ctx, http.MethodGet, "/classes/"+url.PathEscape(id), nil, nil, &class); err != nil {
		return nil, err
	}
	return &class, nil
}

func (r *classRepository) List(ctx context.Context, filter content.ClassFilter) ([]content.Class, content.Range, error) {
	q := url.Values{}
	rangeQuery(q, filter.Range)
	if filter.ParentID != nil {
		q.Set("parent_id", *filter.ParentID)
	}

	var classes []content.Class
	header, err := r.c.do(ctx, http.MethodGet, "/classes", q, nil, &classes)
	if err != nil {
		return nil, content.Range{}, err
	}
	rng, err := parseContentRange(header)
	return classes, rng, err
}

func (r *classRepository) Update(ctx context.Context, class *content.Class) error {
	var saved content.Class
	if _, err := r.c.do(ctx, http.MethodPut, "/classes/"+url.PathEscape(class.ID), nil, classRequest(class), &saved); err != nil {
		return err
	}
	*class = saved
	return nil
}

func (r *classRepository) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, "/classes/"+url.PathEscape(id), nil, nil, nil)
	return err
}

func classRequest(class *content.Class) *contentSvc.ClassRequest {
	return &contentSvc.ClassRequest{
		ParentID: class.ParentID,
		Name:     class.Name,
		Fields:   class.Fields,
	}
}
