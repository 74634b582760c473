package rest

import (
	"context"
	"net/http"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

type fileSigner struct {
	c *Client
}

// SignUpload asks the gateway for a signed upload location
func (s *fileSigner) SignUpload(ctx context.Context, req content.UploadRequest) (*content.UploadDescriptor, error) {
	var desc content.UploadDescriptor
	if _, err := s.c.do(ctx, http.MethodPost, "/files/url", nil, req, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}
