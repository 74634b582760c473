package content

import (
	"context"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// FileSigner issues short-lived signed upload locations (upload target step 1)
type FileSigner interface {
	SignUpload(ctx context.Context, req content.UploadRequest) (*content.UploadDescriptor, error)
}
