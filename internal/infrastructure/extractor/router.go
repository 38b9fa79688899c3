// Package extractor routes uploads to a text extractor by mime type.
package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/hrdocs-compliance/internal/core/domain"
	"github.com/kirillkom/hrdocs-compliance/internal/core/ports"
)

type Router struct {
	byMime map[string]ports.TextExtractor
}

func NewRouter() *Router {
	return &Router{byMime: make(map[string]ports.TextExtractor)}
}

// Register binds extractor to each mime type, replacing earlier bindings.
func (r *Router) Register(extractor ports.TextExtractor, mimeTypes ...string) *Router {
	for _, mimeType := range mimeTypes {
		r.byMime[normalizeMime(mimeType)] = extractor
	}
	return r
}

func (r *Router) Extract(ctx context.Context, mimeType string, raw []byte) (string, error) {
	extractor, ok := r.byMime[normalizeMime(mimeType)]
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("unsupported mime type %q", mimeType))
	}
	return extractor.Extract(ctx, mimeType, raw)
}

func normalizeMime(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}
