package audit

import (
	"context"

	"github.com/bizdesk/backend/internal/domain/audit"
)

type sourceKey struct{}

// WithSource attaches the request origin used to attribute audit entries
func WithSource(ctx context.Context, src audit.Source) context.Context {
	return context.WithValue(ctx, sourceKey{}, src)
}

// SourceFrom returns the request origin stored by WithSource
func SourceFrom(ctx context.Context) audit.Source {
	if src, ok := ctx.Value(sourceKey{}).(audit.Source); ok {
		return src
	}
	return audit.Source{}
}
