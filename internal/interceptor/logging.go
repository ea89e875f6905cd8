package interceptor

import (
	"context"
	"fmt"

	"github.com/specialistvlad/appgraph/internal/ctxlog"
)

// Logging returns an interceptor that records every init and release of the
// node it is attached to. The value is passed through unchanged.
func Logging() Interceptor {
	return Func{
		OnInit: func(ctx context.Context, value any) (any, error) {
			ctxlog.FromContext(ctx).Info("Component initialized.", "target", Target(ctx), "type", fmt.Sprintf("%T", value))
			return value, nil
		},
		OnRelease: func(ctx context.Context, wrapped any) error {
			ctxlog.FromContext(ctx).Info("Component releasing.", "target", Target(ctx), "type", fmt.Sprintf("%T", wrapped))
			return nil
		},
	}
}
