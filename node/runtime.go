package node

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/auth"
	"github.com/BaSui01/mediaflow/internal/metrics"
	"github.com/BaSui01/mediaflow/media"
)

// Runtime bundles the shared collaborators every node needs: credential
// resolution, the session-scoped media cache, logging, and metrics.
// One Runtime serves one workflow run; nodes executing within the run
// share its resolved identity and media session.
type Runtime struct {
	resolver   *auth.Resolver
	authConfig auth.Config
	session    *media.Session
	logger     *zap.Logger
	metrics    *metrics.Collector
	columns    int

	identityOnce sync.Once
	identity     *auth.Identity
	identityErr  error
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeLogger sets the logger shared by nodes in this run.
func WithRuntimeLogger(logger *zap.Logger) RuntimeOption {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithRuntimeMetrics sets the metrics collector.
func WithRuntimeMetrics(m *metrics.Collector) RuntimeOption {
	return func(rt *Runtime) { rt.metrics = m }
}

// WithGridColumns overrides the output grid column count.
func WithGridColumns(columns int) RuntimeOption {
	return func(rt *Runtime) {
		if columns >= 1 {
			rt.columns = columns
		}
	}
}

// NewRuntime creates a runtime for one workflow run. session may be nil
// for nodes that never touch media payloads.
func NewRuntime(resolver *auth.Resolver, authConfig auth.Config, session *media.Session, opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		resolver:   resolver,
		authConfig: authConfig,
		session:    session,
		logger:     zap.NewNop(),
		columns:    2,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Identity resolves the run's cloud identity, once. Every node in the
// run shares the result; a configuration error surfaces identically on
// each call.
func (rt *Runtime) Identity(ctx context.Context) (*auth.Identity, error) {
	rt.identityOnce.Do(func() {
		rt.identity, rt.identityErr = rt.resolver.Resolve(ctx, rt.authConfig)
		if rt.metrics != nil {
			if rt.identityErr != nil {
				rt.metrics.RecordCredentialResolution("none", "error")
			} else {
				rt.metrics.RecordCredentialResolution(string(rt.identity.Source()), "success")
			}
		}
	})
	return rt.identity, rt.identityErr
}

// Session returns the run's media session, or nil when media is not wired.
func (rt *Runtime) Session() *media.Session { return rt.session }

// Logger returns the run logger.
func (rt *Runtime) Logger() *zap.Logger { return rt.logger }

// Columns returns the output grid column count for this run.
func (rt *Runtime) Columns() int { return rt.columns }

// resolveReferences materializes input media through the session cache.
// Without a session, items degrade to inline references untouched.
func (rt *Runtime) resolveReferences(ctx context.Context, items []media.Item) ([]media.Reference, error) {
	if len(items) == 0 {
		return nil, nil
	}

	refs := make([]media.Reference, 0, len(items))
	for _, item := range items {
		if rt.session == nil {
			if item.SourceURL != "" {
				refs = append(refs, media.Remote(item.SourceURL))
				continue
			}
			refs = append(refs, media.Inline(item.Payload, item.MIMEType))
			continue
		}
		ref, err := rt.session.Resolve(ctx, item)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (rt *Runtime) recordExecution(nodeType, status string, elapsed time.Duration) {
	if rt.metrics != nil {
		rt.metrics.RecordNodeExecution(nodeType, status, elapsed)
	}
}
