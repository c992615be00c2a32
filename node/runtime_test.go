package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/auth"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/types"
)

func TestRuntime_IdentityResolvedOnce(t *testing.T) {
	rt := newTestRuntime(t)

	first, err := rt.Identity(context.Background())
	require.NoError(t, err)
	second, err := rt.Identity(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second, "identity is resolved once per run")
	assert.Equal(t, "test-project", first.ProjectID())
}

func TestRuntime_IdentityErrorIsSticky(t *testing.T) {
	resolver := auth.NewResolver(zap.NewNop())
	rt := NewRuntime(resolver, auth.Config{}, nil)

	_, err := rt.Identity(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))

	_, again := rt.Identity(context.Background())
	assert.Equal(t, err, again)
}

func TestRuntime_ResolveReferencesWithoutSession(t *testing.T) {
	resolver := auth.NewResolver(zap.NewNop())
	rt := NewRuntime(resolver, auth.Config{ProjectID: "p"}, nil)

	refs, err := rt.resolveReferences(context.Background(), []media.Item{
		{SourceURL: "https://example.com/a.png"},
		{Payload: []byte("raw"), MIMEType: "image/png"},
	})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.True(t, refs[0].IsRemote())
	assert.False(t, refs[1].IsRemote())
}

func TestRuntime_DefaultColumns(t *testing.T) {
	resolver := auth.NewResolver(zap.NewNop())

	rt := NewRuntime(resolver, auth.Config{ProjectID: "p"}, nil)
	assert.Equal(t, 2, rt.Columns())

	rt = NewRuntime(resolver, auth.Config{ProjectID: "p"}, nil, WithGridColumns(4))
	assert.Equal(t, 4, rt.Columns())

	// 非法列数被忽略，保持默认值
	rt = NewRuntime(resolver, auth.Config{ProjectID: "p"}, nil, WithGridColumns(0))
	assert.Equal(t, 2, rt.Columns())
}
