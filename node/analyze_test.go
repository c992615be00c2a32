package node

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/mediaflow/auth"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/types"
)

// fakeAnalyzer records the request and returns a canned answer.
type fakeAnalyzer struct {
	lastRequest AnalyzeRequest
	answer      string
	err         error
	calls       atomic.Int64
}

func (a *fakeAnalyzer) Analyze(_ context.Context, _ *auth.Identity, req AnalyzeRequest) (string, error) {
	a.calls.Add(1)
	a.lastRequest = req
	if a.err != nil {
		return "", a.err
	}
	return a.answer, nil
}

func TestMediaAnalysisNode_Execute(t *testing.T) {
	an := &fakeAnalyzer{answer: "two boats on a lake"}
	n, err := NewMediaAnalysisNode(newTestRuntime(t), an)
	require.NoError(t, err)

	out, err := n.Execute(context.Background(), Inputs{
		"prompt": "what is in this picture?",
		"media": []media.Item{
			{Payload: []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, Name: "photo.png"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "two boats on a lake", out["analysis"])
	assert.Equal(t, DefaultAnalysisModel, an.lastRequest.Model)
	require.Len(t, an.lastRequest.References, 1)
	assert.True(t, an.lastRequest.References[0].IsRemote())
}

func TestMediaAnalysisNode_MultipleItemsKeepOrder(t *testing.T) {
	an := &fakeAnalyzer{answer: "ok"}
	n, err := NewMediaAnalysisNode(newTestRuntime(t), an)
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{
		"prompt": "compare these",
		"media": []media.Item{
			{SourceURL: "https://example.com/a.png"},
			{SourceURL: "https://example.com/b.png"},
			{SourceURL: "https://example.com/c.png"},
		},
	})
	require.NoError(t, err)

	require.Len(t, an.lastRequest.References, 3)
	assert.Equal(t, "https://example.com/a.png", an.lastRequest.References[0].URI())
	assert.Equal(t, "https://example.com/b.png", an.lastRequest.References[1].URI())
	assert.Equal(t, "https://example.com/c.png", an.lastRequest.References[2].URI())
}

func TestMediaAnalysisNode_PromptRequired(t *testing.T) {
	n, err := NewMediaAnalysisNode(newTestRuntime(t), &fakeAnalyzer{})
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{
		"media": []media.Item{{SourceURL: "https://example.com/a.png"}},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfiguration, types.GetErrorCode(err))
}

func TestMediaAnalysisNode_MediaRequired(t *testing.T) {
	n, err := NewMediaAnalysisNode(newTestRuntime(t), &fakeAnalyzer{})
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{"prompt": "describe"})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidMedia, types.GetErrorCode(err))
}

func TestMediaAnalysisNode_UnknownModel(t *testing.T) {
	n, err := NewMediaAnalysisNode(newTestRuntime(t), &fakeAnalyzer{})
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{
		"prompt": "describe",
		"model":  "gemini-1.0-ultra",
		"media":  []media.Item{{SourceURL: "https://example.com/a.png"}},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfiguration, types.GetErrorCode(err))
}

func TestMediaAnalysisNode_BackendFailure(t *testing.T) {
	an := &fakeAnalyzer{err: errors.New("model overloaded")}
	n, err := NewMediaAnalysisNode(newTestRuntime(t), an)
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{
		"prompt": "describe",
		"media":  []media.Item{{SourceURL: "https://example.com/a.png"}},
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrNodeExecution, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestMediaAnalysisNode_NilAnalyzer(t *testing.T) {
	_, err := NewMediaAnalysisNode(newTestRuntime(t), nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfiguration, types.GetErrorCode(err))
}

func TestMediaAnalysisNode_SingleItemBindsAsList(t *testing.T) {
	an := &fakeAnalyzer{answer: "ok"}
	n, err := NewMediaAnalysisNode(newTestRuntime(t), an)
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{
		"prompt": "describe",
		"media":  media.Item{SourceURL: "https://example.com/single.png"},
	})
	require.NoError(t, err)
	require.Len(t, an.lastRequest.References, 1)
}
