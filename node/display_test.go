package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/types"
)

func TestDisplayNode_FanOutReferences(t *testing.T) {
	n, err := NewVideoDisplayNode(newTestRuntime(t))
	require.NoError(t, err)

	out, err := n.Execute(context.Background(), Inputs{
		"media": []media.Reference{
			media.Remote("gs://bucket/a"),
			media.Remote("gs://bucket/b"),
			media.Remote("gs://bucket/c"),
		},
	})
	require.NoError(t, err)

	require.Len(t, out, 3)
	assert.Equal(t, "gs://bucket/a", out["video_1_1"].(media.Reference).URI())
	assert.Equal(t, "gs://bucket/b", out["video_1_2"].(media.Reference).URI())
	assert.Equal(t, "gs://bucket/c", out["video_2_1"].(media.Reference).URI())
}

func TestDisplayNode_FamiliesNameSlots(t *testing.T) {
	cases := []struct {
		constructor func(*Runtime) (Node, error)
		slot        string
	}{
		{NewVideoDisplayNode, "video_1_1"},
		{NewAudioDisplayNode, "audio_1_1"},
		{NewImageDisplayNode, "image_1_1"},
	}

	for _, tc := range cases {
		n, err := tc.constructor(newTestRuntime(t))
		require.NoError(t, err)

		out, err := n.Execute(context.Background(), Inputs{
			"media": media.Remote("gs://bucket/item"),
		})
		require.NoError(t, err)
		assert.Contains(t, out, tc.slot)
	}
}

func TestDisplayNode_AcceptsRawItems(t *testing.T) {
	n, err := NewImageDisplayNode(newTestRuntime(t))
	require.NoError(t, err)

	out, err := n.Execute(context.Background(), Inputs{
		"media": []media.Item{
			{SourceURL: "https://example.com/a.png"},
			{Payload: []byte("raw"), MIMEType: "image/png"},
		},
	})
	require.NoError(t, err)

	first := out["image_1_1"].(media.Reference)
	second := out["image_1_2"].(media.Reference)
	assert.Equal(t, "https://example.com/a.png", first.URI())
	assert.False(t, second.IsRemote(), "raw payloads pass through inline, display never uploads")
	assert.Equal(t, []byte("raw"), second.Payload())
}

func TestDisplayNode_MediaRequired(t *testing.T) {
	n, err := NewAudioDisplayNode(newTestRuntime(t))
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidMedia, types.GetErrorCode(err))
}

func TestDisplayNode_EmptyListYieldsNoSlots(t *testing.T) {
	n, err := NewVideoDisplayNode(newTestRuntime(t))
	require.NoError(t, err)

	out, err := n.Execute(context.Background(), Inputs{
		"media": []media.Reference{},
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}
