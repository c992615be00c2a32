package node

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/mediaflow/auth"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/types"
)

// fakeGenerator returns canned items and records the request it saw.
type fakeGenerator struct {
	lastRequest GenerateRequest
	lastID      *auth.Identity
	items       []media.Item
	logs        string
	err         error
}

func (g *fakeGenerator) Generate(_ context.Context, id *auth.Identity, req GenerateRequest) (*GenerateResult, error) {
	g.lastRequest = req
	g.lastID = id
	if g.err != nil {
		return nil, g.err
	}
	items := g.items
	if items == nil {
		for i := 0; i < req.Count; i++ {
			items = append(items, media.Item{
				Payload:  []byte("generated-" + strings.Repeat("x", i+1)),
				MIMEType: "video/mp4",
			})
		}
	}
	return &GenerateResult{Items: items, Logs: g.logs}, nil
}

func TestVeoVideoNode_Execute(t *testing.T) {
	gen := &fakeGenerator{logs: "operation done"}
	n, err := NewVeoVideoNode(newTestRuntime(t), gen)
	require.NoError(t, err)

	out, err := n.Execute(context.Background(), Inputs{
		"prompt": "a red kite over the sea",
		"count":  2,
	})
	require.NoError(t, err)

	// 两条输出按行优先落位，外加后端日志
	require.Contains(t, out, "video_1_1")
	require.Contains(t, out, "video_1_2")
	assert.Equal(t, "operation done", out["logs"])

	ref := out["video_1_1"].(media.Reference)
	assert.True(t, ref.IsRemote(), "generated payload should be materialized to a remote URI")

	assert.Equal(t, DefaultVeoModel, gen.lastRequest.Model)
	assert.Equal(t, 2, gen.lastRequest.Count)
	assert.Equal(t, "16:9", gen.lastRequest.AspectRatio)
	require.NotNil(t, gen.lastID)
	assert.Equal(t, auth.SourceApplicationDefault, gen.lastID.Source())
}

func TestVeoVideoNode_SlotNamesStableAcrossCounts(t *testing.T) {
	rt := newTestRuntime(t)

	for _, count := range []int{1, 2} {
		gen := &fakeGenerator{}
		n, err := NewVeoVideoNode(rt, gen)
		require.NoError(t, err)

		out, err := n.Execute(context.Background(), Inputs{"prompt": "kite", "count": count})
		require.NoError(t, err)
		assert.Contains(t, out, "video_1_1", "first slot must keep its name at count=%d", count)
	}
}

func TestVeoVideoNode_CountValidation(t *testing.T) {
	n, err := NewVeoVideoNode(newTestRuntime(t), &fakeGenerator{})
	require.NoError(t, err)

	for _, count := range []int{0, 3, -1} {
		_, err := n.Execute(context.Background(), Inputs{"prompt": "kite", "count": count})
		require.Error(t, err, "count=%d", count)
		assert.Equal(t, types.ErrInvalidConfiguration, types.GetErrorCode(err))
	}
}

func TestGeneratorNode_PromptRequired(t *testing.T) {
	n, err := NewVeoVideoNode(newTestRuntime(t), &fakeGenerator{})
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{"count": 1})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfiguration, types.GetErrorCode(err))
}

func TestGeneratorNode_RejectsUnknownChoice(t *testing.T) {
	n, err := NewVeoVideoNode(newTestRuntime(t), &fakeGenerator{})
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{
		"prompt":       "kite",
		"aspect_ratio": "21:9",
	})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfiguration, types.GetErrorCode(err))
}

func TestGeneratorNode_BackendFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exhausted")}
	n, err := NewVeoVideoNode(newTestRuntime(t), gen)
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{"prompt": "kite"})
	require.Error(t, err)
	assert.Equal(t, types.ErrGeneration, types.GetErrorCode(err))
	assert.Contains(t, err.Error(), "quota exhausted")
}

func TestGeneratorNode_NilGenerator(t *testing.T) {
	_, err := NewVeoVideoNode(newTestRuntime(t), nil)
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfiguration, types.GetErrorCode(err))
}

func TestGeneratorNode_ResolvesInputReferences(t *testing.T) {
	gen := &fakeGenerator{}
	n, err := NewVeoVideoNode(newTestRuntime(t), gen)
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{
		"prompt": "animate this frame",
		"references": []media.Item{
			{Payload: []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, Name: "frame.png"},
			{SourceURL: "https://example.com/style.jpg"},
		},
	})
	require.NoError(t, err)

	require.Len(t, gen.lastRequest.References, 2)
	assert.True(t, gen.lastRequest.References[0].IsRemote(), "uploaded payload should arrive as URI")
	assert.Equal(t, "https://example.com/style.jpg", gen.lastRequest.References[1].URI())
}

func TestImagenImageNode_Execute(t *testing.T) {
	gen := &fakeGenerator{items: []media.Item{
		{Payload: []byte("img-a"), MIMEType: "image/jpeg"},
		{Payload: []byte("img-b"), MIMEType: "image/jpeg"},
		{Payload: []byte("img-c"), MIMEType: "image/jpeg"},
	}}
	n, err := NewImagenImageNode(newTestRuntime(t), gen)
	require.NoError(t, err)

	out, err := n.Execute(context.Background(), Inputs{
		"prompt":           "a lighthouse at dusk",
		"negative_prompt":  "blur",
		"count":            3,
		"use_seed":         true,
		"output_mime_type": "image/jpeg",
	})
	require.NoError(t, err)

	// 2 列网格：第三张换行
	require.Contains(t, out, "image_1_1")
	require.Contains(t, out, "image_1_2")
	require.Contains(t, out, "image_2_1")

	assert.Equal(t, DefaultImagenModel, gen.lastRequest.Model)
	assert.Equal(t, "blur", gen.lastRequest.NegativePrompt)
	require.NotNil(t, gen.lastRequest.Seed)
	assert.Equal(t, int64(12345), *gen.lastRequest.Seed)
	assert.Equal(t, "image/jpeg", gen.lastRequest.Options["output_mime_type"])
}

func TestImagenImageNode_CountValidation(t *testing.T) {
	n, err := NewImagenImageNode(newTestRuntime(t), &fakeGenerator{})
	require.NoError(t, err)

	_, err = n.Execute(context.Background(), Inputs{"prompt": "dusk", "count": 5})
	require.Error(t, err)
	assert.Equal(t, types.ErrInvalidConfiguration, types.GetErrorCode(err))
}

func TestLyriaAudioNode_Execute(t *testing.T) {
	gen := &fakeGenerator{items: []media.Item{
		{Payload: []byte("RIFFxxxxWAVE"), MIMEType: "audio/wav"},
	}}
	n, err := NewLyriaAudioNode(newTestRuntime(t), gen)
	require.NoError(t, err)

	out, err := n.Execute(context.Background(), Inputs{
		"prompt":          "gentle piano",
		"negative_prompt": "drums",
	})
	require.NoError(t, err)

	require.Contains(t, out, "audio_1_1")
	assert.Equal(t, DefaultLyriaModel, gen.lastRequest.Model)
	assert.Equal(t, "drums", gen.lastRequest.NegativePrompt)
	assert.Nil(t, gen.lastRequest.Seed, "seed is only set when use_seed is enabled")
}

func TestGeneratorNode_CustomGridColumns(t *testing.T) {
	rt := newTestRuntime(t, WithGridColumns(3))
	gen := &fakeGenerator{items: []media.Item{
		{Payload: []byte("a"), MIMEType: "image/png"},
		{Payload: []byte("b"), MIMEType: "image/png"},
		{Payload: []byte("c"), MIMEType: "image/png"},
		{Payload: []byte("d"), MIMEType: "image/png"},
	}}
	n, err := NewImagenImageNode(rt, gen)
	require.NoError(t, err)

	out, err := n.Execute(context.Background(), Inputs{"prompt": "tiles", "count": 4})
	require.NoError(t, err)

	require.Contains(t, out, "image_1_3")
	require.Contains(t, out, "image_2_1")
}
