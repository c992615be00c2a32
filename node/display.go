package node

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/grid"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/types"
)

// Registry identifiers for the display nodes.
const (
	TypeVideoDisplay = "video_display"
	TypeAudioDisplay = "audio_display"
	TypeImageDisplay = "image_display"
)

// DisplayNode fans a list of media references out onto a grid of output
// ports. It performs no network interaction: references pass through
// unchanged, and the slot layout depends only on each item's index.
type DisplayNode struct {
	spec   Spec
	family string
	rt     *Runtime
}

func displaySpec(nodeType string) Spec {
	return Spec{
		Type:        nodeType,
		Description: "Lays incoming media out on a grid of output ports.",
		Parameters: []Parameter{
			{
				Name:        "media",
				Type:        "list[media]",
				Description: "The media references to display.",
				Modes:       ModeInput,
			},
		},
	}
}

// NewVideoDisplayNode creates a display node with video_{row}_{col} slots.
func NewVideoDisplayNode(rt *Runtime) (Node, error) {
	return &DisplayNode{spec: displaySpec(TypeVideoDisplay), family: "video", rt: rt}, nil
}

// NewAudioDisplayNode creates a display node with audio_{row}_{col} slots.
func NewAudioDisplayNode(rt *Runtime) (Node, error) {
	return &DisplayNode{spec: displaySpec(TypeAudioDisplay), family: "audio", rt: rt}, nil
}

// NewImageDisplayNode creates a display node with image_{row}_{col} slots.
func NewImageDisplayNode(rt *Runtime) (Node, error) {
	return &DisplayNode{spec: displaySpec(TypeImageDisplay), family: "image", rt: rt}, nil
}

// Spec returns the node's port surface.
func (n *DisplayNode) Spec() Spec { return n.spec }

// Execute assigns each reference to its grid slot.
func (n *DisplayNode) Execute(ctx context.Context, in Inputs) (Outputs, error) {
	start := time.Now()

	refs := displayReferences(in)
	if refs == nil {
		n.rt.recordExecution(n.spec.Type, "error", time.Since(start))
		return nil, types.NewError(types.ErrInvalidMedia, "media input is required").WithNode(n.spec.Type)
	}

	alloc, err := grid.NewAllocator(n.rt.Columns(), n.family)
	if err != nil {
		n.rt.recordExecution(n.spec.Type, "error", time.Since(start))
		return nil, err
	}
	slots, err := alloc.Allocate(len(refs))
	if err != nil {
		n.rt.recordExecution(n.spec.Type, "error", time.Since(start))
		return nil, err
	}

	out := make(Outputs, len(slots))
	for i, slot := range slots {
		out[slot.Name] = refs[i]
	}

	n.rt.recordExecution(n.spec.Type, "success", time.Since(start))
	n.rt.Logger().Debug("display layout computed",
		zap.String("node", n.spec.Type),
		zap.Int("slots", len(slots)),
	)
	return out, nil
}

// displayReferences accepts either resolved references or raw items on
// the media input. Raw items become inline references without touching
// storage; display never uploads.
func displayReferences(in Inputs) []media.Reference {
	switch v := in["media"].(type) {
	case []media.Reference:
		return v
	case media.Reference:
		return []media.Reference{v}
	case []media.Item:
		refs := make([]media.Reference, 0, len(v))
		for _, item := range v {
			if item.SourceURL != "" {
				refs = append(refs, media.Remote(item.SourceURL))
				continue
			}
			refs = append(refs, media.Inline(item.Payload, item.MIMEType))
		}
		return refs
	default:
		return nil
	}
}
