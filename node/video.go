package node

import (
	"github.com/BaSui01/mediaflow/types"
)

// TypeVeoVideo is the registry identifier for the Veo video node.
const TypeVeoVideo = "veo_video"

// DefaultVeoModel is the Veo model used when none is configured.
const DefaultVeoModel = "veo-3.0-generate-preview"

// veoVideoSpec declares the Veo node's port surface. Output slots for
// generated videos are dynamic and appear per item as video_{row}_{col}.
func veoVideoSpec() Spec {
	return Spec{
		Type:        TypeVeoVideo,
		Description: "Generates videos from a text prompt, with optional reference media.",
		Parameters: []Parameter{
			{
				Name:        "prompt",
				Type:        "str",
				Description: "The text prompt for video generation.",
				Modes:       ModeInput | ModeProperty,
			},
			{
				Name:        "model",
				Type:        "str",
				Description: "The Veo model to use for generation.",
				Default:     DefaultVeoModel,
				Choices:     []any{DefaultVeoModel, "veo-2.0-generate-001"},
				Modes:       ModeProperty,
			},
			{
				Name:        "count",
				Type:        "int",
				Description: "Number of videos to generate.",
				Default:     1,
				Choices:     []any{1, 2},
				Modes:       ModeProperty,
			},
			{
				Name:        "aspect_ratio",
				Type:        "str",
				Description: "Aspect ratio of the generated video.",
				Default:     "16:9",
				Choices:     []any{"16:9", "9:16", "1:1"},
				Modes:       ModeInput | ModeProperty,
			},
			{
				Name:        "references",
				Type:        "list[media]",
				Description: "Optional reference media: style images or a first frame.",
				Modes:       ModeInput,
			},
			{
				Name:        "logs",
				Type:        "str",
				Description: "Progress output from the generation backend.",
				Modes:       ModeOutput,
			},
		},
	}
}

// NewVeoVideoNode creates a video generation node backed by the given
// generator.
func NewVeoVideoNode(rt *Runtime, generator Generator) (Node, error) {
	return NewGeneratorNode(rt, veoVideoSpec(), "video", generator, func(in Inputs) error {
		count := in.Int("count", 1)
		if count < 1 || count > 2 {
			return types.Errorf(types.ErrInvalidCount, "video count must be 1 or 2, got %d", count).
				WithNode(TypeVeoVideo)
		}
		return nil
	})
}
