package node

import (
	"github.com/BaSui01/mediaflow/types"
)

// TypeImagenImage is the registry identifier for the Imagen image node.
const TypeImagenImage = "imagen_image"

// DefaultImagenModel is the Imagen model used when none is configured.
const DefaultImagenModel = "imagen-3.0-generate-002"

func imagenImageSpec() Spec {
	return Spec{
		Type:        TypeImagenImage,
		Description: "Generates images from a text prompt.",
		Parameters: []Parameter{
			{
				Name:        "prompt",
				Type:        "str",
				Description: "The text prompt for image generation.",
				Modes:       ModeInput | ModeProperty,
			},
			{
				Name:        "negative_prompt",
				Type:        "str",
				Description: "Content the model should avoid.",
				Modes:       ModeInput | ModeProperty,
			},
			{
				Name:        "model",
				Type:        "str",
				Description: "The Imagen model to use for generation.",
				Default:     DefaultImagenModel,
				Choices:     []any{DefaultImagenModel, "imagen-3.0-fast-generate-001"},
				Modes:       ModeProperty,
			},
			{
				Name:        "count",
				Type:        "int",
				Description: "Number of images to generate.",
				Default:     1,
				Choices:     []any{1, 2, 3, 4},
				Modes:       ModeProperty,
			},
			{
				Name:        "aspect_ratio",
				Type:        "str",
				Description: "Aspect ratio of the generated image.",
				Default:     "1:1",
				Choices:     []any{"1:1", "16:9", "9:16", "4:3", "3:4"},
				Modes:       ModeInput | ModeProperty,
			},
			{
				Name:        "use_seed",
				Type:        "bool",
				Description: "Use a fixed seed for reproducible output.",
				Default:     false,
				Modes:       ModeProperty,
			},
			{
				Name:        "seed",
				Type:        "int",
				Description: "The seed value, used when use_seed is set.",
				Default:     12345,
				Modes:       ModeProperty,
			},
			{
				Name:        "output_mime_type",
				Type:        "str",
				Description: "Encoding of the generated images.",
				Default:     "image/jpeg",
				Choices:     []any{"image/png", "image/jpeg"},
				Modes:       ModeProperty,
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

// NewImagenImageNode creates an image generation node backed by the
// given generator.
func NewImagenImageNode(rt *Runtime, generator Generator) (Node, error) {
	return NewGeneratorNode(rt, imagenImageSpec(), "image", generator, func(in Inputs) error {
		count := in.Int("count", 1)
		if count < 1 || count > 4 {
			return types.Errorf(types.ErrInvalidCount, "image count must be between 1 and 4, got %d", count).
				WithNode(TypeImagenImage)
		}
		return nil
	})
}
