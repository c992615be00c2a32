package node

// TypeLyriaAudio is the registry identifier for the Lyria audio node.
const TypeLyriaAudio = "lyria_audio"

// DefaultLyriaModel is the Lyria model used when none is configured.
const DefaultLyriaModel = "lyria-002"

func lyriaAudioSpec() Spec {
	return Spec{
		Type:        TypeLyriaAudio,
		Description: "Generates instrumental audio from a text prompt.",
		Parameters: []Parameter{
			{
				Name:        "prompt",
				Type:        "str",
				Description: "The text prompt for audio generation.",
				Modes:       ModeInput | ModeProperty,
			},
			{
				Name:        "negative_prompt",
				Type:        "str",
				Description: "Qualities the audio should avoid.",
				Modes:       ModeInput | ModeProperty,
			},
			{
				Name:        "model",
				Type:        "str",
				Description: "The Lyria model to use for generation.",
				Default:     DefaultLyriaModel,
				Choices:     []any{DefaultLyriaModel},
				Modes:       ModeProperty,
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
				Name:        "logs",
				Type:        "str",
				Description: "Progress output from the generation backend.",
				Modes:       ModeOutput,
			},
		},
	}
}

// NewLyriaAudioNode creates an audio generation node backed by the
// given generator. Lyria produces a single WAV clip per call.
func NewLyriaAudioNode(rt *Runtime, generator Generator) (Node, error) {
	return NewGeneratorNode(rt, lyriaAudioSpec(), "audio", generator, nil)
}
