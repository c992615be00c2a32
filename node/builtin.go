package node

// RegisterBuiltins registers every built-in node type on the registry.
// generator serves the three generation nodes; analyzer serves the
// analysis node. Display nodes need no backend.
func RegisterBuiltins(r *Registry, generator Generator, analyzer Analyzer) error {
	factories := map[string]Factory{
		TypeVeoVideo: func(rt *Runtime) (Node, error) {
			return NewVeoVideoNode(rt, generator)
		},
		TypeImagenImage: func(rt *Runtime) (Node, error) {
			return NewImagenImageNode(rt, generator)
		},
		TypeLyriaAudio: func(rt *Runtime) (Node, error) {
			return NewLyriaAudioNode(rt, generator)
		},
		TypeMediaAnalysis: func(rt *Runtime) (Node, error) {
			return NewMediaAnalysisNode(rt, analyzer)
		},
		TypeVideoDisplay: NewVideoDisplayNode,
		TypeAudioDisplay: NewAudioDisplayNode,
		TypeImageDisplay: NewImageDisplayNode,
	}

	for nodeType, factory := range factories {
		if err := r.Register(nodeType, factory); err != nil {
			return err
		}
	}
	return nil
}
