package node

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/types"
)

// TypeMediaAnalysis is the registry identifier for the analysis node.
const TypeMediaAnalysis = "media_analysis"

// DefaultAnalysisModel is the Gemini model used when none is configured.
const DefaultAnalysisModel = "gemini-2.5-flash"

// AnalysisNode answers questions about media content. Input media is
// materialized through the session cache concurrently; analysis itself
// is delegated to the backend.
type AnalysisNode struct {
	spec     Spec
	analyzer Analyzer
	rt       *Runtime
	tracer   trace.Tracer
}

func mediaAnalysisSpec() Spec {
	return Spec{
		Type:        TypeMediaAnalysis,
		Description: "Analyzes images, videos, or audio and answers questions about the content.",
		Parameters: []Parameter{
			{
				Name:        "prompt",
				Type:        "str",
				Description: "The question or instruction about the media.",
				Modes:       ModeInput | ModeProperty,
			},
			{
				Name:        "media",
				Type:        "list[media]",
				Description: "The media items to analyze.",
				Modes:       ModeInput,
			},
			{
				Name:        "model",
				Type:        "str",
				Description: "The Gemini model to use for analysis.",
				Default:     DefaultAnalysisModel,
				Choices:     []any{DefaultAnalysisModel, "gemini-2.5-pro", "gemini-2.0-flash", "gemini-2.0-flash-lite"},
				Modes:       ModeProperty,
			},
			{
				Name:        "analysis",
				Type:        "str",
				Description: "The model's answer.",
				Modes:       ModeOutput,
			},
		},
	}
}

// NewMediaAnalysisNode creates an analysis node backed by the given
// analyzer.
func NewMediaAnalysisNode(rt *Runtime, analyzer Analyzer) (Node, error) {
	if analyzer == nil {
		return nil, types.NewError(types.ErrInvalidConfiguration, "analyzer backend is required")
	}
	return &AnalysisNode{
		spec:     mediaAnalysisSpec(),
		analyzer: analyzer,
		rt:       rt,
		tracer:   otel.Tracer(instrumentationName),
	}, nil
}

// Spec returns the node's port surface.
func (n *AnalysisNode) Spec() Spec { return n.spec }

// Execute materializes the input media concurrently, then asks the
// backend about it.
func (n *AnalysisNode) Execute(ctx context.Context, in Inputs) (Outputs, error) {
	start := time.Now()
	ctx, span := n.tracer.Start(ctx, "node.analyze",
		trace.WithAttributes(attribute.String("node.type", n.spec.Type)))
	defer span.End()

	logger := n.rt.Logger().With(zap.String("node", n.spec.Type))

	out, err := n.execute(ctx, in, logger)
	if err != nil {
		n.rt.recordExecution(n.spec.Type, "error", time.Since(start))
		span.RecordError(err)
		return nil, err
	}
	n.rt.recordExecution(n.spec.Type, "success", time.Since(start))
	return out, nil
}

func (n *AnalysisNode) execute(ctx context.Context, in Inputs, logger *zap.Logger) (Outputs, error) {
	prompt := in.String("prompt", "")
	if prompt == "" {
		return nil, types.NewError(types.ErrInvalidConfiguration, "prompt is required").WithNode(n.spec.Type)
	}
	model := in.String("model", DefaultAnalysisModel)
	if p, ok := n.spec.Parameter("model"); ok && !p.AllowsValue(model) {
		return nil, types.Errorf(types.ErrInvalidConfiguration, "unsupported analysis model %q", model).
			WithNode(n.spec.Type)
	}

	items := in.Media("media")
	if len(items) == 0 {
		return nil, types.NewError(types.ErrInvalidMedia, "at least one media item is required").
			WithNode(n.spec.Type)
	}

	identity, err := n.rt.Identity(ctx)
	if err != nil {
		return nil, err
	}

	// Materialize every input concurrently. Each resolve is independent;
	// the session cache deduplicates repeated payloads underneath.
	refs := make([]media.Reference, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			resolved, err := n.rt.resolveReferences(gctx, []media.Item{item})
			if err != nil {
				return err
			}
			refs[i] = resolved[0]
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("calling analysis backend",
		zap.String("model", model),
		zap.Int("media_items", len(refs)),
	)

	answer, err := n.analyzer.Analyze(ctx, identity, AnalyzeRequest{
		Model:      model,
		Prompt:     prompt,
		References: refs,
	})
	if err != nil {
		return nil, types.NewError(types.ErrNodeExecution, "analysis backend failed").
			WithNode(n.spec.Type).WithCause(err)
	}

	return Outputs{"analysis": answer}, nil
}
