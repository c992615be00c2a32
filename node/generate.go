package node

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/grid"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/types"
)

const instrumentationName = "github.com/BaSui01/mediaflow/node"

// GeneratorNode is the shared execution skeleton for media generation
// nodes. Concrete nodes (Veo, Imagen, Lyria) supply the spec, the slot
// prefix, and a validation hook; the skeleton owns credential resolution,
// input media materialization, the backend call, and grid output layout.
type GeneratorNode struct {
	spec      Spec
	family    string
	generator Generator
	rt        *Runtime
	validate  func(in Inputs) error
	tracer    trace.Tracer
}

// NewGeneratorNode builds a generation node. family names the output
// grid slots (video_1_1, image_2_1, ...). validate may be nil.
func NewGeneratorNode(rt *Runtime, spec Spec, family string, generator Generator, validate func(in Inputs) error) (*GeneratorNode, error) {
	if generator == nil {
		return nil, types.NewError(types.ErrInvalidConfiguration, "generator backend is required")
	}
	if family == "" {
		family = grid.DefaultPrefix
	}
	return &GeneratorNode{
		spec:      spec,
		family:    family,
		generator: generator,
		rt:        rt,
		validate:  validate,
		tracer:    otel.Tracer(instrumentationName),
	}, nil
}

// Spec returns the node's port surface.
func (n *GeneratorNode) Spec() Spec { return n.spec }

// Execute validates inputs, resolves credentials and input media, calls
// the backend, and lays the results out on the output grid. Generated
// payloads are materialized through the media session, so downstream
// nodes receive remote URIs when storage is available.
func (n *GeneratorNode) Execute(ctx context.Context, in Inputs) (Outputs, error) {
	start := time.Now()
	ctx, span := n.tracer.Start(ctx, "node.generate",
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
	logger.Info("generation completed",
		zap.Int("outputs", len(out)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

func (n *GeneratorNode) execute(ctx context.Context, in Inputs, logger *zap.Logger) (Outputs, error) {
	if err := n.validateInputs(in); err != nil {
		return nil, err
	}

	identity, err := n.rt.Identity(ctx)
	if err != nil {
		return nil, err
	}

	refs, err := n.rt.resolveReferences(ctx, in.Media("references"))
	if err != nil {
		return nil, err
	}

	req := n.buildRequest(in, refs)
	logger.Debug("calling generation backend",
		zap.String("model", req.Model),
		zap.Int("count", req.Count),
		zap.Int("references", len(req.References)),
	)

	result, err := n.generator.Generate(ctx, identity, req)
	if err != nil {
		return nil, types.NewError(types.ErrGeneration, "generation backend failed").
			WithNode(n.spec.Type).WithCause(err)
	}

	return n.layoutOutputs(ctx, result)
}

// validateInputs enforces required values and choice lists before any
// network interaction happens.
func (n *GeneratorNode) validateInputs(in Inputs) error {
	if in.String("prompt", "") == "" {
		return types.NewError(types.ErrInvalidConfiguration, "prompt is required").WithNode(n.spec.Type)
	}
	for name, value := range in {
		p, ok := n.spec.Parameter(name)
		if !ok {
			continue
		}
		if !p.AllowsValue(value) {
			return types.Errorf(types.ErrInvalidConfiguration,
				"value %v is not allowed for parameter %q", value, name).WithNode(n.spec.Type)
		}
	}
	if n.validate != nil {
		return n.validate(in)
	}
	return nil
}

// buildRequest maps the node's standard parameters onto the backend
// request. Anything a concrete node declared beyond the standard set
// travels in Options.
func (n *GeneratorNode) buildRequest(in Inputs, refs []media.Reference) GenerateRequest {
	req := GenerateRequest{
		Model:          in.String("model", n.defaultString("model")),
		Prompt:         in.String("prompt", ""),
		NegativePrompt: in.String("negative_prompt", ""),
		Count:          in.Int("count", n.defaultInt("count", 1)),
		AspectRatio:    in.String("aspect_ratio", n.defaultString("aspect_ratio")),
		References:     refs,
	}

	if in.Bool("use_seed", false) {
		seed := int64(in.Int("seed", n.defaultInt("seed", 0)))
		req.Seed = &seed
	}

	standard := map[string]bool{
		"model": true, "prompt": true, "negative_prompt": true,
		"count": true, "aspect_ratio": true, "use_seed": true,
		"seed": true, "references": true,
	}
	for name, value := range in {
		if standard[name] {
			continue
		}
		if _, ok := n.spec.Parameter(name); !ok {
			continue
		}
		if req.Options == nil {
			req.Options = make(map[string]any)
		}
		req.Options[name] = value
	}
	return req
}

func (n *GeneratorNode) defaultString(name string) string {
	if p, ok := n.spec.Parameter(name); ok {
		if s, ok := p.Default.(string); ok {
			return s
		}
	}
	return ""
}

func (n *GeneratorNode) defaultInt(name string, fallback int) int {
	if p, ok := n.spec.Parameter(name); ok {
		if i, ok := p.Default.(int); ok {
			return i
		}
	}
	return fallback
}

// layoutOutputs materializes generated items through the media session
// and assigns them to grid slots. Slot names depend only on the item's
// index, so re-running with a larger count keeps earlier names stable.
func (n *GeneratorNode) layoutOutputs(ctx context.Context, result *GenerateResult) (Outputs, error) {
	alloc, err := grid.NewAllocator(n.rt.Columns(), n.family)
	if err != nil {
		return nil, err
	}
	slots, err := alloc.Allocate(len(result.Items))
	if err != nil {
		return nil, err
	}

	out := make(Outputs, len(slots)+1)
	for i, slot := range slots {
		ref, err := n.materialize(ctx, result.Items[i])
		if err != nil {
			return nil, err
		}
		out[slot.Name] = ref
	}
	if result.Logs != "" {
		out["logs"] = result.Logs
	}
	return out, nil
}

func (n *GeneratorNode) materialize(ctx context.Context, item media.Item) (media.Reference, error) {
	if n.rt.Session() == nil {
		if item.SourceURL != "" {
			return media.Remote(item.SourceURL), nil
		}
		return media.Inline(item.Payload, item.MIMEType), nil
	}
	return n.rt.Session().Resolve(ctx, item)
}
