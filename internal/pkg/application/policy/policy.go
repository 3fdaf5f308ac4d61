package policy

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/diwise/resource-serializer/pkg/serialization/resources"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/open-policy-agent/opa/rego"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("resource-renderer/policy")

// Evaluator decides if a relationship of an entity may be rendered
type Evaluator interface {
	Allow(ctx context.Context, relationship string, e resources.Entity) (bool, error)
	Visible(relationship string) func(resources.Entity) bool
}

type evaluatorImpl struct {
	preparedQuery rego.PreparedEvalQuery
}

// NewEvaluator prepares the rego module read from policies. The module must
// define data.serializer.visibility.allow.
func NewEvaluator(ctx context.Context, policies io.Reader) (Evaluator, error) {
	module, err := io.ReadAll(policies)
	if err != nil {
		return nil, fmt.Errorf("unable to read visibility policies: %s", err.Error())
	}

	impl := &evaluatorImpl{}

	impl.preparedQuery, err = rego.New(
		rego.Query("x = data.serializer.visibility.allow"),
		rego.Module("visibility.rego", string(module)),
	).PrepareForEval(ctx)

	if err != nil {
		return nil, err
	}

	return impl, nil
}

func (e *evaluatorImpl) Allow(ctx context.Context, relationship string, entity resources.Entity) (allowed bool, err error) {
	_, span := tracer.Start(ctx, "check-visibility")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	input := map[string]any{
		"relationship": relationship,
		"options":      map[string]any(entity.Options()),
	}

	if d := entity.Descriptor(); d != nil {
		input["type"] = d.TypeName()
	}

	if id, idErr := entity.ID(); idErr == nil {
		input["id"] = id
	}

	results, err := e.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		err = fmt.Errorf("opa eval failed: %w", err)
		return false, err
	}

	if len(results) == 0 {
		err = errors.New("opa query could not be satisfied")
		return false, err
	}

	allowed, ok := results[0].Bindings["x"].(bool)
	if !ok {
		err = errors.New("opa error: unexpected result type")
		return false, err
	}

	return allowed, nil
}

// Visible returns a relationship condition backed by the policy. It is
// evaluated with the context of the entity being rendered. Evaluation
// failures are logged and hide the relationship.
func (e *evaluatorImpl) Visible(relationship string) func(resources.Entity) bool {
	return func(entity resources.Entity) bool {
		ctx := entity.Context()

		allowed, err := e.Allow(ctx, relationship, entity)
		if err != nil {
			logging.GetFromContext(ctx).Warn("visibility check failed", "relationship", relationship, "err", err.Error())
			return false
		}
		return allowed
	}
}
