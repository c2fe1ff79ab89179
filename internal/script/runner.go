package script

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/taskbridge/internal/bridge"
	"github.com/vk/taskbridge/internal/ctxlog"
	"github.com/vk/taskbridge/internal/host"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Runner executes scripts against a bridge.
type Runner struct {
	bridge *bridge.Bridge
	params map[string]string
}

// NewRunner creates a runner. params are visible to scripts as param.<name>.
func NewRunner(b *bridge.Bridge, params map[string]string) *Runner {
	return &Runner{bridge: b, params: params}
}

// Run executes the statements of s in order and stops at the first failure.
func (r *Runner) Run(ctx context.Context, s *Script) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running script.", "statements", len(s.Statements))

	for i, st := range s.Statements {
		stCtx, stLogger := ctxlog.With(ctx, "statement", string(st.Kind), "label", st.Label, "at", st.Range().String())
		evalCtx := newEvalContext(r.params, r.bridge)

		run, diags := evalWhen(st, evalCtx)
		if diags.HasErrors() {
			return fmt.Errorf("%s: %w", st.Range(), diags)
		}
		if !run {
			stLogger.Debug("Skipping statement.", "index", i)
			continue
		}

		if err := r.runStatement(stCtx, st, evalCtx); err != nil {
			return fmt.Errorf("%s: %w", st.Range(), err)
		}
	}

	logger.Debug("Script finished.")
	return nil
}

func (r *Runner) runStatement(ctx context.Context, st Statement, evalCtx *hcl.EvalContext) error {
	body := st.block.Body

	switch st.Kind {
	case KindTask:
		spec, diags := bodySpec(body, nil, evalCtx, whenAttr)
		if diags.HasErrors() {
			return diags
		}
		return r.bridge.Perform(ctx, st.Label, spec)

	case KindTaskdef:
		impl, diags := evalString(body.Attributes["type"], evalCtx, true)
		if diags.HasErrors() {
			return diags
		}
		extra, diags := bodySpec(body, nil, evalCtx, whenAttr, "type")
		if diags.HasErrors() {
			return diags
		}
		return r.bridge.RegisterTaskType(ctx, st.Label, impl, extra)

	case KindProperty:
		attr, ok := body.Attributes["value"]
		if !ok {
			return fmt.Errorf("property %q requires a value", st.Label)
		}
		v, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return diags
		}
		prim, err := primitive(v)
		if err != nil {
			return fmt.Errorf("property %q: %w", st.Label, err)
		}
		if prim == nil {
			return fmt.Errorf("property %q: value must not be null", st.Label)
		}
		_, err = r.bridge.SetProperty(ctx, st.Label, prim)
		return err

	case KindEcho:
		msg, diags := evalString(body.Attributes["message"], evalCtx, true)
		if diags.HasErrors() {
			return diags
		}
		levelName, diags := evalString(body.Attributes["level"], evalCtx, false)
		if diags.HasErrors() {
			return diags
		}
		var level host.LogLevel
		if levelName != "" {
			parsed, err := host.ParseLogLevel(levelName)
			if err != nil {
				return err
			}
			level = parsed
		}
		return r.bridge.Log(ctx, msg, level)

	case KindChain:
		var seq *bridge.Sequence
		for _, step := range body.Blocks {
			if seq != nil && seq.Err() != nil {
				break
			}
			// Each step is evaluated after the previous one ran.
			spec, diags := bodySpec(step.Body, nil, newEvalContext(r.params, r.bridge))
			if diags.HasErrors() {
				return diags
			}
			if seq == nil {
				seq = r.bridge.Chain(ctx, step.Labels[0], spec)
			} else {
				seq.Chain(step.Labels[0], spec)
			}
		}
		if seq == nil {
			return nil
		}
		return seq.Err()
	}
	return fmt.Errorf("unsupported statement %q", st.Kind)
}

// evalWhen reports whether st should run.
func evalWhen(st Statement, evalCtx *hcl.EvalContext) (bool, hcl.Diagnostics) {
	attr, ok := st.block.Body.Attributes[whenAttr]
	if !ok {
		return true, nil
	}
	v, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return false, diags
	}
	b, err := convert.Convert(v, cty.Bool)
	if err != nil || b.IsNull() || !b.IsKnown() {
		return false, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid when condition",
			Detail:   "The when argument must be a true or false value.",
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}
	return b.True(), nil
}

func evalString(attr *hclsyntax.Attribute, evalCtx *hcl.EvalContext, required bool) (string, hcl.Diagnostics) {
	if attr == nil {
		if required {
			return "", hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Missing required argument",
				Detail:   "A required argument was not set.",
			}}
		}
		return "", nil
	}
	v, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", diags
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil || !s.IsKnown() {
		return "", hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid argument value",
			Detail:   fmt.Sprintf("Argument %q must be a string.", attr.Name),
			Subject:  attr.Expr.Range().Ptr(),
		}}
	}
	if s.IsNull() {
		if required {
			return "", hcl.Diagnostics{{
				Severity: hcl.DiagError,
				Summary:  "Missing required argument",
				Detail:   fmt.Sprintf("Argument %q must not be null.", attr.Name),
				Subject:  attr.Expr.Range().Ptr(),
			}}
		}
		return "", nil
	}
	return s.AsString(), nil
}
