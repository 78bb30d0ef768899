//go:build js_eval

package userstyle

import "testing"

func TestJSEvaluatorBoundsRecursion(t *testing.T) {
	f := newFaceFixture(t)
	style := f.schema.DefaultStyle()
	rules := NewRules(WithEvaluator(NewJSEvaluator(JSWithMaxCallStack(16))))

	if _, err := rules.Evaluate(style, "(function deep(n){ return n === 0 ? 0 : deep(n - 1); })(1000)"); err == nil {
		t.Fatalf("expected call stack limit error")
	}
	got, err := rules.Evaluate(style, "(function deep(n){ return n === 0 ? hands : deep(n - 1); })(4)")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 0.75 {
		t.Fatalf("expected 0.75, got %v", got)
	}
}

func TestJSEvaluatorReceivesRulesFunctions(t *testing.T) {
	f := newFaceFixture(t)
	rules := NewRules(WithEvaluator(NewJSEvaluator()), WithFunctionRegistry(DefaultFunctions()))
	got, err := rules.Evaluate(f.schema.DefaultStyle(), "clamp(hands, 0, 0.5)")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got != 0.5 {
		t.Fatalf("expected 0.5, got %v", got)
	}
}
