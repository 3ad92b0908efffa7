// Package ruleset loads user-defined fallback rules from YAML.
//
// Each rule may combine literal substring lists with a CEL expression over
// the lower-cased input:
//
//	rules:
//	  - name: coffee
//	    any: ["咖啡", "coffee"]
//	    expr: 'input.size() > 2'
//	    reply: "{pet}也想喝一杯！"
//	    emotion: happy
package ruleset

import (
	"os"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/linguapet/ai/brain"
)

// File is the on-disk layout.
type File struct {
	Rules []Spec `yaml:"rules"`
}

// Spec describes one rule before compilation.
type Spec struct {
	Name    string   `yaml:"name"`
	Any     []string `yaml:"any"`
	All     []string `yaml:"all"`
	Expr    string   `yaml:"expr"`
	Reply   string   `yaml:"reply"`
	Emotion string   `yaml:"emotion"`
}

// LoadFile reads and compiles the rules in path.
func LoadFile(path string) ([]brain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read rules file %s", path)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid rules file %s", path)
	}
	return rules, nil
}

// Parse compiles YAML rule definitions in file order.
func Parse(data []byte) ([]brain.Rule, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal rules")
	}

	env, err := cel.NewEnv(cel.Variable("input", cel.StringType))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create CEL environment")
	}

	rules := make([]brain.Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		rule, err := compile(env, spec)
		if err != nil {
			return nil, errors.Wrapf(err, "rule %d (%s)", i, spec.Name)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func compile(env *cel.Env, spec Spec) (brain.Rule, error) {
	if strings.TrimSpace(spec.Reply) == "" {
		return brain.Rule{}, errors.New("reply is required")
	}

	emotion := brain.EmotionNeutral
	if spec.Emotion != "" {
		emotion = brain.Emotion(strings.ToLower(spec.Emotion))
		if !emotion.IsValid() {
			return brain.Rule{}, errors.Errorf("unknown emotion %q", spec.Emotion)
		}
	}

	var conds brain.AllOf
	if len(spec.Any) > 0 {
		conds = append(conds, brain.Any(spec.Any...))
	}
	if len(spec.All) > 0 {
		conds = append(conds, brain.All(spec.All...))
	}
	if expr := strings.TrimSpace(spec.Expr); expr != "" {
		c, err := compileExpr(env, expr)
		if err != nil {
			return brain.Rule{}, err
		}
		conds = append(conds, c)
	}
	if len(conds) == 0 {
		return brain.Rule{}, errors.New("rule needs at least one of any, all or expr")
	}

	var when brain.Condition = conds
	if len(conds) == 1 {
		when = conds[0]
	}

	return brain.Rule{
		Name:    spec.Name,
		When:    when,
		Emotion: emotion,
		Respond: brain.Template(spec.Reply),
	}, nil
}

// exprCondition evaluates a boolean CEL program against the input.
type exprCondition struct {
	program cel.Program
}

func compileExpr(env *cel.Env, expr string) (*exprCondition, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, errors.Wrapf(issues.Err(), "invalid expression: %s", expr)
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, errors.Errorf("expression must be boolean: %s", expr)
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build program: %s", expr)
	}
	return &exprCondition{program: program}, nil
}

// Match treats evaluation errors as no match.
func (c *exprCondition) Match(input string) bool {
	out, _, err := c.program.Eval(map[string]any{"input": input})
	if err != nil {
		return false
	}
	matched, ok := out.Value().(bool)
	return ok && matched
}
