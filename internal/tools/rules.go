package tools

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one compliance check. Conditions describe a violation: a rule
// whose condition evaluates true against a record is violated.
type Rule struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Severity  string `yaml:"severity" json:"severity"`
	Message   string `yaml:"message" json:"message"`
	Condition string `yaml:"condition" json:"condition"`
}

// RuleEngine evaluates contract records against a fixed rule set loaded
// once at startup. Evaluation is deterministic so results are auditable.
type RuleEngine struct {
	rules []Rule
}

func LoadRules(path string) (*RuleEngine, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s defines no rules", path)
	}
	return &RuleEngine{rules: doc.Rules}, nil
}

func (e *RuleEngine) Rules() []Rule { return e.rules }

// ruleContext derives the typed fields conditions may reference from a raw
// contract record.
func ruleContext(record map[string]any) map[string]any {
	return map[string]any{
		"termination_notice_days": float64(firstInt(str(record["termination_clause"]))),
		"liability_cap":           toFloat(record["liability_cap"]),
		"auto_renewal":            strings.EqualFold(str(record["auto_renewal"]), "true"),
		"governing_law":           str(record["governing_law"]),
	}
}

var intPattern = regexp.MustCompile(`\d+`)

func firstInt(s string) int {
	if m := intPattern.FindString(s); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	default:
		return 0
	}
}

// evalCondition evaluates "clause [and|or clause]..." where each clause is
// "field op literal". A malformed clause fails the whole condition with an
// error; the caller decides whether that means violated or skipped.
func evalCondition(cond string, ctx map[string]any) (bool, error) {
	for _, disjunct := range strings.Split(cond, " or ") {
		all := true
		for _, clause := range strings.Split(disjunct, " and ") {
			ok, err := evalClause(strings.TrimSpace(clause), ctx)
			if err != nil {
				return false, err
			}
			if !ok {
				all = false
				break
			}
		}
		if all {
			return true, nil
		}
	}
	return false, nil
}

var clauseOps = []string{"<=", ">=", "==", "!=", "<", ">"}

func evalClause(clause string, ctx map[string]any) (bool, error) {
	for _, op := range clauseOps {
		idx := strings.Index(clause, op)
		if idx < 0 {
			continue
		}
		field := strings.TrimSpace(clause[:idx])
		lit := strings.TrimSpace(clause[idx+len(op):])
		val, ok := ctx[field]
		if !ok {
			return false, fmt.Errorf("unknown field %q", field)
		}
		return compare(val, op, lit)
	}
	return false, fmt.Errorf("no operator in clause %q", clause)
}

func compare(val any, op, lit string) (bool, error) {
	switch v := val.(type) {
	case float64:
		n, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			return false, fmt.Errorf("non-numeric literal %q", lit)
		}
		switch op {
		case "<":
			return v < n, nil
		case "<=":
			return v <= n, nil
		case ">":
			return v > n, nil
		case ">=":
			return v >= n, nil
		case "==":
			return v == n, nil
		case "!=":
			return v != n, nil
		}
	case bool:
		b, err := strconv.ParseBool(lit)
		if err != nil {
			return false, fmt.Errorf("non-boolean literal %q", lit)
		}
		switch op {
		case "==":
			return v == b, nil
		case "!=":
			return v != b, nil
		}
		return false, fmt.Errorf("operator %q not valid for booleans", op)
	case string:
		s := strings.Trim(lit, `'"`)
		switch op {
		case "==":
			return v == s, nil
		case "!=":
			return v != s, nil
		}
		return false, fmt.Errorf("operator %q not valid for strings", op)
	}
	return false, fmt.Errorf("unsupported value type %T", val)
}

type ruleResult struct {
	RuleID   string `json:"rule_id"`
	RuleName string `json:"rule_name"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ValidateContractTool checks a record against every rule.
type ValidateContractTool struct {
	Engine *RuleEngine
}

func (t *ValidateContractTool) Name() string { return "validate_contract" }
func (t *ValidateContractTool) Description() string {
	return "Validate a contract record against all compliance rules; arguments: {\"record\": object}"
}

func (t *ValidateContractTool) Execute(_ context.Context, args map[string]any) (any, error) {
	record, _ := args["record"].(map[string]any)
	if record == nil {
		return nil, fmt.Errorf("missing record")
	}
	id := str(record["contract_id"])
	if id == "" {
		id = "UNKNOWN"
	}
	ctx := ruleContext(record)
	var violations, passed []ruleResult
	for _, rule := range t.Engine.rules {
		violated, err := evalCondition(rule.Condition, ctx)
		if err != nil {
			// Bad rule definitions are skipped, not counted against the record.
			continue
		}
		res := ruleResult{RuleID: rule.ID, RuleName: rule.Name, Severity: rule.Severity, Message: rule.Message}
		if violated {
			violations = append(violations, res)
		} else {
			passed = append(passed, res)
		}
	}
	return map[string]any{
		"contract_id":     id,
		"is_valid":        len(violations) == 0,
		"violation_count": len(violations),
		"violations":      violations,
		"passed_rules":    passed,
		"summary": fmt.Sprintf("Contract %s checked against %d rules: %d violations, %d passed",
			id, len(t.Engine.rules), len(violations), len(passed)),
	}, nil
}

// ListRulesTool exposes the rule set.
type ListRulesTool struct {
	Engine *RuleEngine
}

func (t *ListRulesTool) Name() string { return "list_rules" }
func (t *ListRulesTool) Description() string {
	return "List all compliance rules; no arguments"
}

func (t *ListRulesTool) Execute(_ context.Context, _ map[string]any) (any, error) {
	return map[string]any{"rule_count": len(t.Engine.rules), "rules": t.Engine.rules}, nil
}

// EvaluateRuleTool runs a single rule against a record.
type EvaluateRuleTool struct {
	Engine *RuleEngine
}

func (t *EvaluateRuleTool) Name() string { return "evaluate_rule" }
func (t *EvaluateRuleTool) Description() string {
	return "Evaluate one rule against a record; arguments: {\"rule_id\": string, \"record\": object}"
}

func (t *EvaluateRuleTool) Execute(_ context.Context, args map[string]any) (any, error) {
	ruleID, _ := args["rule_id"].(string)
	record, _ := args["record"].(map[string]any)
	if ruleID == "" || record == nil {
		return nil, fmt.Errorf("missing rule_id or record")
	}
	for _, rule := range t.Engine.rules {
		if rule.ID != ruleID {
			continue
		}
		violated, err := evalCondition(rule.Condition, ruleContext(record))
		if err != nil {
			return nil, fmt.Errorf("evaluate rule %s: %w", ruleID, err)
		}
		return map[string]any{"rule_id": ruleID, "is_violated": violated, "rule": rule}, nil
	}
	return nil, fmt.Errorf("rule %s not found", ruleID)
}
