package expr

import (
	"fmt"

	"github.com/Masterminds/sprig/v3"
	"github.com/antonmedv/expr"
	"github.com/antonmedv/expr/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

var sprigFuncMap = sprig.GenericFuncMap()

const root = "payload"

// programs caches compiled expressions. The same expression is evaluated
// once per interval of a set, so compilation is hoisted out of the loop.
var programs *lru.Cache[string, *vm.Program]

func init() {
	programs, _ = lru.New[string, *vm.Program](1024)
}

// EvalBool evaluates a boolean expression against the given payload
// environment. The payload is reachable under the `payload` root, e.g.
// `payload.class == "car" && payload.score >= 0.9`.
func EvalBool(expression string, payload map[string]interface{}) (bool, error) {
	program, err := compile(expression)
	if err != nil {
		return false, err
	}
	result, err := expr.Run(program, getFuncMap(payload))
	if err != nil {
		return false, fmt.Errorf("unable to evaluate expression '%s': %s", expression, err)
	}
	resultBool, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("unable to cast expression result '%v' to bool", result)
	}
	return resultBool, nil
}

func compile(expression string) (*vm.Program, error) {
	if program, ok := programs.Get(expression); ok {
		return program, nil
	}
	// compiled without a typed env so one program serves any payload shape
	program, err := expr.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("unable to compile expression '%s': %s", expression, err)
	}
	programs.Add(expression, program)
	return program, nil
}

func getFuncMap(payload map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		root:     payload,
		"sprig":  sprigFuncMap,
		"string": _string,
		"float":  _float,
	}
}

func _string(v interface{}) string {
	switch w := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(w)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func _float(v interface{}) float64 {
	switch w := v.(type) {
	case float64:
		return w
	case float32:
		return float64(w)
	case int:
		return float64(w)
	case int64:
		return float64(w)
	default:
		panic(fmt.Errorf("cannot convert %q to float", v))
	}
}
