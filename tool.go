package symdiff

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool" validate:"required"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
	Kind   string      `json:"kind,omitempty"`
}

func errResponse(err error) ToolResponse {
	resp := ToolResponse{Error: err.Error(), Kind: KindOf(err)}
	if resp.Kind == "" {
		resp.Kind = "bad_request"
	}
	return resp
}

func exprResponse(e Expr) ToolResponse {
	return ToolResponse{Result: e.toJSON(), String: e.String()}
}

// MaxOrder is the default bound on the order accepted by the diffn tool.
// Trees of repeated product-rule derivatives grow geometrically with it.
const MaxOrder = 12

// ToolOptions tunes HandleToolCallOpts.
type ToolOptions struct {
	// MaxDepth bounds decoded trees; 0 means MaxDepth.
	MaxDepth int
	// MaxOrder bounds the diffn order; 0 means MaxOrder.
	MaxOrder int
}

// HandleToolCall executes one tool call. Failures are reported in the
// response, never as a panic.
func HandleToolCall(req ToolRequest) ToolResponse {
	return HandleToolCallOpts(req, ToolOptions{})
}

// HandleToolCallOpts is HandleToolCall with explicit limits.
func HandleToolCallOpts(req ToolRequest, opts ToolOptions) ToolResponse {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = MaxDepth
	}
	maxOrder := opts.MaxOrder
	if maxOrder <= 0 {
		maxOrder = MaxOrder
	}
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return FromJSONDepth(val, maxDepth)
	}
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("param %s must be a non-empty string", key)
		}
		return s, nil
	}
	getInt := func(key string, def, lo, hi int) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return def, nil
		}
		f, ok := v.(float64)
		if !ok || f != math.Trunc(f) {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		if f < float64(lo) || f > float64(hi) {
			return 0, fmt.Errorf("param %s must be between %d and %d", key, lo, hi)
		}
		return int(f), nil
	}
	getEnv := func(key string) (map[string]float64, error) {
		env := map[string]float64{}
		v, ok := req.Params[key]
		if !ok {
			return env, nil
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be an object of numbers", key)
		}
		for name, x := range raw {
			f, ok := x.(float64)
			if !ok {
				return nil, fmt.Errorf("param %s.%s must be a number", key, name)
			}
			env[name] = f
		}
		return env, nil
	}

	switch req.Tool {
	case "diff":
		expr, err := getExpr("expr")
		if err != nil {
			return errResponse(err)
		}
		v, err := getString("var")
		if err != nil {
			return errResponse(err)
		}
		d, err := Diff(expr, v)
		if err != nil {
			return errResponse(err)
		}
		if raw, _ := req.Params["raw"].(bool); raw {
			return exprResponse(d)
		}
		s, err := Simplify(d)
		if err != nil {
			return errResponse(err)
		}
		return exprResponse(s)

	case "diffn":
		expr, err := getExpr("expr")
		if err != nil {
			return errResponse(err)
		}
		v, err := getString("var")
		if err != nil {
			return errResponse(err)
		}
		n, err := getInt("n", 1, 0, maxOrder)
		if err != nil {
			return errResponse(err)
		}
		d, err := DiffN(expr, v, n)
		if err != nil {
			return errResponse(err)
		}
		return exprResponse(d)

	case "simplify":
		expr, err := getExpr("expr")
		if err != nil {
			return errResponse(err)
		}
		s, err := Simplify(expr)
		if err != nil {
			return errResponse(err)
		}
		return exprResponse(s)

	case "validate":
		// getExpr already validates
		expr, err := getExpr("expr")
		if err != nil {
			return errResponse(err)
		}
		return ToolResponse{Result: map[string]interface{}{"valid": true}, String: expr.String()}

	case "free_symbols":
		expr, err := getExpr("expr")
		if err != nil {
			return errResponse(err)
		}
		return ToolResponse{Result: FreeSymbols(expr)}

	case "substitute":
		expr, err := getExpr("expr")
		if err != nil {
			return errResponse(err)
		}
		v, err := getString("var")
		if err != nil {
			return errResponse(err)
		}
		value, err := getExpr("value")
		if err != nil {
			return errResponse(err)
		}
		s, err := Substitute(expr, v, value)
		if err != nil {
			return errResponse(err)
		}
		return exprResponse(s)

	case "eval":
		expr, err := getExpr("expr")
		if err != nil {
			return errResponse(err)
		}
		env, err := getEnv("env")
		if err != nil {
			return errResponse(err)
		}
		x, err := Eval(expr, env)
		if err != nil {
			return errResponse(err)
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ToolResponse{Result: nil, String: fmt.Sprint(x)}
		}
		return ToolResponse{Result: x, String: fmt.Sprint(x)}

	case "mcp_spec":
		var spec interface{}
		_ = json.Unmarshal([]byte(MCPToolSpec()), &spec)
		return ToolResponse{Result: spec}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool), Kind: "unknown_tool"}
}

// ============================================================
// MCP spec
// ============================================================

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("diff", "Derivative d/dvar, simplified unless raw=true", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string", "raw": "boolean"}),
		ts("diffn", "nth derivative, simplified after every pass. Requires n (int)", []string{"expr", "var"}, map[string]string{"expr": "object", "var": "string", "n": "integer"}),
		ts("simplify", "Simplify an expression tree", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("validate", "Check function names and arities of an expression tree", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("free_symbols", "Return sorted variable names", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("eval", "Numeric evaluation. env maps variable names to numbers", []string{"expr"}, map[string]string{"expr": "object", "env": "object"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

// ToolNames lists the tools HandleToolCall understands.
func ToolNames() []string {
	return []string{"diff", "diffn", "simplify", "validate", "free_symbols", "substitute", "eval", "mcp_spec"}
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
