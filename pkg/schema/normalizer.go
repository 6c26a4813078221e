// Package schema normalizes JSON schemas before schema-constrained
// generation calls. Generation backends honor different subsets of the
// JSON-schema vocabulary, so the pipeline reduces every schema to a
// conservative dialect first: internal references are inlined, keywords
// outside a known-supported allow-list are stripped, nullable unions are
// collapsed to their non-null branch, and required lists are re-derived
// from the properties that survive. The transform is pure and idempotent.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

// allowedKeywords is the keyword set every supported generation backend
// understands.
var allowedKeywords = map[string]bool{
	"type":        true,
	"properties":  true,
	"required":    true,
	"items":       true,
	"description": true,
	"enum":        true,
	"format":      true,
}

// Reflect builds a raw JSON-schema tree for the given Go value.
func Reflect(v any) (map[string]any, error) {
	reflector := &jsonschema.Reflector{}
	s := reflector.Reflect(v)

	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reflected schema: %w", err)
	}

	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode reflected schema: %w", err)
	}
	return tree, nil
}

// Normalize reduces a schema tree to the allow-listed dialect. The input
// is never mutated; Normalize(Normalize(s)) equals Normalize(s).
func Normalize(s map[string]any) map[string]any {
	defs := collectDefs(s)
	node := normalizeNode(deepCopy(s).(map[string]any), defs, map[string]bool{})
	out, ok := node.(map[string]any)
	if !ok {
		return map[string]any{"type": "object"}
	}
	return out
}

func collectDefs(s map[string]any) map[string]map[string]any {
	defs := map[string]map[string]any{}
	for _, key := range []string{"$defs", "definitions"} {
		raw, ok := s[key].(map[string]any)
		if !ok {
			continue
		}
		for name, def := range raw {
			if m, ok := def.(map[string]any); ok {
				defs[name] = m
			}
		}
	}
	return defs
}

func normalizeNode(node any, defs map[string]map[string]any, resolving map[string]bool) any {
	m, ok := node.(map[string]any)
	if !ok {
		return node
	}

	m = resolveRef(m, defs, resolving)
	m = collapseUnions(m, defs, resolving)

	out := map[string]any{}
	for key, value := range m {
		if !allowedKeywords[key] {
			continue
		}
		out[key] = value
	}

	if t, ok := out["type"]; ok {
		out["type"] = collapseNullableType(t)
	}

	if props, ok := out["properties"].(map[string]any); ok {
		normalized := map[string]any{}
		for name, sub := range props {
			normalized[name] = normalizeNode(sub, defs, resolving)
		}
		out["properties"] = normalized
	}

	if items, ok := out["items"]; ok {
		switch v := items.(type) {
		case []any:
			if len(v) > 0 {
				out["items"] = normalizeNode(v[0], defs, resolving)
			} else {
				delete(out, "items")
			}
		default:
			out["items"] = normalizeNode(v, defs, resolving)
		}
	}

	rederiveRequired(out)

	return out
}

// resolveRef inlines an internal "$ref" into its definition. A description
// alongside the reference survives the inlining. Cyclic references
// degrade to a bare object rather than recursing forever.
func resolveRef(m map[string]any, defs map[string]map[string]any, resolving map[string]bool) map[string]any {
	ref, ok := m["$ref"].(string)
	if !ok {
		return m
	}

	name := refName(ref)
	def, found := defs[name]
	if name == "" || !found {
		return map[string]any{"type": "object"}
	}
	if resolving[name] {
		return map[string]any{"type": "object"}
	}

	resolving[name] = true
	defer delete(resolving, name)

	merged := deepCopy(def).(map[string]any)
	if desc, ok := m["description"].(string); ok && desc != "" {
		merged["description"] = desc
	}
	return resolveRef(merged, defs, resolving)
}

func refName(ref string) string {
	for _, prefix := range []string{"#/$defs/", "#/definitions/"} {
		if strings.HasPrefix(ref, prefix) {
			return strings.TrimPrefix(ref, prefix)
		}
	}
	return ""
}

// collapseUnions rewrites optional-value representations (anyOf/oneOf
// with a null branch) to their non-null branch and flattens single-branch
// allOf wrappers.
func collapseUnions(m map[string]any, defs map[string]map[string]any, resolving map[string]bool) map[string]any {
	for _, key := range []string{"anyOf", "oneOf", "allOf"} {
		branches, ok := m[key].([]any)
		if !ok {
			continue
		}

		var chosen map[string]any
		for _, branch := range branches {
			bm, ok := branch.(map[string]any)
			if !ok {
				continue
			}
			bm = resolveRef(deepCopy(bm).(map[string]any), defs, resolving)
			if isNullSchema(bm) {
				continue
			}
			chosen = bm
			break
		}

		merged := map[string]any{}
		if chosen != nil {
			merged = chosen
		}
		for k, v := range m {
			if k == key {
				continue
			}
			merged[k] = v
		}
		return collapseUnions(merged, defs, resolving)
	}
	return m
}

func isNullSchema(m map[string]any) bool {
	t, ok := m["type"].(string)
	return ok && t == "null"
}

// collapseNullableType reduces a ["T", "null"] type array to "T".
func collapseNullableType(t any) any {
	list, ok := t.([]any)
	if !ok {
		return t
	}
	for _, entry := range list {
		if s, ok := entry.(string); ok && s != "null" {
			return s
		}
	}
	return "object"
}

// rederiveRequired drops required entries whose property no longer exists
// after stripping and keeps the list deterministic.
func rederiveRequired(out map[string]any) {
	raw, ok := out["required"].([]any)
	if !ok {
		if _, isStrings := out["required"].([]string); !isStrings {
			return
		}
	}

	props, _ := out["properties"].(map[string]any)

	names := []string{}
	appendName := func(name string) {
		if _, exists := props[name]; exists {
			names = append(names, name)
		}
	}
	if ok {
		for _, entry := range raw {
			if name, ok := entry.(string); ok {
				appendName(name)
			}
		}
	} else if list, ok := out["required"].([]string); ok {
		for _, name := range list {
			appendName(name)
		}
	}

	if len(names) == 0 {
		delete(out, "required")
		return
	}
	sort.Strings(names)
	required := make([]any, 0, len(names))
	for _, name := range names {
		required = append(required, name)
	}
	out["required"] = required
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}
