package dynamodb

import (
	"sort"
	"strings"

	"github.com/nimbusemu/nimbus/internal/apperr"
)

// parseUpdateExpression handles the subset of DynamoDB's UpdateExpression
// grammar spec.md §4.4 requires: "SET attr = :v" and "REMOVE attr",
// combinable in one expression ("SET a = :v REMOVE b, c").
func parseUpdateExpression(expr string, values map[string]AttributeValue) ([]UpdateAction, error) {
	var actions []UpdateAction
	clauses := splitClauses(expr)
	for _, clause := range clauses {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		upper := strings.ToUpper(clause)
		switch {
		case strings.HasPrefix(upper, "SET "):
			for _, assignment := range strings.Split(clause[4:], ",") {
				attr, valueRef, ok := splitAssignment(assignment)
				if !ok {
					return nil, apperr.New(apperr.InvalidArgument, "malformed SET clause")
				}
				v, ok := values[valueRef]
				if !ok {
					return nil, apperr.New(apperr.InvalidArgument, "ExpressionAttributeValues missing "+valueRef)
				}
				actions = append(actions, UpdateAction{Attribute: attr, Value: v})
			}
		case strings.HasPrefix(upper, "REMOVE "):
			for _, attr := range strings.Split(clause[7:], ",") {
				attr = strings.TrimSpace(attr)
				if attr == "" {
					continue
				}
				actions = append(actions, UpdateAction{Attribute: attr, Remove: true})
			}
		default:
			return nil, apperr.New(apperr.InvalidArgument, "unsupported UpdateExpression clause")
		}
	}
	return actions, nil
}

// splitClauses splits "SET a = :v REMOVE b" into ["SET a = :v", "REMOVE b"].
func splitClauses(expr string) []string {
	upper := strings.ToUpper(expr)
	var bounds []int
	for _, kw := range []string{"SET ", "REMOVE "} {
		idx := 0
		for {
			pos := strings.Index(upper[idx:], kw)
			if pos < 0 {
				break
			}
			bounds = append(bounds, idx+pos)
			idx += pos + len(kw)
		}
	}
	if len(bounds) == 0 {
		return []string{expr}
	}
	sort.Ints(bounds)
	clauses := make([]string, 0, len(bounds))
	for i, start := range bounds {
		end := len(expr)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		clauses = append(clauses, expr[start:end])
	}
	return clauses
}

func splitAssignment(s string) (attr, valueRef string, ok bool) {
	idx := strings.Index(s, "=")
	if idx < 0 {
		return "", "", false
	}
	attr = strings.TrimSpace(s[:idx])
	valueRef = strings.TrimSpace(s[idx+1:])
	if attr == "" || valueRef == "" {
		return "", "", false
	}
	return attr, valueRef, true
}
