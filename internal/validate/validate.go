// Package validate checks decoded JSON request bodies against declarative
// per-field rules and reports every violation as an ordered list of
// field-level problems.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/tuncerburak97/iskele/internal/apierror"
)

// Rule inspects one field of a decoded body. A nil result means the field
// passes.
type Rule func(body map[string]interface{}) *apierror.Problem

// Body decodes the request body and applies rules in order. An unreadable
// body yields a plain 400; any rule violation yields a validation error
// carrying every collected problem.
func Body(c *fiber.Ctx, rules ...Rule) error {
	raw := c.Body()

	body := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			return apierror.BadRequest("Request body must be valid JSON")
		}
	}

	var problems []apierror.Problem
	for _, rule := range rules {
		if p := rule(body); p != nil {
			problems = append(problems, *p)
		}
	}

	if len(problems) > 0 {
		return &apierror.ValidationError{Problems: problems}
	}
	return nil
}

// Required fails when the field is absent or null.
func Required(field string) Rule {
	return func(body map[string]interface{}) *apierror.Problem {
		if v, ok := lookup(body, field); !ok || v == nil {
			return &apierror.Problem{Field: field, Message: "is required"}
		}
		return nil
	}
}

// String fails when the field is present but not a string. Absence is left
// to Required.
func String(field string) Rule {
	return func(body map[string]interface{}) *apierror.Problem {
		v, ok := lookup(body, field)
		if !ok || v == nil {
			return nil
		}
		if _, isString := v.(string); !isString {
			return &apierror.Problem{Field: field, Message: "must be string", Provided: v}
		}
		return nil
	}
}

// MinLength fails when the field holds a string shorter than n characters.
func MinLength(field string, n int) Rule {
	return func(body map[string]interface{}) *apierror.Problem {
		v, ok := lookup(body, field)
		if !ok || v == nil {
			return nil
		}
		s, isString := v.(string)
		if !isString {
			return nil
		}
		if len(s) < n {
			return &apierror.Problem{
				Field:    field,
				Message:  fmt.Sprintf("must be at least %d characters long", n),
				Provided: s,
			}
		}
		return nil
	}
}

// OneOf fails when the field holds a value outside the allowed set.
func OneOf(field string, allowed ...string) Rule {
	return func(body map[string]interface{}) *apierror.Problem {
		v, ok := lookup(body, field)
		if !ok || v == nil {
			return nil
		}
		s, isString := v.(string)
		if isString {
			for _, a := range allowed {
				if s == a {
					return nil
				}
			}
		}
		return &apierror.Problem{
			Field:    field,
			Message:  "must be one of the allowed values",
			Provided: v,
			Expected: allowed,
		}
	}
}

// lookup resolves a JSON-pointer style locator ("/profile/email") against
// the decoded body.
func lookup(body map[string]interface{}, field string) (interface{}, bool) {
	parts := strings.Split(strings.TrimPrefix(field, "/"), "/")

	var current interface{} = body
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
