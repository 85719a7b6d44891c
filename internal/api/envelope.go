package api

import (
	"fmt"
	"strings"
)

// Hint names the shape a call site expects back from an endpoint.
type Hint int

const (
	HintArray Hint = iota
	HintEntity
	HintPaginated
)

func (h Hint) String() string {
	switch h {
	case HintArray:
		return "array"
	case HintEntity:
		return "single-entity"
	case HintPaginated:
		return "paginated"
	default:
		return fmt.Sprintf("hint(%d)", int(h))
	}
}

// ParseHint parses "array", "single-entity" (or "entity") and "paginated".
func ParseHint(s string) (Hint, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "array", "list":
		return HintArray, nil
	case "single-entity", "entity", "single":
		return HintEntity, nil
	case "paginated", "page":
		return HintPaginated, nil
	default:
		return HintArray, fmt.Errorf("invalid hint %q (use array, single-entity, or paginated)", s)
	}
}

// Shape is the top-level envelope classification of a JSON value.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeBareArray
	ShapeBareObject
	ShapeValueWrapped
	ShapeDataWrapped
	ShapePaginatedBare
)

func (s Shape) String() string {
	switch s {
	case ShapeBareArray:
		return "bare-array"
	case ShapeBareObject:
		return "bare-object"
	case ShapeValueWrapped:
		return "value-wrapped"
	case ShapeDataWrapped:
		return "data-wrapped"
	case ShapePaginatedBare:
		return "paginated-bare"
	default:
		return "unknown"
	}
}

// Outcome records how a Normalized value was obtained.
type Outcome int

const (
	// OutcomeDirect: the value already had the expected shape.
	OutcomeDirect Outcome = iota
	// OutcomeUnwrapped: one envelope level was removed and the payload matched.
	OutcomeUnwrapped
	// OutcomeBestEffort: a plausible payload was returned without a structural match.
	OutcomeBestEffort
	// OutcomeDefault: nothing matched; Value is the hint's empty default or the input.
	OutcomeDefault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDirect:
		return "direct"
	case OutcomeUnwrapped:
		return "unwrapped"
	case OutcomeBestEffort:
		return "best-effort"
	case OutcomeDefault:
		return "default"
	default:
		return "unknown"
	}
}

// Normalized is the logical payload extracted from a response body.
type Normalized struct {
	Value   any
	Shape   Shape
	Outcome Outcome
}

// Degraded reports whether the payload was produced without a structural match.
func (n Normalized) Degraded() bool {
	return n.Outcome == OutcomeBestEffort || n.Outcome == OutcomeDefault
}

const (
	keyValue = "value"
	keyData  = "data"
	keyItems = "items"
)

// pageIndexKeys are the field names that mark an object as a page of results.
var pageIndexKeys = []string{"currentPage", "pageIndex", "pageNumber"}

var defaultDiscriminators = []string{"id"}

// Classify returns the envelope shape of v. discriminators identify a bare
// entity; when none are given "id" is used.
//
// Tests run in a fixed order: array, paginated object, bare entity, value
// wrapper, data wrapper.
func Classify(v any, discriminators ...string) Shape {
	if _, ok := asArray(v); ok {
		return ShapeBareArray
	}
	obj, ok := asObject(v)
	if !ok {
		return ShapeUnknown
	}
	if isPageObject(obj) {
		return ShapePaginatedBare
	}
	if hasAll(obj, discriminatorsOrDefault(discriminators)) {
		return ShapeBareObject
	}
	if _, ok := obj[keyValue]; ok {
		return ShapeValueWrapped
	}
	if _, ok := obj[keyData]; ok {
		return ShapeDataWrapped
	}
	return ShapeUnknown
}

// Unwrap extracts the logical payload of v for the given hint. It never
// fails: a shape mismatch degrades to an empty default (see Outcome).
func Unwrap(v any, hint Hint, discriminators ...string) Normalized {
	switch hint {
	case HintEntity:
		return UnwrapEntity(v, discriminators...)
	case HintPaginated:
		return UnwrapPaginated(v)
	default:
		return UnwrapArray(v)
	}
}

// UnwrapArray returns v itself when it is an array, else v.value, else
// v.data, else an empty array.
func UnwrapArray(v any) Normalized {
	if arr, ok := asArray(v); ok {
		return Normalized{Value: arr, Shape: ShapeBareArray, Outcome: OutcomeDirect}
	}
	if obj, ok := asObject(v); ok {
		if arr, ok := asArray(obj[keyValue]); ok {
			return Normalized{Value: arr, Shape: ShapeValueWrapped, Outcome: OutcomeUnwrapped}
		}
		if arr, ok := asArray(obj[keyData]); ok {
			return Normalized{Value: arr, Shape: ShapeDataWrapped, Outcome: OutcomeUnwrapped}
		}
	}
	return Normalized{Value: []any{}, Shape: Classify(v), Outcome: OutcomeDefault}
}

// UnwrapEntity returns the first of v, v.value, v.data that carries every
// discriminator field. Failing that it returns v.value or v.data when present,
// and finally v unchanged.
func UnwrapEntity(v any, discriminators ...string) Normalized {
	keys := discriminatorsOrDefault(discriminators)
	obj, ok := asObject(v)
	if !ok {
		return Normalized{Value: v, Shape: Classify(v, keys...), Outcome: OutcomeDefault}
	}
	if hasAll(obj, keys) {
		return Normalized{Value: obj, Shape: ShapeBareObject, Outcome: OutcomeDirect}
	}
	if inner, ok := asObject(obj[keyValue]); ok && hasAll(inner, keys) {
		return Normalized{Value: inner, Shape: ShapeValueWrapped, Outcome: OutcomeUnwrapped}
	}
	if inner, ok := asObject(obj[keyData]); ok && hasAll(inner, keys) {
		return Normalized{Value: inner, Shape: ShapeDataWrapped, Outcome: OutcomeUnwrapped}
	}
	if inner := obj[keyValue]; inner != nil {
		return Normalized{Value: inner, Shape: ShapeValueWrapped, Outcome: OutcomeBestEffort}
	}
	if inner := obj[keyData]; inner != nil {
		return Normalized{Value: inner, Shape: ShapeDataWrapped, Outcome: OutcomeBestEffort}
	}
	return Normalized{Value: v, Shape: ShapeUnknown, Outcome: OutcomeDefault}
}

// UnwrapPaginated returns an object with an "items" array. A top-level
// object with items and a page index is returned as is; otherwise one
// wrapper level (value, then data) is removed and re-tested, and a bare
// array found there becomes {"items": [...]} without metadata. Anything
// else, including a top-level array, yields {"items": []}.
func UnwrapPaginated(v any) Normalized {
	obj, ok := asObject(v)
	if !ok {
		return emptyPage(Classify(v))
	}
	if isPageObject(obj) {
		return Normalized{Value: obj, Shape: ShapePaginatedBare, Outcome: OutcomeDirect}
	}
	for _, key := range []string{keyValue, keyData} {
		inner := obj[key]
		if inner == nil {
			continue
		}
		shape := ShapeValueWrapped
		if key == keyData {
			shape = ShapeDataWrapped
		}
		if arr, ok := asArray(inner); ok {
			return Normalized{Value: map[string]any{keyItems: arr}, Shape: shape, Outcome: OutcomeUnwrapped}
		}
		if innerObj, ok := asObject(inner); ok && isPageObject(innerObj) {
			return Normalized{Value: innerObj, Shape: shape, Outcome: OutcomeUnwrapped}
		}
	}
	return emptyPage(Classify(v))
}

// PageItems returns the items array of a normalized paginated value.
func PageItems(n Normalized) []any {
	obj, ok := asObject(n.Value)
	if !ok {
		return []any{}
	}
	if items, ok := asArray(obj[keyItems]); ok {
		return items
	}
	return []any{}
}

func emptyPage(shape Shape) Normalized {
	return Normalized{Value: map[string]any{keyItems: []any{}}, Shape: shape, Outcome: OutcomeDefault}
}

func isPageObject(obj map[string]any) bool {
	if !hasItems(obj) {
		return false
	}
	for _, key := range pageIndexKeys {
		if obj[key] != nil {
			return true
		}
	}
	return false
}

func hasItems(obj map[string]any) bool {
	_, ok := asArray(obj[keyItems])
	return ok
}

func hasAll(obj map[string]any, keys []string) bool {
	for _, key := range keys {
		if _, ok := obj[key]; !ok {
			return false
		}
	}
	return true
}

func discriminatorsOrDefault(keys []string) []string {
	if len(keys) == 0 {
		return defaultDiscriminators
	}
	return keys
}
