// Package listfilter narrows fetched entity lists on the client side.
package listfilter

import "strings"

// Predicate reports whether an item stays in the filtered view.
type Predicate[T any] func(T) bool

// Apply keeps the items for which every predicate holds, preserving order.
// The result never holds more items than the input.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if matchesAll(item, preds) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll[T any](item T, preds []Predicate[T]) bool {
	for _, pred := range preds {
		if pred != nil && !pred(item) {
			return false
		}
	}
	return true
}

// FieldEquals matches items whose field equals value. An empty value matches everything.
func FieldEquals[T any](get func(T) string, value string) Predicate[T] {
	if value == "" {
		return nil
	}
	return func(item T) bool {
		return get(item) == value
	}
}

// NameContains is a case-insensitive substring match on a display name.
// A blank query matches everything.
func NameContains[T any](get func(T) string, query string) Predicate[T] {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	return func(item T) bool {
		return strings.Contains(strings.ToLower(get(item)), query)
	}
}
