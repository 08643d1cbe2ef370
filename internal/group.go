package internal

import (
	"slices"
	"strings"
)

// Key identifies a group. It is either a scalar (e.g. a loader name) or a set of strings
// (e.g. the loaders applied to a resource) where order and duplicates do not matter.
type Key struct {
	scalar string
	set    []string
	isSet  bool
}

// ScalarKey returns a key compared by strict string equality
func ScalarKey(s string) Key {
	return Key{scalar: s}
}

// SetKey returns a key compared by membership, ignoring order and duplicates
func SetKey(elems ...string) Key {
	set := make([]string, len(elems))
	copy(set, elems)
	return Key{set: set, isSet: true}
}

// IsSet reports whether the key is a set key
func (k Key) IsSet() bool {
	return k.isSet
}

// Elements returns the elements of a set key, or the scalar as a single element
func (k Key) Elements() []string {
	if !k.isSet {
		return []string{k.scalar}
	}
	return slices.Clone(k.set)
}

// Equal reports whether two keys identify the same group. Two set keys are equal when each is
// a subset of the other.
func (k Key) Equal(other Key) bool {
	if k.isSet != other.isSet {
		return false
	}
	if !k.isSet {
		return k.scalar == other.scalar
	}
	return isSubset(k.set, other.set) && isSubset(other.set, k.set)
}

func (k Key) String() string {
	if !k.isSet {
		return k.scalar
	}
	return "[" + strings.Join(k.set, ", ") + "]"
}

func isSubset(xs, ys []string) bool {
	for _, x := range xs {
		if !slices.Contains(ys, x) {
			return false
		}
	}
	return true
}

// Group is a set of items sharing an equal key
type Group[T any] struct {
	Key   Key
	Items []T
}

// GroupBy partitions items into groups of equal keys. Groups appear in the order their key was
// first seen and items keep their input order.
func GroupBy[T any](items []T, key func(T) Key) []Group[T] {
	var groups []Group[T]

	for _, item := range items {
		k := key(item)
		idx := slices.IndexFunc(groups, func(g Group[T]) bool { return g.Key.Equal(k) })
		if idx == -1 {
			groups = append(groups, Group[T]{Key: k, Items: []T{item}})
			continue
		}
		groups[idx].Items = append(groups[idx].Items, item)
	}

	return groups
}
