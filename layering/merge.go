// Package layering composes keyed snapshots ordered from strongest to weakest.
package layering

import "reflect"

// MergeLayers composes keyed snapshots ordered from strongest to weakest. A key
// takes its value from the strongest layer that sets it; nil values fall
// through to weaker layers. Returned values are deep copies.
func MergeLayers[M ~map[K]V, K comparable, V any](layers ...M) M {
	if len(layers) == 0 {
		return nil
	}
	merged := make(M)
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			if isUnset(reflect.ValueOf(value)) {
				continue
			}
			merged[key] = Clone(value)
		}
	}
	return merged
}

// Hit records whether one layer sets a key.
type Hit[V any] struct {
	Index int
	Value V
	Found bool
}

// Lookup reports, for every layer from strongest to weakest, whether key is
// set and to what.
func Lookup[M ~map[K]V, K comparable, V any](key K, layers ...M) []Hit[V] {
	hits := make([]Hit[V], len(layers))
	for i, layer := range layers {
		hits[i].Index = i
		value, ok := layer[key]
		if !ok || isUnset(reflect.ValueOf(value)) {
			continue
		}
		hits[i].Value = Clone(value)
		hits[i].Found = true
	}
	return hits
}

// Winner returns the index of the strongest layer that sets key, or -1.
func Winner[M ~map[K]V, K comparable, V any](key K, layers ...M) int {
	for i, layer := range layers {
		if value, ok := layer[key]; ok && !isUnset(reflect.ValueOf(value)) {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of value.
func Clone[T any](value T) T {
	cloned := cloneValue(reflect.ValueOf(value))
	if !cloned.IsValid() {
		var zero T
		return zero
	}
	return cloned.Interface().(T)
}

func isUnset(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

func cloneValue(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.New(v.Type().Elem())
		clone.Elem().Set(cloneValue(v.Elem()))
		return clone
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := cloneValue(v.Elem())
		if !elem.IsValid() {
			return reflect.Zero(v.Type())
		}
		return elem.Convert(v.Type())
	case reflect.Struct:
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		for i := 0; i < v.NumField(); i++ {
			field := clone.Field(i)
			if !field.CanSet() {
				continue
			}
			field.Set(cloneValue(v.Field(i)))
		}
		return clone
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			clone.SetMapIndex(iter.Key(), cloneValue(iter.Value()))
		}
		return clone
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		if v.Type().Elem().Kind() == reflect.Uint8 {
			reflect.Copy(clone, v)
			return clone
		}
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	case reflect.Array:
		clone := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			clone.Index(i).Set(cloneValue(v.Index(i)))
		}
		return clone
	default:
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		return clone
	}
}
