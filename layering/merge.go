// Package layering merges option snapshots ordered from strongest to weakest.
// Maps merge key by key, structs field by field; any other value present in a
// stronger layer replaces the weaker one outright.
package layering

import "reflect"

// MergeLayers returns a new value holding every explicit entry of the
// strongest layer, filling the rest from weaker layers in order.
func MergeLayers[T any](layers ...T) T {
	var zero T
	if len(layers) == 0 {
		return zero
	}

	merged := deepCopy(reflect.ValueOf(layers[len(layers)-1]))
	for i := len(layers) - 2; i >= 0; i-- {
		merged = overlay(reflect.ValueOf(layers[i]), merged)
	}
	return asType[T](merged)
}

// Clone returns a deep copy of value. Maps, slices and pointers are detached
// from the original.
func Clone[T any](value T) T {
	return asType[T](deepCopy(reflect.ValueOf(value)))
}

func asType[T any](v reflect.Value) T {
	var zero T
	if !v.IsValid() {
		return zero
	}
	target := reflect.TypeOf(&zero).Elem()
	if v.Type() == target {
		return v.Interface().(T)
	}
	out := reflect.New(target).Elem()
	if v.Type().AssignableTo(target) {
		out.Set(v)
	} else {
		out.Set(v.Convert(target))
	}
	return out.Interface().(T)
}

func overlay(strong, weak reflect.Value) reflect.Value {
	if !strong.IsValid() {
		return deepCopy(weak)
	}

	switch strong.Kind() {
	case reflect.Map:
		if strong.IsNil() {
			return deepCopy(weak)
		}
		out := reflect.MakeMapWithSize(strong.Type(), strong.Len())
		if weak.IsValid() && weak.Kind() == reflect.Map && !weak.IsNil() && weak.Type() == strong.Type() {
			iter := weak.MapRange()
			for iter.Next() {
				out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
			}
		}
		iter := strong.MapRange()
		for iter.Next() {
			if existing := out.MapIndex(iter.Key()); existing.IsValid() {
				out.SetMapIndex(iter.Key(), overlay(iter.Value(), existing))
				continue
			}
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Struct:
		out := reflect.New(strong.Type()).Elem()
		out.Set(strong)
		sameType := weak.IsValid() && weak.Type() == strong.Type()
		for i := 0; i < strong.NumField(); i++ {
			field := out.Field(i)
			if !field.CanSet() {
				continue
			}
			var weakField reflect.Value
			if sameType {
				weakField = weak.Field(i)
			}
			field.Set(overlay(strong.Field(i), weakField))
		}
		return out
	case reflect.Pointer:
		if strong.IsNil() {
			return deepCopy(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && weak.Kind() == reflect.Pointer && !weak.IsNil() {
			weakElem = weak.Elem()
		}
		out := reflect.New(strong.Type().Elem())
		out.Elem().Set(overlay(strong.Elem(), weakElem))
		return out
	case reflect.Interface:
		if strong.IsNil() {
			return deepCopy(weak)
		}
		var weakElem reflect.Value
		if weak.IsValid() && weak.Kind() == reflect.Interface && !weak.IsNil() {
			weakElem = weak.Elem()
		} else if weak.IsValid() && weak.Kind() != reflect.Interface {
			weakElem = weak
		}
		return overlay(strong.Elem(), weakElem)
	case reflect.Slice:
		if strong.IsNil() {
			return deepCopy(weak)
		}
		return deepCopy(strong)
	default:
		return deepCopy(strong)
	}
}

func deepCopy(v reflect.Value) reflect.Value {
	if !v.IsValid() {
		return v
	}

	switch v.Kind() {
	case reflect.Map:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), deepCopy(iter.Value()))
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := 0; i < v.Len(); i++ {
			out.Index(i).Set(deepCopy(v.Index(i)))
		}
		return out
	case reflect.Pointer:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		out := reflect.New(v.Type().Elem())
		out.Elem().Set(deepCopy(v.Elem()))
		return out
	case reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(v.Type())
		}
		elem := deepCopy(v.Elem())
		out := reflect.New(v.Type()).Elem()
		out.Set(elem)
		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		for i := 0; i < v.NumField(); i++ {
			if field := out.Field(i); field.CanSet() {
				field.Set(deepCopy(v.Field(i)))
			}
		}
		return out
	default:
		return v
	}
}
