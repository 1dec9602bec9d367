package layout

import "reflect"

// Alignment and type-shape utilities for block layout computation.
// Block headers, allocator instances, and payload storage share one
// allocation, so offsets must be computed with the same rounding rules
// the compiler applies to struct fields.

// AlignUp returns n aligned up to the next multiple of align.
// align must be a power of two.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 8)  = 16
//	AlignUp(0, 16) = 0
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// Aligned reports whether n is a multiple of align.
// align must be a power of two.
func Aligned(n, align uintptr) bool {
	return n&(align-1) == 0
}

// HasPointers reports whether values of type T contain Go pointers the
// collector would need to trace: pointers, slices, strings, maps,
// channels, funcs, interfaces, or unsafe.Pointer, at any nesting depth.
//
// Blocks holding such payloads in raw memory need collector-visibility
// handling; pointer-free payloads do not.
func HasPointers[T any]() bool {
	return typeHasPointers(reflect.TypeFor[T](), nil)
}

// HasPointersExcept is HasPointers over a reflect.Type, ignoring any
// field (at any depth) whose type equals skip. Used for payloads that
// embed bookkeeping structs whose internal pointers reference
// process-lifetime data and never need tracing.
func HasPointersExcept(t, skip reflect.Type) bool {
	return typeHasPointers(t, skip)
}

func typeHasPointers(t, skip reflect.Type) bool {
	if skip != nil && t == skip {
		return false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && typeHasPointers(t.Elem(), skip)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if typeHasPointers(t.Field(i).Type, skip) {
				return true
			}
		}
		return false
	default:
		// Ptr, UnsafePointer, Slice, String, Map, Chan, Func, Interface.
		return true
	}
}
