package codec

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"
)

// checkUTF8 returns an error if v contains a string that is not valid UTF-8.
// Strings are searched in the places the JSON encoder writes them: values, map
// keys, elements of slices and arrays and exported struct fields. Byte slices are
// skipped because they are written as base64.
func checkUTF8(v any) error {
	return walkUTF8(reflect.ValueOf(v), make(map[uintptr]struct{}))
}

func walkUTF8(v reflect.Value, seen map[uintptr]struct{}) error {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		if !utf8.ValidString(v.String()) {
			return fmt.Errorf("string %q is not valid UTF-8", v.String())
		}
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if _, ok := seen[v.Pointer()]; ok {
			return nil
		}
		seen[v.Pointer()] = struct{}{}
		return walkUTF8(v.Elem(), seen)
	case reflect.Interface:
		return walkUTF8(v.Elem(), seen)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := walkUTF8(v.Index(i), seen); err != nil {
				return err
			}
		}
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := walkUTF8(v.Index(i), seen); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := walkUTF8(iter.Key(), seen); err != nil {
				return err
			}
			if err := walkUTF8(iter.Value(), seen); err != nil {
				return err
			}
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() && !f.Anonymous {
				continue
			}
			if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name == "-" {
				continue
			}
			if err := walkUTF8(v.Field(i), seen); err != nil {
				return fmt.Errorf("field %s: %w", f.Name, err)
			}
		}
	}
	return nil
}
