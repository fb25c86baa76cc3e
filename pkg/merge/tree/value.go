package tree

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FromValue converts a Go value into a Node.
//
// Maps with string keys become mappings with keys sorted, since Go maps carry
// no order. Structs become mappings of their exported fields in declaration
// order, named by the json tag when one is set. Slices and arrays become
// sequences, except []byte which is taken as a string. Pointers and
// interfaces are followed. Anything else that is not a number, string,
// boolean or time is formatted with fmt.
func FromValue(v any) *Node {
	switch x := v.(type) {
	case nil:
		return NewNull()
	case *Node:
		if x == nil {
			return NewNull()
		}
		return x
	case string:
		return NewString(x)
	case []byte:
		return NewString(string(x))
	case bool:
		return NewBool(x)
	case json.Number:
		return NewNumber(x.String())
	case time.Time:
		return NewString(x.Format(time.RFC3339))
	case fmt.Stringer:
		return NewString(x.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NewNull()
		}
		return FromValue(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &Node{Kind: Scalar, Type: Number, Value: strconv.FormatInt(rv.Int(), 10)}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return &Node{Kind: Scalar, Type: Number, Value: strconv.FormatUint(rv.Uint(), 10)}
	case reflect.Float32, reflect.Float64:
		return &Node{Kind: Scalar, Type: Number, Value: formatFloat(rv.Float())}
	case reflect.String:
		return NewString(rv.String())
	case reflect.Bool:
		return NewBool(rv.Bool())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return NewSequence()
		}
		items := make([]*Node, rv.Len())
		for i := range items {
			items[i] = FromValue(rv.Index(i).Interface())
		}
		return NewSequence(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return NewString(fmt.Sprint(v))
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		n := &Node{Kind: Mapping, Fields: make([]Field, 0, len(keys))}
		for _, k := range keys {
			val := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()))
			n.Fields = append(n.Fields, Field{Key: k, Value: FromValue(val.Interface())})
		}
		return n
	case reflect.Struct:
		return NewMapping(structFields(rv)...)
	}
	return NewString(fmt.Sprint(v))
}

// structFields lists the exported fields of a struct. Exported embedded structs
// without a json name are inlined; fields tagged `json:"-"` are skipped.
func structFields(rv reflect.Value) []Field {
	var fields []Field
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, skip := jsonName(sf)
		if skip || !sf.IsExported() {
			continue
		}

		fv := rv.Field(i)
		if sf.Anonymous && name == "" {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				fields = append(fields, structFields(fv)...)
				continue
			}
		}
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, Field{Key: name, Value: FromValue(fv.Interface())})
	}
	return fields
}

func jsonName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" && tag == "-" {
		return "", true
	}
	return name, false
}
