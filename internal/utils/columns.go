package utils

import (
	"fmt"
	"reflect"
	"strings"
)

const columnTag = "db"

// Columns lists the db tag of every exported, tagged field in declaration
// order.
func Columns(row any) []string {
	var columns []string
	eachColumn(row, func(name string, _ reflect.Value) {
		columns = append(columns, name)
	})
	return columns
}

// ColumnValues maps each db tag to the field's value, ready for
// squirrel's SetMap.
func ColumnValues(row any) map[string]any {
	values := make(map[string]any)
	eachColumn(row, func(name string, v reflect.Value) {
		values[name] = v.Interface()
	})
	return values
}

func eachColumn(row any, fn func(name string, v reflect.Value)) {
	v := reflect.Indirect(reflect.ValueOf(row))
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("utils: %T is not a struct", row))
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(field.Tag.Get(columnTag), ",")
		if name == "" || name == "-" {
			continue
		}
		fn(name, v.Field(i))
	}
}
