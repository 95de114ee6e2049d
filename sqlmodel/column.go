package sqlmodel

import (
	"fmt"
	"reflect"
	"strings"
)

// TagKey is the struct tag key read for column annotations.
const TagKey = "db"

// Tag options understood in the db struct tag.
const (
	OptPrimaryKey    = "primary_key"
	OptUnique        = "unique"
	OptAutoIncrement = "auto_increment"
)

// SQLType is the storage class of a column.
type SQLType int

const (
	Integer SQLType = iota + 1
	Text
)

func (t SQLType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Text:
		return "TEXT"
	default:
		return fmt.Sprintf("SQLType(%d)", int(t))
	}
}

// Column describes one column of a table.
type Column struct {
	Name          string
	Type          SQLType
	Nullable      bool
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool // implies PrimaryKey
}

// Mandatory reports whether a value must be supplied for the column before
// a record can be inserted. Nullable and auto-generated columns are exempt.
func (c Column) Mandatory() bool {
	return !c.Nullable && !c.AutoIncrement
}

// Constraints returns the constraint clause of the column. The order is
// fixed: NOT NULL, PRIMARY KEY, AUTOINCREMENT, UNIQUE.
func (c Column) Constraints() string {
	var b strings.Builder
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.PrimaryKey || c.AutoIncrement {
		b.WriteString(" PRIMARY KEY")
	}
	if c.AutoIncrement {
		b.WriteString(" AUTOINCREMENT")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	return strings.TrimPrefix(b.String(), " ")
}

// Definition returns the column definition used inside CREATE TABLE,
// e.g. "name TEXT NOT NULL UNIQUE".
func (c Column) Definition() string {
	def := QuoteName(c.Name) + " " + c.Type.String()
	if cons := c.Constraints(); cons != "" {
		def += " " + cons
	}
	return def
}

func (c Column) validate() error {
	if c.Name == "" {
		return fmt.Errorf("column has no name")
	}
	if c.Type != Integer && c.Type != Text {
		return fmt.Errorf("column %q has unknown type %v", c.Name, c.Type)
	}
	if c.AutoIncrement && c.Type != Integer {
		return fmt.Errorf("column %q: %s requires an integer column", c.Name, OptAutoIncrement)
	}
	return nil
}

// Options holds the annotations attached to a field.
type Options struct {
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool
}

// Field is the input to column derivation: a struct field's name, its
// declared base type, and its annotations. It is filled either from
// reflection (FieldFromStruct) or from parsed Go source.
type Field struct {
	Name     string // Go field name
	Column   string // column name from the tag; derived from Name when empty
	GoType   string // base type with one pointer layer removed, e.g. "int64"
	Optional bool   // the declared type was a pointer
	Options  Options
}

// ParseTag parses the value of a db struct tag of the form
// "name,primary_key,unique,auto_increment". Every part is optional. It
// reports skip=true for the tag "-".
func ParseTag(tag string) (name string, opts Options, skip bool, err error) {
	if tag == "-" {
		return "", Options{}, true, nil
	}
	parts := strings.Split(tag, ",")
	name = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case OptPrimaryKey:
			opts.PrimaryKey = true
		case OptUnique:
			opts.Unique = true
		case OptAutoIncrement:
			opts.AutoIncrement = true
		case "":
		default:
			return "", Options{}, false, &Error{Kind: KindInvalidModel, Column: name, Err: fmt.Errorf("unknown tag option %q", p)}
		}
	}
	return name, opts, false, nil
}

// integerTypes lists every Go integer type accepted for an INTEGER column.
var integerTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "byte": true, "rune": true,
}

// SQLTypeOf maps a Go base type name to its storage type.
func SQLTypeOf(goType string) (SQLType, bool) {
	switch {
	case goType == "string":
		return Text, true
	case integerTypes[goType]:
		return Integer, true
	default:
		return 0, false
	}
}

// DeriveColumn builds the Column for a field. Unsupported base types fail
// with ErrUnsupportedFieldType; auto_increment on a non-integer column fails
// with ErrInvalidModel.
func DeriveColumn(f Field) (Column, error) {
	name := f.Column
	if name == "" {
		name = ToSQLName(f.Name)
	}

	sqlType, ok := SQLTypeOf(f.GoType)
	if !ok {
		return Column{}, &Error{
			Kind:   KindUnsupportedFieldType,
			Column: name,
			Err:    fmt.Errorf("field %s has type %s", f.Name, f.GoType),
		}
	}

	col := Column{
		Name:          name,
		Type:          sqlType,
		Nullable:      f.Optional,
		PrimaryKey:    f.Options.PrimaryKey || f.Options.AutoIncrement,
		Unique:        f.Options.Unique,
		AutoIncrement: f.Options.AutoIncrement,
	}
	if err := col.validate(); err != nil {
		return Column{}, &Error{Kind: KindInvalidModel, Column: name, Err: err}
	}
	return col, nil
}

// FieldFromStruct converts a struct field into a derivation input. It
// reports ok=false for unexported fields and fields tagged `db:"-"`.
func FieldFromStruct(sf reflect.StructField) (f Field, ok bool, err error) {
	if !sf.IsExported() {
		return Field{}, false, nil
	}
	name, opts, skip, err := ParseTag(sf.Tag.Get(TagKey))
	if err != nil {
		return Field{}, false, err
	}
	if skip {
		return Field{}, false, nil
	}

	t := sf.Type
	optional := false
	if t.Kind() == reflect.Pointer {
		optional = true
		t = t.Elem()
	}

	return Field{
		Name:     sf.Name,
		Column:   name,
		GoType:   kindName(t),
		Optional: optional,
		Options:  opts,
	}, true, nil
}

// kindName returns the builtin type name matching t's kind, so that named
// types such as `type UserID int64` derive like their underlying type. Kinds
// without a storage mapping return the type's own name.
func kindName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return t.Kind().String()
	default:
		return t.String()
	}
}
