package modelgen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/andrewkroh/go-sqlmodel/sqlmodel"
)

// Record is a struct type selected as a model, with its derived table.
type Record struct {
	TypeName string
	Fields   []sqlmodel.Field // one per column, in declaration order
	Model    *sqlmodel.Model

	// Named maps a Go field name to the named type it was declared with,
	// e.g. "UserID" for a field of type `type UserID int64`. The field's
	// GoType then holds the underlying builtin.
	Named map[string]string
}

// DeclType returns the type, without pointer, that f was declared with.
func (r *Record) DeclType(f sqlmodel.Field) string {
	if named, ok := r.Named[f.Name]; ok {
		return named
	}
	return f.GoType
}

// Mandatory returns the fields whose columns must be supplied.
func (r *Record) Mandatory() []sqlmodel.Field {
	var out []sqlmodel.Field
	for i, c := range r.Model.Columns {
		if c.Mandatory() {
			out = append(out, r.Fields[i])
		}
	}
	return out
}

// Source is the result of parsing a package directory.
type Source struct {
	Package string
	Records map[string]*Record
	Order   []string // record type names in source order
}

// ParseDir parses the non-test Go files of dir, skipping the file named
// exclude, and derives a Record for every struct type accepted by include.
func ParseDir(dir, exclude string, include func(string) bool) (*Source, error) {
	fset := token.NewFileSet()
	filter := func(fi fs.FileInfo) bool {
		name := fi.Name()
		return !strings.HasSuffix(name, "_test.go") && name != exclude
	}
	pkgs, err := parser.ParseDir(fset, dir, filter, parser.SkipObjectResolution)
	if err != nil {
		return nil, fmt.Errorf("parsing Go source in %s: %w", dir, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("expected one package in %s, found %d", dir, len(pkgs))
	}

	var pkg *ast.Package
	for _, p := range pkgs {
		pkg = p
	}

	// Sort files so that results do not depend on map order.
	names := make([]string, 0, len(pkg.Files))
	for name := range pkg.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	structs := make(map[string]*ast.StructType)
	named := make(map[string]string) // type X Y and type X = Y, by name
	var order []string
	tableNames := make(map[string]string)
	for _, name := range names {
		file := pkg.Files[name]
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.GenDecl:
				if d.Tok != token.TYPE {
					continue
				}
				for _, spec := range d.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok || ts.TypeParams != nil {
						continue
					}
					if ident, isIdent := ts.Type.(*ast.Ident); isIdent {
						named[ts.Name.Name] = ident.Name
						continue
					}
					st, ok := ts.Type.(*ast.StructType)
					if !ok || !include(ts.Name.Name) {
						continue
					}
					structs[ts.Name.Name] = st
					order = append(order, ts.Name.Name)
				}
			case *ast.FuncDecl:
				typeName, table, ok, err := tableNameMethod(d)
				if err != nil {
					return nil, err
				}
				if ok {
					tableNames[typeName] = table
				}
			}
		}
	}

	src := &Source{Package: pkg.Name, Records: make(map[string]*Record, len(structs)), Order: order}
	for _, typeName := range order {
		table, ok := tableNames[typeName]
		if !ok {
			table = sqlmodel.TableNameFor(typeName)
		}
		rec, err := parseRecord(typeName, table, structs[typeName], named)
		if err != nil {
			return nil, err
		}
		src.Records[typeName] = rec
	}
	return src, nil
}

// tableNameMethod recognizes `func (T) TableName() string { return "lit" }`
// with a value or pointer receiver.
func tableNameMethod(fd *ast.FuncDecl) (typeName, table string, ok bool, err error) {
	if fd.Recv == nil || len(fd.Recv.List) != 1 || fd.Name.Name != "TableName" {
		return "", "", false, nil
	}
	recv := fd.Recv.List[0].Type
	if star, isStar := recv.(*ast.StarExpr); isStar {
		recv = star.X
	}
	ident, isIdent := recv.(*ast.Ident)
	if !isIdent {
		return "", "", false, nil
	}

	invalid := &sqlmodel.Error{
		Kind: sqlmodel.KindInvalidModel,
		Err:  fmt.Errorf("%s.TableName must return a string literal", ident.Name),
	}
	if fd.Body == nil || len(fd.Body.List) != 1 {
		return "", "", false, invalid
	}
	ret, isRet := fd.Body.List[0].(*ast.ReturnStmt)
	if !isRet || len(ret.Results) != 1 {
		return "", "", false, invalid
	}
	lit, isLit := ret.Results[0].(*ast.BasicLit)
	if !isLit || lit.Kind != token.STRING {
		return "", "", false, invalid
	}
	table, err = strconv.Unquote(lit.Value)
	if err != nil {
		return "", "", false, invalid
	}
	return ident.Name, table, true, nil
}

// underlying follows a chain of same-package type declarations to a builtin
// type name. It reports false when the chain ends at anything else.
func underlying(name string, named map[string]string) (string, bool) {
	for range len(named) + 1 {
		next, ok := named[name]
		if !ok {
			_, builtin := sqlmodel.SQLTypeOf(name)
			return name, builtin
		}
		name = next
	}
	return "", false // cycle
}

func parseRecord(typeName, table string, st *ast.StructType, named map[string]string) (*Record, error) {
	rec := &Record{TypeName: typeName, Named: make(map[string]string)}
	var cols []sqlmodel.Column
	for _, field := range st.Fields.List {
		if len(field.Names) == 0 {
			return nil, &sqlmodel.Error{
				Kind:  sqlmodel.KindInvalidModel,
				Table: table,
				Err:   fmt.Errorf("%s: embedded fields are not supported", typeName),
			}
		}

		var tag string
		if field.Tag != nil {
			raw, err := strconv.Unquote(field.Tag.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: bad struct tag %s: %w", typeName, field.Tag.Value, err)
			}
			tag = reflect.StructTag(raw).Get(sqlmodel.TagKey)
		}
		column, opts, skip, err := sqlmodel.ParseTag(tag)
		if err != nil {
			return nil, withTable(err, table)
		}
		if skip {
			continue
		}

		goType, optional := baseType(field.Type)
		declType := goType
		if _, isNamed := named[goType]; isNamed {
			if builtin, ok := underlying(goType, named); ok {
				goType = builtin
			}
		}
		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}
			f := sqlmodel.Field{
				Name:     name.Name,
				Column:   column,
				GoType:   goType,
				Optional: optional,
				Options:  opts,
			}
			col, err := sqlmodel.DeriveColumn(f)
			if err != nil {
				return nil, withTable(err, table)
			}
			rec.Fields = append(rec.Fields, f)
			cols = append(cols, col)
			if declType != goType {
				rec.Named[name.Name] = declType
			}
		}
	}

	m, err := sqlmodel.NewModel(table, cols...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", typeName, err)
	}
	rec.Model = m
	return rec, nil
}

// baseType returns the source text of a field type with one pointer layer
// removed. Only plain identifiers can name a supported type; anything else
// is returned verbatim and rejected by column derivation.
func baseType(expr ast.Expr) (string, bool) {
	optional := false
	if star, ok := expr.(*ast.StarExpr); ok {
		optional = true
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name, optional
	}
	return exprString(expr), optional
}

func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	case *ast.StarExpr:
		return "*" + exprString(e.X)
	case *ast.ArrayType:
		return "[]" + exprString(e.Elt)
	case *ast.MapType:
		return "map[" + exprString(e.Key) + "]" + exprString(e.Value)
	default:
		return fmt.Sprintf("%T", expr)
	}
}

func withTable(err error, table string) error {
	if e, ok := err.(*sqlmodel.Error); ok && e.Table == "" {
		e.Table = table
	}
	return err
}
