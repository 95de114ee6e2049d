package modelgen

import (
	"io"

	"github.com/dave/jennifer/jen"

	"github.com/andrewkroh/go-sqlmodel/sqlmodel"
)

const sqlmodelPkg = "github.com/andrewkroh/go-sqlmodel/sqlmodel"

// Schema is a resolved schema declaration.
type Schema struct {
	Name    string
	Records []*Record // creation order
}

// Emit renders the generated file for records and schemas to w.
func Emit(w io.Writer, pkg string, records []*Record, schemas []*Schema) error {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by sqlmodelgen. DO NOT EDIT.")
	f.ImportName(sqlmodelPkg, "sqlmodel")

	for _, s := range schemas {
		emitSchema(f, s)
	}
	for _, r := range records {
		emitModel(f, r)
		emitBuilder(f, r)
		emitFinalize(f, r)
	}
	return f.Render(w)
}

func modelVar(r *Record) string   { return r.TypeName + "Model" }
func builderName(r *Record) string { return r.TypeName + "Insert" }
func constraint(r *Record) string  { return "Has" + r.TypeName }
func marker(r *Record) string      { return "includes" + r.TypeName }

// value renders v converted to the builtin type of field when the field was
// declared with a named type.
func value(r *Record, field sqlmodel.Field, v jen.Code) jen.Code {
	if _, ok := r.Named[field.Name]; ok {
		return jen.Id(field.GoType).Call(v)
	}
	return v
}

func emitSchema(f *jen.File, s *Schema) {
	f.Commentf("%s is a schema. Its tables are created in the order Models lists them.", s.Name)
	f.Type().Id(s.Name).Struct()

	f.Commentf("Models returns the tables of %s in creation order.", s.Name)
	f.Func().Params(jen.Id(s.Name)).Id("Models").Params().Index().Op("*").Qual(sqlmodelPkg, "Model").Block(
		jen.Return(jen.Index().Op("*").Qual(sqlmodelPkg, "Model").ValuesFunc(func(g *jen.Group) {
			for _, r := range s.Records {
				g.Id(modelVar(r))
			}
		})),
	)

	for _, r := range s.Records {
		f.Line()
		f.Func().Params(jen.Id(s.Name)).Id(marker(r)).Params().Block()
	}
}

func emitModel(f *jen.File, r *Record) {
	f.Commentf("%s describes the %s table.", modelVar(r), r.Model.Table)
	f.Var().Id(modelVar(r)).Op("=").Op("&").Qual(sqlmodelPkg, "Model").Values(jen.Dict{
		jen.Id("Table"): jen.Lit(r.Model.Table),
		jen.Id("Columns"): jen.Index().Qual(sqlmodelPkg, "Column").CustomFunc(jen.Options{
			Open:      "{",
			Close:     "}",
			Separator: ",",
			Multi:     true,
		}, func(g *jen.Group) {
			for _, c := range r.Model.Columns {
				g.Values(columnValues(c)...)
			}
		}),
	})
}

func columnValues(c sqlmodel.Column) []jen.Code {
	typ := "Text"
	if c.Type == sqlmodel.Integer {
		typ = "Integer"
	}
	vals := []jen.Code{
		jen.Id("Name").Op(":").Lit(c.Name),
		jen.Id("Type").Op(":").Qual(sqlmodelPkg, typ),
	}
	if c.Nullable {
		vals = append(vals, jen.Id("Nullable").Op(":").True())
	}
	if c.PrimaryKey {
		vals = append(vals, jen.Id("PrimaryKey").Op(":").True())
	}
	if c.Unique {
		vals = append(vals, jen.Id("Unique").Op(":").True())
	}
	if c.AutoIncrement {
		vals = append(vals, jen.Id("AutoIncrement").Op(":").True())
	}
	return vals
}

// builderType renders the builder type instantiated with states, one per
// mandatory column. A builder without mandatory columns is not generic.
func builderType(r *Record, states []jen.Code) *jen.Statement {
	if len(states) == 0 {
		return jen.Id(builderName(r))
	}
	return jen.Id(builderName(r)).Types(states...)
}

// slots returns the type parameter names of r's builder.
func slots(r *Record) []jen.Code {
	var out []jen.Code
	for _, f := range r.Mandatory() {
		out = append(out, jen.Id(f.Name))
	}
	return out
}

func uniform(r *Record, state string) []jen.Code {
	var out []jen.Code
	for range r.Mandatory() {
		out = append(out, jen.Qual(sqlmodelPkg, state))
	}
	return out
}

func emitBuilder(f *jen.File, r *Record) {
	name := builderName(r)
	table := r.Model.Table
	params := slots(r)

	if len(params) == 0 {
		f.Commentf("%s builds a row of the %s table. The table has no mandatory columns.", name, table)
		f.Type().Id(name).Struct(jen.Id("ins").Op("*").Qual(sqlmodelPkg, "Insert"))
	} else {
		f.Commentf("%s builds a row of the %s table. Each type parameter is sqlmodel.Set once the mandatory column of the same name has a value.", name, table)
		f.Type().Id(name).Types(jen.List(params...).Qual(sqlmodelPkg, "State")).Struct(
			jen.Id("ins").Op("*").Qual(sqlmodelPkg, "Insert"),
		)
	}

	unset := uniform(r, "Unset")
	f.Commentf("New%s starts a %s row with no column set.", name, table)
	f.Func().Id("New"+name).Params().Op("*").Add(builderType(r, unset)).Block(
		jen.Return(jen.Op("&").Add(builderType(r, uniform(r, "Unset"))).Values(
			jen.Id("ins").Op(":").Qual(sqlmodelPkg, "NewInsert").Call(jen.Id(modelVar(r))),
		)),
	)

	recv := func() jen.Code { return jen.Id("b").Op("*").Add(builderType(r, slots(r))) }

	f.Line()
	f.Func().Params(recv()).Id("take").Params().Op("*").Qual(sqlmodelPkg, "Insert").Block(
		jen.If(jen.Id("b").Op("==").Nil()).Block(jen.Return(jen.Nil())),
		jen.Return(jen.Qual(sqlmodelPkg, "Move").Call(jen.Op("&").Id("b").Dot("ins"))),
	)

	slot := 0
	for i, field := range r.Fields {
		col := r.Model.Columns[i]
		next := slots(r)
		if col.Mandatory() {
			next[slot] = jen.Qual(sqlmodelPkg, "Set")
			slot++
		}

		f.Commentf("%s sets the %s column.", field.Name, col.Name)
		f.Func().Params(recv()).Id(field.Name).Params(jen.Id("v").Id(r.DeclType(field))).Op("*").Add(builderType(r, next)).Block(
			jen.Return(jen.Op("&").Add(builderType(r, next)).Values(
				jen.Id("ins").Op(":").Id("b").Dot("take").Call().Dot("Set").Call(jen.Lit(col.Name), value(r, field, jen.Id("v"))),
			)),
		)
	}
}

func emitFinalize(f *jen.File, r *Record) {
	typeName := r.TypeName
	table := r.Model.Table
	dbParams := func(last jen.Code) []jen.Code {
		return []jen.Code{
			jen.Id("ctx").Qual("context", "Context"),
			jen.Id("db").Op("*").Qual(sqlmodelPkg, "DB").Types(jen.Id("S")),
			last,
		}
	}

	f.Commentf("%s is satisfied by the schemas that include the %s table.", constraint(r), table)
	f.Type().Id(constraint(r)).Interface(
		jen.Qual(sqlmodelPkg, "Schema"),
		jen.Id(marker(r)).Params(),
	)

	f.Commentf("Insert%s inserts the row built by b. It only accepts a builder on which every mandatory column has been set.", typeName)
	f.Func().Id("Insert"+typeName).Types(jen.Id("S").Id(constraint(r))).Params(
		dbParams(jen.Id("b").Op("*").Add(builderType(r, uniform(r, "Set"))))...,
	).Params(jen.Int64(), jen.Error()).Block(
		jen.Return(jen.Id("db").Dot("Finish").Call(jen.Id("ctx"), jen.Id("b").Dot("take").Call())),
	)

	f.Commentf("Insert%sRecord inserts rec. Nil optional fields and zero auto-increment fields are left to the database.", typeName)
	f.Func().Id("Insert"+typeName+"Record").Types(jen.Id("S").Id(constraint(r))).Params(
		dbParams(jen.Id("rec").Id(typeName))...,
	).Params(jen.Int64(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Id("ins").Op(":=").Qual(sqlmodelPkg, "NewInsert").Call(jen.Id(modelVar(r)))
		for i, field := range r.Fields {
			col := r.Model.Columns[i]
			set := func(v jen.Code) jen.Code {
				return jen.Id("ins").Dot("Set").Call(jen.Lit(col.Name), value(r, field, v))
			}
			switch {
			case field.Optional:
				g.If(jen.Id("rec").Dot(field.Name).Op("!=").Nil()).Block(set(jen.Op("*").Id("rec").Dot(field.Name)))
			case col.AutoIncrement:
				g.If(jen.Id("rec").Dot(field.Name).Op("!=").Lit(0)).Block(set(jen.Id("rec").Dot(field.Name)))
			default:
				g.Add(set(jen.Id("rec").Dot(field.Name)))
			}
		}
		g.Return(jen.Id("db").Dot("Finish").Call(jen.Id("ctx"), jen.Id("ins")))
	})
}
