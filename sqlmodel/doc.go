// Package sqlmodel derives SQLite tables from Go record types and inserts
// records through builders whose completeness is checked by the compiler.
//
// A record type is a struct whose exported fields become columns. Field
// annotations live in the db struct tag:
//
//	type User struct {
//		ID   int64   `db:"id,primary_key"`
//		Name string  `db:"name,unique"`
//		Bio  *string `db:"bio"` // pointer fields are nullable
//	}
//
//	func (User) TableName() string { return "users" }
//
// string maps to TEXT and every integer type maps to INTEGER; any other
// field type is rejected with [ErrUnsupportedFieldType] before SQL is
// produced. A column is mandatory unless it is nullable or carries
// auto_increment.
//
// The sqlmodelgen command reads the record types and a schema declaration
// and generates, per record type, a [Model] value and an insert builder
// parameterized by one [State] marker per mandatory column. The generated
// InsertX function only accepts the builder once every marker is [Set], and
// only for a [DB] whose schema type declares the record, so both missing
// columns and foreign tables are compile errors:
//
//	db, err := sqlmodel.Open[blog.Blog](ctx, "blog.db")
//	...
//	n, err := blog.InsertUser(ctx, db, blog.NewUserInsert().Name("alice").ID(1))
//
// Without generated code, [Insert] offers the same operations with
// completeness and schema membership checked at run time
// ([ErrIncompleteRecord], [ErrSchemaMismatch]).
//
// [Open] creates the schema's tables in declaration order with
// CREATE TABLE IF NOT EXISTS, so opening an existing database is a no-op for
// its structure. Creation stops at the first failing table and does not roll
// back the tables created before it.
package sqlmodel
