package modelgen

import (
	"bytes"
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/andrewkroh/go-sqlmodel/sqlmodel"
)

const blogSource = `package blog

type User struct {
	ID   int64  ` + "`db:\"id,primary_key\"`" + `
	Name string ` + "`db:\"name,unique\"`" + `
}

func (User) TableName() string { return "users" }

type Post struct {
	ID       int64   ` + "`db:\"id,auto_increment\"`" + `
	AuthorID int64   ` + "`db:\"author_id\"`" + `
	Title    string  ` + "`db:\"title\"`" + `
	Body     *string ` + "`db:\"body\"`" + `
	internal string
}

func (*Post) TableName() string { return "posts" }

type Tag struct {
	Label *string
	Skip  string ` + "`db:\"-\"`" + `
}

type notAModel int
`

const blogConfig = `package: blog
output: sqlmodel_gen.go
schemas:
  - name: Blog
    models: [User, Post]
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "yaml", file: "sqlmodel.yml", content: blogConfig},
		{
			name: "toml",
			file: "sqlmodel.toml",
			content: `package = "blog"
output = "sqlmodel_gen.go"

[[schemas]]
name = "Blog"
models = ["User", "Post"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{tt.file: tt.content})
			cfg, err := LoadConfig(filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Package != "blog" || cfg.Output != "sqlmodel_gen.go" {
				t.Errorf("got package %q output %q", cfg.Package, cfg.Output)
			}
			if len(cfg.Schemas) != 1 || cfg.Schemas[0].Name != "Blog" {
				t.Fatalf("got schemas %+v", cfg.Schemas)
			}
			if got := strings.Join(cfg.Schemas[0].Models, ","); got != "User,Post" {
				t.Errorf("schema models = %q, want User,Post", got)
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := map[string]string{
		"no schemas":     "package: blog\n",
		"unnamed schema": "schemas:\n  - models: [User]\n",
		"empty schema":   "schemas:\n  - name: Blog\n",
		"duplicate":      "schemas:\n  - name: A\n    models: [User]\n  - name: A\n    models: [Post]\n",
		"output path":    "output: gen/out.go\nschemas:\n  - name: A\n    models: [User]\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{"sqlmodel.yml": content})
			if _, err := LoadConfig(filepath.Join(dir, "sqlmodel.yml")); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestModelFilter(t *testing.T) {
	cfg := &FileConfig{Schemas: []SchemaConfig{{Name: "Blog", Models: []string{"User"}}}}
	include, err := cfg.modelFilter()
	if err != nil {
		t.Fatal(err)
	}
	if !include("User") || include("Post") {
		t.Error("default filter must select exactly the schema models")
	}

	cfg.Models = []string{"P*", "User"}
	include, err = cfg.modelFilter()
	if err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]bool{"Post": true, "PostDraft": true, "User": true, "Users": false, "Tag": false} {
		if got := include(name); got != want {
			t.Errorf("include(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"models.go":        blogSource,
		"sqlmodel_gen.go":  "package blog\n\nthis file is excluded\n",
		"models_test.go":   "package blog\n\ntype Ignored struct{ X float64 }\n",
		"other_helpers.go": "package blog\n\nfunc helper() {}\n",
	})

	src, err := ParseDir(dir, "sqlmodel_gen.go", func(string) bool { return true })
	if err != nil {
		t.Fatal(err)
	}
	if src.Package != "blog" {
		t.Errorf("package = %q", src.Package)
	}
	if got := strings.Join(src.Order, ","); got != "User,Post,Tag" {
		t.Errorf("order = %q", got)
	}

	users := src.Records["User"].Model
	if users.Table != "users" {
		t.Errorf("users table = %q", users.Table)
	}
	want := "CREATE TABLE IF NOT EXISTS users(id INTEGER NOT NULL PRIMARY KEY, name TEXT NOT NULL UNIQUE)"
	if got := users.CreateTableSQL(); got != want {
		t.Errorf("users DDL =\n%s\nwant\n%s", got, want)
	}

	post := src.Records["Post"]
	want = "CREATE TABLE IF NOT EXISTS posts(id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT, author_id INTEGER NOT NULL, title TEXT NOT NULL, body TEXT)"
	if got := post.Model.CreateTableSQL(); got != want {
		t.Errorf("posts DDL =\n%s\nwant\n%s", got, want)
	}
	var mandatory []string
	for _, f := range post.Mandatory() {
		mandatory = append(mandatory, f.Name)
	}
	if got := strings.Join(mandatory, ","); got != "AuthorID,Title" {
		t.Errorf("mandatory = %q", got)
	}
	if !post.Fields[3].Optional || post.Fields[3].GoType != "string" {
		t.Errorf("Body field = %+v", post.Fields[3])
	}

	tag := src.Records["Tag"].Model
	if tag.Table != "tags" || len(tag.Columns) != 1 || tag.Columns[0].Name != "label" {
		t.Errorf("tag model = %+v", tag)
	}
}

func TestParseDirErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{
			name:   "float field",
			source: "package m\n\ntype Reading struct {\n\tID int64\n\tValue float64\n}\n",
			want:   sqlmodel.ErrUnsupportedFieldType,
		},
		{
			name:   "slice field",
			source: "package m\n\ntype Reading struct {\n\tTags []string\n}\n",
			want:   sqlmodel.ErrUnsupportedFieldType,
		},
		{
			name:   "unknown option",
			source: "package m\n\ntype Reading struct {\n\tID int64 `db:\"id,indexed\"`\n}\n",
			want:   sqlmodel.ErrInvalidModel,
		},
		{
			name:   "text auto increment",
			source: "package m\n\ntype Reading struct {\n\tID string `db:\"id,auto_increment\"`\n}\n",
			want:   sqlmodel.ErrInvalidModel,
		},
		{
			name:   "named float",
			source: "package m\n\ntype Celsius float64\n\ntype Reading struct {\n\tT Celsius\n}\n",
			want:   sqlmodel.ErrUnsupportedFieldType,
		},
		{
			name:   "named type cycle",
			source: "package m\n\ntype A B\n\ntype B A\n\ntype Reading struct {\n\tX A\n}\n",
			want:   sqlmodel.ErrUnsupportedFieldType,
		},
		{
			name:   "computed table name",
			source: "package m\n\ntype Reading struct{ ID int64 }\n\nfunc (Reading) TableName() string { return name() }\n\nfunc name() string { return \"r\" }\n",
			want:   sqlmodel.ErrInvalidModel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{"m.go": tt.source})
			_, err := ParseDir(dir, "", func(string) bool { return true })
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEmit(t *testing.T) {
	dir := writeFiles(t, map[string]string{"models.go": blogSource})
	src, err := ParseDir(dir, "", func(name string) bool { return name == "User" || name == "Post" || name == "Tag" })
	if err != nil {
		t.Fatal(err)
	}
	schemas := []*Schema{{Name: "Blog", Records: []*Record{src.Records["User"], src.Records["Post"]}}}
	records := []*Record{src.Records["User"], src.Records["Post"], src.Records["Tag"]}

	var buf bytes.Buffer
	if err := Emit(&buf, "blog", records, schemas); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "// Code generated by sqlmodelgen. DO NOT EDIT.") {
		t.Errorf("missing generated header:\n%s", out)
	}

	file, err := parser.ParseFile(token.NewFileSet(), "sqlmodel_gen.go", out, parser.SkipObjectResolution)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, out)
	}

	decls := make(map[string]bool)
	for _, d := range file.Decls {
		switch d := d.(type) {
		case *ast.GenDecl:
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					decls[s.Name.Name] = true
				case *ast.ValueSpec:
					for _, n := range s.Names {
						decls[n.Name] = true
					}
				}
			}
		case *ast.FuncDecl:
			name := d.Name.Name
			if d.Recv != nil {
				name = recvName(d.Recv.List[0].Type) + "." + name
			}
			decls[name] = true
		}
	}

	for _, want := range []string{
		"Blog", "Blog.Models", "Blog.includesUser", "Blog.includesPost",
		"UserModel", "UserInsert", "NewUserInsert", "UserInsert.ID", "UserInsert.Name", "HasUser", "InsertUser", "InsertUserRecord",
		"PostModel", "PostInsert", "NewPostInsert", "PostInsert.AuthorID", "PostInsert.Body", "HasPost", "InsertPost", "InsertPostRecord",
		"TagModel", "TagInsert", "TagInsert.Label", "HasTag", "InsertTag",
	} {
		if !decls[want] {
			t.Errorf("generated code lacks %s", want)
		}
	}
	if decls["Blog.includesTag"] {
		t.Error("Blog must not include Tag")
	}

	for _, want := range []string{
		"type PostInsert[AuthorID, Title sqlmodel.State] struct",
		"func (b *PostInsert[AuthorID, Title]) AuthorID(v int64) *PostInsert[sqlmodel.Set, Title]",
		"func (b *PostInsert[AuthorID, Title]) Body(v string) *PostInsert[AuthorID, Title]",
		"func InsertPost[S HasPost](ctx context.Context, db *sqlmodel.DB[S], b *PostInsert[sqlmodel.Set, sqlmodel.Set]) (int64, error)",
		"type TagInsert struct",
		"func InsertTag[S HasTag](ctx context.Context, db *sqlmodel.DB[S], b *TagInsert) (int64, error)",
		`{Name: "id", Type: sqlmodel.Integer, PrimaryKey: true, AutoIncrement: true}`,
		`{Name: "body", Type: sqlmodel.Text, Nullable: true}`,
		"return []*sqlmodel.Model{UserModel, PostModel}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated code lacks %q\n%s", want, out)
		}
	}
}

type (
	AccountID int64
	Handle    = string
	Rank      AccountID
)

type Account struct {
	ID     AccountID `db:"id,primary_key"`
	Handle *Handle   `db:"handle,unique"`
	Rank   Rank
}

const accountSource = `package bank

type (
	AccountID int64
	Handle    = string
	Rank      AccountID
)

type Account struct {
	ID     AccountID ` + "`db:\"id,primary_key\"`" + `
	Handle *Handle   ` + "`db:\"handle,unique\"`" + `
	Rank   Rank
}
`

func TestNamedFieldTypes(t *testing.T) {
	dir := writeFiles(t, map[string]string{"account.go": accountSource})
	src, err := ParseDir(dir, "", func(name string) bool { return name == "Account" })
	if err != nil {
		t.Fatal(err)
	}
	rec := src.Records["Account"]

	described, err := sqlmodel.Describe[Account]()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(rec.Model, described) {
		t.Errorf("parsed model %+v differs from reflection %+v", rec.Model, described)
	}
	want := map[string]string{"ID": "AccountID", "Handle": "Handle", "Rank": "Rank"}
	if !reflect.DeepEqual(rec.Named, want) {
		t.Errorf("named = %v, want %v", rec.Named, want)
	}

	schemas := []*Schema{{Name: "Bank", Records: []*Record{rec}}}
	var buf bytes.Buffer
	if err := Emit(&buf, "bank", []*Record{rec}, schemas); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"func (b *AccountInsert[ID, Rank]) ID(v AccountID) *AccountInsert[sqlmodel.Set, Rank]",
		`b.take().Set("id", int64(v))`,
		"func (b *AccountInsert[ID, Rank]) Handle(v Handle) *AccountInsert[ID, Rank]",
		`b.take().Set("handle", string(v))`,
		`ins.Set("id", int64(rec.ID))`,
		`ins.Set("handle", string(*rec.Handle))`,
		`ins.Set("rank", int64(rec.Rank))`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("generated code lacks %q\n%s", want, out)
		}
	}
}

func recvName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return recvName(e.X)
	case *ast.IndexExpr:
		return recvName(e.X)
	case *ast.IndexListExpr:
		return recvName(e.X)
	case *ast.Ident:
		return e.Name
	}
	return ""
}

func TestRun(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"models.go":    blogSource,
		"sqlmodel.yml": blogConfig,
	})

	path, err := Run(Config{ConfigFile: filepath.Join(dir, "sqlmodel.yml")})
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "sqlmodel_gen.go") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "TagModel") {
		t.Error("models outside the schemas must not be generated by default")
	}

	// A second run parses the package without the previous output.
	if _, err := Run(Config{ConfigFile: filepath.Join(dir, "sqlmodel.yml")}); err != nil {
		t.Fatal(err)
	}
}

// The committed example must be exactly what the generator produces.
func TestExampleUpToDate(t *testing.T) {
	path, out, err := render(Config{ConfigFile: filepath.Join("..", "..", "example", "blog", "sqlmodel.yml")})
	if err != nil {
		t.Fatal(err)
	}
	committed, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, committed) {
		t.Errorf("%s is stale, run go generate ./example/blog\ngot:\n%s", path, out)
	}
}

func TestRunRejectsUnsupportedType(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"models.go":    "package m\n\ntype Reading struct {\n\tID    int64 `db:\"id,primary_key\"`\n\tValue float64\n}\n",
		"sqlmodel.yml": "schemas:\n  - name: Store\n    models: [Reading]\n",
	})

	_, err := Run(Config{ConfigFile: filepath.Join(dir, "sqlmodel.yml")})
	if !errors.Is(err, sqlmodel.ErrUnsupportedFieldType) {
		t.Fatalf("got %v, want ErrUnsupportedFieldType", err)
	}
	if _, err := os.Stat(filepath.Join(dir, defaultOutput)); !os.IsNotExist(err) {
		t.Error("no file may be written when derivation fails")
	}
}

func TestRunUnknownSchemaModel(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"models.go":    blogSource,
		"sqlmodel.yml": "models: [\"*\"]\nschemas:\n  - name: Blog\n    models: [User, Comment]\n",
	})
	if _, err := Run(Config{ConfigFile: filepath.Join(dir, "sqlmodel.yml")}); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestRelevant(t *testing.T) {
	cfgFile := filepath.Join("pkg", "sqlmodel.yml")
	out := filepath.Join("pkg", "sqlmodel_gen.go")
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: filepath.Join("pkg", "models.go"), Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: cfgFile, Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: out, Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: filepath.Join("pkg", "models_test.go"), Op: fsnotify.Write}, false},
		{fsnotify.Event{Name: filepath.Join("pkg", "README.md"), Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: filepath.Join("pkg", "models.go"), Op: fsnotify.Chmod}, false},
	}
	for _, tt := range tests {
		if got := relevant(tt.event, cfgFile, out); got != tt.want {
			t.Errorf("relevant(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}
