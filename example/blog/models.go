// Package blog declares the tables of a small blog and the Blog schema
// holding them. The insert builders in sqlmodel_gen.go are generated from
// these structs and sqlmodel.yml.
package blog

//go:generate go run ../../cmd/sqlmodelgen -config sqlmodel.yml

// UserID identifies a User.
type UserID int64

// User is an author. Both columns are mandatory.
type User struct {
	ID   UserID `db:"id,primary_key"`
	Name string `db:"name,unique"`
}

func (User) TableName() string { return "users" }

// Post is an article written by a User. Its ID is assigned by the database
// and Body may be left empty.
type Post struct {
	ID       int64   `db:"id,auto_increment"`
	AuthorID UserID  `db:"author_id"`
	Title    string  `db:"title"`
	Body     *string `db:"body"`
}

func (Post) TableName() string { return "posts" }

// Draft is a post that has not been published. It is not part of the Blog
// schema, so a Blog database cannot store drafts.
type Draft struct {
	ID    int64   `db:"id,auto_increment"`
	Title *string `db:"title"`
}

func (Draft) TableName() string { return "drafts" }
