package sqlmodel

import (
	"errors"
	"strings"
)

// Sentinel errors for each failure kind. They are matched with [errors.Is]
// against any *Error of the corresponding Kind.
var (
	ErrOpen                 = errors.New("open database")
	ErrSchema               = errors.New("create schema")
	ErrStatement            = errors.New("prepare statement")
	ErrInsert               = errors.New("insert record")
	ErrSchemaMismatch       = errors.New("table not in schema")
	ErrIncompleteRecord     = errors.New("incomplete record")
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	ErrInvalidModel         = errors.New("invalid model")
	ErrBuilderConsumed      = errors.New("insert builder already consumed")
)

// ErrorKind classifies an *Error.
type ErrorKind int

const (
	KindOpen ErrorKind = iota + 1
	KindSchema
	KindStatement
	KindInsert
	KindSchemaMismatch
	KindIncompleteRecord
	KindUnsupportedFieldType
	KindInvalidModel
	KindBuilderConsumed
)

var kindSentinels = map[ErrorKind]error{
	KindOpen:                 ErrOpen,
	KindSchema:               ErrSchema,
	KindStatement:            ErrStatement,
	KindInsert:               ErrInsert,
	KindSchemaMismatch:       ErrSchemaMismatch,
	KindIncompleteRecord:     ErrIncompleteRecord,
	KindUnsupportedFieldType: ErrUnsupportedFieldType,
	KindInvalidModel:         ErrInvalidModel,
	KindBuilderConsumed:      ErrBuilderConsumed,
}

func (k ErrorKind) String() string {
	if err, ok := kindSentinels[k]; ok {
		return err.Error()
	}
	return "unknown error"
}

// Error is returned by every operation in this package. Err holds the
// underlying cause, typically the native error reported by the SQLite driver.
// None of these errors are retried internally.
type Error struct {
	Kind   ErrorKind
	Table  string // table involved, if any
	Column string // column involved, if any
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Table != "" {
		b.WriteString(" ")
		b.WriteString(e.Table)
		if e.Column != "" {
			b.WriteString(".")
			b.WriteString(e.Column)
		}
	} else if e.Column != "" {
		b.WriteString(" ")
		b.WriteString(e.Column)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

func newError(kind ErrorKind, table string, err error) *Error {
	return &Error{Kind: kind, Table: table, Err: err}
}
