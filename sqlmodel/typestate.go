package sqlmodel

// Unset marks a mandatory column that has not been supplied yet.
type Unset struct{}

// Set marks a mandatory column that has been supplied at least once.
type Set struct{}

// State constrains the type parameters of generated insert builders. A
// builder for a model with mandatory columns m1..mk is declared as
//
//	type PostInsert[AuthorID, Title sqlmodel.State] struct{ ... }
//
// Each type parameter is the marker slot of one mandatory column. The setter
// for a mandatory column returns the builder with that slot switched to Set
// and every other slot carried over unchanged, so the calls commute: any
// order of setters reaches the same type. The finalize function accepts only
// the instantiation in which every slot is Set, which makes finalizing an
// incomplete record a compile error.
type State interface {
	Set | Unset
}

// Move transfers the Insert held in *src to the caller and leaves *src nil.
// Generated setters use it so that a builder handle is consumed by each call;
// the returned builder is the only live handle to the record under
// construction. Finalizing a consumed handle fails with ErrBuilderConsumed.
func Move(src **Insert) *Insert {
	if src == nil {
		return nil
	}
	ins := *src
	*src = nil
	return ins
}
