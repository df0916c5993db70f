package domain

// Store is the instance persistence contract the inference engine runs
// against. Implementations assign DB IDs on Store and keep their indexes
// consistent when told about attribute mutations via Update.
type Store interface {
	// Fetch returns the instance with the given DB ID.
	Fetch(id int64) (*Instance, bool)
	// ListByClass returns every instance of the class or a subclass,
	// ordered by ascending DB ID.
	ListByClass(class Class) []*Instance
	// FetchByAttribute returns instances of the class (or a subclass)
	// holding the given string value for the attribute.
	FetchByAttribute(class Class, attr, value string) []*Instance
	// StructurallyIdentical returns stored instances sharing the
	// candidate's structural key, ordered by ascending DB ID. Classes
	// without defining attributes always yield nil.
	StructurallyIdentical(in *Instance) []*Instance
	// Store commits an instance, assigning a DB ID when it has none, and
	// returns it. Storing an instance that already has an ID re-indexes it.
	Store(in *Instance) *Instance
	// Update re-indexes a stored instance after one of its attributes
	// changed in place.
	Update(in *Instance)
	// Referrers returns stored instances that reference the given DB ID
	// through the attribute, ordered by ascending DB ID.
	Referrers(id int64, attr string) []*Instance
}
