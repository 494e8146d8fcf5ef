package object

// Descriptor is the static type record of a concrete object kind.
// Descriptors live for the whole process and are shared by every instance.
type Descriptor struct {
	// Name identifies the type in diagnostics and error messages.
	Name string

	// New allocates a zero instance. Required.
	New func() Instance

	// Construct initialises a freshly allocated instance. Optional.
	Construct func(v Instance) error

	// Destruct releases everything the instance owns. Optional.
	// Called exactly once, when the last reference is released.
	Destruct func(v Instance)

	// Copy fills dst from the template src. Optional; a nil Copy makes the
	// type non-cloneable. Owned sub-objects must be cloned or retained here.
	Copy func(dst, src Instance) error
}

// Cloneable reports whether instances of the type support Clone.
func (d *Descriptor) Cloneable() bool {
	return d != nil && d.Copy != nil
}

func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	return d.Name
}
