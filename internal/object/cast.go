package object

import "unsafe"

// unsafeContainer recovers the concrete struct pointer from a pointer to
// its embedded Obj header. Every concrete type in this package embeds Obj
// as its first field, so the header and the container share an address;
// this is the same trick clox-style VMs use in C via a shared struct
// prefix, expressed in Go as a pointer reinterpretation guarded entirely
// by the Type tag checks in each As* helper.
func unsafeContainer(o *Obj) unsafe.Pointer {
	return unsafe.Pointer(o)
}
