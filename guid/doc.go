// Package guid defines the identities used by the resource manager.
//
// A resource is named by a Full identity: the pair of an InstanceID (one
// concrete resource) and a TypeID (the kind of resource). Both are 64-bit
// values assigned outside the manager.
//
// Every InstanceID has its least significant bit set. The resource package
// relies on this tag bit to tell an identity apart from a resolved pointer,
// so identities must always be built through this package:
//
//	id := guid.NewInstance()                 // random instance
//	id := guid.InstanceFromString("hero.png") // stable instance
//	tex := guid.TypeFromString("texture")     // stable type
//
// String-derived identities are BLAKE3 digests truncated to 64 bits.
package guid
