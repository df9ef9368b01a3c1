// Package resource implements a reference-counted resource manager.
//
// A resource is named by a guid.Full identity and materialized on demand by a
// loader registered for its TypeID. Call sites hold references (Ref or
// TypedRef) that start out holding only an identity and resolve themselves to
// the loaded data on first use. Every resolved reference owns one share of the
// underlying instance; the instance is destroyed when the last share is
// released.
//
// # Lifecycle
//
// Registration happens first, from any number of packages and in any order:
//
//	textures := resource.MustRegister[Texture](resource.Default, textureType, textureLoader{})
//
// Then the manager is initialized once with its instance capacity:
//
//	mgr := resource.NewManager(resource.WithRegistry(resource.Default))
//	if err := mgr.Initialize(1000); err != nil {
//	    log.Fatal(err) // duplicate type ids end up here
//	}
//
// # References
//
//	ref := resource.NewTypedRef[Texture](guid.InstanceFromString("hero.png"))
//
//	tex, ok, err := textures.Get(mgr, &ref) // loads or attaches
//	tex, ok, err = textures.Get(mgr, &ref)  // already resolved: no lookup
//
//	textures.Release(mgr, &ref) // back to an identity, data destroyed if last
//
// A failed load (the loader returned nil) is reported as ok == false with a
// nil error; the reference stays unresolved and the next Get retries. Errors
// are reserved for configuration and programming mistakes: unregistered
// types, an exhausted instance pool, or references whose bookkeeping no
// longer matches the manager.
//
// References must not be copied by value once in use; go vet reports such
// copies. Use Clone to share ownership.
//
// # Concurrency
//
// Manager performs no locking. Wrap it in a SafeManager, or serialize access
// externally, when several goroutines use the same manager.
package resource
