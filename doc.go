// Package xresource is a reference-counted resource manager.
//
// Resources are named by a pair of 64-bit ids, a type and an instance, and
// loaded on demand by a loader registered for the type. References start out
// holding only that identity and resolve in place to the loaded data; every
// resolved reference owns one share of the instance, and the instance is
// destroyed when the last share is released.
//
// # Architecture Overview
//
//	xresource/
//	├── guid/       TypeID, InstanceID and Full identities; id generation
//	├── resource/   References, loader registry, instance pool and Manager
//	├── frame/      Frame-deferred destruction of flagged types
//	├── wasmres/    WebAssembly modules as resources, compiled with wazero
//	├── config/     YAML host configuration
//	├── errors/     Structured error types
//	└── cmd/xrsc/   Command-line inspector
//
// # Quick Start
//
//	mgr := resource.NewManager(resource.WithRegistry(resource.Default))
//	if err := mgr.Initialize(resource.DefaultCapacity); err != nil {
//	    log.Fatal(err)
//	}
//
//	ref := resource.NewTypedRef[Texture](guid.InstanceFromString("hero.png"))
//	tex, ok, err := textures.Get(mgr, &ref)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if ok {
//	    draw(tex)
//	}
//	textures.Release(mgr, &ref)
package xresource
