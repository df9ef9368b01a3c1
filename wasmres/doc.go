// Package wasmres loads WebAssembly modules as managed resources.
//
// A Loader compiles module binaries with wazero when a reference to them is
// first resolved and closes the compiled module when the last reference is
// released. Where a module lives on disk is decided by a Resolver:
//
//	catalog, ids, err := wasmres.ScanDir("modules", ".wasm")
//	loader := wasmres.NewLoader(ctx, catalog)
//	modules, err := loader.Register(mgr)
//
//	ref := resource.NewTypedRef[wasmres.Module](ids[0].Instance)
//	mod, ok, err := modules.Get(mgr, &ref)
package wasmres
