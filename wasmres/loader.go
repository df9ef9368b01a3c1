package wasmres

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/xresource/errors"
	"github.com/wippyai/xresource/guid"
	"github.com/wippyai/xresource/resource"
)

// TypeName is the registered name of the module resource type.
const TypeName = "wasm-module"

// TypeID identifies module resources.
var TypeID = guid.TypeFromString(TypeName)

// Module is a compiled WebAssembly module.
type Module struct {
	Compiled wazero.CompiledModule
	runtime  wazero.Runtime
	Name     string
	Path     string
	Size     int
}

// Exports returns the names of the exported functions, sorted.
func (m *Module) Exports() []string {
	defs := m.Compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Instantiate creates an anonymous instance of the module. The caller owns
// the instance and must close it before the module's last reference is
// released.
func (m *Module) Instantiate(ctx context.Context) (api.Module, error) {
	inst, err := m.runtime.InstantiateModule(ctx, m.Compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "instantiate "+m.Name)
	}
	return inst, nil
}

// Loader compiles modules on demand. It implements resource.Loader[Module].
type Loader struct {
	ctx         context.Context
	runtime     wazero.Runtime
	resolver    Resolver
	logger      *zap.Logger
	name        string
	memoryPages uint32
	ownsRuntime bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithRuntime shares an existing wazero runtime. The loader will not close it.
func WithRuntime(rt wazero.Runtime) Option {
	return func(l *Loader) { l.runtime = rt }
}

// WithLogger sets the loader's logger.
func WithLogger(lg *zap.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// WithMemoryLimitPages caps guest memory per instance in 64KB pages.
// Ignored together with WithRuntime.
func WithMemoryLimitPages(pages uint32) Option {
	return func(l *Loader) { l.memoryPages = pages }
}

// WithTypeName overrides the type name passed to the resolver.
func WithTypeName(name string) Option {
	return func(l *Loader) { l.name = name }
}

// NewLoader creates a loader that resolves module paths through r. ctx is
// used for compilation and teardown.
func NewLoader(ctx context.Context, r Resolver, opts ...Option) *Loader {
	l := &Loader{
		ctx:      ctx,
		resolver: r,
		logger:   resource.Logger().Named("wasm"),
		name:     TypeName,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.runtime == nil {
		cfg := wazero.NewRuntimeConfig()
		if l.memoryPages > 0 {
			cfg = cfg.WithMemoryLimitPages(l.memoryPages)
		}
		l.runtime = wazero.NewRuntimeWithConfig(ctx, cfg)
		l.ownsRuntime = true
	}
	return l
}

// Register registers the loader as the module type on r.
func (l *Loader) Register(r resource.Registrar, opts ...resource.TypeOption) (*resource.Type[Module], error) {
	opts = append([]resource.TypeOption{resource.WithName(l.name)}, opts...)
	return resource.Register[Module](r, TypeID, l, opts...)
}

// Load resolves, reads and compiles the module named by id. Any failure is
// logged and reported as a failed load.
func (l *Loader) Load(_ *resource.Manager, id guid.Full) *Module {
	path, err := l.resolver.Resolve(id, l.name)
	if err != nil {
		l.logger.Debug("module not resolved", zap.Stringer("id", id), zap.Error(err))
		return nil
	}

	bin, err := os.ReadFile(path)
	if err != nil {
		l.logger.Warn("read module", zap.String("path", path), zap.Error(err))
		return nil
	}

	compiled, err := l.runtime.CompileModule(l.ctx, bin)
	if err != nil {
		l.logger.Warn("compile module", zap.String("path", path), zap.Error(err))
		return nil
	}

	name := compiled.Name()
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	l.logger.Debug("module compiled",
		zap.Stringer("id", id),
		zap.String("path", path),
		zap.Int("size", len(bin)))
	return &Module{
		Name:     name,
		Path:     path,
		Size:     len(bin),
		Compiled: compiled,
		runtime:  l.runtime,
	}
}

// Destroy closes the compiled module.
func (l *Loader) Destroy(_ *resource.Manager, m *Module, id guid.Full) {
	if err := m.Compiled.Close(l.ctx); err != nil {
		l.logger.Warn("close module", zap.Stringer("id", id), zap.Error(err))
	}
}

// Close releases the wazero runtime if the loader created it. Release every
// module reference first.
func (l *Loader) Close() error {
	if !l.ownsRuntime {
		return nil
	}
	return l.runtime.Close(l.ctx)
}
