package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/xresource/config"
	"github.com/wippyai/xresource/frame"
	"github.com/wippyai/xresource/guid"
	"github.com/wippyai/xresource/resource"
	"github.com/wippyai/xresource/wasmres"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to YAML config (default $"+config.EnvVar+")")
		dir         = flag.String("dir", "", "Directory of wasm modules (overrides resources.root)")
		capacity    = flag.Int("capacity", 0, "Instance capacity (overrides config)")
		debug       = flag.Bool("debug", false, "Enable invariant checks that panic")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dir != "" {
		cfg.Resources.Root = *dir
	}
	if *capacity > 0 {
		cfg.Capacity = *capacity
	}
	if *debug {
		cfg.DebugChecks = true
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// host bundles the manager and everything wired around it.
type host struct {
	ctx     context.Context
	log     *zap.Logger
	mgr     *resource.Manager
	sched   *frame.Scheduler
	loader  *wasmres.Loader
	modules *resource.Type[wasmres.Module]
	ids     []guid.Full
	root    string
}

func newHost(ctx context.Context, cfg *config.Config) (*host, error) {
	log, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	resource.SetLogger(log)

	root, ext := cfg.Resources.Root, cfg.Resources.Extension
	catalog, ids, err := wasmres.ScanDir(root, ext)
	if err != nil {
		return nil, err
	}

	loader := wasmres.NewLoader(ctx,
		wasmres.Chain{catalog, wasmres.DirResolver{Root: root, Ext: ext}},
		wasmres.WithLogger(log))

	mgr := resource.NewManager(cfg.ManagerOptions(log)...)
	modules, err := loader.Register(mgr, resource.WithDeferredDestroy())
	if err != nil {
		_ = loader.Close()
		return nil, err
	}
	if err := mgr.Initialize(cfg.Capacity); err != nil {
		_ = loader.Close()
		return nil, err
	}

	return &host{
		ctx:     ctx,
		log:     log,
		mgr:     mgr,
		sched:   frame.New(mgr, frame.WithLogger(log)),
		loader:  loader,
		modules: modules,
		ids:     ids,
		root:    root,
	}, nil
}

func (h *host) release(ref *resource.TypedRef[wasmres.Module]) error {
	return frame.ReleaseTyped(h.sched, h.modules, ref)
}

func (h *host) close() error {
	var errs []string
	if err := h.sched.Flush(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := h.mgr.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	if err := h.loader.Close(); err != nil {
		errs = append(errs, err.Error())
	}
	_ = h.log.Sync()
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %s", strings.Join(errs, "; "))
	}
	return nil
}

func printStats(s resource.Stats) {
	fmt.Printf("Live: %d/%d (%.1f%%)  free: %d  loads: %d  failures: %d  destroys: %d\n",
		s.Live, s.Capacity, s.Utilization*100, s.Free, s.Loads, s.LoadFailures, s.Destroys)
}

func run(cfg *config.Config) error {
	h, err := newHost(context.Background(), cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Resources: %s (%d modules)\n", h.root, len(h.ids))
	for _, id := range h.ids {
		if err := h.inspect(id); err != nil {
			_ = h.close()
			return err
		}
	}

	if _, err := h.sched.EndFrame(); err != nil {
		_ = h.close()
		return fmt.Errorf("end frame: %w", err)
	}
	fmt.Printf("\nAfter release (count %d):\n", h.mgr.Count())
	printStats(h.mgr.Stats())
	return h.close()
}

// inspect resolves id through two references, one cloned and one attached
// by identity, and releases both.
func (h *host) inspect(id guid.Full) error {
	first := resource.NewTypedRef[wasmres.Module](id.Instance)
	var clone resource.TypedRef[wasmres.Module]
	second := resource.NewTypedRef[wasmres.Module](id.Instance)
	defer func() {
		_ = h.release(&first)
		_ = h.release(&clone)
		_ = h.release(&second)
	}()

	mod, ok, err := h.modules.Get(h.mgr, &first)
	if err != nil {
		return fmt.Errorf("get %s: %w", id, err)
	}
	if !ok {
		fmt.Printf("\n%s: failed to load\n", id)
		return nil
	}
	if err := h.modules.Clone(h.mgr, &clone, &first); err != nil {
		return fmt.Errorf("clone %s: %w", id, err)
	}
	if _, _, err := h.modules.Get(h.mgr, &second); err != nil {
		return fmt.Errorf("get %s: %w", id, err)
	}

	full, err := h.modules.FullIdentity(h.mgr, &clone)
	if err != nil {
		return err
	}
	fmt.Printf("\n%s  %s (%d bytes)\n", full, mod.Name, mod.Size)
	fmt.Printf("  refs: %d\n", h.mgr.RefCount(full))
	for _, name := range mod.Exports() {
		fmt.Printf("  export %s\n", name)
	}
	return nil
}
