package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/tinyforge/jit"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "jitdemo: %v\n", err)
		os.Exit(1)
	}
}

type config struct {
	StackLimit uint64 `yaml:"stack_limit"`
	HeapLimit  uint64 `yaml:"heap_limit"`
	Invoke     bool   `yaml:"invoke"`
}

func defaultConfig() config {
	return config{
		StackLimit: 0x10000,
		HeapLimit:  0x100000,
		Invoke:     true,
	}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func run() error {
	configPath := flag.String("config", "", "YAML config file (stack_limit, heap_limit, invoke)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Assemble a small native function, print its listing, and invoke it.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	slog.Debug("config loaded", "stack_limit", cfg.StackLimit, "heap_limit", cfg.HeapLimit, "invoke", cfg.Invoke)

	ret, ok := returnSequence()
	if !ok {
		return fmt.Errorf("no return sequence for %s", runtime.GOARCH)
	}

	cb := jit.New(jit.WithListing())
	cb.GenListing(fmt.Sprintf("entry (%s): return 42", runtime.GOARCH))
	cb.GenBytes(ret)
	cb.GenListing("end")

	length, err := cb.Assemble()
	if err != nil {
		return err
	}
	slog.Debug("assembled", "bytes", length)

	fmt.Print(cb.Listing())

	if !cfg.Invoke {
		return nil
	}

	mcb, err := cb.AssembleToMachineCodeBlock()
	if errors.Is(err, jit.ErrUnsupported) {
		slog.Warn("executable memory unavailable, skipping invocation")
		return nil
	}
	if err != nil {
		return err
	}
	defer mcb.Free()

	if err := jit.Link(mcb); err != nil {
		return err
	}

	ctx := jit.NewRuntimeContext(jit.Word(cfg.StackLimit), jit.Word(cfg.HeapLimit))
	result, err := jit.Invoke(mcb.Block(), ctx)
	if errors.Is(err, jit.ErrUnsupported) {
		slog.Warn("native invocation unavailable on this platform")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("invoke returned %#x\n", result)
	return nil
}

// returnSequence gives a native sequence that loads 42 into the return
// register and returns to the caller on the host architecture.
func returnSequence() ([]byte, bool) {
	switch runtime.GOARCH {
	case "amd64":
		// mov eax, 42; ret
		return []byte{0xB8, 0x2A, 0x00, 0x00, 0x00, 0xC3}, true
	case "arm64":
		// mov x0, #42; ret
		return []byte{0x40, 0x05, 0x80, 0xD2, 0xC0, 0x03, 0x5F, 0xD6}, true
	default:
		return nil, false
	}
}
