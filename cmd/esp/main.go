package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mgomes/espscript/esp"
)

var errorLabel = color.New(color.FgRed, color.Bold)

func main() {
	if err := runCLI(os.Args); err != nil {
		errorLabel.Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "repl":
		return runREPL()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		if isScriptArg(args[1]) {
			return runCommand(args[1:])
		}
		return usageError()
	}
}

// isScriptArg reports whether arg names a script by one of the extensions
// configured next to it.
func isScriptArg(arg string) bool {
	if strings.HasPrefix(arg, "-") || filepath.Ext(arg) == "" {
		return false
	}
	path, err := filepath.Abs(arg)
	if err != nil {
		return false
	}
	cfg, err := loadConfig("", path)
	if err != nil {
		return filepath.Ext(arg) == defaultExtension
	}
	return cfg.hasExtension(path)
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	configPath := fs.String("config", "", "path to an esp.yaml configuration file")
	colorMode := fs.String("color", "", "colour diagnostics: auto, always or never")
	checkOnly := fs.Bool("check", false, "only analyze the script without executing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("esp run: script path required")
	}
	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}

	cfg, err := loadConfig(*configPath, scriptPath)
	if err != nil {
		return err
	}
	if *colorMode != "" {
		cfg.Color = *colorMode
	}
	if err := applyColorMode(cfg.Color); err != nil {
		return err
	}
	if err := cfg.checkExtension(scriptPath); err != nil {
		return err
	}

	globals, err := cfg.globalValues()
	if err != nil {
		return err
	}
	if *checkOnly {
		return analyzeFile(scriptPath, globals)
	}

	engine, err := esp.NewEngine(esp.Config{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Globals:     globals,
		Diagnostics: diagnosticPrinter(os.Stderr),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := engine.RunFile(ctx, scriptPath); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args...]\n", prog)
	fmt.Fprintf(os.Stderr, "       %s <script.esp>   (or any extension listed in esp.yaml)\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [-config file] [-color mode] [-check] <script>")
	fmt.Fprintln(os.Stderr, "    execute a script")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-check] <paths...>")
	fmt.Fprintln(os.Stderr, "    normalize whitespace in scripts")
	fmt.Fprintln(os.Stderr, "  analyze [-config file] <script>")
	fmt.Fprintln(os.Stderr, "    report statements that are ignored or would fail")
	fmt.Fprintln(os.Stderr, "  repl")
	fmt.Fprintln(os.Stderr, "    start an interactive session")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

func applyColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "", "auto":
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always or never)", mode)
	}
	return nil
}
