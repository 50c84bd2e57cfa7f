// Command qpeserial is the single-threaded command-log query engine
// CLI, grounded on cmd/sqlite3def's go-flags option struct and
// parseOptions shape and on the original's initializeEngineSerial /
// QPESeq.c driver loop.
package main

import (
	"bufio"
	"bytes"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"
	"golang.org/x/term"

	"github.com/Jairik/Parallel-Query-Processing-System/config"
	"github.com/Jairik/Parallel-Query-Processing-System/driver/serial"
	"github.com/Jairik/Parallel-Query-Processing-System/engine"
	"github.com/Jairik/Parallel-Query-Processing-System/logging"
	"github.com/Jairik/Parallel-Query-Processing-System/store"
)

var version string

type options struct {
	DataFile string   `short:"d" long:"data" description:"CSV command-log file" default:"../data/commands_50k.csv"`
	Table    string   `short:"t" long:"table" description:"table name the store is bound to" default:"commands"`
	Index    []string `short:"i" long:"index" description:"secondary index as attribute:type, repeatable"`
	Config   string   `long:"config" description:"YAML file listing secondary indexes to build"`
	Order    int      `long:"order" description:"B+-tree fanout order" default:"4"`
	Verbose  bool     `short:"v" long:"verbose" description:"pretty-print query plans and results"`
	Help     bool     `long:"help" description:"show this help"`
	Version  bool     `long:"version" description:"show this version"`
	Args     struct {
		QueryFile string `positional-arg-name:"query-file" description:"query file, or '-' for stdin"`
	} `positional-args:"yes"`
}

func parseOptions(args []string) *options {
	var opts options
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options] query-file"
	if _, err := parser.ParseArgs(args); err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if opts.Args.QueryFile == "" {
		opts.Args.QueryFile = "-"
	}
	return &opts
}

// readQueryFile reads the query file content, or stdin when path is
// "-", mirroring readFile in the teacher's sqldef.go: a piped-stdin
// check before blocking on a read, generalized here to x/term's
// terminal detection rather than a raw os.ModeCharDevice test.
func readQueryFile(path string) (string, error) {
	if path != "-" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(buf), nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("stdin is not piped")
	}
	var buf bytes.Buffer
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func main() {
	logging.Init()
	opts := parseOptions(os.Args[1:])

	specs, err := resolveIndexSpecs(opts.Config, opts.Index)
	if err != nil {
		slog.Error("failed to resolve index configuration", "err", err)
		os.Exit(1)
	}

	st, err := store.Open(opts.DataFile, opts.Table, specs, opts.Order, slog.Default())
	if err != nil {
		slog.Error("failed to open store", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	queryText, err := readQueryFile(opts.Args.QueryFile)
	if err != nil {
		slog.Error("failed to read query file", "err", err)
		os.Exit(1)
	}

	eng := engine.New(st, opts.Verbose, slog.Default())
	if err := serial.Run(eng, queryText, os.Stdout, slog.Default()); err != nil {
		slog.Error("query file execution failed", "err", err)
		os.Exit(1)
	}
}

func resolveIndexSpecs(configFile string, flagSpecs []string) ([]store.IndexSpec, error) {
	cfg, err := config.ParseFile(configFile)
	if err != nil {
		return nil, err
	}
	specs, err := cfg.Specs()
	if err != nil {
		return nil, err
	}
	for _, raw := range flagSpecs {
		spec, err := config.ParseIndexFlag(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
