package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"axonet/internal/config"
	"axonet/internal/logging"
	"axonet/internal/storage"
	axoapi "axonet/pkg/axonet"
)

const defaultDBPath = "axonet.db"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "validate":
		return runValidate(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	case "list":
		return runList(ctx, args[1:])
	case "activity":
		return runActivity(ctx, args[1:])
	case "monitor":
		return runMonitor(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runValidate(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	topology := fs.String("topology", "", "topology file (json or yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topology == "" {
		return errors.New("validate requires --topology")
	}

	cfg, err := config.Load(*topology)
	if err != nil {
		return err
	}

	fmt.Printf("ok: %d neurons, %d links, %d inputs, %d outputs\n",
		len(cfg.Neurons), len(cfg.Links), cfg.Inputs, cfg.Outputs)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	topology := fs.String("topology", "", "topology file (json or yaml)")
	inputs := fs.String("inputs", "", "input events as port:value,port:value")
	wait := fs.Duration("wait", 500*time.Millisecond, "how long to collect outputs after the last input")
	monitor := fs.Bool("monitor", false, "enable activity monitoring")
	saveActivity := fs.Bool("save-activity", false, "persist drained activity to the store")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	idGen := fs.String("id-gen", "sequential", "id generator: sequential|uuid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topology == "" {
		return errors.New("run requires --topology")
	}
	events, err := parseInputs(*inputs)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(*logLevel, os.Stderr)

	client, err := axoapi.New(axoapi.Options{
		StoreKind: *storeKind,
		DBPath:    *dbPath,
		IDGen:     *idGen,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	assigned, err := client.BuildFromFile(*topology)
	if err != nil {
		return err
	}
	logger.Info("topology built",
		"network", client.Network().ID(), "neurons", len(assigned))

	if *monitor {
		client.SetMonitoring(true)
	}
	if err := client.Start(ctx); err != nil {
		return err
	}
	defer client.Shutdown()

	for _, ev := range events {
		if err := client.SendInput(ctx, ev.Port, ev.Value); err != nil {
			return fmt.Errorf("send input %d:%d: %w", ev.Port, ev.Value, err)
		}
		logger.Debug("input sent", "port", ev.Port, "value", ev.Value)
	}

	_, outPorts := client.Network().Ports()
	deadline := time.Now().Add(*wait)
	for _, port := range outPorts {
		ch, err := client.Output(port)
		if err != nil {
			return err
		}
	collect:
		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				break collect
			}
			select {
			case sig := <-ch:
				fmt.Printf("output %d: %d\n", port, sig.Value)
			case <-time.After(remaining):
				break collect
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if *monitor {
		records, err := client.DrainActivity(ctx, *saveActivity)
		if err != nil {
			return err
		}
		for _, rec := range records {
			fmt.Printf("activity %s %s value=%d %s\n", rec.Kind, rec.ID, rec.Value, rec.Detail)
		}
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	id := fs.String("id", "", "stored topology id")
	out := fs.String("out", "", "output file (format by extension, stdout json when empty)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("export requires --id")
	}

	client, err := axoapi.New(axoapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	if _, err := client.LoadTopology(ctx, *id); err != nil {
		return err
	}

	format := config.FormatJSON
	if *out != "" {
		format, err = config.FormatForPath(*out)
		if err != nil {
			return err
		}
	}
	data, err := client.ExportTopology(format)
	if err != nil {
		return err
	}

	if *out == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", *id, *out)
	return nil
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	topology := fs.String("topology", "", "topology file (json or yaml)")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	idGen := fs.String("id-gen", "sequential", "id generator: sequential|uuid")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topology == "" {
		return errors.New("import requires --topology")
	}

	client, err := axoapi.New(axoapi.Options{StoreKind: *storeKind, DBPath: *dbPath, IDGen: *idGen})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	if _, err := client.BuildFromFile(*topology); err != nil {
		return err
	}
	id, err := client.SaveTopology(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("imported as %s\n", id)
	return nil
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := axoapi.New(axoapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	ids, err := client.ListTopologies(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runActivity(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("activity", flag.ContinueOnError)
	id := fs.String("id", "", "network id")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("activity requires --id")
	}

	client, err := axoapi.New(axoapi.Options{StoreKind: *storeKind, DBPath: *dbPath})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	records, ok, err := client.ActivityLog(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no activity recorded for %s", *id)
	}
	enc := json.NewEncoder(os.Stdout)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return nil
}

func runMonitor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("monitor", flag.ContinueOnError)
	topology := fs.String("topology", "", "topology file (json or yaml)")
	inputs := fs.String("inputs", "", "input events as port:value,port:value")
	duration := fs.Duration("duration", 2*time.Second, "how long to stream activity")
	logLevel := fs.String("log-level", "info", "log level: debug|info|warn|error")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *topology == "" {
		return errors.New("monitor requires --topology")
	}
	events, err := parseInputs(*inputs)
	if err != nil {
		return err
	}

	logger := logging.NewLogger(*logLevel, os.Stderr)

	client, err := axoapi.New(axoapi.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}
	if _, err := client.BuildFromFile(*topology); err != nil {
		return err
	}

	stream, cancel := client.Subscribe(0)
	defer cancel()

	client.SetMonitoring(true)
	if err := client.Start(ctx); err != nil {
		return err
	}
	defer client.Shutdown()

	for _, ev := range events {
		if err := client.SendInput(ctx, ev.Port, ev.Value); err != nil {
			return fmt.Errorf("send input %d:%d: %w", ev.Port, ev.Value, err)
		}
	}
	logger.Info("streaming activity", "network", client.Network().ID(), "duration", *duration)

	enc := json.NewEncoder(os.Stdout)
	deadline := time.After(*duration)
	for {
		select {
		case rec, open := <-stream:
			if !open {
				return nil
			}
			if err := enc.Encode(rec); err != nil {
				return err
			}
		case <-deadline:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: axonetctl <validate|run|export|import|list|activity|monitor> [flags]", msg)
}
