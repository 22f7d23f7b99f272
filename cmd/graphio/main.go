package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"graphio/internal/config"
	"graphio/internal/domain"
	"graphio/internal/envelope"
	"graphio/internal/progress"
	"graphio/internal/repository"
	"graphio/internal/repository/sqlite"
	"graphio/internal/service"
	"graphio/internal/watcher"
)

const usage = `Usage: graphio [global flags] <command> [flags]

Commands:
  convert   convert a graph file to another format
  stat      print node and edge counts of a graph file
  save      store a graph file as a snapshot
  load      write the latest snapshot of a name to a file
  list      list stored snapshots
  delete    delete a snapshot
  watch     reload a graph file whenever it changes
  formats   list formats and their capabilities
  keygen    write a new sealing key
  config    show the effective config, or -init a default config file

Global flags:
`

type command func(app *app, args []string) error

var commands = map[string]command{
	"convert": runConvert,
	"stat":    runStat,
	"save":    runSave,
	"load":    runLoad,
	"list":    runList,
	"delete":  runDelete,
	"watch":   runWatch,
	"formats": runFormats,
	"keygen":  runKeygen,
	"config":  runConfig,
}

// storeCommands need the snapshot database
var storeCommands = map[string]bool{
	"save": true, "load": true, "list": true, "delete": true,
}

func main() {
	configPath := flag.String("config", "", "config file (default: search standard locations)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	quiet := flag.Bool("quiet", false, "disable progress logging")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	log.SetFlags(log.LstdFlags)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	name, args := flag.Arg(0), flag.Args()[1:]
	run, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *quiet {
		cfg.Progress.Enabled = false
	}

	app, err := newApp(cfg, storeCommands[name])
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer app.Close()

	if err := run(app, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			app.Close()
			os.Exit(2)
		}
		log.Printf("%s: %v", name, err)
		app.Close()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, _, err := config.LoadFromPath(path)
		return cfg, err
	}
	cfg, found, err := config.Load()
	if err == nil && found != "" {
		log.Printf("Config loaded: %s", found)
	}
	return cfg, err
}

// app holds what every command shares
type app struct {
	cfg   *config.Config
	svc   *service.GraphService
	store *sqlite.Repository
	bus   *progress.Bus

	progress *progressLog
	closed   bool
}

func newApp(cfg *config.Config, withStore bool) (*app, error) {
	a := &app{cfg: cfg, bus: progress.NewBus()}

	opts := service.Options{
		Format: cfg.Format,
		Logger: log.Default(),
	}
	compression, err := envelope.ParseCompression(cfg.Envelope.Compression)
	if err != nil {
		return nil, err
	}
	opts.Envelope.Compression = compression
	if cfg.Envelope.KeyFile != "" {
		key, err := envelope.LoadKey(cfg.Envelope.KeyFile)
		if err != nil {
			return nil, err
		}
		opts.Envelope.Key = key
	}
	if cfg.Progress.Enabled {
		opts.Progress = a.notifier
		a.progress = startProgressLog(a.bus, log.Default(), cfg.Progress.Step)
	}

	if withStore {
		store, err := sqlite.New(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.store = store
		log.Printf("Database opened: %s", cfg.Store.Path)
	}

	var store repository.SnapshotStore
	if a.store != nil {
		store = a.store
	}
	svc, err := service.NewGraphService(store, opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.svc = svc
	return a, nil
}

func (a *app) notifier(label string) progress.Notifier {
	return progress.NewBusNotifier(a.bus, label)
}

// progressLog turns bus events into log lines, one LogNotifier per source
type progressLog struct {
	events  chan progress.Event
	logger  *log.Logger
	step    float64
	loggers map[string]*progress.LogNotifier
	done    chan struct{}
	stopped chan struct{}
}

func startProgressLog(bus *progress.Bus, logger *log.Logger, step float64) *progressLog {
	p := &progressLog{
		events:  make(chan progress.Event, 256),
		logger:  logger,
		step:    step,
		loggers: make(map[string]*progress.LogNotifier),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	bus.Subscribe(p.events)
	go p.run()
	return p
}

func (p *progressLog) run() {
	defer close(p.stopped)
	for {
		select {
		case ev := <-p.events:
			p.handle(ev)
		case <-p.done:
			// Publish is synchronous, so everything sent before Stop is buffered
			for {
				select {
				case ev := <-p.events:
					p.handle(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *progressLog) handle(ev progress.Event) {
	n, ok := p.loggers[ev.Source]
	if !ok {
		n = progress.NewLogNotifier(p.logger, ev.Source, p.step)
		p.loggers[ev.Source] = n
	}
	switch ev.Type {
	case progress.EventBegin:
		n.Begin()
	case progress.EventProgress:
		n.Report(ev.Fraction)
	case progress.EventEnd:
		n.End()
		delete(p.loggers, ev.Source)
	}
}

// Stop logs the buffered events and waits for the logger to finish
func (p *progressLog) Stop() {
	close(p.done)
	<-p.stopped
}

func (a *app) Close() {
	if a.closed {
		return
	}
	a.closed = true
	if a.progress != nil {
		a.progress.Stop()
	}
	if a.store != nil {
		a.store.Close()
	}
}

// fileFlags registers -<prefix> path and -<prefix>-format flags
func fileFlags(fs *flag.FlagSet, prefix, what string) *service.File {
	f := &service.File{}
	fs.StringVar(&f.Path, prefix, "", what+" file")
	fs.StringVar(&f.Format, prefix+"-format", "", what+" format (default: from extension)")
	return f
}

func requirePath(fs *flag.FlagSet, f *service.File, name string) error {
	if f.Path == "" {
		fs.Usage()
		return fmt.Errorf("-%s is required", name)
	}
	return nil
}

func runConvert(a *app, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	in := fileFlags(fs, "in", "input")
	out := fileFlags(fs, "out", "output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requirePath(fs, in, "in"); err != nil {
		return err
	}
	if err := requirePath(fs, out, "out"); err != nil {
		return err
	}

	g, err := a.svc.Convert(*in, *out)
	if err != nil {
		return err
	}
	fmt.Printf("%s -> %s: %d nodes, %d edges\n", in.Path, out.Path, g.NodeCount(), g.EdgeCount())
	return nil
}

func runStat(a *app, args []string) error {
	fs := flag.NewFlagSet("stat", flag.ContinueOnError)
	in := fileFlags(fs, "in", "input")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requirePath(fs, in, "in"); err != nil {
		return err
	}

	g := domain.NewGraph()
	if err := a.svc.ReadFile(*in, g); err != nil {
		return err
	}
	printStats(os.Stdout, g)
	return nil
}

func printStats(out io.Writer, g *domain.Graph) {
	fmt.Fprintf(out, "nodes: %d\nedges: %d\n", g.NodeCount(), g.EdgeCount())

	nodeTypes := make(map[string]int)
	for _, n := range g.Nodes() {
		nodeTypes[string(n.Type)]++
	}
	edgeTypes := make(map[string]int)
	for _, e := range g.Edges() {
		edgeTypes[string(e.Type)]++
	}

	sinks, maxFanOut := 0, 0
	for _, n := range g.Nodes() {
		fanOut := len(g.Successors(n.ID))
		if fanOut == 0 {
			sinks++
		}
		if fanOut > maxFanOut {
			maxFanOut = fanOut
		}
	}
	fmt.Fprintf(out, "sinks: %d\nmax fan-out: %d\n", sinks, maxFanOut)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, t := range sortedKeys(nodeTypes) {
		fmt.Fprintf(w, "  node\t%s\t%d\n", t, nodeTypes[t])
	}
	for _, t := range sortedKeys(edgeTypes) {
		fmt.Fprintf(w, "  edge\t%s\t%d\n", t, edgeTypes[t])
	}
	w.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runSave(a *app, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	in := fileFlags(fs, "in", "input")
	name := fs.String("name", "", "snapshot name (default: input file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requirePath(fs, in, "in"); err != nil {
		return err
	}
	if *name == "" {
		*name = in.Path
	}

	g := domain.NewGraph()
	if err := a.svc.ReadFile(*in, g); err != nil {
		return err
	}
	snap, err := a.svc.Save(context.Background(), *name, g)
	if err != nil {
		return err
	}
	fmt.Println(snap.ID)
	return nil
}

func runLoad(a *app, args []string) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	name := fs.String("name", "", "snapshot name")
	id := fs.String("id", "", "snapshot ID (instead of the latest of -name)")
	out := fileFlags(fs, "out", "output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" && *id == "" {
		fs.Usage()
		return errors.New("-name or -id is required")
	}

	ctx := context.Background()
	g := domain.NewGraph()
	var err error
	if *id != "" {
		_, err = a.svc.LoadID(ctx, *id, g)
	} else {
		_, err = a.svc.Load(ctx, *name, g)
	}
	if err != nil {
		return err
	}

	if out.Path == "" {
		printStats(os.Stdout, g)
		return nil
	}
	return a.svc.WriteFile(g, *out)
}

func runList(a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	name := fs.String("name", "", "only snapshots with this name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snaps, err := a.svc.List(context.Background(), *name)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFORMAT\tENVELOPE\tNODES\tEDGES\tCREATED")
	for _, s := range snaps {
		env := s.Envelope
		if env == "" {
			env = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			s.ID, s.Name, s.Format, env, s.NodeCount, s.EdgeCount, s.CreatedAt.Local().Format(time.DateTime))
	}
	return w.Flush()
}

func runDelete(a *app, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.String("id", "", "snapshot ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		fs.Usage()
		return errors.New("-id is required")
	}
	return a.svc.Delete(context.Background(), *id)
}

func runWatch(a *app, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	in := fileFlags(fs, "in", "input")
	debounce := fs.Duration("debounce", a.cfg.Watch.Debounce.Duration(), "quiet period before reloading")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requirePath(fs, in, "in"); err != nil {
		return err
	}

	reader := fileReader{svc: a.svc, format: in.Format}
	w := watcher.New(in.Path, reader, func(g *domain.Graph) {
		fmt.Printf("%s: %d nodes, %d edges\n", in.Path, g.NodeCount(), g.EdgeCount())
	}).WithDebounce(*debounce)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Println("Watcher stopped")
	return nil
}

// fileReader adapts the service to watcher.FileReader
type fileReader struct {
	svc    *service.GraphService
	format string
}

func (r fileReader) ReadFile(path string, g domain.Builder) error {
	return r.svc.ReadFile(service.File{Path: path, Format: r.format}, g)
}

func runFormats(a *app, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FORMAT\tREAD\tWRITE")
	for _, f := range a.svc.Formats() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", f.Name, yesNo(f.CanRead), yesNo(f.CanWrite))
	}
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func runKeygen(a *app, args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	out := fs.String("out", "", "key file to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		fs.Usage()
		return errors.New("-out is required")
	}

	key, err := envelope.GenerateKey()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(*out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, hex.EncodeToString(key)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Sealing key written to %s", *out)
	return nil
}

func runConfig(a *app, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	initFile := fs.Bool("init", false, "write a default config file")
	path := fs.String("path", "", "file for -init (default: "+config.DefaultConfigPath()+")")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*initFile {
		fmt.Println(a.cfg.Summary())
		return nil
	}
	written, err := config.Init(*path)
	if err != nil {
		return err
	}
	log.Printf("Config written to %s", written)
	return nil
}
