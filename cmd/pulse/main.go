package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/signalworks/pulse/internal/config"
	"github.com/signalworks/pulse/internal/feedback"
	"github.com/signalworks/pulse/internal/ingest"
	"github.com/signalworks/pulse/internal/lifecycle"
	"github.com/signalworks/pulse/internal/mcp"
	"github.com/signalworks/pulse/internal/observe"
	"github.com/signalworks/pulse/internal/profile"
	"github.com/signalworks/pulse/internal/recommend"
	"github.com/signalworks/pulse/internal/store"
	"github.com/signalworks/pulse/internal/value"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "classify":
		err = runClassify(os.Args[2:])
	case "estimate":
		err = runEstimate(os.Args[2:])
	case "call":
		err = runCall(os.Args[2:])
	case "recommend":
		err = runRecommend(os.Args[2:])
	case "opportunities":
		err = runOpportunities(os.Args[2:])
	case "opportunity":
		err = runOpportunityUpdate(os.Args[2:])
	case "feedback":
		err = runFeedback(os.Args[2:])
	case "expire":
		err = runExpire(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("pulse %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cliArgs holds flag values and positionals after parsing. Every command
// accepts --db and --config on top of its own flags.
type cliArgs struct {
	flags map[string]string
	pos   []string
}

// flagsWithValue lists the flags that consume the following argument.
// Anything else starting with "--" is treated as a boolean switch.
var flagsWithValue = map[string]bool{
	"--db": true, "--config": true,
	"--user": true, "--transcript": true, "--services": true,
	"--price-min": true, "--price-max": true,
	"--industry": true, "--size": true, "--chaos": true,
	"--focus": true, "--frequency": true, "--tolerance": true,
	"--status": true, "--limit": true,
	"--action": true, "--rating": true, "--seconds": true,
}

func parseArgs(args []string) (cliArgs, error) {
	out := cliArgs{flags: make(map[string]string)}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			out.pos = append(out.pos, arg)
			continue
		}
		if flagsWithValue[arg] {
			if i+1 >= len(args) {
				return out, fmt.Errorf("flag %s requires a value", arg)
			}
			out.flags[arg] = args[i+1]
			i++
			continue
		}
		switch arg {
		case "--dry-run", "-n", "--json":
			out.flags[arg] = "true"
		default:
			return out, fmt.Errorf("unknown flag: %s", arg)
		}
	}
	return out, nil
}

func (a cliArgs) bool(name string) bool { return a.flags[name] == "true" }

func (a cliArgs) int(name string, def int) (int, error) {
	v, ok := a.flags[name]
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("flag %s: expected a number, got %q", name, v)
	}
	return n, nil
}

func (a cliArgs) float(name string) (float64, bool, error) {
	v, ok := a.flags[name]
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, fmt.Errorf("flag %s: expected a number, got %q", name, v)
	}
	return f, true, nil
}

// resolve layers config file, environment, and CLI flags, then opens the
// store at the resolved path.
func resolve(a cliArgs) (config.ResolvedConfig, store.Store, error) {
	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: a.flags["--config"],
		CLIDBPath:  a.flags["--db"],
	})
	if err != nil {
		return cfg, nil, err
	}
	s, err := store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
	if err != nil {
		return cfg, nil, fmt.Errorf("opening store: %w", err)
	}
	return cfg, s, nil
}

func services(a cliArgs, cfg config.ResolvedConfig) []string {
	if v := strings.TrimSpace(a.flags["--services"]); v != "" {
		var out []string
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return cfg.Services
}

func profileFromArgs(a cliArgs) (profile.BusinessProfile, error) {
	bp := profile.BusinessProfile{
		Industry:     strings.ToLower(strings.TrimSpace(a.flags["--industry"])),
		BusinessSize: strings.ToLower(strings.TrimSpace(a.flags["--size"])),
	}
	chaos, err := a.int("--chaos", 0)
	if err != nil {
		return bp, err
	}
	bp.ChaosIndicator = chaos

	min, hasMin, err := a.float("--price-min")
	if err != nil {
		return bp, err
	}
	max, hasMax, err := a.float("--price-max")
	if err != nil {
		return bp, err
	}
	if hasMin != hasMax {
		return bp, fmt.Errorf("--price-min and --price-max must be given together")
	}
	if hasMin {
		bp.PriceRange = &profile.PriceRange{Min: min, Max: max}
	}
	return bp, nil
}

func runClassify(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(a.pos) == 0 {
		return fmt.Errorf("usage: pulse classify <transcript> [--services a,b]")
	}

	cfg, err := config.ResolveConfig(config.ResolveOptions{ConfigPath: a.flags["--config"]})
	if err != nil {
		return err
	}

	engine := ingest.NewEngine(nil, services(a, cfg))
	sig := engine.Classify(strings.Join(a.pos, " "))
	return printJSON(sig)
}

func runEstimate(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	if len(a.pos) == 0 {
		return fmt.Errorf("usage: pulse estimate <transcript> --price-min N --price-max N [--services a,b]")
	}

	bp, err := profileFromArgs(a)
	if err != nil {
		return err
	}
	cfg, err := config.ResolveConfig(config.ResolveOptions{ConfigPath: a.flags["--config"]})
	if err != nil {
		return err
	}

	engine := ingest.NewEngine(nil, services(a, cfg))
	sig := engine.Classify(strings.Join(a.pos, " "))
	est := value.Estimate(sig, bp.PriceRange)

	out := struct {
		Signal         interface{} `json:"signal"`
		EstimatedValue *float64    `json:"estimated_value"`
	}{sig, est}
	return printJSON(out)
}

func runCall(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	userID := a.flags["--user"]
	if userID == "" {
		return fmt.Errorf("usage: pulse call --user <id> --transcript <text> [--price-min N --price-max N]")
	}

	bp, err := profileFromArgs(a)
	if err != nil {
		return err
	}

	cfg, s, err := resolve(a)
	if err != nil {
		return err
	}
	defer s.Close()

	engine := ingest.NewEngine(s, services(a, cfg))
	o, err := engine.HandleCall(context.Background(), ingest.CallEvent{
		UserID:     userID,
		Transcript: a.flags["--transcript"],
	}, bp)
	if err != nil {
		return err
	}

	fmt.Printf("Recorded opportunity %s (%s/%s", o.ID, o.Intent, o.Urgency)
	if o.Topic != "" {
		fmt.Printf(", topic %s", o.Topic)
	}
	if o.EstimatedValue != nil {
		fmt.Printf(", est. $%.0f", *o.EstimatedValue)
	}
	fmt.Println(")")
	return nil
}

func runRecommend(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	userID := a.flags["--user"]
	focus := a.flags["--focus"]
	if userID == "" || focus == "" {
		return fmt.Errorf("usage: pulse recommend --user <id> --focus <areas> [--industry i] [--size s] [--chaos N] [--frequency f] [--tolerance t] [--json]")
	}

	bp, err := profileFromArgs(a)
	if err != nil {
		return err
	}
	prefs := profile.UserPreferences{
		Frequency:           profile.ParseFrequency(a.flags["--frequency"]),
		ComplexityTolerance: profile.ParseComplexity(a.flags["--tolerance"]),
	}
	for _, f := range strings.Split(focus, ",") {
		if f = strings.TrimSpace(f); f != "" {
			prefs.FocusAreas = append(prefs.FocusAreas, f)
		}
	}

	cfg, s, err := resolve(a)
	if err != nil {
		return err
	}
	defer s.Close()

	engine := recommend.NewEngine(s, cfg.EngineOptions())
	report, err := engine.RunPass(context.Background(), userID, bp, prefs)
	if err != nil {
		return err
	}

	if a.bool("--json") {
		return printJSON(report)
	}

	fmt.Printf("Pass for %s: generated %d, selected %d, persisted %d",
		report.UserID, report.Generated, report.Selected, report.Persisted)
	if report.Superseded > 0 {
		fmt.Printf(" (superseded %d)", report.Superseded)
	}
	if report.CooldownSkipped > 0 {
		fmt.Printf(" (cooldown skipped %d)", report.CooldownSkipped)
	}
	fmt.Println()
	for _, rec := range report.Recommendations {
		fmt.Printf("  [%3d] %-20s %s\n", rec.Score, rec.RecType, rec.Title)
	}
	return nil
}

func runOpportunities(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	userID := a.flags["--user"]
	if userID == "" {
		return fmt.Errorf("usage: pulse opportunities --user <id> [--status s] [--limit n] [--json]")
	}
	limit, err := a.int("--limit", 20)
	if err != nil {
		return err
	}

	_, s, err := resolve(a)
	if err != nil {
		return err
	}
	defer s.Close()

	list, err := s.ListOpportunities(context.Background(), userID, store.ListOpts{
		Status: a.flags["--status"],
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	if a.bool("--json") {
		return printJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No opportunities.")
		return nil
	}
	for _, o := range list {
		value := "-"
		if o.EstimatedValue != nil {
			value = fmt.Sprintf("$%.0f", *o.EstimatedValue)
		}
		fmt.Printf("%s  %-10s %-16s %-8s %s\n", o.ID, o.Status, o.Intent, value, o.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func runOpportunityUpdate(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	status := a.flags["--status"]
	if len(a.pos) != 1 || status == "" {
		return fmt.Errorf("usage: pulse opportunity <id> --status contacted|converted|dismissed")
	}

	_, s, err := resolve(a)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.TransitionOpportunity(context.Background(), a.pos[0], status); err != nil {
		return err
	}
	fmt.Printf("Opportunity %s → %s\n", a.pos[0], status)
	return nil
}

func runFeedback(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	action := a.flags["--action"]
	if len(a.pos) != 1 || action == "" {
		return fmt.Errorf("usage: pulse feedback <recommendation-id> --action implemented|dismissed|rated [--rating 1-5] [--seconds n]")
	}
	rating, err := a.int("--rating", 0)
	if err != nil {
		return err
	}
	seconds, err := a.int("--seconds", 0)
	if err != nil {
		return err
	}

	_, s, err := resolve(a)
	if err != nil {
		return err
	}
	defer s.Close()

	event := &store.EngagementEvent{
		RecommendationID: a.pos[0],
		Action:           action,
		Rating:           rating,
		SecondsOnItem:    seconds,
	}
	if err := feedback.NewChannel(s).Apply(context.Background(), event); err != nil {
		return err
	}
	fmt.Printf("Recorded %s on %s\n", action, a.pos[0])
	return nil
}

func runExpire(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}

	_, s, err := resolve(a)
	if err != nil {
		return err
	}
	defer s.Close()

	runner, err := lifecycle.NewRunner(s)
	if err != nil {
		return err
	}
	dryRun := a.bool("--dry-run") || a.bool("-n")
	report, err := runner.Run(context.Background(), dryRun)
	if err != nil {
		return err
	}

	if a.bool("--json") {
		return printJSON(report)
	}
	if dryRun {
		fmt.Println("Dry run — no changes written")
	}
	fmt.Printf("Scanned %d overdue, expired %d\n", report.Scanned, report.Applied)
	for _, act := range report.Actions {
		fmt.Printf("  %s (%s): %s\n", act.RecommendationID, act.UserID, act.Reason)
	}
	return nil
}

func runStats(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}

	_, s, err := resolve(a)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := observe.NewEngine(s).Snapshot(context.Background(), a.flags["--user"])
	if err != nil {
		return err
	}
	if a.bool("--json") {
		return printJSON(report)
	}
	fmt.Print(report.Format())
	return nil
}

func runConfig(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}
	cfg, err := config.ResolveConfig(config.ResolveOptions{
		ConfigPath: a.flags["--config"],
		CLIDBPath:  a.flags["--db"],
	})
	if err != nil {
		return err
	}
	return printJSON(cfg)
}

func runServe(args []string) error {
	a, err := parseArgs(args)
	if err != nil {
		return err
	}

	cfg, s, err := resolve(a)
	if err != nil {
		return err
	}
	defer s.Close()

	srv := mcp.NewServer(mcp.ServerConfig{
		Store:    s,
		Services: services(a, cfg),
		Options:  cfg.EngineOptions(),
		Version:  version,
	})
	return mcpserver.ServeStdio(srv)
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func printUsage() {
	fmt.Printf(`pulse %s — Call signal classification and recommendation scoring engine

Usage:
  pulse <command> [arguments]

Commands:
  classify <transcript>    Classify a transcript without persisting anything
  estimate <transcript>    Classify and estimate value against a price range
  call                     Record an inbound call as a pending opportunity
  recommend                Run a scoring pass and persist the active set
  opportunities            List a user's opportunities
  opportunity <id>         Transition an opportunity's status
  feedback <rec-id>        Record engagement with a recommendation
  expire                   Expire overdue recommendations (--dry-run to preview)
  stats                    Show pipeline and engagement counts
  config                   Print the resolved configuration with provenance
  serve                    Run the MCP server over stdio
  version                  Print version

Common Flags:
  --db <path>              SQLite database path (default: ~/.pulse/pulse.db)
  --config <path>          Config file path (default: ~/.pulse/config.yaml)
  --json                   JSON output where supported
  -h, --help               Show this help message
`, version)
}
