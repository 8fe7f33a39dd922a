// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"ooxml-mask/internal/config"
	"ooxml-mask/internal/formatters"
	_ "ooxml-mask/internal/formatters/json"
	_ "ooxml-mask/internal/formatters/text"
	_ "ooxml-mask/internal/formatters/yaml"
	"ooxml-mask/internal/help"
	"ooxml-mask/internal/masking"
	"ooxml-mask/internal/observability"
	"ooxml-mask/internal/paths"
	"ooxml-mask/internal/redactors"
	"ooxml-mask/internal/redactors/office"
	"ooxml-mask/internal/rules"
	"ooxml-mask/internal/version"

	"golang.org/x/term"
)

// Exit codes
const (
	exitOK          = 0
	exitFatal       = 1
	exitDiagnostics = 2
)

// stringSlice is a flag that may be given more than once
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// flagValues holds the parsed command line
type flagValues struct {
	files      stringSlice
	masks      stringSlice
	maskRegex  stringSlice
	rulesFile  string
	configFile string
	profile    string
	outputDir  string
	suffix     string
	glyph      string
	format     string
	grouping   string
	auditLog   string
	saveRules  string
	watchDir   string

	prioritize   bool
	initRules    bool
	listProfiles bool
	verbose      bool
	debug        bool
	quiet        bool
	noColor      bool
	showVersion  bool
	showHelp     bool
}

// finalConfiguration is the configuration after flags were applied
type finalConfiguration struct {
	format  string
	verbose bool
	debug   bool
	quiet   bool
	noColor bool
}

func newFlagSet(stderr io.Writer) (*flag.FlagSet, *flagValues) {
	fs := flag.NewFlagSet("ooxml-mask", flag.ContinueOnError)
	fs.SetOutput(stderr)

	v := &flagValues{}
	fs.Var(&v.files, "file", "Document to mask; may be repeated")
	fs.Var(&v.masks, "mask", "Literal text to mask; may be repeated")
	fs.Var(&v.maskRegex, "mask-regex", "Regular expression to mask; may be repeated")
	fs.StringVar(&v.rulesFile, "rules", "", "Rule table file (JSON or YAML)")
	fs.StringVar(&v.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&v.profile, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&v.listProfiles, "list-profiles", false, "List available profiles in config file")
	fs.StringVar(&v.outputDir, "output-dir", "", "Directory for masked copies (default: next to the input)")
	fs.StringVar(&v.suffix, "suffix", "", "Suffix added before the extension (default: _masked)")
	fs.StringVar(&v.glyph, "glyph", "", "Mask character (default: ■)")
	fs.StringVar(&v.format, "format", "", "Report format: text, json, yaml (default: text)")
	fs.StringVar(&v.grouping, "grouping", "", "Presentation grouping: textbox or paragraph")
	fs.BoolVar(&v.prioritize, "prioritize", false, "Apply longer literals before shorter ones")
	fs.StringVar(&v.auditLog, "audit-log", "", "Write a JSON audit log of the run")
	fs.StringVar(&v.saveRules, "save-rules", "", "Write the effective rule table as JSON")
	fs.BoolVar(&v.initRules, "init-rules", false, "Write a starter rule table to the config directory")
	fs.StringVar(&v.watchDir, "watch", "", "Mask office files as they appear in a directory")
	fs.BoolVar(&v.verbose, "verbose", false, "List every part in the report")
	fs.BoolVar(&v.debug, "debug", false, "Trace each part as it is rewritten")
	fs.BoolVar(&v.quiet, "quiet", false, "Print nothing unless something failed")
	fs.BoolVar(&v.noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&v.showVersion, "version", false, "Show version information")
	fs.BoolVar(&v.showHelp, "help", false, "Show help")
	fs.BoolVar(&v.showHelp, "h", false, "Show help")
	return fs, v
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs, flags := newFlagSet(stderr)
	fs.Usage = func() {
		showHelp(stderr, "", true)
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFatal
	}

	if flags.showHelp {
		if !showHelp(stdout, fs.Arg(0), flags.noColor || !isTerminal(stdout)) {
			return exitFatal
		}
		return exitOK
	}
	if flags.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return exitOK
	}
	if flags.initRules {
		rulesFile := paths.GetRulesFile()
		if err := rules.InitFile(rulesFile); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFatal
		}
		fmt.Fprintf(stdout, "Wrote starter rules to %s; enable the rows you need.\n", rulesFile)
		return exitOK
	}

	cfg, configFile, err := loadConfiguration(flags.configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	if flags.listProfiles {
		listProfiles(stdout, cfg, configFile)
		return exitOK
	}
	if err := handleProfiles(cfg, flags.profile); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	final, err := resolveConfiguration(cfg, flags, fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	if len(flags.files) == 0 && flags.watchDir == "" {
		fmt.Fprintln(stderr, "Error: no input. Use -file <document> or -watch <dir>")
		fmt.Fprintln(stderr, "Run 'ooxml-mask -help' for usage.")
		return exitFatal
	}

	ruleList, err := collectRules(cfg, flags)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	if flags.saveRules != "" {
		if err := rules.SaveFile(flags.saveRules, ruleList); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFatal
		}
	}

	glyph, err := masking.ParseGlyph(cfg.Masking.Glyph)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	set, ruleDiags, err := masking.Compile(ruleList, masking.WithGlyph(glyph))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	if set.Empty() && !final.quiet {
		fmt.Fprintln(stderr, "Warning: no usable rules; documents will be copied unchanged")
	}

	var observer *observability.StandardObserver
	if final.debug {
		observer = observability.NewDebugObserver(stderr).StandardObserver
		defer logRunSummary(observer)
	} else {
		observer = observability.NewStandardObserver(observability.ObservabilityMetrics, nil)
	}

	outputManager, err := redactors.NewOutputStructureManager(cfg.Output.Dir, cfg.Output.Suffix, observer)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}
	var auditLogManager *redactors.RedactionAuditLogManager
	if cfg.Output.AuditLog != "" {
		auditLogManager = redactors.NewRedactionAuditLogManager(cfg.Output.AuditLog)
	}

	manager := redactors.NewRedactionManager(outputManager, auditLogManager, version.Short(), observer)
	if err := registerDefaultRedactors(manager, cfg, set, observer); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	report := &formatters.Report{
		RunID:           observer.RunID(),
		ToolVersion:     version.Short(),
		RuleDiagnostics: ruleDiags,
	}
	options := formatters.FormatterOptions{
		Verbose: final.verbose,
		NoColor: final.noColor || !isTerminal(stdout),
	}

	results, errs := manager.RedactFiles(flags.files)
	for i, path := range flags.files {
		addResult(report, path, results[i], errs[i])
	}
	if flags.watchDir != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := watchDirectory(ctx, manager, flags.watchDir, cfg.Watch.Debounce, report, final, stdout); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFatal
		}
	}
	report.Stats = manager.GetStats()

	if !final.quiet || len(report.Failures) > 0 {
		output, err := formatters.Export(final.format, report, options)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitFatal
		}
		fmt.Fprint(stdout, output)
	}

	if err := manager.SaveAuditLog(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitFatal
	}

	return exitCode(report)
}

// exitCode maps a finished run to the process exit status
func exitCode(report *formatters.Report) int {
	switch {
	case len(report.Failures) > 0:
		return exitFatal
	case report.HasDiagnostics():
		return exitDiagnostics
	default:
		return exitOK
	}
}

func recordResult(report *formatters.Report, path string, manager *redactors.RedactionManager) *redactors.DocumentResult {
	result, err := manager.RedactFile(path)
	addResult(report, path, result, err)
	return result
}

func addResult(report *formatters.Report, path string, result *redactors.DocumentResult, err error) {
	if err != nil {
		report.Failures = append(report.Failures, formatters.Failure{Path: path, Err: err})
	}
	if result != nil {
		report.Documents = append(report.Documents, result)
	}
}

// logRunSummary closes a debug trace with the observer's operation counts
func logRunSummary(observer *observability.StandardObserver) {
	if observer.DebugObserver == nil {
		return
	}
	operations, failures := observer.Counts()
	observer.DebugObserver.LogMetric("ooxml-mask", "operations", operations)
	observer.DebugObserver.LogMetric("ooxml-mask", "failed_operations", failures)
}

func showHelp(out io.Writer, topic string, noColor bool) bool {
	system := help.NewSystem(out, noColor)
	for _, provider := range office.HelpProviders() {
		system.RegisterProvider(provider)
	}

	switch topic {
	case "":
		system.ShowGeneralHelp()
	case "formats":
		system.ShowFormatsHelp()
	default:
		return system.ShowFormatHelp(topic)
	}
	return true
}

// loadConfiguration loads the configuration file named on the command line,
// or the first one found in the standard locations. It returns the loaded
// configuration and the file it came from, empty when defaults are used.
func loadConfiguration(configFile string) (*config.Config, string, error) {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return cfg, path, nil
}

func listProfiles(out io.Writer, cfg *config.Config, configFile string) {
	if configFile == "" {
		fmt.Fprintln(out, "No configuration file found. No profiles available.")
		return
	}

	profiles := cfg.ListProfiles()
	if len(profiles) == 0 {
		fmt.Fprintln(out, "No profiles defined in configuration file.")
		return
	}
	fmt.Fprintln(out, "Available profiles:")
	for _, name := range profiles {
		profile := cfg.GetProfile(name)
		if profile != nil && profile.Description != "" {
			fmt.Fprintf(out, "  - %s: %s\n", name, profile.Description)
		} else {
			fmt.Fprintf(out, "  - %s\n", name)
		}
	}
}

// handleProfiles applies the named profile, if any
func handleProfiles(cfg *config.Config, profileName string) error {
	if profileName == "" {
		return nil
	}
	if err := cfg.ApplyProfile(profileName); err != nil {
		return fmt.Errorf("profile '%s': %w", profileName, err)
	}
	return nil
}

// resolveConfiguration lays explicitly set flags over the configuration and
// validates the result
func resolveConfiguration(cfg *config.Config, flags *flagValues, fs *flag.FlagSet) (*finalConfiguration, error) {
	if isFlagSet(fs, "rules") {
		cfg.Masking.RulesFile = flags.rulesFile
	}
	if isFlagSet(fs, "glyph") {
		cfg.Masking.Glyph = flags.glyph
	}
	if isFlagSet(fs, "prioritize") {
		cfg.Masking.Prioritize = flags.prioritize
	}
	if isFlagSet(fs, "output-dir") {
		cfg.Output.Dir = flags.outputDir
	}
	if isFlagSet(fs, "suffix") {
		cfg.Output.Suffix = flags.suffix
	}
	if isFlagSet(fs, "audit-log") {
		cfg.Output.AuditLog = flags.auditLog
	}
	if isFlagSet(fs, "grouping") {
		cfg.Presentation.Grouping = flags.grouping
	}
	if isFlagSet(fs, "format") {
		cfg.Defaults.Format = strings.ToLower(flags.format)
	}
	if isFlagSet(fs, "debug") {
		cfg.Defaults.Debug = flags.debug
	}
	if isFlagSet(fs, "quiet") {
		cfg.Defaults.Quiet = flags.quiet
	}
	if isFlagSet(fs, "no-color") {
		cfg.Defaults.NoColor = flags.noColor
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return &finalConfiguration{
		format:  cfg.Defaults.Format,
		verbose: flags.verbose,
		debug:   cfg.Defaults.Debug,
		quiet:   cfg.Defaults.Quiet,
		noColor: cfg.Defaults.NoColor,
	}, nil
}

// collectRules returns the configured rules followed by the command line rules
func collectRules(cfg *config.Config, flags *flagValues) ([]rules.Rule, error) {
	ruleList, err := cfg.LoadRules()
	if err != nil {
		return nil, err
	}
	for _, value := range flags.masks {
		ruleList = append(ruleList, rules.Literal(value))
	}
	for _, pattern := range flags.maskRegex {
		ruleList = append(ruleList, rules.Regex(pattern))
	}
	if cfg.Masking.Prioritize {
		ruleList = rules.PrioritizeLiterals(ruleList)
	}
	return ruleList, nil
}

// registerDefaultRedactors registers the office redactor with the manager
func registerDefaultRedactors(manager *redactors.RedactionManager, cfg *config.Config, set *masking.RuleSet, observer *observability.StandardObserver) error {
	options, err := cfg.OfficeOptions()
	if err != nil {
		return err
	}

	officeRedactor := office.NewOfficeRedactor(set, options, observer)
	if err := manager.RegisterRedactor(officeRedactor); err != nil {
		return fmt.Errorf("failed to register Office redactor: %w", err)
	}
	return nil
}

// supportedInput reports whether the watch loop should pick up path
func supportedInput(manager *redactors.RedactionManager, path string) bool {
	if manager.OutputManager().IsOutput(path) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range manager.SupportedExtensions() {
		if ext == supported {
			return true
		}
	}
	return false
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
