// Package main implements the cda-validate CLI tool.
// It validates C-CDA documents with the built-in envelope engine and
// repairs Schematron rule files for use by external assertion engines.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	cv "github.com/gocda/validator"
	"github.com/gocda/validator/engine"
	"github.com/gocda/validator/registry"
	"github.com/gocda/validator/schematron"
	"github.com/gocda/validator/worker"
)

const (
	version = "0.1.0"
	usage   = `cda-validate - C-CDA Document Validator

Usage:
  cda-validate [options] <file>...
  cda-validate [options] -                  (read from stdin)
  cda-validate -repair-only <rulefile>...   (repair rule files only)

Examples:
  cda-validate ccd.xml
  cda-validate -release R2.0 ccd.xml
  cda-validate -templates site-templates.json ccd.xml
  cda-validate -output json ccd.xml
  cda-validate -jobs 8 *.xml
  cda-validate -repair-only consolidation-r2.1.sch
  cat ccd.xml | cda-validate -

Options:
`
)

// OutputFormat specifies the output format.
type OutputFormat string

// Output format constants.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Severity and status colors for text output.
var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	engineColor  = color.New(color.FgCyan)
	validColor   = color.New(color.FgGreen, color.Bold)
	invalidColor = color.New(color.FgRed, color.Bold)
)

// Config holds CLI configuration
type Config struct {
	Release     string
	ConfigFile  string
	Templates   string
	Schema      string
	Rules       string
	Output      OutputFormat
	Strict      bool
	NoRepair    bool
	RepairOnly  bool
	Quiet       bool
	Jobs        int
	ShowVersion bool
	Help        bool
	Files       []string
}

// ValidationOutput represents the JSON output structure for one document
type ValidationOutput struct {
	Document string         `json:"document"`
	Valid    bool           `json:"valid"`
	Complete bool           `json:"complete"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Error    string         `json:"error,omitempty"`
	Engines  []EngineOutput `json:"engines,omitempty"`
	Duration string         `json:"duration"`
}

// EngineOutput represents one engine's results in JSON output
type EngineOutput struct {
	Name     string          `json:"name"`
	Valid    bool            `json:"valid"`
	Complete bool            `json:"complete"`
	Issues   []cv.Diagnostic `json:"issues,omitempty"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("cda-validate v%s\n", version)
		os.Exit(0)
	}

	if config.Help || len(config.Files) == 0 && config.Rules == "" {
		flag.Usage()
		os.Exit(0)
	}

	exitCode := run(config)
	os.Exit(exitCode)
}

func parseFlags() *Config {
	config := &Config{
		Output: OutputText,
	}

	var output string

	flag.StringVar(&config.Release, "release", "", "C-CDA release: R1.1, R2.0, R2.1 (default R2.1)")
	flag.StringVar(&config.ConfigFile, "config", "", "YAML config file with options and engine wiring")
	flag.StringVar(&config.Templates, "templates", "", "JSON template table merged over the built-in registry")
	flag.StringVar(&config.Schema, "schema", "", "Schema file handed to the structural engine")
	flag.StringVar(&config.Rules, "rules", "", "Schematron rule file to check for dangling references")
	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.BoolVar(&config.Strict, "strict", false, "Treat warnings as errors")
	flag.BoolVar(&config.NoRepair, "no-repair", false, "Pass rule files to engines without repair")
	flag.BoolVar(&config.RepairOnly, "repair-only", false, "Repair rule files and exit; no validation")
	flag.BoolVar(&config.Quiet, "quiet", false, "Only show errors and warnings")
	flag.IntVar(&config.Jobs, "jobs", 1, "Number of documents to validate in parallel")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	// Parse output format
	switch strings.ToLower(output) {
	case "json":
		config.Output = OutputJSON
	default:
		config.Output = OutputText
	}

	// Remaining arguments are files
	config.Files = flag.Args()

	return config
}

func run(config *Config) int {
	if config.RepairOnly {
		return runRepair(config)
	}

	fileCfg, err := loadFileConfig(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	release := resolveRelease(config, fileCfg)
	if !release.IsValid() {
		fmt.Fprintf(os.Stderr, "Error: unknown release %q\n", release)
		return 1
	}

	if !config.Quiet {
		fmt.Fprintf(os.Stderr, "Initializing C-CDA validator (release %s)...\n", release)
	}

	v, err := engine.New(context.Background(), release, buildOptions(config, fileCfg)...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize validator: %v\n", err)
		return 1
	}
	defer v.Close()

	if err := loadTemplates(v, config, fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := registerEngines(v, config, fileCfg, release); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Preflight -rules: report what repair would change without running
	// an assertion engine (the binary does not embed one).
	if config.Rules != "" && !config.NoRepair {
		if code := checkRules(config); code != 0 {
			return code
		}
	}
	if len(config.Files) == 0 {
		return 0
	}

	files, hasErrors := expandFiles(config.Files)

	if !config.Quiet {
		fmt.Fprintf(os.Stderr, "Validator ready. Processing %d file(s)...\n\n", len(files))
	}

	var outputs []ValidationOutput
	var runErrors bool
	if config.Jobs > 1 && len(files) > 1 {
		outputs, runErrors = validateParallel(v, files, config)
		if config.Output == OutputText {
			for _, output := range outputs {
				printTextResult(output, config)
			}
		}
	} else {
		outputs, runErrors = validateSequential(v, files, config)
	}
	if runErrors {
		hasErrors = true
	}

	// Output JSON if requested
	if config.Output == OutputJSON {
		jsonOutput, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(jsonOutput))
	} else if !config.Quiet {
		printSummary(v)
	}

	if hasErrors {
		return 1
	}
	return 0
}

func loadFileConfig(config *Config) (*cv.Config, error) {
	if config.ConfigFile == "" {
		return nil, nil
	}
	return cv.LoadConfig(config.ConfigFile)
}

// resolveRelease picks the release: explicit flag, then config file, then R2.1.
func resolveRelease(config *Config, fileCfg *cv.Config) cv.CDARelease {
	if config.Release != "" {
		return cv.CDARelease(config.Release)
	}
	if fileCfg != nil && fileCfg.Release != "" {
		return cv.CDARelease(fileCfg.Release)
	}
	return cv.R21
}

func buildOptions(config *Config, fileCfg *cv.Config) []cv.Option {
	var opts []cv.Option
	if fileCfg != nil {
		opts = fileCfg.ToOptions()
	}
	if config.Strict {
		opts = append(opts, cv.WithStrictMode(true))
	}
	if config.NoRepair {
		opts = append(opts, cv.WithRepair(false))
	}
	if config.Jobs > 1 {
		opts = append(opts, cv.WithWorkerCount(config.Jobs))
	}
	return opts
}

func loadTemplates(v *engine.Validator, config *Config, fileCfg *cv.Config) error {
	path := config.Templates
	if path == "" && fileCfg != nil {
		path = fileCfg.Templates
	}
	if path == "" {
		return nil
	}

	extras, err := registry.LoadFile(path)
	if err != nil {
		return err
	}
	v.SetTemplates(registry.Default().Merge(extras))
	return nil
}

// registerEngines wires the engines to run. Without a config file the
// built-in envelope engine runs alone; a config file replaces that default
// with its own entries. Assertion entries are rejected because the binary
// embeds no assertion evaluator.
func registerEngines(v *engine.Validator, config *Config, fileCfg *cv.Config, release cv.CDARelease) error {
	var schema []byte
	if config.Schema != "" {
		data, err := os.ReadFile(config.Schema)
		if err != nil {
			return fmt.Errorf("read schema: %w", err)
		}
		schema = data
	}

	if fileCfg == nil || len(fileCfg.Engines) == 0 {
		return v.Register(engine.Config{
			Name:       "envelope",
			Kind:       cv.EngineStructural,
			Structural: newEnvelopeEngine(release),
			Schema:     schema,
		})
	}

	for _, e := range fileCfg.Engines {
		if cv.EngineKind(e.Kind) != cv.EngineStructural {
			return fmt.Errorf("engine %q: cda-validate has no embedded %s engine; embed the validator library to register one", e.Name, e.Kind)
		}
		engineSchema := schema
		if e.Schema != "" {
			data, err := os.ReadFile(e.Schema)
			if err != nil {
				return fmt.Errorf("engine %q: read schema: %w", e.Name, err)
			}
			engineSchema = data
		}
		cfg := engine.Config{
			Name:       e.Name,
			Kind:       cv.EngineStructural,
			Structural: newEnvelopeEngine(release),
			Schema:     engineSchema,
			Timeout:    time.Duration(e.Timeout),
		}
		if err := v.Register(cfg); err != nil {
			return err
		}
	}
	return nil
}

// expandFiles resolves glob patterns up front so parallel runs see a flat
// list. Plain names that match nothing pass through; the read step reports
// them as missing files.
func expandFiles(patterns []string) ([]string, bool) {
	var files []string
	hadError := false
	for _, pattern := range patterns {
		if pattern == "-" {
			files = append(files, pattern)
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error with pattern '%s': %v\n", pattern, err)
			hadError = true
			continue
		}
		if len(matches) == 0 {
			files = append(files, pattern)
			continue
		}
		files = append(files, matches...)
	}
	return files, hadError
}

func validateSequential(v *engine.Validator, files []string, config *Config) ([]ValidationOutput, bool) {
	hasErrors := false
	outputs := make([]ValidationOutput, 0, len(files))

	for _, file := range files {
		name, data, err := readInput(file)
		if err != nil {
			output := errorOutput(name, fmt.Sprintf("Failed to read file: %v", err), 0)
			if config.Output == OutputText {
				printTextResult(output, config)
			}
			outputs = append(outputs, output)
			hasErrors = true
			continue
		}

		output, fileHasErrors := validateData(v, data, name, config)
		outputs = append(outputs, output)
		if fileHasErrors {
			hasErrors = true
		}
	}

	return outputs, hasErrors
}

// validateParallel pushes documents through a worker pool. Results drain
// concurrently with submission and land back in input order.
func validateParallel(v *engine.Validator, files []string, config *Config) ([]ValidationOutput, bool) {
	pool := worker.NewPool(v, config.Jobs)

	outputs := make([]ValidationOutput, len(files))
	hasErrors := false

	type pending struct {
		index int
		data  []byte
	}
	var jobs []pending
	for i, file := range files {
		name, data, err := readInput(file)
		if err != nil {
			outputs[i] = errorOutput(name, fmt.Sprintf("Failed to read file: %v", err), 0)
			hasErrors = true
			continue
		}
		jobs = append(jobs, pending{index: i, data: data})
	}

	go func() {
		for _, j := range jobs {
			pool.Submit(worker.Job{ID: strconv.Itoa(j.index), Document: j.data})
		}
	}()

	for range jobs {
		jr := <-pool.Results()
		idx, err := strconv.Atoi(jr.ID)
		if err != nil {
			continue
		}
		if jr.Error != nil {
			outputs[idx] = errorOutput(files[idx], fmt.Sprintf("Validation failed: %v", jr.Error), jr.Duration)
			hasErrors = true
			continue
		}
		output, fileHasErrors := buildOutput(files[idx], jr.Results, jr.Duration)
		outputs[idx] = output
		if fileHasErrors {
			hasErrors = true
		}
	}
	pool.Close()

	return outputs, hasErrors
}

func validateData(v *engine.Validator, data []byte, name string, config *Config) (ValidationOutput, bool) {
	ctx := context.Background()
	startTime := time.Now()

	results, err := v.Validate(ctx, data)
	duration := time.Since(startTime)

	if err != nil {
		output := errorOutput(name, fmt.Sprintf("Validation failed: %v", err), duration)
		if config.Output == OutputText {
			printTextResult(output, config)
		}
		return output, true
	}

	output, hasErrors := buildOutput(name, results, duration)
	if config.Output == OutputText {
		printTextResult(output, config)
	}
	return output, hasErrors
}

func readInput(path string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return "stdin", data, err
	}
	data, err := os.ReadFile(path)
	return path, data, err
}

// buildOutput flattens per-engine results into one document record, with
// engines in name order for stable output.
func buildOutput(name string, results map[string]*cv.Result, duration time.Duration) (ValidationOutput, bool) {
	output := ValidationOutput{
		Document: name,
		Valid:    true,
		Complete: true,
		Duration: duration.Round(time.Microsecond).String(),
	}

	names := make([]string, 0, len(results))
	for engineName := range results {
		names = append(names, engineName)
	}
	sort.Strings(names)

	for _, engineName := range names {
		r := results[engineName]
		output.Engines = append(output.Engines, EngineOutput{
			Name:     engineName,
			Valid:    r.Valid,
			Complete: r.Complete,
			Issues:   r.Issues,
		})
		output.Errors += r.ErrorCount
		output.Warnings += r.WarningCount
		if !r.Valid {
			output.Valid = false
		}
		if !r.Complete {
			output.Complete = false
		}
	}

	return output, !output.Valid
}

func errorOutput(name, msg string, duration time.Duration) ValidationOutput {
	return ValidationOutput{
		Document: name,
		Valid:    false,
		Complete: true,
		Errors:   1,
		Error:    msg,
		Duration: duration.Round(time.Microsecond).String(),
	}
}

func printTextResult(output ValidationOutput, config *Config) {
	fmt.Printf("== %s ==\n", output.Document)

	if output.Error != "" {
		fmt.Printf("Status: %s\n", invalidColor.Sprint("ERROR"))
		fmt.Printf("%s\n\n", output.Error)
		return
	}

	status := validColor.Sprint("VALID")
	if !output.Valid {
		status = invalidColor.Sprint("INVALID")
	}
	fmt.Printf("Status: %s\n", status)
	fmt.Printf("Errors: %d, Warnings: %d\n", output.Errors, output.Warnings)
	if !config.Quiet {
		fmt.Printf("Duration: %s\n", output.Duration)
	}

	for _, eng := range output.Engines {
		if len(eng.Issues) == 0 && config.Quiet {
			continue
		}
		fmt.Printf("\n%s:\n", engineColor.Sprint(eng.Name))
		if !eng.Complete {
			fmt.Println("  (cancelled before finishing; issues may be incomplete)")
		}
		if len(eng.Issues) == 0 {
			fmt.Println("  no findings")
			continue
		}
		for _, d := range eng.Issues {
			fmt.Printf("  %s %s\n", severityTag(d.Severity), formatDiagnostic(d))
			if !config.Quiet {
				for _, s := range d.Suggestions {
					fmt.Printf("      hint: %s\n", s)
				}
			}
		}
	}

	fmt.Println()
}

func formatDiagnostic(d cv.Diagnostic) string {
	var sb strings.Builder
	sb.WriteString(d.Message)
	if loc := d.Location(); loc != "" {
		sb.WriteString(" @ ")
		sb.WriteString(loc)
	}
	if d.TemplateName != "" {
		sb.WriteString(" [")
		sb.WriteString(d.TemplateName)
		sb.WriteString("]")
	}
	return sb.String()
}

func severityTag(severity cv.Severity) string {
	switch severity {
	case cv.SeverityError:
		return errorColor.Sprint("ERROR")
	case cv.SeverityWarning:
		return warningColor.Sprint("WARN ")
	default:
		return "     "
	}
}

// printSummary reports run totals from the validator's metrics.
func printSummary(v *engine.Validator) {
	m := v.Metrics()
	fmt.Printf("Validated %d document(s): %d valid, %d error(s), %d warning(s)\n",
		m.ValidationsTotal(), m.ValidationsValid(), m.ErrorsTotal(), m.WarningsTotal())
	if m.RepairsTotal() > 0 {
		fmt.Printf("Repaired %d rule file(s), removed %d dangling reference(s)\n",
			m.RepairsTotal(), m.RepairRefsRemoved())
	}
}

// --- Rule repair mode ---

// runRepair repairs each rule file and writes the result alongside the
// input as <file>.repaired. Stdin repairs to stdout. Files that are
// already clean produce no output file.
func runRepair(config *Config) int {
	files := config.Files
	if config.Rules != "" {
		files = append([]string{config.Rules}, files...)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -repair-only needs at least one rule file")
		return 1
	}

	expanded, hadError := expandFiles(files)
	exitCode := 0
	if hadError {
		exitCode = 1
	}

	for _, file := range expanded {
		if code := repairFile(file, config); code != 0 {
			exitCode = code
		}
	}
	return exitCode
}

func repairFile(path string, config *Config) int {
	name, data, err := readInput(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", name, err)
		return 1
	}

	repaired, stats, err := schematron.Repair(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", name, err)
		return 1
	}

	if path == "-" {
		if _, err := os.Stdout.Write(repaired); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing repaired rules: %v\n", err)
			return 1
		}
		printRepairStats(name, stats, config)
		return 0
	}

	if stats.Clean() {
		if !config.Quiet {
			fmt.Fprintf(os.Stderr, "%s: already clean\n", name)
		}
		return 0
	}

	out := path + ".repaired"
	if err := os.WriteFile(out, repaired, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", out, err)
		return 1
	}
	printRepairStats(name, stats, config)
	if !config.Quiet {
		fmt.Fprintf(os.Stderr, "  wrote %s\n", out)
	}
	return 0
}

// checkRules reports what repair would change in the -rules file.
func checkRules(config *Config) int {
	data, err := os.ReadFile(config.Rules)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", config.Rules, err)
		return 1
	}

	_, stats, err := schematron.Repair(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", config.Rules, err)
		return 1
	}

	if !stats.Clean() || !config.Quiet {
		printRepairStats(config.Rules, stats, config)
	}
	return 0
}

func printRepairStats(name string, stats *schematron.RepairStats, config *Config) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", name, stats)
	if config.Quiet {
		return
	}
	for _, id := range stats.RemovedIDs {
		fmt.Fprintf(os.Stderr, "  removed %s\n", warningColor.Sprint(id))
	}
}
