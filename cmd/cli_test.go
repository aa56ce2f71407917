package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const brokersCSV = "name,tickets,order_success_rate,avg_resolution_time\n" +
	"A,10,40,2\n" +
	"A,12,60,4\n" +
	"B,7,80,1\n" +
	"C,3,30,5\n"

// resetFlags clears values and Changed state that cobra keeps between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

func execCmd(args ...string) (string, error) {
	resetFlags(rootCmd)
	var buf, errBuf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&errBuf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// isolate points HOME at a temp dir and returns a directory holding brokers.csv.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, "data")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "brokers.csv"), []byte(brokersCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return dir
}

func TestCLI_ReportMarkdown(t *testing.T) {
	dir := isolate(t)
	out := runCmd(t, "report", filepath.Join(dir, "brokers.csv"))
	for _, want := range []string{
		"Minimum success rate: 50%",
		"- Total Brokers: 2",
		"- Total Tickets: 19",
		"- Average Success Rate: 70.0%",
		"A has the highest avg resolution time: 4.00 hrs",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in report:\n%s", want, out)
		}
	}
}

func TestCLI_ReportThresholdAndJSON(t *testing.T) {
	dir := isolate(t)
	outPath := filepath.Join(dir, "report.json")
	exportPath := filepath.Join(dir, "filtered.csv")
	out := runCmd(t, "report", filepath.Join(dir, "brokers.csv"), "--min-success", "100", "--format", "json", "-o", outPath, "--export", exportPath)
	if !strings.Contains(out, "✓ Wrote report to") {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), `"no_data": true`) || !strings.Contains(string(b), `"worst_broker": null`) {
		t.Fatalf("unexpected json: %s", b)
	}
	csv, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(csv) != "name,tickets,order_success_rate,avg_resolution_time\n" {
		t.Fatalf("expected header-only export, got %q", csv)
	}
}

func TestCLI_ReportErrors(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(bad, []byte("name,tickets\nA,1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := execCmd("report", bad); err == nil || !strings.Contains(err.Error(), "missing required column(s)") {
		t.Fatalf("expected missing column error, got %v", err)
	}
	if _, err := execCmd("report", filepath.Join(dir, "brokers.csv"), "--min-success", "101"); err == nil {
		t.Fatalf("expected threshold range error")
	}
	if _, err := execCmd("report", filepath.Join(dir, "brokers.csv"), "--format", "xml"); err == nil {
		t.Fatalf("expected format error")
	}
	if _, err := execCmd("report", filepath.Join(dir, "brokers.csv"), "--delimiter", "#"); err == nil {
		t.Fatalf("expected delimiter error")
	}
}

func TestCLI_ReportSemicolonLocale(t *testing.T) {
	dir := isolate(t)
	p := filepath.Join(dir, "eu.csv")
	data := "name;tickets;order_success_rate;avg_resolution_time\nA;1.200;60,5;2,5\nB;3;40;1\n"
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := runCmd(t, "report", p, "--delimiter", ";", "--decimal", "comma", "--thousands", ".")
	if !strings.Contains(out, "- Total Tickets: 1200") || !strings.Contains(out, "- Average Success Rate: 60.5%") {
		t.Fatalf("unexpected report:\n%s", out)
	}
}

func TestCLI_ReportBatchCollisionSafe(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, d := range []string{"d1", "d2"} {
		if err := os.MkdirAll(filepath.Join(home, d), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(home, d, "brokers.csv"), []byte(brokersCSV), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	outDir := filepath.Join(home, "reports")
	out := runCmd(t, "report-batch", filepath.Join(home, "d*", "brokers.csv"), "--out-dir", outDir, "--export")
	if !strings.Contains(out, "[1/2] Processing brokers.csv...") || !strings.Contains(out, "[2/2] Processing brokers.csv...") {
		t.Fatalf("missing progress lines:\n%s", out)
	}
	for _, name := range []string{"brokers.report.md", "brokers.report__2.md", "brokers.filtered.csv", "brokers.filtered__2.csv"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestCLI_ReportBatchContinuesPastFailures(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "empty.csv"), nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	_, err := execCmd("report-batch", filepath.Join(dir, "*.csv"), "--out-dir", outDir, "--quiet")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Fatalf("expected partial failure, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "brokers.report.md")); err != nil {
		t.Fatalf("good file not reported: %v", err)
	}
}

func TestCLI_Export(t *testing.T) {
	dir := isolate(t)
	dest := filepath.Join(dir, "filtered_data.csv")
	out := runCmd(t, "export", filepath.Join(dir, "brokers.csv"), "-o", dest)
	if !strings.Contains(out, "✓ Exported 2 of 4 rows") {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "name,tickets,order_success_rate,avg_resolution_time\nA,12,60,4\nB,7,80,1\n"
	if string(b) != want {
		t.Fatalf("export mismatch:\n%s", b)
	}

	out = runCmd(t, "export", filepath.Join(dir, "brokers.csv"), "-o", "-", "--min-success", "0")
	if strings.Count(out, "\n") != 5 {
		t.Fatalf("expected header plus 4 rows on stdout, got:\n%s", out)
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	dir := isolate(t)
	runCmd(t, "config", "set", "min_success_rate", "75")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "min_success_rate: 75") {
		t.Fatalf("config not persisted:\n%s", out)
	}
	// the configured threshold applies when --min-success is not given
	report := runCmd(t, "report", filepath.Join(dir, "brokers.csv"))
	if !strings.Contains(report, "Minimum success rate: 75%") || !strings.Contains(report, "- Total Brokers: 1") {
		t.Fatalf("configured threshold not applied:\n%s", report)
	}

	if _, err := execCmd("config", "set", "min_success_rate", "150"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := execCmd("config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
