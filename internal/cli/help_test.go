package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestStyledHelpPrinter(t *testing.T) {
	var cmd struct {
		Logs      bool     `help:"Save a per-file analysis report"`
		Threshold *float64 `short:"t" placeholder:"DB" help:"Silence threshold in dBFS"`
		Files     []string `arg:"" name:"files" optional:"" help:"Video files to process"`
	}

	var out strings.Builder
	parser, err := kong.New(&cmd, kong.Name("autocut"), kong.Writers(&out, &out))
	if err != nil {
		t.Fatalf("kong.New() error: %v", err)
	}
	ctx, err := parser.Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if err := StyledHelpPrinter(kong.HelpOptions{})(kong.HelpOptions{}, ctx); err != nil {
		t.Fatalf("help printer error: %v", err)
	}

	help := out.String()
	for _, want := range []string{
		"AutoCut",
		"autocut [flags] <files> ...",
		"Arguments:",
		"Video files to process",
		"Flags:",
		"-h, --help",
		"--logs",
		"-t, --threshold=DB",
		"Silence threshold in dBFS",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q\noutput:\n%s", want, help)
		}
	}
}
