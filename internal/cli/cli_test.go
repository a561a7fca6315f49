package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/engraver/pkg/cache"
	"github.com/matzehuels/engraver/pkg/export"
)

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	return New(io.Discard, LogInfo)
}

func minuetPath() string {
	return filepath.Join("..", "..", "pkg", "scorefile", "testdata", "minuet.yaml")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newTestCLI(t).RootCommand()

	want := []string{"layout", "inspect", "serve", "symbols", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestFlagCompletions(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	layout, _, err := root.Find([]string{"layout"})
	if err != nil {
		t.Fatal(err)
	}
	fn, ok := layout.GetFlagCompletionFunc("fonts")
	if !ok {
		t.Fatal("no completion for --fonts")
	}
	values, _ := fn(layout, nil, "")
	if strings.Join(values, ",") != "builtin,estimate" {
		t.Errorf("--fonts completions = %v", values)
	}
	if _, ok := layout.GetFlagCompletionFunc("log-format"); !ok {
		t.Error("no completion for inherited --log-format")
	}
	clear, _, _ := root.Find([]string{"cache", "clear"})
	if _, ok := clear.GetFlagCompletionFunc("kind"); !ok {
		t.Error("no completion for cache clear --kind")
	}
}

func TestCompletionCommand(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion bash: %v", err)
	}
	if !strings.Contains(out.String(), "engraver") {
		t.Error("bash completion does not mention engraver")
	}
}

func TestSymbolsCommand(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"symbols"})

	if err := root.Execute(); err != nil {
		t.Fatalf("symbols: %v", err)
	}
	for _, tag := range []string{"note", "barline", "attributes"} {
		if !strings.Contains(out.String(), tag+"\n") {
			t.Errorf("symbols output missing %q:\n%s", tag, out.String())
		}
	}
}

func TestLayoutCommand(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	output := filepath.Join(t.TempDir(), "minuet.layout.yaml")
	root.SetArgs([]string{"layout", minuetPath(), "-o", output, "-f", "yaml", "--fonts", "estimate"})

	if err := root.Execute(); err != nil {
		t.Fatalf("layout: %v", err)
	}
	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	defer f.Close()
	l, err := export.Read(f, export.FormatYAML)
	if err != nil {
		t.Fatalf("output is not a layout: %v", err)
	}
	if len(l.Lines) != 2 {
		t.Errorf("len(Lines) = %d, want 2", len(l.Lines))
	}
}

func TestLayoutCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"layout", "nope.yaml"}},
		{"unknown extension", []string{"layout", "score.xml"}},
		{"bad output format", []string{"layout", minuetPath(), "-f", "svg", "-o", filepath.Join(os.TempDir(), "x")}},
		{"no args", []string{"layout"}},
		{"bad font source", []string{"layout", minuetPath(), "--font", "Alegreya", "-o", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newTestCLI(t).RootCommand()
			root.SetArgs(tt.args)
			root.SetErr(io.Discard)
			if err := root.Execute(); err == nil {
				t.Error("Execute() error = nil")
			}
		})
	}
}

func TestFontsKeyer(t *testing.T) {
	sources, err := parseFontSources([]string{"Alegreya:italic=https://fonts.test/a.ttf"})
	if err != nil {
		t.Fatalf("parseFontSources() error = %v", err)
	}
	plain := fontsKeyer(nil).LayoutKey("abc", cache.LayoutKeyOpts{})
	scoped := fontsKeyer(sources).LayoutKey("abc", cache.LayoutKeyOpts{})
	if plain == scoped {
		t.Error("layout key does not depend on font sources")
	}
	if !strings.HasPrefix(scoped, "fonts-") {
		t.Errorf("scoped key = %q, want fonts- prefix", scoped)
	}
}

func TestInspectLayout(t *testing.T) {
	c := newTestCLI(t)
	flags := &layoutFlags{}
	flags.opts.Fonts = "estimate"

	l, err := c.inspectLayout(t.Context(), minuetPath(), flags)
	if err != nil {
		t.Fatalf("inspectLayout() error = %v", err)
	}
	m := NewLayoutModel(l)
	if len(m.Rows) != 4 {
		t.Fatalf("len(Rows) = %d, want 4", len(m.Rows))
	}
	if m.Rows[2].Line != 1 {
		t.Errorf("Rows[2].Line = %d, want 1", m.Rows[2].Line)
	}
	if m.Rows[0].Elements() == 0 {
		t.Error("first measure has no elements")
	}
}

func testModel() LayoutModel {
	l := &export.Layout{Title: "Minuet", Lines: []export.Line{
		{Index: 0, Measures: []export.Measure{
			{Number: "1", OriginX: 12, Width: 100, OriginY: map[string][]float64{"P1": {0, -70}}},
			{Number: "2", OriginX: 112, Width: 90, Segments: []export.Segment{
				{Part: "P1", Owner: "voice", Number: 1, Elements: []export.Element{{Type: "note", Class: "chord", X: 15}}},
			}},
		}},
		{Index: 1, Measures: []export.Measure{{Number: "3", OriginX: 12, Width: 180}}},
	}}
	return NewLayoutModel(l)
}

func press(m LayoutModel, key string) LayoutModel {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(LayoutModel)
}

func TestLayoutModelNavigation(t *testing.T) {
	m := testModel()
	m.Height = 2

	m = press(m, "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d after up at top, want 0", m.Cursor)
	}
	m = press(press(m, "down"), "j")
	if m.Cursor != 2 || m.Offset != 1 {
		t.Errorf("Cursor, Offset = %d, %d, want 2, 1", m.Cursor, m.Offset)
	}
	m = press(m, "down")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d after down at bottom, want 2", m.Cursor)
	}
	m = press(m, "k")
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
}

func TestLayoutModelDetail(t *testing.T) {
	m := press(press(testModel(), "down"), "enter")
	if !m.Detail {
		t.Fatal("enter should open the element view")
	}
	view := m.View()
	if !strings.Contains(view, "Measure 2") || !strings.Contains(view, "note") {
		t.Errorf("detail view missing measure elements:\n%s", view)
	}

	m = press(m, "esc")
	if m.Detail {
		t.Error("esc should close the element view")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd == nil {
		t.Error("esc on the measure list should quit")
	}
}

func TestLayoutModelView(t *testing.T) {
	view := testModel().View()
	for _, want := range []string{"Minuet", "112.0", "P1 -70.0", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	empty := NewLayoutModel(&export.Layout{}).View()
	if !strings.Contains(empty, "no measures") {
		t.Errorf("empty view = %q", empty)
	}
}

func TestFormatOrigins(t *testing.T) {
	got := formatOrigins(map[string][]float64{"P2": {0, -170}, "P1": {0, -70, -170}})
	if got != "P1 -70.0 -170.0; P2 -170.0" {
		t.Errorf("formatOrigins() = %q", got)
	}
}
