package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/engraver/pkg/export"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	headerStyle       = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		plain bool
		flags layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "inspect [score.yaml]",
		Short: "Browse the measures of a laid-out score",
		Long: `Browse the measures of a laid-out score.

Lays out the score like 'layout' and shows one row per measure: its line,
origin and width. Press enter on a measure to list its elements.
Use --plain to print the table without the interactive view.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := c.inspectLayout(cmd.Context(), args[0], &flags)
			if err != nil {
				return err
			}
			m := NewLayoutModel(l)
			if plain {
				fmt.Println(m.measureTable(0, len(m.Rows)))
				return nil
			}
			_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "print a table instead of the interactive view")
	flags.register(cmd)

	return cmd
}

func (c *CLI) inspectLayout(ctx context.Context, input string, flags *layoutFlags) (*export.Layout, error) {
	opts, err := flags.resolve(input)
	if err != nil {
		return nil, err
	}
	opts.OutputFormat = export.FormatJSON
	opts.Logger = c.Logger

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read score %s: %w", input, err)
	}
	sources, err := parseFontSources(flags.fonts)
	if err != nil {
		return nil, err
	}
	runner, closeRunner, err := c.newRunner(ctx, flags.noCache, opts.Fonts, sources)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer closeRunner()

	res, err := runner.Execute(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	return export.Read(bytes.NewReader(res.Output), export.FormatJSON)
}

// =============================================================================
// LayoutModel - Interactive measure browser
// =============================================================================

// MeasureRow is one measure of a layout, flattened for display.
type MeasureRow struct {
	Line    int
	Measure export.Measure
}

// Elements counts the measure's positioned elements.
func (r MeasureRow) Elements() int {
	n := 0
	for _, s := range r.Measure.Segments {
		n += len(s.Elements)
	}
	return n
}

// LayoutModel is the bubbletea model for browsing a layout.
type LayoutModel struct {
	Layout *export.Layout
	Rows   []MeasureRow
	Cursor int
	Offset int
	Height int

	// Detail shows the elements of the measure under the cursor.
	Detail bool
}

// NewLayoutModel creates a model with one row per measure.
func NewLayoutModel(l *export.Layout) LayoutModel {
	m := LayoutModel{Layout: l, Height: 15}
	for _, line := range l.Lines {
		for _, ms := range line.Measures {
			m.Rows = append(m.Rows, MeasureRow{Line: line.Index, Measure: ms})
		}
	}
	return m
}

func (m LayoutModel) Init() tea.Cmd {
	return nil
}

func (m LayoutModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.Detail {
				return m, tea.Quit
			}
			m.Detail = false
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rows) > 0 {
				m.Detail = !m.Detail
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m LayoutModel) View() string {
	var b strings.Builder

	title := "Layout"
	if m.Layout.Title != "" {
		title = m.Layout.Title
	}
	b.WriteString(StyleTitle.Render(title))
	if m.Layout.Composer != "" {
		b.WriteString(" " + StyleDim.Render(m.Layout.Composer))
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ elements  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(StyleDim.Render("  no measures"))
		b.WriteString("\n")
		return b.String()
	}

	if m.Detail {
		b.WriteString(m.elementTable(m.Rows[m.Cursor]))
	} else {
		end := min(m.Offset+m.Height, len(m.Rows))
		b.WriteString(m.measureTable(m.Offset, end))
	}
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Rows))))
	if m.Layout.Approximate {
		b.WriteString("  " + StyleWarning.Render("approximate text metrics"))
	}

	return b.String()
}

// measureTable renders rows [from, to).
func (m LayoutModel) measureTable(from, to int) string {
	rows := [][]string{}
	for i := from; i < to; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(r.Line),
			r.Measure.Number,
			formatTenths(r.Measure.OriginX),
			formatTenths(r.Measure.Width),
			formatOrigins(r.Measure.OriginY),
			fmt.Sprint(r.Elements()),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Line", "Measure", "X", "Width", "Staves Y", "Elements").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if from+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 5 {
				return StyleDim
			}
			return StyleValue
		})
	return t.Render()
}

func (m LayoutModel) elementTable(r MeasureRow) string {
	rows := [][]string{}
	for _, s := range r.Measure.Segments {
		for _, e := range s.Elements {
			rows = append(rows, []string{
				fmt.Sprintf("%s %s %d", s.Part, s.Owner, s.Number),
				e.Type,
				e.Class,
				formatTenths(e.X),
				formatTenths(e.Y),
				fmt.Sprint(e.Division),
				fmt.Sprint(e.Staff),
			})
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Segment", "Type", "Class", "X", "Y", "Div", "Staff").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return StyleHighlight
			}
			return StyleValue
		})

	heading := StyleSuccess.Render(fmt.Sprintf("Measure %s", r.Measure.Number)) + " " +
		StyleDim.Render(fmt.Sprintf("line %d · %s", r.Line, r.Measure.UUID))
	return heading + "\n" + t.Render()
}

// =============================================================================
// Helpers
// =============================================================================

func formatTenths(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

// formatOrigins lists staff origins per part, parts sorted by id.
func formatOrigins(origins map[string][]float64) string {
	parts := make([]string, 0, len(origins))
	for id := range origins {
		parts = append(parts, id)
	}
	sort.Strings(parts)

	var out []string
	for _, id := range parts {
		ys := origins[id]
		vals := make([]string, 0, len(ys))
		for i, y := range ys {
			if i == 0 {
				continue // unused staff slot
			}
			vals = append(vals, formatTenths(y))
		}
		out = append(out, id+" "+strings.Join(vals, " "))
	}
	return strings.Join(out, "; ")
}
