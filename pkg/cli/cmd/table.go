package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/rzbill/cse/pkg/diff"
	"github.com/rzbill/cse/pkg/migration"
	"github.com/rzbill/cse/pkg/store"
	"github.com/rzbill/cse/pkg/types"
)

// ResourceTable renders cluster entities and related records as tables.
type ResourceTable struct {
	ShowHeaders bool

	out           io.Writer
	tableRenderer *pterm.TablePrinter
}

// NewResourceTable creates a table writing to out. Styling is dropped when out
// is not a terminal.
func NewResourceTable(out io.Writer) *ResourceTable {
	table := pterm.DefaultTable.WithHasHeader(true)
	if isTerminal(out) {
		table = table.WithHeaderStyle(pterm.NewStyle(pterm.FgCyan, pterm.Bold))
	} else {
		table = table.WithHeaderStyle(pterm.NewStyle()).WithSeparatorStyle(pterm.NewStyle())
	}
	return &ResourceTable{
		ShowHeaders:   true,
		out:           out,
		tableRenderer: table,
	}
}

func (t *ResourceTable) render(headers []string, rows [][]string) error {
	data := rows
	if t.ShowHeaders {
		data = append([][]string{headers}, rows...)
	}
	s, err := t.tableRenderer.WithHasHeader(t.ShowHeaders).WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(t.out, s)
	return err
}

// RenderEntities renders one row per cluster entity.
func (t *ResourceTable) RenderEntities(entities []*types.ClusterEntity) error {
	if len(entities) == 0 {
		_, err := fmt.Fprintln(t.out, "No cluster entities found")
		return err
	}

	rows := make([][]string, 0, len(entities))
	for _, e := range entities {
		kind, org, vdc, phase := "", "", "", ""
		if e.Entity != nil {
			kind = string(e.Entity.ClusterKind())
			org = e.Entity.OrgName()
			vdc = e.Entity.VDCName()
			phase = entityPhase(e.Entity)
		}
		rows = append(rows, []string{e.ID, e.Name, e.Generation().String(), string(e.State), kind, org, vdc, phase})
	}
	return t.render([]string{"ID", "NAME", "VERSION", "STATE", "KIND", "ORG", "VDC", "PHASE"}, rows)
}

// RenderHistory renders the stored versions of one entity, newest first.
func (t *ResourceTable) RenderHistory(versions []store.HistoricalVersion) error {
	if len(versions) == 0 {
		_, err := fmt.Fprintln(t.out, "No history found")
		return err
	}

	rows := make([][]string, 0, len(versions))
	for _, v := range versions {
		state, gen := "", ""
		if v.Entity != nil {
			state = string(v.Entity.State)
			gen = v.Entity.Generation().String()
		}
		rows = append(rows, []string{v.Version, formatAge(v.Timestamp), gen, state})
	}
	return t.render([]string{"REVISION", "AGE", "VERSION", "STATE"}, rows)
}

// RenderDiff renders differing leaves with the requested value in green and
// the observed value in red.
func (t *ResourceTable) RenderDiff(result diff.Result, p *palette) error {
	rows := make([][]string, 0, len(result))
	for _, path := range result.Paths() {
		d := result[path]
		rows = append(rows, []string{
			string(path),
			p.added.Sprint(formatValue(d.Actual)),
			p.removed.Sprint(formatValue(d.Expected)),
		})
	}
	return t.render([]string{"FIELD", "REQUESTED", "OBSERVED"}, rows)
}

// RenderFailures renders the entities a migration sweep could not move.
func (t *ResourceTable) RenderFailures(failures []migration.Failure) error {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{f.ID, f.Name, f.Error})
	}
	return t.render([]string{"ID", "NAME", "ERROR"}, rows)
}

func entityPhase(e types.NativeEntity) string {
	switch v := e.(type) {
	case *types.V1Entity:
		if v.Status != nil {
			return v.Status.Phase
		}
	case *types.V2Entity:
		if v.Status != nil {
			return v.Status.Phase
		}
	}
	return ""
}

// formatValue prints nil and pointers the way users expect.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<unset>"
	case *int:
		if x == nil {
			return "<unset>"
		}
		return fmt.Sprint(*x)
	case string:
		if x == "" {
			return `""`
		}
		return x
	default:
		return fmt.Sprint(x)
	}
}

// formatAge formats a time.Time as a human-readable age string
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "Unknown"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 365*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
	return fmt.Sprintf("%dy", int(d.Hours()/24/365))
}
