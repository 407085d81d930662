package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// InspectEntry is one attribute or variable found in a data file.
type InspectEntry struct {
	Kind  string `json:"kind"` // "attribute" or "variable"
	Path  string `json:"path"`
	Type  string `json:"type"`
	Shape string `json:"shape,omitempty"`
	Value string `json:"value"`
}

// CollectInspectEntries walks every group of src depth-first. Variable
// attributes are listed as "variable:attribute".
func CollectInspectEntries(src contract.DataSource) []InspectEntry {
	var entries []InspectEntry
	collectGroup(src.Root(), "", &entries)
	return entries
}

func collectGroup(g contract.Group, prefix string, entries *[]InspectEntry) {
	for _, name := range g.AttributeNames() {
		val, _ := g.Attribute(name)
		*entries = append(*entries, attributeEntry(prefix+name, val))
	}
	for _, name := range g.VariableNames() {
		v, ok := g.Variable(name)
		if !ok {
			continue
		}
		rep, _ := v.Representative()
		*entries = append(*entries, InspectEntry{
			Kind:  "variable",
			Path:  prefix + name,
			Type:  string(v.DataType()),
			Shape: formatShape(v.Shape()),
			Value: rep.String(),
		})
		for _, attr := range v.AttributeNames() {
			val, _ := v.Attribute(attr)
			*entries = append(*entries, attributeEntry(prefix+name+":"+attr, val))
		}
	}
	for _, name := range g.GroupNames() {
		child, ok := g.Group(name)
		if !ok {
			continue
		}
		collectGroup(child, prefix+name+"/", entries)
	}
}

func attributeEntry(path string, val schema.Value) InspectEntry {
	return InspectEntry{Kind: "attribute", Path: path, Type: string(val.Type), Value: val.String()}
}

func formatShape(shape []int) string {
	if len(shape) == 0 {
		return "scalar"
	}
	parts := make([]string, len(shape))
	for i, n := range shape {
		parts[i] = strconv.Itoa(n)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// PrintInspect writes the structure of src to stdout as a table, CSV or JSON.
func PrintInspect(src contract.DataSource, cfg *contract.Config) error {
	entries := CollectInspectEntries(src)
	return writeWithFile("", func(w io.Writer) error {
		return writeInspect(w, src, entries, cfg)
	}, "Wrote inspection")
}

func writeInspect(w io.Writer, src contract.DataSource, entries []InspectEntry, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, struct {
			Path    string         `json:"path"`
			Format  string         `json:"format"`
			Entries []InspectEntry `json:"entries"`
		}{src.Path(), src.Format(), entries})
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"kind", "path", "type", "shape", "value"}, func(cw *csv.Writer) error {
			for _, e := range entries {
				if err := cw.Write([]string{e.Kind, e.Path, e.Type, e.Shape, e.Value}); err != nil {
					return err
				}
			}
			return nil
		})
	default:
		if _, err := fmt.Fprintf(w, "%s (%s)\n", src.Path(), src.Format()); err != nil {
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Kind", "Path", "Type", "Shape", "Value"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignLeft
		})
		width := GetMaxTableValueWidth(cfg)
		data := make([][]string, 0, len(entries))
		for _, e := range entries {
			data = append(data, []string{e.Kind, e.Path, e.Type, e.Shape, contract.TruncateText(e.Value, width)})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	}
}
