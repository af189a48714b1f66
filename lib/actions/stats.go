package actions

import (
	"io"
	"sort"
	"strconv"

	"github.com/eastham/adsb-actions/lib/rules"
	"github.com/olekukonko/tablewriter"
)

// PrintFinalReport renders the track-action execution counters collected
// by a RuleSet as a table, grounded on the original tool's
// Rules.print_final_report/ExecutionCounter.print_report but rendered
// through tablewriter rather than bare print() statements, matching how
// df_example_finder reports its own summary table.
func PrintFinalReport(w io.Writer, rs *rules.RuleSet) {
	counters := rs.Counters()
	names := make([]string, 0, len(counters))
	for name := range counters {
		names = append(names, name)
	}
	sort.Strings(names)

	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Rule", "Fired", "Notes"})
	tbl.SetBorder(false)
	tbl.SetAutoWrapText(false)

	for _, name := range names {
		c := counters[name]
		tbl.Append([]string{name, strconv.Itoa(c.Count), formatNotes(c.ByNote)})
	}
	tbl.Render()
}

func formatNotes(byNote map[string]int) string {
	if len(byNote) == 0 {
		return ""
	}
	notes := make([]string, 0, len(byNote))
	for n := range byNote {
		notes = append(notes, n)
	}
	sort.Strings(notes)

	out := ""
	for i, n := range notes {
		if i > 0 {
			out += ", "
		}
		out += n + ": " + strconv.Itoa(byNote[n])
	}
	return out
}
