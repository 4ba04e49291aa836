package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"business-navigator/internal/bootstrap"
	"business-navigator/internal/intelligence"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the business intelligence report",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.BuildData(cmd.Context(), loadConfig())
		if err != nil {
			return err
		}
		if app.DB != nil {
			defer app.DB.Close()
		}
		report, err := app.Reports.Build(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return writeJSON(out(cmd), report)
		}
		renderReport(out(cmd), report)
		return nil
	},
}

func renderReport(w io.Writer, r intelligence.AggregateReport) {
	section(w, "Overview")
	t := newTable("Metric", "Value")
	t.addRow("Users", strconv.Itoa(r.Counts.UserCount))
	t.addRow("Business plans", strconv.Itoa(r.Counts.PlanCount))
	t.addRow("Tasks", strconv.Itoa(r.Counts.TaskCount))
	t.addRow("Completed tasks", strconv.Itoa(r.Counts.CompletedTasks))
	t.addRow("Completion rate", fmt.Sprintf("%.1f%%", r.Derived.CompletionRate))
	t.addRow("Execution momentum", string(r.Derived.ExecutionMomentum))
	fmt.Fprint(w, t.render())
	fmt.Fprintln(w)

	section(w, "Recommendations")
	if len(r.Recommendations) == 0 {
		fmt.Fprintln(w, style(styleMuted).Render("none"))
	} else {
		rt := newTable("Priority", "Type", "Title", "Action")
		for _, rec := range r.Recommendations {
			rt.addRow(string(rec.Priority), string(rec.Type), rec.Title, rec.Action)
		}
		fmt.Fprint(w, rt.render())
	}
	fmt.Fprintln(w)

	section(w, "Recent activity")
	if len(r.RecentActivity) == 0 {
		fmt.Fprintln(w, style(styleMuted).Render("none"))
		return
	}
	at := newTable("Created", "Title", "Owner")
	for _, a := range r.RecentActivity {
		at.addRow(a.CreatedAt.Format("2006-01-02 15:04"), a.Title, a.User)
	}
	fmt.Fprint(w, at.render())
}
