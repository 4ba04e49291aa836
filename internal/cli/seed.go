package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"business-navigator/internal/bootstrap"
	"business-navigator/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert sample data into empty tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := bootstrap.BuildData(cmd.Context(), loadConfig())
		if err != nil {
			return err
		}
		if app.DB != nil {
			defer app.DB.Close()
		}
		res, err := app.Seeder.Run(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return writeJSON(out(cmd), res)
		}
		renderSeed(out(cmd), app.Backend, res)
		return nil
	},
}

func renderSeed(w io.Writer, backend string, res seed.Result) {
	section(w, fmt.Sprintf("Seed (%s)", backend))
	t := newTable("Table", "Created", "Total")
	t.addRow("users", strconv.Itoa(res.Created.Users), strconv.Itoa(res.Counts.Users))
	t.addRow("business_plans", strconv.Itoa(res.Created.BusinessPlans), strconv.Itoa(res.Counts.BusinessPlans))
	t.addRow("tasks", strconv.Itoa(res.Created.Tasks), strconv.Itoa(res.Counts.Tasks))
	fmt.Fprint(w, t.render())
}
