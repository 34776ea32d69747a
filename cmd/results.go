package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/janburian/procsim/sim/report"
)

var (
	resultsModel string // filter for the results command
)

// resultsCmd lists run summaries stored with run --results-db
var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List stored run summaries",
	Run: func(cmd *cobra.Command, args []string) {
		if resultsDB == "" {
			logrus.Fatalf("--db is required")
		}
		store, err := report.NewStore(resultsDB)
		if err != nil {
			logrus.Fatalf("Failed to open results store: %v", err)
		}
		defer store.Close()

		records, err := store.List(resultsModel)
		if err != nil {
			logrus.Fatalf("Failed to list runs: %v", err)
		}
		if err := printRecords(os.Stdout, records); err != nil {
			logrus.Fatalf("Failed to print runs: %v", err)
		}
	},
}

func printRecords(w io.Writer, records []report.Record) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tMODEL\tSEED\tSIM TIME\tWALL\tCREATED\tRESULTS")
	for _, r := range records {
		results := ""
		for i, k := range sortedKeys(r.Results) {
			if i > 0 {
				results += " "
			}
			results += fmt.Sprintf("%s=%.2f", k, r.Results[k])
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%s\t%s\t%s\n",
			r.RunID, r.Model, r.Seed, r.SimTime, r.WallDuration, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), results)
	}
	return tw.Flush()
}

func init() {
	resultsCmd.Flags().StringVar(&resultsDB, "db", "", "SQLite file written by run --results-db")
	resultsCmd.Flags().StringVar(&resultsModel, "model", "", "Only list runs of this model")
}
