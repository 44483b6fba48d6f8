package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pulsekit/pulse/adapters/sqlite"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Inspect tracked projects",
	Long: `Inspect Pulse projects and their event volumes.

Examples:
  pulse projects list`,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects",
	RunE:  runProjectsList,
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	rootCmd.AddCommand(projectsCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	db, _, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	projects, err := sqlite.NewProjectStore(db).List(context.Background(), 1000, 0)
	if err != nil {
		return err
	}
	events := sqlite.NewEventStore(db)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOWNER\tEVENTS\tCREATED")
	for _, p := range projects {
		count, err := events.CountByProject(context.Background(), p.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.UserID, count, p.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}
