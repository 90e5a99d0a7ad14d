package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datasight/adapters/ingest"
	"datasight/domain/grid"
	"datasight/internal/correlate"
	"datasight/internal/profiling"
	"datasight/internal/viz"
)

var withCharts bool

var rootCmd = &cobra.Command{
	Use:   "datasight",
	Short: "Offline analyzer for tabular data files",
	Long:  "Profiles a CSV or Excel file the same way the API server does and prints the result as JSON.",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a data file and print dataset statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, info, err := readFile(args[0])
		if err != nil {
			return err
		}

		profile := profiling.ProfileDataset(g)
		out := map[string]interface{}{
			"file":  info,
			"stats": profile,
		}
		if withCharts {
			out["visualizations"] = viz.Plan(g, profile.Correlations)
		}
		return printJSON(out)
	},
}

var columnCmd = &cobra.Command{
	Use:   "column <file> <name>",
	Short: "Print the profile of one column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := readFile(args[0])
		if err != nil {
			return err
		}
		profile, err := profiling.ProfileColumn(g, args[1])
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}

var correlateCmd = &cobra.Command{
	Use:   "correlate <file> <column1> <column2>",
	Short: "Print the correlation between two columns",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, err := readFile(args[0])
		if err != nil {
			return err
		}
		result, err := correlate.Correlate(g, args[1], args[2])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func readFile(path string) (*grid.TypedGrid, ingest.FileInfo, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, ingest.FileInfo{}, fmt.Errorf("read %s: %w", path, err)
	}
	return ingest.Read(content, path)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	analyzeCmd.Flags().BoolVar(&withCharts, "charts", false, "include visualization specs in the output")
	rootCmd.AddCommand(analyzeCmd, columnCmd, correlateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
