package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/mgrachten/partitura"
)

var rootCmd = &cobra.Command{
	Use:   "partitura",
	Short: "Score timeline to MusicXML exporter",
	Long:  `Converts a JSON score timeline into a MusicXML score-partwise document.`,
}

var outFile string

var exportCmd = &cobra.Command{
	Use:   "export <score.json>",
	Short: "Export a JSON score to MusicXML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := partitura.LoadScoreFile(args[0])
		if err != nil {
			return err
		}
		if outFile == "" {
			return partitura.WriteScore(os.Stdout, parts)
		}
		return partitura.WriteScoreFile(outFile, parts)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <score.json>",
	Short: "Dump the decoded score model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := partitura.LoadScoreFile(args[0])
		if err != nil {
			return err
		}
		for _, p := range parts {
			fmt.Printf("Part %s (%d measures, %d notes)\n", p.ID, len(p.Measures), len(p.Notes))
			for _, m := range p.MeasuresInOrder() {
				fmt.Printf("  measure %d [%d,%d) divisions=%d\n",
					m.Number, m.Start, m.End, p.DivisionsAt(m.Start, 1))
			}
			spew.Dump(p)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	cobra.CheckErr(rootCmd.Execute())
}
