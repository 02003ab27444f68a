package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rgehrsitz/taxsim/internal/calculation"
	"github.com/rgehrsitz/taxsim/internal/compare"
	"github.com/rgehrsitz/taxsim/internal/config"
	"github.com/rgehrsitz/taxsim/internal/output"
	"github.com/rgehrsitz/taxsim/internal/population"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "taxsim %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(os.Stdout, info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "taxsim",
	Short: "Tax Policy Analysis CLI",
	Long:  "Revenue, progressivity and ranking analysis for tax policies over synthetic income distributions",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input-file]",
	Short: "Analyze every policy in a configuration",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		parser := config.NewInputParser()
		configData, err := parser.LoadFromFile(inputFile)
		if err != nil {
			log.Fatal(err)
		}

		engine := calculation.NewAnalysisEngine()
		debugMode, _ := cmd.Flags().GetBool("debug")
		if debugMode {
			engine.SetLogger(simpleCLILogger{})
		}
		engine.Debug = debugMode

		run, err := engine.RunAll(configData)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Print(output.FormatAnalysisRun(run))
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [input-file]",
	Short: "Compare and rank the policies in a configuration",
	Long: `Compare every policy in a configuration against the same population and
rank them by weighted revenue, progressivity and efficiency scores.

Examples:
  ./taxsim compare config.yaml
  ./taxsim compare config.yaml --format csv
  ./taxsim compare config.yaml --format json
`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		parser := config.NewInputParser()
		configData, err := parser.LoadFromFile(inputFile)
		if err != nil {
			log.Fatal(err)
		}

		engine := calculation.NewAnalysisEngine()
		debugMode, _ := cmd.Flags().GetBool("debug")
		if debugMode {
			engine.SetLogger(simpleCLILogger{})
			engine.Debug = true
		}

		compEngine := compare.NewCompareEngine(engine)
		compSet, err := compEngine.Compare(context.Background(), configData)
		if err != nil {
			log.Fatal(err)
		}

		format, _ := cmd.Flags().GetString("format")
		switch output.NormalizeFormatName(format) {
		case "csv":
			text, err := (&compare.CSVFormatter{}).Format(compSet)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Print(text)
		case "json":
			text, err := (&compare.JSONFormatter{Pretty: true}).Format(compSet)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(text)
		default:
			fmt.Print((&compare.TableFormatter{}).Format(compSet))
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate a configuration file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		parser := config.NewInputParser()
		configData, err := parser.LoadFromFile(inputFile)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Configuration file %s is valid\n", inputFile)

		savePath, _ := cmd.Flags().GetString("save-config")
		if savePath != "" {
			if err := output.SaveConfiguration(configData, savePath); err != nil {
				log.Fatal(err)
			}
			fmt.Printf("Wrote normalized configuration to %s\n", savePath)
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [input-file]",
	Short: "Generate the configured population and write it to CSV",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputFile := args[0]

		parser := config.NewInputParser()
		configData, err := parser.LoadFromFile(inputFile)
		if err != nil {
			log.Fatal(err)
		}

		pop, err := population.Generate(configData.Population)
		if err != nil {
			log.Fatal(err)
		}

		outFile, _ := cmd.Flags().GetString("out")
		var sb strings.Builder
		writer := csv.NewWriter(&sb)
		if err := writer.Write([]string{"income"}); err != nil {
			log.Fatal(err)
		}
		for _, inc := range pop.Incomes {
			if err := writer.Write([]string{inc.StringFixed(2)}); err != nil {
				log.Fatal(err)
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			log.Fatal(err)
		}

		if outFile == "" {
			fmt.Print(sb.String())
			return
		}
		if err := os.WriteFile(outFile, []byte(sb.String()), 0644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Wrote %d incomes to %s (mean %s)\n",
			pop.Size(), outFile, output.FormatCurrency(pop.MeanIncome()))
	},
}

func init() {
	analyzeCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	compareCmd.Flags().StringP("format", "f", "table", "Output format (table, csv, json)")
	compareCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	validateCmd.Flags().String("save-config", "", "Write the parsed configuration back out as YAML")

	generateCmd.Flags().StringP("out", "o", "", "Output CSV path (stdout if omitted)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
