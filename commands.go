package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/accent-pipeline/config"
	"github.com/maastricht-university/accent-pipeline/logging"
	"github.com/maastricht-university/accent-pipeline/orchestrator"
)

var (
	cfgFile  string
	logLevel string

	conf *cfg.Root
	log  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "accent",
	Short:         "accent - English accent classifier for candidate videos",
	Long:          "Fetches a video, transcribes the speech and scores it against a fixed set of English accent profiles.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfg.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if logLevel != "" {
			c.Pipeline.LogLvl = logLevel
		}
		conf = c
		log = logging.New(c.Pipeline.LogLvl, c.Pipeline.LogFormat)
		return nil
	},
}

var (
	outFile  string
	jsonMode bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url|path>",
	Short: "Run the full pipeline on one video and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := orchestrator.NewPipeline(cmd.Context(), conf, log)
		if err != nil {
			return err
		}
		defer p.Close()

		out, err := p.Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for name, loc := range out.Published {
			log.WithFields(logrus.Fields{"sink": name, "location": loc}).Info("results stored")
		}

		if outFile != "" {
			if err := os.WriteFile(outFile, []byte(out.Report), 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
		}
		if jsonMode {
			return printJSON(cmd.OutOrStdout(), out.Result)
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out.Report)
		return err
	},
}

var featuresCmd = &cobra.Command{
	Use:   "features <path>",
	Short: "Decode an audio or video file and print its feature vector as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := orchestrator.NewPipeline(cmd.Context(), conf, log)
		if err != nil {
			return err
		}
		defer p.Close()

		v, err := p.Features(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), v)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		shown := *conf
		if shown.Sinks.S3.SecretKey != "" {
			shown.Sinks.S3.SecretKey = "********"
		}
		return shown.Save(cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", conf.Pipeline.Name, conf.Pipeline.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config/$CONFIG_ENV/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	analyzeCmd.Flags().StringVarP(&outFile, "out", "o", "", "also write the report to this file")
	analyzeCmd.Flags().BoolVar(&jsonMode, "json", false, "print the analysis result as JSON instead of the report")

	rootCmd.AddCommand(analyzeCmd, featuresCmd, configCmd, versionCmd)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
