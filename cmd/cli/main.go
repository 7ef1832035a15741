package main

import (
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/cmd/cli/interviews"
	"github.com/badgerinator/businessProcessAnalysis/cmd/cli/questionnaires"
	"github.com/badgerinator/businessProcessAnalysis/internal/config"
	"github.com/spf13/cobra"
	"os"
)

func init() {
	if err := config.LoadDotEnv(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(questionnaires.Group)
	rootCmd.AddCommand(questionnaires.Validate, questionnaires.Import, questionnaires.List, questionnaires.Build)
	rootCmd.AddGroup(interviews.Group)
	rootCmd.AddCommand(interviews.List, interviews.Export)
}

var rootCmd = &cobra.Command{
	Use:           "interviewkit",
	Long:          `Command line utilities for the interview platform`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
