package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-ranker/internal/services"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the job categories the model predicts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		model, err := services.LoadModel(settings().Model.ArtifactDir)
		if err != nil {
			return err
		}
		for i, label := range model.Categories() {
			fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}
