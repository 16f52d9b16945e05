package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-ranker/internal/services"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the model artifacts and report their shapes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir := settings().Model.ArtifactDir
		model, err := services.LoadModel(dir)
		if err != nil {
			return fmt.Errorf("%s: %w", dir, err)
		}

		info := model.Info()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "artifacts:     %s\n", dir)
		fmt.Fprintf(out, "version:       %s\n", info.Version)
		fmt.Fprintf(out, "feature dims:  %d (%d lexical + %d skills + %d stats)\n",
			info.FeatureDims, services.LexicalDims, services.SkillDims, services.StatsDims)
		fmt.Fprintf(out, "categories:    %d\n", info.Categories)
		fmt.Fprintf(out, "skill terms:   %d\n", info.SkillTerms)
		fmt.Fprintf(out, "lexical terms: %d\n", info.LexicalTerms)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
