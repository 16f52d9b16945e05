package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/models"
	"alfredoptarigan/resume-ranker/internal/services"
)

var rankCmd = &cobra.Command{
	Use:   "rank [flags] FILE...",
	Short: "Rank resume files (pdf, docx, txt, md or zip) against a job circular",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := rankOptionsFromFlags(cmd)
		if err != nil {
			return err
		}
		return runRank(cmd, opts, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("job", "", "file holding the job circular (txt, md, pdf or docx)")
	rankCmd.Flags().String("job-text", "", "job circular text")
	rankCmd.Flags().Int("top-k", 0, "number of candidates to return (default is DEFAULT_TOP_K)")
	rankCmd.Flags().String("skills", "", "comma-separated skills to look for")
	rankCmd.Flags().Int("min-experience", 0, "minimum years of experience")
	rankCmd.Flags().String("xlsx", "", "also write the ranking to this Excel file")
	rankCmd.Flags().BoolP("verbose", "v", false, "report skipped documents on stderr")

	rankCmd.MarkFlagsMutuallyExclusive("job", "job-text")
	rankCmd.MarkFlagsOneRequired("job", "job-text")
}

type rankOptions struct {
	jobFile       string
	jobText       string
	topK          int
	skills        string
	minExperience int
	xlsx          string
	verbose       bool
}

func rankOptionsFromFlags(cmd *cobra.Command) (rankOptions, error) {
	var opts rankOptions
	var err error
	flags := cmd.Flags()

	if opts.jobFile, err = flags.GetString("job"); err != nil {
		return opts, err
	}
	if opts.jobText, err = flags.GetString("job-text"); err != nil {
		return opts, err
	}
	if opts.topK, err = flags.GetInt("top-k"); err != nil {
		return opts, err
	}
	if opts.skills, err = flags.GetString("skills"); err != nil {
		return opts, err
	}
	if opts.minExperience, err = flags.GetInt("min-experience"); err != nil {
		return opts, err
	}
	if opts.xlsx, err = flags.GetString("xlsx"); err != nil {
		return opts, err
	}
	if opts.verbose, err = flags.GetBool("verbose"); err != nil {
		return opts, err
	}
	return opts, nil
}

// request builds the ranking request; documents are added by the caller.
func (o rankOptions) request(jobText string, defaultTopK int) models.RankingRequest {
	req := models.RankingRequest{
		JobCircular: strings.TrimSpace(jobText),
		TopK:        defaultTopK,
		Skills:      services.ParseSkills(o.skills),
	}
	if o.topK != 0 {
		req.TopK = o.topK
	}
	if o.minExperience != 0 {
		years := o.minExperience
		req.MinExperience = &years
	}
	return req
}

func runRank(cmd *cobra.Command, opts rankOptions, files []string) error {
	cfg := settings()
	log := newLogger()
	defer log.Sync()

	model, err := services.LoadModel(cfg.Model.ArtifactDir)
	if err != nil {
		return err
	}
	log.Debug("model loaded", zap.String("dir", cfg.Model.ArtifactDir))

	extractor := services.NewTextExtractor(log)
	uploads := services.NewUploadService(cfg.Server.BodyLimit)

	jobText, err := readJob(cmd, opts, extractor, uploads)
	if err != nil {
		return err
	}

	req := opts.request(jobText, cfg.Pipeline.DefaultTopK)
	for _, path := range files {
		doc, err := uploads.ReadFile(path)
		if err != nil {
			return err
		}
		req.Documents = append(req.Documents, doc)
	}

	pipeline, err := services.NewPipeline(model, extractor, pipelineConfig(cfg), log)
	if err != nil {
		return err
	}
	result, err := pipeline.Run(cmd.Context(), req)
	if err != nil {
		return err
	}
	resp := services.BuildRankingResponse(req, result)

	if opts.verbose {
		for _, o := range result.Failed() {
			fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s (%s)\n", o.Filename, o.Error, o.Code)
		}
	}

	if opts.xlsx != "" {
		if err := writeWorkbook(opts.xlsx, resp); err != nil {
			return err
		}
		log.Info("workbook written", zap.String("path", opts.xlsx))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func readJob(cmd *cobra.Command, opts rankOptions, extractor services.TextExtractor, uploads services.UploadService) (string, error) {
	if opts.jobFile == "" {
		if strings.TrimSpace(opts.jobText) == "" {
			return "", errors.New("the job circular is empty")
		}
		return opts.jobText, nil
	}

	doc, err := uploads.ReadFile(opts.jobFile)
	if err != nil {
		return "", err
	}
	return extractor.Extract(cmd.Context(), doc)
}

func writeWorkbook(path string, resp models.RankingResponse) error {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating workbook: %w", err)
	}
	if err := services.ExportRankingXLSX(f, resp, time.Now()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
