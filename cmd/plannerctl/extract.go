package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"devplan-ai-api/internal/application/extract"
)

type extractOutput struct {
	Schema       string `json:"schema"`
	UsedFallback bool   `json:"usedFallback"`
	Reason       string `json:"reason,omitempty"`
	Records      any    `json:"records"`
}

func newExtractCmd() *cobra.Command {
	var schema string
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Run the structured extractor over a model response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out, err := runExtract(schema, string(raw))
			if err != nil {
				return err
			}
			return printJSON(cmd, out)
		},
	}
	cmd.Flags().StringVarP(&schema, "schema", "s", "clarification", "clarification | features | techstack")
	return cmd
}

func runExtract(schema, raw string) (extractOutput, error) {
	switch schema {
	case "clarification":
		return toOutput(schema, extract.Extract(raw, extract.ClarificationSchema)), nil
	case "features":
		return toOutput(schema, extract.Extract(raw, extract.FeatureSchema)), nil
	case "techstack", "tech-stack", "tech_stack":
		return toOutput("techstack", extract.Extract(raw, extract.TechStackSchema)), nil
	default:
		return extractOutput{}, fmt.Errorf("unknown schema %q", schema)
	}
}

func toOutput[T any](schema string, res extract.Result[T]) extractOutput {
	return extractOutput{
		Schema:       schema,
		UsedFallback: res.UsedFallback,
		Reason:       res.Reason,
		Records:      res.Records,
	}
}
