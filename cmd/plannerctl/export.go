package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"devplan-ai-api/internal/application/document"
	"devplan-ai-api/internal/domain/entity"
)

func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [draft.json|-]",
		Short: "Render a saved draft as markdown, html, json or yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := document.ParseFormat(format)
			if err != nil {
				return err
			}
			raw, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var d entity.ProjectDraft
			if err := json.Unmarshal(raw, &d); err != nil {
				return fmt.Errorf("decode draft: %w", err)
			}
			d.ApplyDefaults()

			body, _, err := document.NewAssembler().Render(&d, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "markdown | html | json | yaml")
	return cmd
}
