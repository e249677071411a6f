package main

import (
	"strings"

	"github.com/spf13/cobra"

	"devplan-ai-api/internal/application/recommend"
	"devplan-ai-api/internal/domain/entity"
)

type recommendOutput struct {
	Type     string                  `json:"type"`
	Category string                  `json:"category"`
	Clusters []string                `json:"clusters"`
	Items    []entity.Recommendation `json:"items"`
}

func newRecommendCmd() *cobra.Command {
	var (
		projectType string
		category    string
	)
	cmd := &cobra.Command{
		Use:   "recommend [description...]",
		Short: "Print recommendations for a project type and description",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := recommend.ParseCategory(category)
			if err != nil {
				return err
			}
			description := strings.Join(args, " ")
			pt := entity.ProjectType(projectType)
			return printJSON(cmd, recommendOutput{
				Type:     projectType,
				Category: string(cat),
				Clusters: recommend.ClusterNames(description),
				Items:    recommend.Scored(description, pt, cat),
			})
		},
	}
	cmd.Flags().StringVarP(&projectType, "type", "t", string(entity.ProjectTypeWeb), "project type")
	cmd.Flags().StringVarP(&category, "category", "c", string(recommend.CategoryModels), "models | tools | techstack")
	return cmd
}
