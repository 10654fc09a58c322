package main

import (
	"github.com/spf13/cobra"

	"github.com/agenthands/orgchart/internal/core"
	"github.com/agenthands/orgchart/internal/core/model"
)

func newPortfoliosCmd(a *app) *cobra.Command {
	var presidentID, date string

	cmd := &cobra.Command{
		Use:   "portfolios",
		Short: "List the portfolios active on a date with their ministers",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireFlag("president", presidentID)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOrgchart(cmd.Context(), func(oc *core.Orgchart) error {
				snapshot, err := oc.ActivePortfolios(cmd.Context(), presidentID, date)
				if err != nil {
					return classify(err)
				}
				return writeJSONLine(a.out, snapshot)
			})
		},
	}

	cmd.Flags().StringVar(&presidentID, "president", "", "President entity id (required)")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD or RFC3339)")
	return cmd
}

func newDepartmentsCmd(a *app) *cobra.Command {
	var portfolioID, date string

	cmd := &cobra.Command{
		Use:   "departments",
		Short: "List the departments under a portfolio on a date",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireFlag("portfolio", portfolioID)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOrgchart(cmd.Context(), func(oc *core.Orgchart) error {
				snapshot, err := oc.DepartmentsByPortfolio(cmd.Context(), portfolioID, date)
				if err != nil {
					return classify(err)
				}
				return writeJSONLine(a.out, snapshot)
			})
		},
	}

	cmd.Flags().StringVar(&portfolioID, "portfolio", "", "Portfolio entity id (required)")
	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD or RFC3339)")
	return cmd
}

func newPrimeMinisterCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "prime-minister",
		Short: "Show the prime minister in office on a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOrgchart(cmd.Context(), func(oc *core.Orgchart) error {
				pm, err := oc.PrimeMinister(cmd.Context(), date)
				if err != nil {
					return classify(err)
				}
				if pm == nil {
					return writeJSONLine(a.out, map[string]any{"body": map[string]any{}})
				}
				return writeJSONLine(a.out, map[string]any{"body": pm})
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Date (YYYY-MM-DD or RFC3339)")
	return cmd
}

func newTimelineCmd(a *app) *cobra.Command {
	var departmentID string

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show who held the ministry of a department over time, across renames",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireFlag("department", departmentID)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withOrgchart(cmd.Context(), func(oc *core.Orgchart) error {
				views, err := oc.DepartmentHistory(cmd.Context(), departmentID)
				if err != nil {
					return classify(err)
				}
				if views == nil {
					views = []model.TimelineView{}
				}
				return writeJSONLine(a.out, views)
			})
		},
	}

	cmd.Flags().StringVar(&departmentID, "department", "", "Department entity id (required)")
	return cmd
}
