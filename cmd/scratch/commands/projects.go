package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// ProjectInfo is the printed form of a project.
type ProjectInfo struct {
	ID           int64         `json:"id"                     yaml:"id"`
	Title        string        `json:"title"                  yaml:"title"`
	Author       string        `json:"author"                 yaml:"author"`
	Description  string        `json:"description,omitempty"  yaml:"description,omitempty"`
	Instructions string        `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Stats        scratch.Stats `json:"stats"                  yaml:"stats"`
	Shared       string        `json:"shared,omitempty"       yaml:"shared,omitempty"`
}

// ProjectSummary is a project as printed in listings.
type ProjectSummary struct {
	ID    int64  `json:"id"    yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project", "p"},
		Short:   "Inspect Scratch projects",
		Long:    "View projects and their remixes",
	}

	cmd.AddCommand(newProjectsGetCommand())
	cmd.AddCommand(newProjectsRemixesCommand())

	return cmd
}

func newProjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT_ID",
		Short: "Get project details",
		Long:  "Display detailed information about a specific project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := scratch.ParseProjectID(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			project, err := client.Projects().Fetch(cmd.Context(), id)
			if err != nil {
				return notFound(err, ErrProjectNotFound, args[0])
			}

			info, err := describeProject(cmd.Context(), project)
			if err != nil {
				return err
			}

			return output(cmd, info, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", fmt.Sprintf("%d", info.ID))
				_ = table.Append("Title", info.Title)
				_ = table.Append("Author", formatText(info.Author))
				_ = table.Append("Views", fmt.Sprintf("%d", info.Stats.Views))
				_ = table.Append("Loves", fmt.Sprintf("%d", info.Stats.Loves))
				_ = table.Append("Favorites", fmt.Sprintf("%d", info.Stats.Favorites))
				_ = table.Append("Remixes", fmt.Sprintf("%d", info.Stats.Remixes))
				_ = table.Append("Shared", formatText(info.Shared))
			})
		},
	}
}

func newProjectsRemixesCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "remixes PROJECT_ID",
		Short: "List remixes of a project",
		Long:  "Remixes are fetched lazily, one page at a time, up to --limit projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseLimit(limit)
			if err != nil {
				return err
			}

			id, err := scratch.ParseProjectID(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			project, err := client.Projects().Get(id)
			if err != nil {
				return err
			}

			remixes, err := project.Remixes(cmd.Context()).Take(limit)
			if err != nil {
				return notFound(err, ErrProjectNotFound, args[0])
			}

			return outputProjectSummaries(cmd, remixes)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", constants.DefaultListLimit, "maximum number of remixes to list")

	return cmd
}

func describeProject(ctx context.Context, project *scratch.Project) (ProjectInfo, error) {
	var info ProjectInfo

	title, err := project.Title(ctx)
	if err != nil {
		return info, err
	}

	stats, err := project.Stats(ctx)
	if err != nil {
		return info, err
	}

	info = ProjectInfo{
		ID:    project.Key(),
		Title: title,
		Stats: stats,
	}

	// Optional fields are left empty when the API omits them.
	info.Author, _ = project.AuthorName(ctx)
	info.Description, _ = project.Description(ctx)
	info.Instructions, _ = project.Instructions(ctx)

	if history, err := project.History(ctx); err == nil && !history.Shared.IsZero() {
		info.Shared = formatDate(history.Shared)
	}

	return info, nil
}

func outputProjectSummaries(cmd *cobra.Command, projects []*scratch.Project) error {
	summaries := make([]ProjectSummary, 0, len(projects))

	for _, project := range projects {
		title, err := project.Title(cmd.Context())
		if err != nil {
			return err
		}

		summaries = append(summaries, ProjectSummary{ID: project.Key(), Title: title})
	}

	return output(cmd, summaries, func(table *tablewriter.Table) {
		table.Header("ID", "Title")

		for _, summary := range summaries {
			_ = table.Append(fmt.Sprintf("%d", summary.ID), summary.Title)
		}
	})
}
