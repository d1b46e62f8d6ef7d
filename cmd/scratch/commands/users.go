package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// UserInfo is the printed form of a user.
type UserInfo struct {
	ID          int64  `json:"id"                    yaml:"id"`
	Username    string `json:"username"              yaml:"username"`
	ScratchTeam bool   `json:"scratch_team"          yaml:"scratch_team"`
	Joined      string `json:"joined,omitempty"      yaml:"joined,omitempty"`
	Country     string `json:"country,omitempty"     yaml:"country,omitempty"`
	Status      string `json:"status,omitempty"      yaml:"status,omitempty"`
	Bio         string `json:"bio,omitempty"         yaml:"bio,omitempty"`
}

// UserSummary is a user as printed in listings.
type UserSummary struct {
	ID       int64  `json:"id"       yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user", "u"},
		Short:   "Inspect Scratch users",
		Long:    "View users, their followers, who they follow and their projects",
	}

	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUserListCommand("followers", "List followers of a user", (*scratch.User).Followers))
	cmd.AddCommand(newUserListCommand("following", "List users a user follows", (*scratch.User).Following))
	cmd.AddCommand(newUserProjectListCommand("projects", "List projects shared by a user", (*scratch.User).SharedProjects))
	cmd.AddCommand(newUserProjectListCommand("favorites", "List projects favorited by a user", (*scratch.User).Favorites))

	return cmd
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USERNAME",
		Short: "Get user details",
		Long:  "Display profile information about a specific user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			user, err := client.Users().Fetch(cmd.Context(), args[0])
			if err != nil {
				return notFound(err, ErrUserNotFound, args[0])
			}

			info, err := describeUser(cmd.Context(), user)
			if err != nil {
				return err
			}

			return output(cmd, info, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", fmt.Sprintf("%d", info.ID))
				_ = table.Append("Username", info.Username)
				_ = table.Append("Scratch Team", formatBool(info.ScratchTeam))
				_ = table.Append("Joined", formatText(info.Joined))
				_ = table.Append("Country", formatText(info.Country))
				_ = table.Append("Status", formatText(info.Status))
				_ = table.Append("Bio", formatText(info.Bio))
			})
		},
	}
}

func newUserListCommand(use, short string, stream func(*scratch.User, context.Context) *scratch.Stream[*scratch.User]) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   use + " USERNAME",
		Short: short,
		Long:  titleCaser.String(use) + " are fetched lazily, one page at a time, up to --limit users",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseLimit(limit)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			user, err := client.Users().Get(args[0])
			if err != nil {
				return err
			}

			users, err := stream(user, cmd.Context()).Take(limit)
			if err != nil {
				return notFound(err, ErrUserNotFound, args[0])
			}

			summaries := make([]UserSummary, 0, len(users))

			for _, listed := range users {
				summary, err := summarizeUser(cmd.Context(), listed)
				if err != nil {
					return err
				}

				summaries = append(summaries, summary)
			}

			return output(cmd, summaries, func(table *tablewriter.Table) {
				table.Header("ID", "Username")

				for _, summary := range summaries {
					_ = table.Append(fmt.Sprintf("%d", summary.ID), summary.Username)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", constants.DefaultListLimit, "maximum number of users to list")

	return cmd
}

func newUserProjectListCommand(use, short string, stream func(*scratch.User, context.Context) *scratch.Stream[*scratch.Project]) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   use + " USERNAME",
		Short: short,
		Long:  titleCaser.String(use) + " are fetched lazily, one page at a time, up to --limit projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := parseLimit(limit)
			if err != nil {
				return err
			}

			client, err := createClient(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			user, err := client.Users().Get(args[0])
			if err != nil {
				return err
			}

			projects, err := stream(user, cmd.Context()).Take(limit)
			if err != nil {
				return notFound(err, ErrUserNotFound, args[0])
			}

			return outputProjectSummaries(cmd, projects)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", constants.DefaultListLimit, "maximum number of projects to list")

	return cmd
}

func describeUser(ctx context.Context, user *scratch.User) (UserInfo, error) {
	var info UserInfo

	id, err := user.ID(ctx)
	if err != nil {
		return info, err
	}

	username, err := user.Username(ctx)
	if err != nil {
		return info, err
	}

	team, err := user.ScratchTeam(ctx)
	if err != nil {
		return info, err
	}

	profile, err := user.Profile(ctx)
	if err != nil {
		return info, err
	}

	info = UserInfo{
		ID:          id,
		Username:    username,
		ScratchTeam: team,
		Country:     profile.Country,
		Status:      profile.Status,
		Bio:         profile.Bio,
	}

	if joined, err := user.JoinDate(ctx); err == nil {
		info.Joined = formatDate(joined)
	}

	return info, nil
}

// summarizeUser reads listing fields only, so seeded users are not fetched.
func summarizeUser(ctx context.Context, user *scratch.User) (UserSummary, error) {
	username, err := user.Username(ctx)
	if err != nil {
		return UserSummary{}, err
	}

	id, err := user.ID(ctx)
	if err != nil {
		return UserSummary{}, err
	}

	return UserSummary{ID: id, Username: username}, nil
}
