package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mfl/ghlite/internal/domain"
	"github.com/mfl/ghlite/internal/engine"
)

// The repos and issues subcommands print one sync as a table and exit.
// They exist for scripting; the TUI is the primary surface.

// syncOnce runs a single refresh and reports skipped repositories on
// stderr via the logger.
func syncOnce(ctx context.Context) (*engine.RefreshResult, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)

	store, err := newStore()
	if err != nil {
		return nil, err
	}

	return newEngine(store).RefreshAll(ctx)
}

func newReposCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repos",
		Short: "List your repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := syncOnce(cmd.Context())
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Repository", "Language", "Stars", "Forks", "Open Issues"})
			for _, repo := range result.Snapshot.Repositories {
				lang := ""
				if repo.Language != nil {
					lang = *repo.Language
				}
				open := ""
				if repo.OpenIssues != nil {
					open = strconv.Itoa(*repo.OpenIssues)
				}
				table.Append([]string{
					repo.FullName,
					lang,
					strconv.Itoa(repo.Stars),
					strconv.Itoa(repo.Forks),
					open,
				})
			}
			table.Render()
			return nil
		},
	}
}

func newIssuesCmd() *cobra.Command {
	var stateFlag string

	cmd := &cobra.Command{
		Use:   "issues",
		Short: "List issues across all your repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch stateFlag {
			case domain.StateOpen, domain.StateClosed, domain.StateAll:
			default:
				return fmt.Errorf("invalid --state %q (want open, closed, or all)", stateFlag)
			}

			result, err := syncOnce(cmd.Context())
			if err != nil {
				return err
			}

			issues := make([]domain.Issue, 0, len(result.Snapshot.Issues))
			for _, issue := range result.Snapshot.Issues {
				if stateFlag == domain.StateAll || issue.State == stateFlag {
					issues = append(issues, issue)
				}
			}
			sort.SliceStable(issues, func(a, b int) bool {
				return issues[a].UpdatedAt.After(issues[b].UpdatedAt)
			})

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Repository", "#", "State", "Title", "Comments", "Updated"})
			for _, issue := range issues {
				table.Append([]string{
					issue.RepositoryName,
					strconv.Itoa(issue.Number),
					issue.State,
					issue.Title,
					strconv.Itoa(issue.Comments),
					issue.UpdatedAt.Format("2006-01-02"),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&stateFlag, "state", domain.StateOpen, "Filter by state: open, closed, or all")
	return cmd
}
