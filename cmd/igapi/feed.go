package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"igapi/pkg/instagram"
	"igapi/pkg/retry"
	"igapi/pkg/ui"
)

var (
	feedCount      int
	commentsCount  int
	commentsNewest bool
)

// timelineCmd represents the timeline command
var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the first N items of the home timeline",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(a *app, c *instagram.Client) (any, error) {
			return retry.DoWithResult(func() ([]map[string]any, error) {
				return c.FeedTimeline(feedCount, nil)
			}, a.retrier(c).Config())
		})
	},
}

// commentsCmd represents the comments command
var commentsCmd = &cobra.Command{
	Use:   "comments <media_id>",
	Short: "Print the first N comments of a post, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(a *app, c *instagram.Client) (any, error) {
			return retry.DoWithResult(func() ([]map[string]any, error) {
				return c.MediaNComments(args[0], commentsCount, commentsNewest)
			}, a.retrier(c).Config())
		})
	},
}

// tagCmd groups hashtag commands
var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Hashtag lookups",
}

var tagSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search hashtags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(func(a *app, c *instagram.Client) (any, error) {
			res, err := retry.DoWithResult(func() (instagram.Response, error) {
				return c.TagSearch(args[0], nil)
			}, a.retrier(c).Config())
			if err != nil {
				return nil, err
			}
			return res.Items("results"), nil
		})
	},
}

func init() {
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagSearchCmd)

	timelineCmd.Flags().IntVarP(&feedCount, "count", "n", 20, "number of items")
	commentsCmd.Flags().IntVarP(&commentsCount, "count", "n", 50, "number of comments")
	commentsCmd.Flags().BoolVar(&commentsNewest, "newest-first", false, "newest comments first")
}

// withClient runs fn with a restored session and prints its result as JSON
func withClient(fn func(*app, *instagram.Client) (any, error)) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	client, err := a.loggedInClient()
	if err != nil {
		return err
	}

	out, err := fn(a, client)
	if err != nil {
		return err
	}
	if items, ok := out.([]map[string]any); ok {
		ui.PrintInfo("Items", strconv.Itoa(len(items)))
	}
	return printJSON(out)
}
