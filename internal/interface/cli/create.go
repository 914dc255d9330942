package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

func newCreateCmd() *cobra.Command {
	var (
		prompt     string
		assets     []string
		copyAssets bool
		autoImage  bool
		noFallback bool
		count      int
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a draft post with generated content",
		Long: `Create allocates a post and records its first revision. The titles
每日新闻 and 每日假新闻 select the news-driven creation modes; any other
title is passed to the generator as-is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := buildContainer(false)
			in := usecase.CreateDraftInput{
				Title:      args[0],
				Prompt:     prompt,
				AssetPaths: assets,
				CopyAssets: copyAssets,
				AutoImage:  autoImage,
				NoFallback: noFallback,
			}
			posts, err := c.create.ExecuteBatch(cmd.Context(), in, count)
			for _, p := range posts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", p.ID, p.Status, p.Title)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "extra topic hint for generation")
	cmd.Flags().StringSliceVarP(&assets, "asset", "a", nil, "asset file path (repeatable)")
	cmd.Flags().BoolVar(&copyAssets, "copy-assets", true, "copy assets into the post directory")
	cmd.Flags().BoolVar(&autoImage, "auto-image", false, "fetch a cover image when no assets are given")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "fail instead of using offline fallback content")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of posts to create")
	return cmd
}
