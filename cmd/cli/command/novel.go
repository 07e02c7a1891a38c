package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	novelPage   int
	novelSearch string
)

var novelCmd = &cobra.Command{
	Use:   "novels",
	Short: "Browse the novel catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := api.ListNovels(cmd.Context(), novelPage, 20, novelSearch)
		if err != nil {
			return err
		}

		color.Cyan("Novels (page %d, %d total)", page.Page, page.TotalElements)
		for _, n := range page.Content {
			rating := "-"
			if n.AverageRating != nil {
				rating = fmt.Sprintf("%.1f", *n.AverageRating)
			}
			fmt.Printf("  %-40s %-24s ch:%-4d rating:%s\n", n.Title, n.Slug, n.TotalChapters, rating)
		}
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <slug> <chapter>",
	Short: "Read a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var number int
		if _, err := fmt.Sscanf(args[1], "%d", &number); err != nil {
			return fmt.Errorf("invalid chapter number %q", args[1])
		}

		chapter, err := api.GetChapter(cmd.Context(), args[0], number)
		if err != nil {
			return err
		}

		color.Cyan("Chapter %d: %s\n", chapter.Number, chapter.Title)
		fmt.Println(chapter.Content)
		return nil
	},
}

func init() {
	novelCmd.Flags().IntVar(&novelPage, "page", 0, "page number (zero-based)")
	novelCmd.Flags().StringVar(&novelSearch, "search", "", "title substring filter")

	rootCmd.AddCommand(novelCmd, readCmd)
}
