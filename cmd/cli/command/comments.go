package command

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"novelhub/cmd/cli/command/client"
	"novelhub/internal/commentsync"
	"novelhub/internal/commenttree"
)

var (
	commentNovelID   string
	commentChapterID string
	follow           bool
)

var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Open a live comment thread for a novel or chapter",
	Long: `Opens the comment thread for one novel or chapter, the same thread the
web reader shows under the content. With --follow, comments posted by other
readers appear as they arrive. Inside the thread:

  post <text>         post a top-level comment
  reply <id> <text>   reply to a comment (3 levels deep at most)
  edit <id> <text>    edit your comment
  del <id>            delete a comment and its replies
  toggle <id>         collapse or expand a comment's replies
  ls                  re-render the thread
  quit                leave`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (commentNovelID == "") == (commentChapterID == "") {
			return fmt.Errorf("set exactly one of --novel or --chapter")
		}

		subject := commentsync.Subject{
			NovelID:   commentNovelID,
			ChapterID: commentChapterID,
		}

		var stream commentsync.Stream
		if follow {
			stream = client.NewWSStream(wsHost())
		}

		section := commentsync.NewSection(subject, api, stream, nil)
		defer section.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		if err := section.LoadOnce(ctx); err != nil {
			return fmt.Errorf("failed to load comments: %w", err)
		}
		if follow {
			if err := section.Listen(ctx); err != nil {
				color.Yellow("live updates unavailable: %v", err)
			}
		}

		renderSection(section)
		return runThreadLoop(ctx, section)
	},
}

func init() {
	commentsCmd.Flags().StringVar(&commentNovelID, "novel", "", "novel id")
	commentsCmd.Flags().StringVar(&commentChapterID, "chapter", "", "chapter id")
	commentsCmd.Flags().BoolVarP(&follow, "follow", "f", true, "receive live comments from other readers")

	rootCmd.AddCommand(commentsCmd)
}

func runThreadLoop(ctx context.Context, section *commentsync.Section) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		verb, rest, _ := strings.Cut(line, " ")
		switch verb {
		case "quit", "q":
			return nil

		case "ls":
			renderSection(section)

		case "post":
			if _, err := section.AddComment(ctx, rest); err != nil {
				color.Red("post failed: %v", err)
				continue
			}
			renderSection(section)

		case "reply":
			id, text, ok := strings.Cut(rest, " ")
			if !ok {
				color.Red("usage: reply <id> <text>")
				continue
			}
			if !section.CanReply(id) {
				color.Red("cannot reply there (missing comment or thread too deep)")
				continue
			}
			if _, err := section.AddReply(ctx, id, text); err != nil {
				color.Red("reply failed: %v", err)
				continue
			}
			renderSection(section)

		case "edit":
			id, text, ok := strings.Cut(rest, " ")
			if !ok {
				color.Red("usage: edit <id> <text>")
				continue
			}
			if _, err := section.EditComment(ctx, id, text); err != nil {
				color.Red("edit failed: %v", err)
				continue
			}
			renderSection(section)

		case "del":
			if err := section.DeleteComment(ctx, rest); err != nil {
				color.Red("delete failed: %v", err)
				continue
			}
			renderSection(section)

		case "toggle":
			section.ToggleReplies(rest)
			renderSection(section)

		default:
			color.Red("unknown command %q (try ls, post, reply, edit, del, toggle, quit)", verb)
		}
	}
}

func renderSection(section *commentsync.Section) {
	forest := section.Forest()
	color.Cyan("\n%d comments", section.Total())
	if len(forest) == 0 {
		fmt.Println("  (no comments yet)")
		return
	}
	for _, node := range forest {
		renderNode(node, 0)
	}
}

func renderNode(node *commenttree.Node, depth int) {
	indent := strings.Repeat("  ", depth)

	author := node.Username
	if author == "" {
		author = "you"
	}
	edited := ""
	if node.Edited {
		edited = " (edited)"
	}

	fmt.Printf("%s%s %s%s: %s\n",
		indent,
		color.HiBlackString("[%s]", shortID(node.ID)),
		color.CyanString(author),
		edited,
		node.Content,
	)

	if !node.RepliesExpanded && len(node.Replies) > 0 {
		fmt.Printf("%s  %s\n", indent, color.HiBlackString("(%d replies hidden)", len(node.Replies)))
		return
	}
	for _, reply := range node.Replies {
		renderNode(reply, depth+1)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
