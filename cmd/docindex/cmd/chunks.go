package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/nextgenai/docindex/internal/chunk"
	"github.com/nextgenai/docindex/internal/config"
	"github.com/nextgenai/docindex/internal/pdf"
)

// newChunksCmd creates the chunks command, an offline preview of what an
// ingestion run would produce. No credentials, no network.
func newChunksCmd() *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "chunks <document.pdf>",
		Short: "Preview the chunks and classifications for a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}

			reader := pdf.NewReader(nil)
			pages, err := reader.ReadPages(args[0], nil)
			if err != nil {
				return err
			}

			chunker := chunk.NewChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
			chunks := chunker.ChunkPages(pages, nil)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d pages, %d chunks\n\n", args[0], len(pages), len(chunks))

			if showText {
				for _, c := range chunks {
					fmt.Fprintf(out, "%s (page %d, %s/%s, role %d)\n%s\n\n",
						c.ID, c.Page, c.Topic, c.Task, c.RoleMin, c.Text)
				}
				return nil
			}

			topics := make(map[string]int)
			tasks := make(map[string]int)
			roles := make(map[int]int)
			for _, c := range chunks {
				topics[string(c.Topic)]++
				tasks[string(c.Task)]++
				roles[c.RoleMin]++
			}

			printCounts(out, "topics", topics)
			printCounts(out, "tasks", tasks)

			roleKeys := make([]int, 0, len(roles))
			for role := range roles {
				roleKeys = append(roleKeys, role)
			}
			sort.Ints(roleKeys)
			fmt.Fprintln(out, "roles:")
			for _, role := range roleKeys {
				fmt.Fprintf(out, "  %-20d %d\n", role, roles[role])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showText, "text", false, "Print every chunk's text and metadata")

	return cmd
}

func printCounts(out io.Writer, label string, counts map[string]int) {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	fmt.Fprintf(out, "%s:\n", label)
	for _, name := range names {
		fmt.Fprintf(out, "  %-20s %d\n", name, counts[name])
	}
}
