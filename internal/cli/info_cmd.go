package cli

import (
	"embed"
	"fmt"
	"strings"

	"github.com/alexanderramin/riff/internal/cli/formatter"
	"github.com/spf13/cobra"
)

//go:embed info/*.md
var infoPages embed.FS

// infoTopics lists the help pages in reading order.
var infoTopics = []struct {
	name  string
	title string
}{
	{"about", "About"},
	{"getting-started", "Getting started"},
	{"features", "Features"},
	{"tips", "Tips"},
}

const infoWidth = 80

func infoPage(name string) (string, error) {
	raw, err := infoPages.ReadFile("info/" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("%w: info topic %q", ErrNotFound, name)
	}
	return string(raw), nil
}

func newInfoCmd() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "info [TOPIC]",
		Short: "Read about riff: about, getting-started, features, tips",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, t := range infoTopics {
					fmt.Fprintf(out, "%-16s %s\n", t.name, formatter.Dim(t.title))
				}
				return nil
			}

			topic := "about"
			if len(args) == 1 {
				topic = strings.ToLower(strings.TrimSpace(args[0]))
			}
			page, err := infoPage(topic)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.RenderMarkdown(infoWidth, page))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List the available topics")

	return cmd
}
