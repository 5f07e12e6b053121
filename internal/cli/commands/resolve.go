package commands

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/pagemeta/internal/cli/ui"
	"github.com/conduit-lang/pagemeta/internal/config"
	"github.com/conduit-lang/pagemeta/internal/metadata"
	"github.com/conduit-lang/pagemeta/internal/render"
	"github.com/conduit-lang/pagemeta/internal/web/stream"
)

var (
	resolveQuery   string
	resolveStatic  bool
	resolveJSON    bool
	resolveNoColor bool
)

// NewResolveCommand creates the resolve command
func NewResolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Render one document and print its head",
		Long: `Render the document for a path without starting the server and print
the head elements followed by the boundary outcome.

Examples:
  pagemeta resolve /posts/hello-world
  pagemeta resolve /search --query q=go
  pagemeta resolve /posts/hello-world --static
  pagemeta resolve / --json`,
		Args: cobra.ExactArgs(1),
		RunE: runResolve,
	}

	cmd.Flags().StringVarP(&resolveQuery, "query", "q", "", "Query string, e.g. q=go&page=2")
	cmd.Flags().BoolVar(&resolveStatic, "static", false, "Render as static generation")
	cmd.Flags().BoolVar(&resolveJSON, "json", false, "Print the frames as NDJSON")
	cmd.Flags().BoolVar(&resolveNoColor, "no-color", false, "Disable colored output")

	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	query, err := url.ParseQuery(resolveQuery)
	if err != nil {
		return fmt.Errorf("invalid query %q: %w", resolveQuery, err)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, zap.NewNop(), appOptions{seed: true, static: resolveStatic})
	if err != nil {
		return err
	}
	defer func() { _ = a.close(ctx) }()

	doc, err := a.renderer.Document(ctx, render.Request{Path: args[0], Query: query})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if resolveJSON {
		s := stream.NewWriter(out)
		if err := s.WriteFrame(doc.Head); err != nil {
			return err
		}
		return s.WriteFrame(doc.Boundary)
	}

	printDocument(out, doc, resolveNoColor)
	return nil
}

func printDocument(out io.Writer, doc *render.Document, noColor bool) {
	summary := ui.NewKeyValueTable(out, noColor)
	summary.AddRow("Route", doc.Head.Route)
	if doc.Head.Status != "" {
		summary.AddRow("Head", doc.Head.Status)
	}
	summary.AddRow("Boundary", doc.Boundary.Status)
	if doc.Boundary.Location != "" {
		summary.AddRow("Location", doc.Boundary.Location)
	}
	if doc.Boundary.Error != "" {
		summary.AddRow("Error", doc.Boundary.Error)
	}
	for _, access := range doc.Boundary.Dynamic {
		summary.AddRow("Dynamic", access.Expression)
	}
	summary.Render()

	if len(doc.Head.Elements) == 0 {
		return
	}
	fmt.Fprintln(out)

	table := ui.NewTable(out, []string{"Key", "Tag", "Attributes", "Text"}, noColor)
	for _, ke := range doc.Head.Elements {
		table.AddRow(ke.Key, ke.Element.Tag, formatAttrs(ke.Element.Attrs), ke.Element.Text)
	}
	table.Render()
}

func formatAttrs(attrs []metadata.Attr) string {
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		parts = append(parts, fmt.Sprintf("%s=%q", a.Name, a.Value))
	}
	return strings.Join(parts, " ")
}
