package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/azsku/display"
	"github.com/teranos/azsku/docgraph"
)

// ClassifyCmd represents the classify command
var ClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "List discovered documents with their classification",
	Long: `List every document in the SKU directories with its classification
(family, series, multi-series, exception) and, for series, the family it
belongs to.

Examples:
  azsku classify --repo ../azure-compute-docs
  azsku classify --repo . --all     # Include non-SKU documents
  azsku classify --json`,
	RunE: runClassify,
}

func init() {
	addCorpusFlags(ClassifyCmd)
	ClassifyCmd.Flags().Bool("all", false, "Also list documents outside the SKU directories")
}

// ClassifiedDocument is one row of classify output.
type ClassifiedDocument struct {
	Path        string   `json:"path"`
	Class       string   `json:"class"`
	Identifiers []string `json:"identifiers,omitempty"`
	Family      string   `json:"family,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	all, _ := cmd.Flags().GetBool("all")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := openSource(ctx, cmd, cfg)
	if err != nil {
		return err
	}
	c, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	rows := classifyCorpus(c, all)
	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(rows)
	}

	data := pterm.TableData{{"Document", "Class", "Identifiers", "Family"}}
	for _, r := range rows {
		data = append(data, []string{r.Path, r.Class, strings.Join(r.Identifiers, ", "), r.Family})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	pterm.Info.Printf("%d documents, %d SKU directories\n", len(rows), len(c.SKUDirs()))
	return nil
}

func classifyCorpus(c *docgraph.Corpus, all bool) []ClassifiedDocument {
	skuDirs := make(map[string]bool)
	for _, d := range c.SKUDirs() {
		skuDirs[d] = true
	}
	families := c.Families()

	var rows []ClassifiedDocument
	for _, doc := range c.Documents() {
		if !all && !skuDirs[doc.Dir()] {
			continue
		}
		row := ClassifiedDocument{
			Path:        doc.Path,
			Class:       doc.Descriptor.Class.String(),
			Identifiers: doc.Descriptor.Identifiers,
		}
		if doc.Descriptor.IsSeriesLike() && len(doc.Descriptor.Identifiers) > 0 {
			if fam, err := docgraph.ResolveFamily(doc.Descriptor.Identifiers[0], families); err == nil {
				row.Family = fam.Path
			}
		}
		rows = append(rows, row)
	}
	return rows
}
