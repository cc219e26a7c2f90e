package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/azsku/assemble"
	"github.com/teranos/azsku/display"
	"github.com/teranos/azsku/grammar"
)

// DecodeCmd represents the decode command
var DecodeCmd = &cobra.Command{
	Use:   "decode <token>...",
	Short: "Decode VM size or series naming codes",
	Long: `Decode Azure VM size names (Standard_E16-8s_v5) or, with --series, series
names (DCasv5) into their naming components.

Examples:
  azsku decode Standard_E16-8s_v5 Standard_NC24ads_A100_v4
  azsku decode --series DCasv5 NCads_H100_v5
  azsku decode --confidential Standard_DC4as_v5 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecode,
}

func init() {
	DecodeCmd.Flags().Bool("series", false, "Decode series names instead of size names")
	DecodeCmd.Flags().Bool("confidential", false, "Describe subfamily C as confidential")
}

// DecodedSeries is the decode output for a series name.
type DecodedSeries struct {
	Name              string `json:"name"`
	Family            string `json:"family_id"`
	FamilyDescription string `json:"family_description"`
	Subfamily         string `json:"subfamily_id,omitempty"`
	Addons            string `json:"addons,omitempty"`
	Accelerator       string `json:"accelerator,omitempty"`
	Version           int    `json:"version"`
}

func runDecode(cmd *cobra.Command, args []string) error {
	series, _ := cmd.Flags().GetBool("series")
	confidential, _ := cmd.Flags().GetBool("confidential")
	useJSON := display.ShouldOutputJSON(cmd)

	var results []interface{}
	var failed int
	for _, token := range args {
		if series {
			code, err := grammar.DecodeSeries(token)
			if err != nil {
				failed++
				pterm.Error.Printf("%s: %v\n", token, err)
				continue
			}
			results = append(results, DecodedSeries{
				Name:              token,
				Family:            code.Family,
				FamilyDescription: code.FamilyDescription(),
				Subfamily:         code.Subfamily,
				Addons:            code.Addons,
				Accelerator:       code.Accelerator(),
				Version:           code.Version(),
			})
			continue
		}

		rec, err := assemble.Variant(token, confidential, time.Time{})
		if err != nil {
			failed++
			pterm.Error.Printf("%s: %v\n", token, err)
			continue
		}
		results = append(results, rec)
	}

	if useJSON {
		if err := display.OutputJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			printDecoded(r)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d tokens could not be decoded", failed, len(args))
	}
	return nil
}

func printDecoded(v interface{}) {
	switch r := v.(type) {
	case DecodedSeries:
		pterm.DefaultSection.Println(r.Name)
		_ = pterm.DefaultTable.WithData(pterm.TableData{
			{"Family", r.Family, r.FamilyDescription},
			{"Subfamily", r.Subfamily, ""},
			{"Addons", r.Addons, ""},
			{"Accelerator", r.Accelerator, ""},
			{"Version", fmt.Sprint(r.Version), ""},
		}).Render()
	case *assemble.VariantRecord:
		pterm.DefaultSection.Println(r.Name)
		constrained := ""
		if r.ConstrainedVCPUs != nil {
			constrained = fmt.Sprint(*r.ConstrainedVCPUs)
		}
		_ = pterm.DefaultTable.WithData(pterm.TableData{
			{"Tier", mappingKeys(r.Tier), r.TierStr},
			{"Family", r.FamilyID, r.FamilyIDStr},
			{"vCPUs", fmt.Sprint(r.VCPUs), r.VCPUsStr},
			{"Constrained vCPUs", constrained, r.ConstrainedVCPUsStr},
			{"Subfamilies", mappingKeys(r.Subfamilies), r.SubfamiliesStr},
			{"Addons", mappingKeys(r.Addons), r.AddonsStr},
			{"Accelerator", mappingKeys(r.Accelerator), r.AcceleratorStr},
			{"Version", fmt.Sprint(r.Version), r.VersionStr},
		}).Render()
	}
}

func mappingKeys(m *assemble.Mapping) string {
	if m == nil {
		return ""
	}
	return strings.Join(m.Keys(), ", ")
}
