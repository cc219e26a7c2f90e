package pipeline

import (
	"strings"
	"time"

	"github.com/teranos/azsku/docgraph"
)

const familyPage = `---
title: D family VM size series
---

# D-family general purpose VM size series

## Series in family

### Dv5-series

[!INCLUDE [dv5-summary](./includes/dv5-series-summary.md)]

[View the full Dv5-series page](./dv5-series.md)

[!INCLUDE [dv5-specs](./includes/dv5-series-specs.md)]

## Previous-generation D family series

Older sizes remain available.
`

const featureSupport = `## Feature support

- Premium Storage: Supported
- Premium Storage caching: Supported
- Live Migration: Supported
- Memory Preserving Updates: Supported
- Accelerated Networking: Supported
- Nested Virtualization: Supported
`

const dv5Page = `---
title: Dv5 sizes series
---

# Dv5 sizes series

[!INCLUDE [dv5-summary](./includes/dv5-series-summary.md)]

` + featureSupport + `
## Sizes in series

| Size Name | vCPUs (Qty.) | Memory (GB) |
|---|---|---|
| Standard_D2_v5 | 2 | 8 |
| Standard_D4_v5 | 4 | 16 |
`

const dv5Summary = `The Dv5-series runs on Intel Xeon processors and balances memory and compute.
`

const hostSpecsTable = `| Part | Quantity <br><sup>Count Units | Specs <br><sup>SKU ID, Performance Units, etc.  |
|---|---|---|
| Processor | 2 - 96 vCPUs | Intel Xeon Platinum 8370C (Ice Lake) |
| Memory | 8 - 384 GiB |  |
| Local Storage | None |  |
| Remote Storage | 4 - 32 Disks |  |
| Network | 2 - 8 NICs |  |
`

const dv4Page = `---
title: Dv4 sizes series
---

# Dv4 sizes series

The Dv4-series is a previous generation series.

` + featureSupport + `
## Host specifications

` + hostSpecsTable + `
## Sizes in series

| Size Name | vCPUs |
|---|---|
| Standard_D2_v4 | 2 |
| Standard_D4_v4 | 4 |
`

const dv6Page = `---
title: Dv6 sizes series
---

# Dv6 sizes series (public preview)

Preview sizes.
`

const ev5Page = `---
title: Ev5 sizes series
---

# Ev5 sizes series

` + featureSupport + `
| Size Name | vCPUs |
|---|---|
| Standard_E2_v5 | 2 |
`

var fixtureModified = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func fixtureFiles() map[string]string {
	return map[string]string{
		"sizes/general-purpose/d-family.md":                    familyPage,
		"sizes/general-purpose/dv5-series.md":                  dv5Page,
		"sizes/general-purpose/includes/dv5-series-summary.md": dv5Summary,
		"sizes/general-purpose/includes/dv5-series-specs.md":   hostSpecsTable,
		"sizes/general-purpose/dv4-series.md":                  dv4Page,
		"sizes/general-purpose/dv6-series.md":                  dv6Page,
		"sizes/memory-optimized/ev5-series.md":                 ev5Page,
	}
}

func corpusOf(files map[string]string) *docgraph.Corpus {
	docs := make([]docgraph.Document, 0, len(files))
	for p, content := range files {
		docs = append(docs, docgraph.Document{Path: p, Content: []byte(content), LastModified: fixtureModified})
	}
	return docgraph.NewCorpus("sizes", docs)
}

func fixtureCorpus() *docgraph.Corpus { return corpusOf(fixtureFiles()) }

// widerMemoryCorpus changes only the shared Dv5 specs companion.
func widerMemoryCorpus() *docgraph.Corpus {
	files := fixtureFiles()
	p := "sizes/general-purpose/includes/dv5-series-specs.md"
	files[p] = strings.Replace(files[p], "8 - 384 GiB", "8 - 512 GiB", 1)
	return corpusOf(files)
}
