package docgraph

import (
	"context"
	"sync"
	"time"

	"github.com/teranos/azsku/ast"
	"github.com/teranos/azsku/errors"
)

const familyPage = `---
title: D family VM size series
---

# D-family general purpose VM size series

## Series in family

### Dv5 and Dsv5-series

[!INCLUDE [dv5-summary](./includes/dv5-series-summary.md)]

[View the full Dv5 and Dsv5-series page](./dv5-series.md)

[!INCLUDE [dv5-specs](./includes/dv5-series-specs.md)]

## Previous-generation D family series

Older sizes remain available.
`

const dv5Page = `---
title: Dv5 sizes series
---

# Dv5 sizes series

[!INCLUDE [dv5-summary](./includes/dv5-series-summary.md)]

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

It supports confidential workloads.

## Host specifications

` + hostSpecsTable + `
## Sizes in series

| Size Name | vCPUs |
|---|---|
| Standard_D2_v4 | 2 |
| Standard_D4_v4 | 4 |
| Standard_D8_v4 | 8 |
| Standard_D16_v4 | 16 |
| Standard_D32_v4 | 32 |
| Standard_D64_v4 | 64 |
`

const dv3Page = `---
title: Dv3 sizes series
---

# Dv3 sizes series

Older series.

| Feature | Support |
|---|---|
| Premium Storage | Not Supported |

| Size | vCPU |
|---|---|
| Standard_D2_v3 | 2 |
| Standard_D4_v3 | 4 |
| Standard_D8_v3 | 8 |
`

const dv6Page = `---
title: Dv6 sizes series
---

# Dv6 sizes series (public preview)

Preview sizes.
`

const multiPage = `---
title: Mbsv3 and Mbdsv3 sizes series
---

# Memory optimized Mbsv3 and Mbdsv3 series

## Mbsv3 series

Mbsv3 summary.

| Size | vCPU |
|---|---|
| Standard_M16bs_v3 | 16 |

## Mbdsv3 series

Mbdsv3 summary.

| Size | vCPU |
|---|---|
| Standard_M16bds_v3 | 16 |
| Standard_M32bds_v3 | 32 |
`

func fixtureCorpus() *Corpus {
	files := map[string]string{
		"sizes/general-purpose/d-family.md":                    familyPage,
		"sizes/general-purpose/dv5-series.md":                  dv5Page,
		"sizes/general-purpose/includes/dv5-series-summary.md": dv5Summary,
		"sizes/general-purpose/includes/dv5-series-specs.md":   hostSpecsTable,
		"sizes/general-purpose/dv4-series.md":                  dv4Page,
		"sizes/general-purpose/dv3-series.md":                  dv3Page,
		"sizes/general-purpose/dv6-series.md":                  dv6Page,
		"sizes/resources/dv3-series-specs.md":                  hostSpecsTable,
		"sizes/memory-optimized/mbsv3-mbdsv3-series.md":        multiPage,
		"sizes/migration-guides/z-family.md":                   familyPage,
		"sizes/x-family.md":                                    familyPage,
	}
	return corpusOf(files)
}

func corpusOf(files map[string]string) *Corpus {
	modified := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	docs := make([]Document, 0, len(files))
	for p, content := range files {
		docs = append(docs, Document{Path: p, Content: []byte(content), LastModified: modified})
	}
	return NewCorpus("sizes", docs)
}

// parsingTrees parses on every call and counts calls per handle.
type parsingTrees struct {
	corpus *Corpus
	mu     sync.Mutex
	calls  map[Handle]int
}

func newParsingTrees(c *Corpus) *parsingTrees {
	return &parsingTrees{corpus: c, calls: map[Handle]int{}}
}

func (p *parsingTrees) Tree(_ context.Context, h Handle) (*ast.Document, error) {
	p.mu.Lock()
	p.calls[h]++
	p.mu.Unlock()
	doc := p.corpus.Get(h)
	if doc == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "handle %d", h)
	}
	return ast.Parse(doc.Content)
}

func (p *parsingTrees) count(h Handle) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[h]
}

func mustPath(c *Corpus, p string) *Document {
	d, ok := c.ByPath(p)
	if !ok {
		panic("fixture missing " + p)
	}
	return d
}
