package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seriesMarkdown = `---
title: Dv5 sizes series
description: General purpose
---

# Dv5 series

The Dv5 series is a general purpose series.

## Feature support

[Premium Storage](../../premium-storage-performance.md): Supported <br>[Live Migration](../../maintenance.md): Not Supported

## Sizes in series

| Size Name | vCPUs (Qty.) | Memory (GB) |
|---|---|---|
| Standard_D2_v5 | 2 | 8 |
| Standard_D4_v5 | 4 | 16 |
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(seriesMarkdown))
	require.NoError(t, err)

	assert.Equal(t, "Dv5 sizes series", doc.Meta.Title)

	require.Len(t, doc.Headings, 3)
	assert.Equal(t, 1, doc.Headings[0].Level)
	assert.Equal(t, "dv5-series", doc.Headings[0].ID)
	assert.Equal(t, "Dv5 series", Text(doc.Headings[0]))

	features := doc.HeadingByID("feature-support")
	require.NotNil(t, features)
	next := features.Next()
	require.True(t, next.Is(KindParagraph))
	assert.Contains(t, Stringify(next), "<br>")

	require.Len(t, doc.Links, 2)
	assert.Equal(t, "../../premium-storage-performance.md", doc.Links[0].Destination)
	assert.Equal(t, "Premium Storage", Text(doc.Links[0]))

	require.Len(t, doc.Tables, 1)
	table := doc.Tables[0]
	head := table.HeadRow()
	require.NotNil(t, head)
	require.Len(t, head.Children, 3)
	assert.Equal(t, "Size Name", Text(head.Children[0]))
	rows := table.BodyRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Standard_D4_v5", Text(rows[1].Children[0]))

	assert.Equal(t, "The Dv5 series is a general purpose series.", Text(doc.Headings[0].Next()))
}

func TestParse_InlineBreaks(t *testing.T) {
	doc, err := Parse([]byte("alpha<br>beta\ngamma\\\ndelta\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 1)

	var kinds []Kind
	for _, c := range doc.Paragraphs[0].Children {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []Kind{KindText, KindRawInline, KindText, KindSoftBreak, KindText, KindLineBreak, KindText}, kinds)
	assert.Equal(t, "alpha<br>beta gamma\ndelta", Stringify(doc.Paragraphs[0]))
}

func TestParse_BulletList(t *testing.T) {
	doc, err := Parse([]byte("## Feature support\n\n- Premium Storage: Supported\n- Live Migration: Supported\n"))
	require.NoError(t, err)

	h := doc.HeadingByID("feature-support")
	require.NotNil(t, h)
	list := h.Next()
	require.True(t, list.Is(KindBulletList))
	require.Len(t, list.Children, 2)
	assert.Equal(t, "Live Migration: Supported", Text(list.Children[1]))
}

func TestParse_EmphasisMergesIntoText(t *testing.T) {
	doc, err := Parse([]byte("Supported on **Gen2** VMs\n"))
	require.NoError(t, err)
	require.Len(t, doc.Paragraphs, 1)
	require.Len(t, doc.Paragraphs[0].Children, 1)
	assert.Equal(t, "Supported on Gen2 VMs", doc.Paragraphs[0].Children[0].Literal)
}

func TestParse_LayoutFailure(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [broken\n---\n# x\n"))
	require.Error(t, err)
}
