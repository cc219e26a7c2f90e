package docgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		file  string
		class Class
		ids   []string
	}{
		{"dv5-series.md", ClassSeries, []string{"dv5"}},
		{"dsv5-series.md", ClassSeries, []string{"dsv5"}},
		{"dv2-series.md", ClassSeries, []string{"dv2"}},
		{"m-series.md", ClassSeries, []string{"m"}},
		{"ncadsh100-v5-series.md", ClassSeries, []string{"ncadsh100v5"}},
		{"d-family.md", ClassFamily, []string{"d"}},
		{"eb-family.md", ClassFamily, []string{"eb"}},
		{"mbsv3-mbdsv3-series.md", ClassMultiSeries, []string{"mbsv3", "mbdsv3"}},
		{"dv5-dsv5-series.md", ClassMultiSeries, []string{"dv5", "dsv5"}},
		{"dv2-dsv2-series-memory.md", ClassException, nil},
		{"nccadsh100v5-series.md", ClassException, nil},
		{"dv5-series-summary.md", ClassOther, []string{"dv5-series-summary"}},
		{"overview.md", ClassOther, []string{"overview"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			d := Classify(tt.file)
			assert.Equal(t, tt.file, d.Name)
			assert.Equal(t, tt.class, d.Class, "class %s", d.Class)
			assert.Equal(t, tt.ids, d.Identifiers)
		})
	}
}

func TestClassify_VersionIsNotASecondSeries(t *testing.T) {
	// "dc-v2" would otherwise read as two codes "dc" and "v2"
	d := Classify("dc-v2-series.md")
	assert.Equal(t, ClassSeries, d.Class)
	assert.Equal(t, []string{"dcv2"}, d.Identifiers)

	d = Classify("ab-v3x-extra-series.md")
	assert.NotEqual(t, ClassMultiSeries, d.Class)
}

func TestDescriptor_IsSeriesLike(t *testing.T) {
	assert.True(t, Classify("dv5-series.md").IsSeriesLike())
	assert.True(t, Classify("mbsv3-mbdsv3-series.md").IsSeriesLike())
	assert.False(t, Classify("d-family.md").IsSeriesLike())
	assert.False(t, Classify("nccadsh100v5-series.md").IsSeriesLike())
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "multi-series", ClassMultiSeries.String())
	assert.Equal(t, "other", Class(42).String())
}
