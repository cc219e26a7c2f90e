package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/azsku/errors"
)

func TestDecodeVariant_ConstrainedCore(t *testing.T) {
	v, err := DecodeVariant("Standard_E16-8s_v5")
	require.NoError(t, err)

	assert.Equal(t, "Standard", v.Tier())
	assert.Equal(t, "E", v.Family)
	assert.Equal(t, 16, v.VCPUs())
	constrained, ok := v.ConstrainedVCPUs()
	require.True(t, ok)
	assert.Equal(t, 8, constrained)
	assert.Equal(t, []string{"s"}, v.AddonCodes())
	assert.Equal(t, 5, v.Version())
	assert.Empty(t, v.Accelerator())
	_, ok = v.IterationVersion()
	assert.False(t, ok)
}

func TestDecodeVariant_Accelerator(t *testing.T) {
	v, err := DecodeVariant("Standard_NC24ads_A100_v4")
	require.NoError(t, err)

	assert.Equal(t, "N", v.Family)
	assert.Equal(t, []string{"C"}, v.SubfamilyCodes())
	assert.Equal(t, []string{"a", "d", "s"}, v.AddonCodes())
	assert.Equal(t, "A100", v.Accelerator())
	assert.Equal(t, 4, v.Version())

	entry, ok := v.AcceleratorEntry()
	require.True(t, ok)
	assert.Equal(t, "Nvidia A100 GPU enabled VMs", entry.Short)
}

func TestDecodeVariant_DefaultsAndUnknownAccelerator(t *testing.T) {
	v, err := DecodeVariant("Standard_NP10s")
	require.NoError(t, err)
	assert.Equal(t, 1, v.Version())
	assert.Empty(t, v.VersionTag)

	v, err = DecodeVariant("Standard_NV4as_Z9_v4")
	require.NoError(t, err)
	entry, ok := v.AcceleratorEntry()
	require.True(t, ok)
	assert.Equal(t, "Z9", entry.Code)
	assert.Empty(t, entry.Short)
}

func TestDecodeVariant_EmbeddedAcceleratorVersion(t *testing.T) {
	v, err := DecodeVariant("Standard_NC8as_T4v3_")
	require.NoError(t, err)
	assert.Equal(t, "T4", v.Accelerator())
	assert.Equal(t, 3, v.Version())
	assert.Equal(t, "Standard_NC8as_T4v3_", v.Encode())
}

func TestDecodeVariant_Rejects(t *testing.T) {
	tests := []string{
		"",
		"Premium_D2_v5",
		"Standard_d2_v5",
		"Standard_Q2_v5",
		"Standard_DZ2_v5",
		"Standard_D2q_v5",
		"Standard_D2_v5_Promo",
	}
	for _, token := range tests {
		t.Run(token, func(t *testing.T) {
			_, err := DecodeVariant(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrGrammarViolation))
		})
	}
}

func TestVariantRoundTrip(t *testing.T) {
	tokens := []string{
		"Standard_E16-8s_v5",
		"Standard_D2_v5",
		"Standard_DS1_v2",
		"Standard_M416ms_v2",
		"Standard_NV36adms_A10_v5",
		"Standard_DC4as_cc_v5",
		"Standard_HB176-24rs_v4",
		"Standard_ND96isr_H100_v5",
		"Standard_E104i_v5",
		"Basic_A1",
		"Standard_A2m_v2",
		"standard_F2s",
		"E2bds_v5",
	}
	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			v, err := DecodeVariant(token)
			require.NoError(t, err)
			assert.Equal(t, token, v.Encode())
		})
	}
}

func TestDecodeSeries(t *testing.T) {
	tests := []struct {
		token   string
		family  string
		subfams []string
		addons  []string
		accel   string
		version int
	}{
		{"Dv5", "D", nil, nil, "", 5},
		{"DCasv5", "D", []string{"C"}, []string{"a", "s"}, "", 5},
		{"Ebdsv5", "E", nil, []string{"b", "d", "s"}, "", 5},
		{"NCads_H100_v5", "N", []string{"C"}, []string{"a", "d", "s"}, "H100", 5},
		{"M", "M", nil, nil, "", 1},
		{"HBv4", "H", []string{"B"}, nil, "", 4},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			s, err := DecodeSeries(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.family, s.Family)
			assert.Equal(t, tt.subfams, s.SubfamilyCodes())
			assert.Equal(t, tt.addons, s.AddonCodes())
			assert.Equal(t, tt.accel, s.Accelerator())
			assert.Equal(t, tt.version, s.Version())
			assert.Equal(t, tt.token, s.Encode())
		})
	}
}

func TestDecodeSeries_Rejects(t *testing.T) {
	for _, token := range []string{"dv5", "Dv", "Dcv5", "Qv2", "Dasv5x"} {
		t.Run(token, func(t *testing.T) {
			_, err := DecodeSeries(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrGrammarViolation))
		})
	}
}

func TestSubfamilies_Confidential(t *testing.T) {
	s, err := DecodeSeries("DCasv5")
	require.NoError(t, err)

	plain := s.Subfamilies(false)
	require.Len(t, plain, 1)
	assert.Equal(t, "High-performance computing and ML-workloads", plain[0].Short)

	confidential := s.Subfamilies(true)
	require.Len(t, confidential, 1)
	assert.Equal(t, "C", confidential[0].Code)
	assert.Equal(t, "Confidential compute", confidential[0].Short)
}

func TestAddonEntries(t *testing.T) {
	s, err := DecodeSeries("Dpdsv6")
	require.NoError(t, err)

	entries := s.AddonEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, "p", entries[0].Code)
	assert.Equal(t, "ARM64-based processor", entries[0].Short)
	assert.Equal(t, "Local temp disk is present", entries[1].Long)
}

func TestLookups(t *testing.T) {
	d, ok := FamilyDescription("E")
	assert.True(t, ok)
	assert.Equal(t, "Memory optimized for In-Memory hyperthreaded-applications", d)

	_, ok = FamilyDescription("Z")
	assert.False(t, ok)

	tier, ok := TierDescription("Standard")
	assert.True(t, ok)
	assert.Contains(t, tier, "Standard tier VMs")

	assert.Len(t, FamilyLetters(), 10)
	assert.Equal(t, "SKU Tier", VariantFieldExplanations["tier"])
}
