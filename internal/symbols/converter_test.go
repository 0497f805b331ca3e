package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

func TestConvert_HappyPath(t *testing.T) {
	c := Converter{MasterSuffix: "m", SlaveSuffix: "#"}
	mapping := []domain.SymbolMapping{{Source: "XAUUSD", Target: "GOLD"}}

	got := c.Convert("XAUUSDm", mapping)
	assert.Equal(t, "GOLD#", got)
}

func TestConvert_MappingWinsOverBareRoot(t *testing.T) {
	c := Converter{MasterPrefix: "pro.", SlavePrefix: "ecn."}
	mapping := []domain.SymbolMapping{{Source: "EURUSD", Target: "EURUSD.raw"}}

	got := c.Convert("pro.EURUSD", mapping)
	assert.Equal(t, "ecn.EURUSD.raw", got)
}

func TestConvert_NoAffixesNoMapping_Identity(t *testing.T) {
	c := Converter{}
	assert.Equal(t, "EURUSD", c.Convert("EURUSD", nil))
}

func TestConvert_EmptyMappingTable(t *testing.T) {
	c := Converter{MasterSuffix: ".a", SlaveSuffix: ".b"}
	assert.Equal(t, "EURUSD.b", c.Convert("EURUSD.a", []domain.SymbolMapping{}))
}

func TestConvert_EmptyResultPassesThroughOriginal(t *testing.T) {
	// Stripping master prefix+suffix exactly consumes the whole symbol, and
	// there's no mapping entry for the empty root, and no slave affixes
	// added back: the would-be-empty result falls back to the input.
	c := Converter{MasterPrefix: "EURUSD"}
	assert.Equal(t, "EURUSD", c.Convert("EURUSD", nil))
}

func TestConvert_InverseAffixesRecoverOriginal(t *testing.T) {
	// spec.md §8 invariant 8: convert(s, []) after convert with inverse
	// affixes recovers s iff no mapping applied.
	stripped := Converter{MasterPrefix: "pro.", MasterSuffix: ".m"}
	restored := Converter{SlavePrefix: "pro.", SlaveSuffix: ".m"}

	original := "pro.EURUSD.m"
	intermediate := stripped.Convert(original, nil)
	assert.Equal(t, "EURUSD", intermediate)
	assert.Equal(t, original, restored.Convert(intermediate, nil))
}

func TestConvert_CaseSensitive(t *testing.T) {
	c := Converter{MasterSuffix: "M"}
	// lowercase "m" does not match the configured uppercase "M" suffix.
	assert.Equal(t, "EURUSDm", c.Convert("EURUSDm", nil))
}
