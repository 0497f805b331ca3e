// Package symbols implements the pure prefix/suffix/mapping symbol
// transformation described in spec.md §4.3. No regex; byte-wise,
// case-sensitive comparisons only.
package symbols

import (
	"strings"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

// Converter is a value object built from one Master's affixes and one
// Slave's affixes, reused for every signal on that link.
type Converter struct {
	MasterPrefix string
	MasterSuffix string
	SlavePrefix  string
	SlaveSuffix  string
}

// New builds a Converter from a TradeGroup's master-level affixes and a
// SlaveSettings' slave-level affixes.
func New(group domain.TradeGroup, slave domain.SlaveSettings) Converter {
	return Converter{
		MasterPrefix: group.SymbolPrefix,
		MasterSuffix: group.SymbolSuffix,
		SlavePrefix:  slave.SymbolPrefix,
		SlaveSuffix:  slave.SymbolSuffix,
	}
}

// Convert applies the five-step transformation from spec.md §4.3:
//  1. strip the master's prefix (if present)
//  2. strip the master's suffix (if present)
//  3. look the bare root up in mapping; replace on hit
//  4. prepend the slave's prefix
//  5. append the slave's suffix
//
// If any intermediate step would produce the empty string, the original
// symbol is passed through unchanged (spec.md §4.3, §8 boundary behavior).
func (c Converter) Convert(symbol string, mapping []domain.SymbolMapping) string {
	if symbol == "" {
		return symbol
	}

	root := symbol
	if c.MasterPrefix != "" && strings.HasPrefix(root, c.MasterPrefix) {
		root = root[len(c.MasterPrefix):]
	}
	if c.MasterSuffix != "" && strings.HasSuffix(root, c.MasterSuffix) {
		root = root[:len(root)-len(c.MasterSuffix)]
	}
	if root == "" {
		return symbol
	}

	for _, m := range mapping {
		if m.Source == root {
			root = m.Target
			break
		}
	}
	if root == "" {
		return symbol
	}

	result := c.SlavePrefix + root + c.SlaveSuffix
	if result == "" {
		return symbol
	}
	return result
}
