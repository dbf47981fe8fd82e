package validation

// ScopeGlobal applies a constraint to every instrument in the partition.
const ScopeGlobal = "global"

// resolveScope resolves a constraint scope to the matching instruments.
// "global" yields every instrument in key order; any other value is
// treated as an instrument key and yields the single match, or nothing
// when the key does not exist in the current partition. An unknown key
// is not an error: the constraint becomes a no-op for this run. This
// preserves the behavior for constraints configured against an
// instrument layout that has since changed.
func resolveScope(scope string, p *Partition) []*Instrument {
	if scope == ScopeGlobal {
		return p.Instruments()
	}
	if inst, ok := p.Get(scope); ok {
		return []*Instrument{inst}
	}
	return nil
}
