package diffcore

// Differ computes a line-level edit script between two sequences.
type Differ interface {
	// Opcodes returns a deterministic opcode list that tiles both
	// sequences. Equal inputs produce a single equal opcode spanning the
	// whole range.
	Opcodes(a, b []string) []Opcode
}
