package reloop

// Limits bound a single agent invocation and the delegation tree below it.
//
// # How Limits Work
//
// The executor checks MaxDelegationDepth once, before the first turn, and MaxTurns before every
// turn. Exceeding either terminates the invocation with a dedicated [TerminationReason] and
// error instead of blocking forever:
//
//	// A conversation may take at most 10 turns.
//	execCtx.SetLimits(reloop.Limits{MaxTurns: 10, MaxDelegationDepth: 2})
//
// # Delegation
//
// Child contexts created for delegated tasks inherit their parent's limits. MaxTurns applies
// to each conversation on its own; MaxDelegationDepth bounds the nesting of the whole tree.
// The root loop has depth 0, a task it delegates runs at depth 1, and so on.
type Limits struct {
	// MaxTurns is the maximum number of generations per conversation.
	// Zero or negative disables the limit.
	MaxTurns int `yaml:"max_turns"`

	// MaxDelegationDepth is the deepest depth a delegated loop may start at.
	// Negative disables the limit; zero forbids delegation.
	MaxDelegationDepth int `yaml:"max_delegation_depth"`
}

// DefaultLimits returns the limits applied when none are configured:
//   - 25 turns per conversation
//   - delegation up to depth 3
func DefaultLimits() Limits {
	return Limits{
		MaxTurns:           25,
		MaxDelegationDepth: 3,
	}
}

// TurnsExceeded reports whether starting turn number turn (1-indexed) would exceed MaxTurns.
func (l Limits) TurnsExceeded(turn int) bool {
	return l.MaxTurns > 0 && turn > l.MaxTurns
}

// DepthExceeded reports whether a loop at depth would exceed MaxDelegationDepth.
func (l Limits) DepthExceeded(depth int) bool {
	return l.MaxDelegationDepth >= 0 && depth > l.MaxDelegationDepth
}
