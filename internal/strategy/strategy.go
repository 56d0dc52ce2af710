// Package strategy holds the pairs-trading decision logic: the position
// state machine that turns z-score threshold crossings into trade intents.
package strategy

// Position is the strategy's single piece of mutable state. At most one
// paired position (long leg 1, short leg 2) is open at any time.
type Position string

const (
	Flat Position = "FLAT"
	Open Position = "OPEN"
)

type Action string

const (
	Hold            Action = "HOLD"
	OpenLong1Short2 Action = "OPEN_LONG1_SHORT2"
	CloseBoth       Action = "CLOSE_BOTH"
)

// Snapshot is the per-cycle input to the state machine. HasZ is false when
// the current cycle produced no usable z-score (insufficient history or a
// zero rolling std); the machine must treat that as "no action", never as
// z=0.
type Snapshot struct {
	Z    float64
	HasZ bool
}

// Decision is what the machine proposes for one cycle. From and To record
// the transition; To == From for holds. The transition is applied only via
// Commit, so the caller can make it atomic with a dispatch attempt.
type Decision struct {
	Action Action
	From   Position
	To     Position
	Reason string
}
