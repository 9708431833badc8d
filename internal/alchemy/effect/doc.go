// Package effect defines intensity-weighted actions.
//
// An Intensity pairs a side-effecting Action with a call count. Invoking the
// intensity runs the action that many times in sequence. Intensities are
// values: scaling, combining and dividing return new intensities and never
// change the receiver, so a copy captured by a ledger can be replayed later
// at exactly its original strength.
//
// Scaling and dividing use Round, a half-down rule: a fractional part of
// exactly 0.5 rounds toward negative infinity, anything above rounds up.
package effect
