// Package potion implements single-use bundles of named effects.
//
// A Potion maps effect names to intensities and carries a duration. It is a
// small state machine:
//
//   - usable: cleared permanently once the potion is an operand of Combine,
//     Scale, Subtract or Split; every later access fails with ErrUnusable.
//   - depleted: set once every effect name has been consumed; every later
//     access fails with ErrDepleted.
//
// Consume reads an effect and marks it consumed, so each name can be read
// exactly once. The algebra always returns fresh potions and never mutates
// the intensities of its operands.
package potion
