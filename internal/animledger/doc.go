// Package animledger provides an in-memory, thread-safe implementation of the
// two animation ledgers the compiler talks to.
//
// # Clip ledger
//
// The clip ledger knows which properties pre-existing animation clips already
// drive, which is what keeps a condition on such a property from being folded
// and keeps a deleted shape from being removed from its mesh. It also owns the
// designated output container and accepts synthesized layers for merge.
//
// # Remapping ledger
//
// Every state the synthesizer creates is registered against the hierarchy
// path it animates, so that a later pass can retarget it when the hierarchy
// changes underneath.
//
// # Concurrency Model
//
// The ledgers use sync.Map. Keys (paths and properties) are known once the
// scene is loaded while registrations keep arriving during synthesis, which is
// the access pattern sync.Map is built for.
package animledger
