// Package itinera is a human-in-the-loop trip planning engine. It composes
// a multi-section trip proposal, holds it at an approval gate until the
// traveler approves or rejects it, routes rejection feedback to the
// affected sections for targeted revision, and remembers finalized trips
// for later recall. Generation and revision run behind a task queue so the
// heavy stage can live in the same process or a separate one.
package itinera
