// Package gate implements the approval state machine:
//
//	Empty → Generating → PendingApproval ⇄ Revising → Finalized
//
// Transitions are pure functions over the proposal state so the
// orchestrator can compose them with the other stages; invalid transitions
// return sentinel errors rather than silently no-oping.
package gate

import (
	"errors"
	"fmt"

	"github.com/itinera/itinera/model/trip"
)

var (
	// ErrNoPendingProposal is returned when a decision arrives while no
	// proposal is pending approval, including repeat decisions against a
	// finalized proposal.
	ErrNoPendingProposal = errors.New("no pending proposal")

	// ErrIncomplete is returned when a proposal is submitted for approval
	// before all sections hold content.
	ErrIncomplete = errors.New("proposal is incomplete")
)

// Submit transitions a fully generated proposal to PendingApproval.
func Submit(state *trip.ProposalState) error {
	if state.Status != trip.StatusGenerating {
		return fmt.Errorf("cannot submit proposal in status %s", state.Status)
	}
	if !state.Complete() {
		return ErrIncomplete
	}
	state.Status = trip.StatusPendingApproval
	return nil
}

// Approve finalizes a pending proposal, freezing the rendered document as
// the final artifact. Finalized is terminal: any further decision yields
// ErrNoPendingProposal.
func Approve(state *trip.ProposalState, rendered string) error {
	if state.Status != trip.StatusPendingApproval {
		return ErrNoPendingProposal
	}
	state.Status = trip.StatusFinalized
	state.Final = rendered
	state.LastFeedback = nil
	return nil
}

// Reject moves a pending proposal into Revising, recording the feedback
// for the router.
func Reject(state *trip.ProposalState, feedback string) error {
	if state.Status != trip.StatusPendingApproval {
		return ErrNoPendingProposal
	}
	state.Status = trip.StatusRevising
	state.LastFeedback = &trip.Feedback{Text: feedback}
	return nil
}

// CompleteRevision returns a revised proposal to PendingApproval.
func CompleteRevision(state *trip.ProposalState) error {
	if state.Status != trip.StatusRevising {
		return fmt.Errorf("cannot complete revision in status %s", state.Status)
	}
	if !state.Complete() {
		return ErrIncomplete
	}
	state.Status = trip.StatusPendingApproval
	return nil
}

// AbortRevision returns the proposal to PendingApproval without applying
// changes, used when feedback turned out to be unclassifiable.
func AbortRevision(state *trip.ProposalState) {
	if state.Status == trip.StatusRevising {
		state.Status = trip.StatusPendingApproval
		state.LastFeedback = nil
	}
}
