package service

import (
	"github.com/payshield/payshield/internal/domain"
)

// decisionTransitions defines the admin override state machine. Only
// REVIEW transactions may transition; APPROVE and BLOCK are terminal.
var decisionTransitions = map[domain.Decision]map[domain.Decision]struct{}{
	domain.DecisionReview: {
		domain.DecisionApprove: {},
		domain.DecisionBlock:   {},
	},
	domain.DecisionApprove: {},
	domain.DecisionBlock:   {},
}

func canTransition(current, next domain.Decision) bool {
	nextStates, ok := decisionTransitions[current]
	if !ok {
		return false
	}
	_, ok = nextStates[next]
	return ok
}
