package dto

import "github.com/fekuna/omnipos-catalog-service/internal/apperrors"

// ChildOutcome reports one entry of a RegisterChildren batch.
type ChildOutcome struct {
	Identifier string            `json:"identifier"`
	ChildID    string            `json:"child_id,omitempty"`
	Error      *apperrors.Notice `json:"error,omitempty"`
}

// ChildrenResult keeps committed children even when later entries fail.
type ChildrenResult struct {
	ParentID string         `json:"parent_id"`
	Created  int            `json:"created"`
	Failed   int            `json:"failed"`
	Outcomes []ChildOutcome `json:"outcomes"`
}

func (r *ChildrenResult) Notices() []apperrors.Notice {
	var out []apperrors.Notice
	for _, o := range r.Outcomes {
		if o.Error != nil {
			out = append(out, *o.Error)
		}
	}
	return out
}
