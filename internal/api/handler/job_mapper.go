package handler

import (
	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// --- Request → Service input ---

func toCreateJobInput(req createJobRequest, clientID string) ports.CreateJobInput {
	return ports.CreateJobInput{
		ClientID: clientID,
		Service:  req.Service,
		Details:  req.Details,
		Location: ports.LocationInput{
			Address: req.Location.Address,
			City:    req.Location.City,
			ZipCode: req.Location.ZipCode,
		},
		PhotoURLs:    req.PhotoURLs,
		Mode:         req.Mode,
		ScheduledFor: req.ScheduledFor,
	}
}

// --- Service result → HTTP response ---

func toUserSummaryResponse(u *ports.UserSummary) *userSummaryResponse {
	if u == nil {
		return nil
	}
	return &userSummaryResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		City:        u.City,
		PhotoURL:    u.PhotoURL,
		RatingMean:  u.RatingMean,
		RatingCount: u.RatingCount,
	}
}

func toProposalResponse(v ports.ProposalView) proposalResponse {
	return proposalResponse{
		ID:           v.Proposal.ID,
		Professional: toUserSummaryResponse(v.Professional),
		Offer:        v.Proposal.Offer,
		Arrival:      v.Proposal.Arrival,
		Note:         v.Proposal.Note,
		Status:       string(v.Proposal.Status),
		CreatedAt:    v.Proposal.CreatedAt.UTC(),
	}
}

func toLocationResponse(l domain.Location) locationResponse {
	return locationResponse{
		Address: l.Address,
		City:    l.City,
		ZipCode: l.ZipCode,
	}
}

func jobLinksFor(id string) jobLinks {
	return jobLinks{
		Self:      "/v1/jobs/" + id,
		Proposals: "/v1/jobs/" + id + "/proposals",
	}
}

func toJobDetailResponse(d *ports.JobDetail) jobDetailResponse {
	proposals := make([]proposalResponse, len(d.Proposals))
	for i, p := range d.Proposals {
		proposals[i] = toProposalResponse(p)
	}
	j := d.Job
	return jobDetailResponse{
		ID:           j.ID,
		Reference:    j.Reference,
		Client:       toUserSummaryResponse(d.Client),
		Service:      j.Service,
		Details:      j.Details,
		Location:     toLocationResponse(j.Location),
		PhotoURLs:    j.PhotoURLs,
		Mode:         string(j.Mode),
		ScheduledFor: j.ScheduledFor,
		Status:       string(j.Status),
		CancelReason: j.CancelReason,
		Expired:      d.Expired,
		Proposals:    proposals,
		CreatedAt:    j.CreatedAt.UTC(),
		ExpiresAt:    j.ExpiresAt,
		Links:        jobLinksFor(j.ID),
	}
}

func toJobSummaryResponse(s ports.JobSummary) jobSummaryResponse {
	j := s.Job
	return jobSummaryResponse{
		ID:            j.ID,
		Reference:     j.Reference,
		Service:       j.Service,
		Location:      toLocationResponse(j.Location),
		Mode:          string(j.Mode),
		ScheduledFor:  j.ScheduledFor,
		Status:        string(j.Status),
		Expired:       s.Expired,
		ProposalCount: s.ProposalCount,
		CreatedAt:     j.CreatedAt.UTC(),
		ExpiresAt:     j.ExpiresAt,
		Links:         jobLinksFor(j.ID),
	}
}

func toJobListResponse(r *ports.JobListResult) jobListResponse {
	items := make([]jobSummaryResponse, len(r.Items))
	for i, s := range r.Items {
		items[i] = toJobSummaryResponse(s)
	}
	return jobListResponse{
		Data: items,
		Pagination: paginationResponse{
			Total:      r.Total,
			Page:       r.Page,
			Limit:      r.Limit,
			TotalPages: r.TotalPages,
		},
	}
}
