package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type locationRequest struct {
	Address string `json:"address"  validate:"required"`
	City    string `json:"city"     validate:"required"`
	ZipCode string `json:"zip_code" validate:"required"`
}

type createJobRequest struct {
	Service      string          `json:"service"       validate:"required"`
	Details      string          `json:"details"`
	Location     locationRequest `json:"location"      validate:"required"`
	PhotoURLs    []string        `json:"photo_urls"    validate:"max=5"`
	Mode         string          `json:"mode"          validate:"required,oneof=urgent scheduled"`
	ScheduledFor *time.Time      `json:"scheduled_for"`
}

type submitProposalRequest struct {
	Offer   float64 `json:"offer"   validate:"required,gt=0"`
	Arrival string  `json:"arrival" validate:"required"`
	Note    string  `json:"note"`
}

type cancelJobRequest struct {
	Reason string `json:"reason"`
}

// Response-only types owned by the transport layer.
// These are intentionally separate from ports/domain types so the JSON
// contract is not coupled to internal service changes.

type locationResponse struct {
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zip_code"`
}

type userSummaryResponse struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	City        string  `json:"city,omitempty"`
	PhotoURL    string  `json:"photo_url,omitempty"`
	RatingMean  float64 `json:"rating_mean"`
	RatingCount int     `json:"rating_count"`
}

type proposalResponse struct {
	ID           string               `json:"id"`
	Professional *userSummaryResponse `json:"professional,omitempty"`
	Offer        float64              `json:"offer"`
	Arrival      string               `json:"arrival"`
	Note         string               `json:"note,omitempty"`
	Status       string               `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
}

type jobLinks struct {
	Self      string `json:"self"`
	Proposals string `json:"proposals"`
}

type jobDetailResponse struct {
	ID           string               `json:"id"`
	Reference    string               `json:"reference"`
	Client       *userSummaryResponse `json:"client,omitempty"`
	Service      string               `json:"service"`
	Details      string               `json:"details,omitempty"`
	Location     locationResponse     `json:"location"`
	PhotoURLs    []string             `json:"photo_urls,omitempty"`
	Mode         string               `json:"mode"`
	ScheduledFor *time.Time           `json:"scheduled_for,omitempty"`
	Status       string               `json:"status"`
	CancelReason string               `json:"cancel_reason,omitempty"`
	Expired      bool                 `json:"expired"`
	Proposals    []proposalResponse   `json:"proposals"`
	CreatedAt    time.Time            `json:"created_at"`
	ExpiresAt    *time.Time           `json:"expires_at,omitempty"`
	Links        jobLinks             `json:"_links"`
}

// jobSummaryResponse is the lightweight item used in list responses. It
// carries the proposal count instead of the proposals themselves.
type jobSummaryResponse struct {
	ID            string           `json:"id"`
	Reference     string           `json:"reference"`
	Service       string           `json:"service"`
	Location      locationResponse `json:"location"`
	Mode          string           `json:"mode"`
	ScheduledFor  *time.Time       `json:"scheduled_for,omitempty"`
	Status        string           `json:"status"`
	Expired       bool             `json:"expired"`
	ProposalCount int              `json:"proposal_count"`
	CreatedAt     time.Time        `json:"created_at"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	Links         jobLinks         `json:"_links"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type jobListResponse struct {
	Data       []jobSummaryResponse `json:"data"`
	Pagination paginationResponse   `json:"pagination"`
}
