package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fixmarket/marketplace-system/internal/api/metrics"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// JobHandler handles HTTP requests for the job lifecycle.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// Create handles POST /v1/jobs.
//
// @Summary      Post a new job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createJobRequest  true  "Job details"
// @Success      201   {object}  jobDetailResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	var req createJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	clientID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	job, err := h.service.Create(c.Request().Context(), toCreateJobInput(req, clientID))
	if err != nil {
		return err
	}

	metrics.JobsCreatedTotal.WithLabelValues(string(job.Mode)).Inc()

	return c.JSON(http.StatusCreated, toJobDetailResponse(&ports.JobDetail{Job: job}))
}

// Browse handles GET /v1/jobs: the professional-facing listing of open,
// unexpired jobs.
//
// @Summary      Browse open jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        mode    query     string  false  "Filter by scheduling mode (urgent|scheduled)"
// @Param        city    query     string  false  "Filter by city"
// @Param        search  query     string  false  "Partial match on service"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  jobListResponse
// @Failure      401     {object}  errorResponse
// @Router       /v1/jobs [get]
func (h *JobHandler) Browse(c echo.Context) error {
	page, limit := pageParams(c)
	result, err := h.service.Browse(c.Request().Context(), ports.BrowseJobsInput{
		Mode:   c.QueryParam("mode"),
		City:   c.QueryParam("city"),
		Search: c.QueryParam("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobListResponse(result))
}

// ListMine handles GET /v1/jobs/mine: the client's own jobs, expired and
// closed ones included.
//
// @Summary      List my jobs
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  jobListResponse
// @Failure      401    {object}  errorResponse
// @Router       /v1/jobs/mine [get]
func (h *JobHandler) ListMine(c echo.Context) error {
	clientID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page, limit := pageParams(c)
	result, err := h.service.ListMine(c.Request().Context(), ports.ListMineInput{
		ClientID: clientID,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobListResponse(result))
}

// Get handles GET /v1/jobs/:id.
//
// @Summary      Get a job
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Job id"
// @Success      200  {object}  jobDetailResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	actorID, role, err := ctxClaims(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Get(c.Request().Context(), ports.GetJobInput{
		JobID:   c.Param("id"),
		ActorID: actorID,
		Role:    role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toJobDetailResponse(detail))
}

// SubmitProposal handles POST /v1/jobs/:id/proposals.
//
// @Summary      Submit a proposal on an open job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Job id"
// @Param        body  body      submitProposalRequest  true  "Proposal"
// @Success      201   {object}  proposalResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/jobs/{id}/proposals [post]
func (h *JobHandler) SubmitProposal(c echo.Context) error {
	var req submitProposalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	professionalID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	proposal, err := h.service.SubmitProposal(c.Request().Context(), ports.SubmitProposalInput{
		JobID:          c.Param("id"),
		ProfessionalID: professionalID,
		Offer:          req.Offer,
		Arrival:        req.Arrival,
		Note:           req.Note,
	})
	if err != nil {
		return err
	}

	metrics.ProposalsSubmittedTotal.Inc()

	return c.JSON(http.StatusCreated, toProposalResponse(ports.ProposalView{Proposal: *proposal}))
}

// AcceptProposal handles POST /v1/jobs/:id/proposals/:pid/accept.
//
// @Summary      Accept a proposal
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "Job id"
// @Param        pid  path  string  true  "Proposal id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/jobs/{id}/proposals/{pid}/accept [post]
func (h *JobHandler) AcceptProposal(c echo.Context) error {
	clientID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	err = h.service.AcceptProposal(c.Request().Context(), ports.AcceptProposalInput{
		JobID:      c.Param("id"),
		ProposalID: c.Param("pid"),
		ClientID:   clientID,
	})
	if err != nil {
		return err
	}

	metrics.ProposalsAcceptedTotal.Inc()

	return c.JSON(http.StatusOK, map[string]string{"status": "in_progress"})
}

// Complete handles POST /v1/jobs/:id/complete.
//
// @Summary      Mark a job completed
// @Tags         jobs
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Job id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/jobs/{id}/complete [post]
func (h *JobHandler) Complete(c echo.Context) error {
	professionalID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	err = h.service.MarkCompleted(c.Request().Context(), ports.CompleteJobInput{
		JobID:          c.Param("id"),
		ProfessionalID: professionalID,
	})
	if err != nil {
		return err
	}

	metrics.JobsClosedTotal.WithLabelValues("completed").Inc()

	return c.JSON(http.StatusOK, map[string]string{"status": "completed"})
}

// Cancel handles POST /v1/jobs/:id/cancel.
//
// @Summary      Cancel a job
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string            true   "Job id"
// @Param        body  body  cancelJobRequest  false  "Cancellation reason (mandatory once in progress)"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/jobs/{id}/cancel [post]
func (h *JobHandler) Cancel(c echo.Context) error {
	var req cancelJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	actorID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	err = h.service.Cancel(c.Request().Context(), ports.CancelJobInput{
		JobID:   c.Param("id"),
		ActorID: actorID,
		Reason:  req.Reason,
	})
	if err != nil {
		return err
	}

	metrics.JobsClosedTotal.WithLabelValues("cancelled").Inc()

	return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}
