package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fixmarket/marketplace-system/internal/core/domain"
	"github.com/fixmarket/marketplace-system/internal/core/ports"
)

// UserHandler handles public profiles, profile updates, and ratings.
type UserHandler struct {
	ratings ports.RatingService
	users   ports.UserRepository
}

func NewUserHandler(ratings ports.RatingService, users ports.UserRepository) *UserHandler {
	return &UserHandler{ratings: ratings, users: users}
}

type submitRatingRequest struct {
	Stars   int    `json:"stars"   validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
	JobID   string `json:"job_id"  validate:"required"`
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Phone       string `json:"phone"`
	City        string `json:"city"`
	PhotoURL    string `json:"photo_url"`
}

type ratingAggregateResponse struct {
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

type profileResponse struct {
	ID          string                  `json:"id"`
	DisplayName string                  `json:"display_name"`
	Role        string                  `json:"role"`
	City        string                  `json:"city,omitempty"`
	PhotoURL    string                  `json:"photo_url,omitempty"`
	Rating      ratingAggregateResponse `json:"rating"`
	MemberSince time.Time               `json:"member_since"`
}

func toProfileResponse(u *domain.User) profileResponse {
	return profileResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		City:        u.City,
		PhotoURL:    u.PhotoURL,
		Rating: ratingAggregateResponse{
			Mean:  u.Rating.Mean(),
			Count: u.Rating.Count,
		},
		MemberSince: u.CreatedAt.UTC(),
	}
}

// Profile handles GET /v1/users/:id: the public view of any account.
//
// @Summary      Get a user profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := h.ratings.Profile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(user))
}

// UpdateProfile handles PUT /v1/users/me.
//
// @Summary      Update my profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /v1/users/me [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if err := h.users.UpdateProfile(ctx, userID, req.DisplayName, req.Phone, req.City, req.PhotoURL); err != nil {
		return err
	}

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(user))
}

// SubmitRating handles POST /v1/users/:id/ratings.
//
// @Summary      Rate a user for a completed job
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Target user id"
// @Param        body  body      submitRatingRequest  true  "Rating; one per (rater, job)"
// @Success      201   {object}  ratingAggregateResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/users/{id}/ratings [post]
func (h *UserHandler) SubmitRating(c echo.Context) error {
	var req submitRatingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	raterID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	aggregate, err := h.ratings.Submit(c.Request().Context(), ports.SubmitRatingInput{
		TargetUserID: c.Param("id"),
		RaterUserID:  raterID,
		Stars:        req.Stars,
		Comment:      req.Comment,
		JobID:        req.JobID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, ratingAggregateResponse{
		Mean:  aggregate.Mean(),
		Count: aggregate.Count,
	})
}
