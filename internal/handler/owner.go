package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ratemate/ratemate/internal/repository"
)

// OwnerHandler serves the store-owner dashboard.
type OwnerHandler struct {
	Stores  *repository.StoreRepo
	Ratings *repository.RatingRepo
}

func NewOwnerHandler(s *repository.StoreRepo, r *repository.RatingRepo) *OwnerHandler {
	return &OwnerHandler{Stores: s, Ratings: r}
}

type dashboardStore struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
type dashboardRater struct {
	UserID    uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
type dashboardEntry struct {
	Store        dashboardStore   `json:"store"`
	AvgRating    float64          `json:"avg_rating"`
	TotalRatings uint64           `json:"total_ratings"`
	Raters       []dashboardRater `json:"ratings"`
}

// Dashboard handles GET /api/store/dashboard: every store owned by the
// caller with its rating aggregate and the list of users who rated it.
func (h *OwnerHandler) Dashboard(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stores, err := h.Stores.ListByOwner(ctx, uid)
	if err != nil {
		c.Logger().Errorf("owner dashboard: list stores: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if len(stores) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No store found for this owner"})
	}

	out := make([]dashboardEntry, 0, len(stores))
	for _, s := range stores {
		avg, total, err := h.Ratings.AvgForStore(ctx, s.ID)
		if err != nil {
			c.Logger().Errorf("owner dashboard: rating aggregate: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
		}
		raters, err := h.Ratings.ListForStore(ctx, s.ID)
		if err != nil {
			c.Logger().Errorf("owner dashboard: list raters: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
		}
		entry := dashboardEntry{
			Store:        dashboardStore{ID: s.ID, Name: s.Name},
			AvgRating:    avg,
			TotalRatings: total,
			Raters:       make([]dashboardRater, 0, len(raters)),
		}
		for _, r := range raters {
			entry.Raters = append(entry.Raters, dashboardRater{
				UserID:    r.UserID,
				Name:      r.UserName,
				Email:     r.UserEmail,
				Rating:    r.Rating,
				CreatedAt: r.CreatedAt,
				UpdatedAt: r.UpdatedAt,
			})
		}
		out = append(out, entry)
	}
	return c.JSON(http.StatusOK, out)
}
