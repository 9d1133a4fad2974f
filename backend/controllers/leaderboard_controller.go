package controllers

import (
	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type LeaderboardController struct {
	Leaderboard *services.LeaderboardService
}

func NewLeaderboardController(leaderboard *services.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{Leaderboard: leaderboard}
}

// GetLeaderboard godoc
// @Summary Quiz leaderboard
// @Description Users ranked by the sum of all their attempt scores
// @Tags leaderboard
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Security ApiKeyAuth
// @Router /leaderboard [get]
func (lc *LeaderboardController) GetLeaderboard(c *fiber.Ctx) error {
	entries, err := lc.Leaderboard.Get(c.UserContext())
	if err != nil {
		return err
	}
	return utils.OK(c, entries)
}
