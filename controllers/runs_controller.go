package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/paulfarrow/runclubbackend/dto"
	"github.com/paulfarrow/runclubbackend/managers"
)

func GetRuns(runs *managers.Runs) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, runs.ListRuns())
	}
}

// AddRun expects RequireUser to have set userID/firstName/lastName.
func AddRun(runs *managers.Runs) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.AddRunDTO
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Location and distance are required"})
			return
		}

		result, err := runs.AddRun(
			c.GetString("userID"),
			c.GetString("firstName"),
			c.GetString("lastName"),
			body.Location,
			float64(body.Distance),
		)
		if err != nil {
			if errors.Is(err, managers.ErrPersistence) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save run"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":    true,
			"totalKm":    result.TotalKm,
			"recentRuns": result.RecentRuns,
			"userStats":  result.UserStats,
			"userId":     result.UserID,
		})
	}
}

func GetUserStats(runs *managers.Runs) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, runs.UserStats(c.Param("userId")))
	}
}

func GetLeaderboard(runs *managers.Runs) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, runs.Leaderboard())
	}
}
