package controllers

import (
	"net/http"

	"github.com/rs/zerolog"

	"fooddelivery/utils"
)

func Health(w http.ResponseWriter, r *http.Request) {
	if err := svc.Health.Ping(r.Context()); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("health check failed")
		utils.SendJSONResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unavailable",
			"database": "down",
		})
		return
	}
	utils.SendJSONResponse(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "up",
	})
}
