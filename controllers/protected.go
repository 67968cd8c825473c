package controllers

import (
	"net/http"

	"competition-scheduler/utils"
)

type Controller struct {
}

func (c Controller) ProtectedEndpoint() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseJSON(w, "YES")
	}
}
