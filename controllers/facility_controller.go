package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facility-booking-backend/services"
	"facility-booking-backend/utils"
	"facility-booking-backend/validations"
)

type FacilityController struct {
	FacilitySvc *services.FacilityService
}

func NewFacilityController(svc *services.FacilityService) *FacilityController {
	return &FacilityController{FacilitySvc: svc}
}

func (fc *FacilityController) GetFacilities(c *gin.Context) {
	var q validations.ListFacilitiesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}
	facilities, err := fc.FacilitySvc.List(c.Request.Context(), q.Branch, q.Type)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, facilities)
}

func (fc *FacilityController) GetFacility(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	facility, err := fc.FacilitySvc.Get(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, facility)
}

func (fc *FacilityController) GetBranches(c *gin.Context) {
	branches, err := fc.FacilitySvc.ListBranches(c.Request.Context())
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, branches)
}
