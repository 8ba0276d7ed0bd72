package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"facility-booking-backend/services"
	"facility-booking-backend/utils"
	"facility-booking-backend/validations"
)

type MemberProductController struct {
	PassSvc *services.PassService
}

func NewMemberProductController(svc *services.PassService) *MemberProductController {
	return &MemberProductController{PassSvc: svc}
}

// GET /api/member-products?memberId=
func (pc *MemberProductController) GetMemberProducts(c *gin.Context) {
	var q validations.ListMemberProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}
	passes, err := pc.PassSvc.ListByMember(c.Request.Context(), q.MemberID)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, passes)
}

func (pc *MemberProductController) GetMemberProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	pass, err := pc.PassSvc.Get(c.Request.Context(), id)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, pass)
}

// PUT /api/member-products/:id/extend
func (pc *MemberProductController) ExtendMemberProduct(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req validations.ExtendMemberProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, bindError(err))
		return
	}
	pass, err := pc.PassSvc.Extend(c.Request.Context(), id, req.AddCount, req.ExtendDays)
	if err != nil {
		utils.JSONError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, pass)
}
