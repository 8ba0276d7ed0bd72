package validations

type ListMemberProductsQuery struct {
	MemberID uint `form:"memberId" binding:"required,gt=0"`
}

type ExtendMemberProductRequest struct {
	AddCount   int `json:"addCount" binding:"min=0"`
	ExtendDays int `json:"extendDays" binding:"min=0"`
}

type ListFacilitiesQuery struct {
	Branch string `form:"branch"`
	Type   string `form:"type"`
}
