package user

import "bookstore/model"

type UpdateMeReq struct {
	FirstName *string `json:"first_name" validate:"omitempty,max=50"`
	LastName  *string `json:"last_name" validate:"omitempty,max=50"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

func (r UpdateMeReq) Patch() model.UserPatch {
	return model.UserPatch{FirstName: r.FirstName, LastName: r.LastName, Email: r.Email}
}

type AdminUpdateReq struct {
	UpdateMeReq
	Role *string `json:"role" validate:"omitempty,oneof=user admin"`
}

func (r AdminUpdateReq) Patch() model.UserPatch {
	p := r.UpdateMeReq.Patch()
	if r.Role != nil {
		role := model.Role(*r.Role)
		p.Role = &role
	}
	return p
}
