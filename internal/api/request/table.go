package request

type CreateTable struct {
	Number int     `json:"number" validate:"required,min=1,max=999"`
	Name   *string `json:"name" validate:"omitempty,max=50"`
	Seats  int     `json:"seats" validate:"required,min=1,max=50"`
	Status string  `json:"status" validate:"omitempty,oneof=free occupied reserved"`
}

type UpdateTable struct {
	Number *int    `json:"number" validate:"omitempty,min=1,max=999"`
	Name   *string `json:"name" validate:"omitempty,max=50"`
	Seats  *int    `json:"seats" validate:"omitempty,min=1,max=50"`
	Status *string `json:"status" validate:"omitempty,oneof=free occupied reserved"`
}

type SetTableStatus struct {
	Status string `json:"status" validate:"required,oneof=free occupied reserved"`
}
