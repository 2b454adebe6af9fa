package dto

type CreateAdministratorDTO struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3"`
	Role     string `json:"role" validate:"required,admin_role"`
	Password string `json:"password" validate:"required,min=6"`
}

type UpdateAdministratorDTO struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=3"`
	Role     *string `json:"role,omitempty" validate:"omitempty,admin_role"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type AdministratorDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}
