package dto

type RegisterDeviceDTO struct {
	Code string `json:"code" validate:"required"`
}

type SetDeviceStateDTO struct {
	State string `json:"state" validate:"required,device_state"`
}

type DeviceDTO struct {
	Code         string `json:"code"`
	State        string `json:"state"`
	RegisteredAt string `json:"registered_at"`
}

type ShortDeviceDTO struct {
	Code string `json:"code"`
}
