package commission

// SettingInput is one row of the admin commission form.
type SettingInput struct {
	CustomerID string  `json:"customer_id" validate:"required,max=50"`
	Method     string  `json:"commission_method" validate:"required"`
	Rate       float64 `json:"commission_rate" validate:"gte=0"`
}

type UpsertSettingsDTO struct {
	Settings []SettingInput `json:"settings" validate:"required,min=1,dive"`
}

// SettingResponse adds the display form of the rate.
type SettingResponse struct {
	Setting
	MethodName  string `json:"method_name"`
	DisplayRate string `json:"display_rate"`
}

func toResponse(s Setting) SettingResponse {
	return SettingResponse{
		Setting:     s,
		MethodName:  s.CommissionMethod.String(),
		DisplayRate: FormatRate(s.CommissionMethod, s.CommissionRate),
	}
}
