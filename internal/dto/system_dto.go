package dto

type HealthResponse struct {
	AppName  string `json:"app_name"`
	Status   string `json:"status"`
	Database string `json:"database"`
}

type SchemaResponse struct {
	Collections []string `json:"collections"`
	Schema      string   `json:"schema"`
}

type GetSystemLogsRequest struct {
	Level  string `query:"level" validate:"omitempty,oneof=debug info warn error"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}
