package models

import "github.com/smazurov/dsrnode/internal/processtypes"

// Health check models
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Service status"`
	Message string `json:"message" example:"API is healthy" doc:"Status message"`
}

type HealthResponse struct {
	Body HealthData
}

// Version models
type VersionData struct {
	Version   string `json:"version" example:"1.2.0" doc:"Application version"`
	GitCommit string `json:"git_commit" example:"a1b2c3d" doc:"Git commit hash"`
	BuildDate string `json:"build_date" example:"2026-01-02T15:04:05Z" doc:"Build timestamp"`
	BuildID   string `json:"build_id" example:"42" doc:"Build identifier"`
	GoVersion string `json:"go_version" example:"go1.24.11" doc:"Go toolchain version"`
	Compiler  string `json:"compiler" example:"gc" doc:"Go compiler"`
	Platform  string `json:"platform" example:"linux/arm64" doc:"Target OS and architecture"`
}

type VersionResponse struct {
	Body VersionData
}

// Process type models. Field names keep the PascalCase wire format existing
// clients depend on.
type ProcessType struct {
	Code        string `json:"Code" example:"A" doc:"Process type code"`
	Description string `json:"Description" example:"Add" doc:"Human-readable label"`
}

type ProcessTypesData struct {
	ProcessTypes []ProcessType `json:"ProcessTypes" doc:"All process types in table order"`
}

type ProcessTypesResponse struct {
	Body ProcessTypesData
}

// FromEntries projects process type entries onto the wire model, keeping order.
func FromEntries(entries []processtypes.Entry) ProcessTypesData {
	data := ProcessTypesData{ProcessTypes: make([]ProcessType, len(entries))}
	for i, e := range entries {
		data.ProcessTypes[i] = ProcessType{Code: e.Code, Description: e.Description}
	}
	return data
}
