package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/dsrnode/internal/api/models"
	"github.com/smazurov/dsrnode/internal/processtypes"
)

// ProcessTypesPath is the canonical route for the process type lookup.
const ProcessTypesPath = "/api/DsrTry/getProcessTypes"

// processTypesAliasPath serves clients that lowercase the controller segment.
const processTypesAliasPath = "/api/dsrtry/getProcessTypes"

// ProcessTypeLister is the read side of processtypes.Provider.
type ProcessTypeLister interface {
	List() []processtypes.Entry
}

func (s *Server) registerProcessTypeRoutes() {
	handler := func(_ context.Context, _ *struct{}) (*models.ProcessTypesResponse, error) {
		return &models.ProcessTypesResponse{
			Body: models.FromEntries(s.processTypes.List()),
		}, nil
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "get-process-types",
		Method:      http.MethodGet,
		Path:        ProcessTypesPath,
		Summary:     "Get Process Types",
		Description: "List every process type code with its description",
		Tags:        []string{"reference-data"},
	}, handler)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-process-types-lowercase",
		Method:      http.MethodGet,
		Path:        processTypesAliasPath,
		Hidden:      true,
	}, handler)
}
