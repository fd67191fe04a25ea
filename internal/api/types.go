package api

import (
	"github.com/leapstack-labs/leapgrid/internal/dataset"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// MaterializeRequest is the body of a materialize call. Tables reuse the
// dataset file shape so files and wire requests stay interchangeable.
type MaterializeRequest struct {
	Tables []dataset.Table `json:"tables"`
}

// StatementRequest carries one SQL statement.
type StatementRequest struct {
	SQL string `json:"sql"`
}

// MaterializeResponse reports the outcome of a materialize call.
type MaterializeResponse struct {
	DatabaseID int64         `json:"databaseId"`
	Tables     []TableResult `json:"tables"`
	Skipped    []string      `json:"skipped,omitempty"`
}

// TableResult is the per-table slice of a MaterializeResponse.
type TableResult struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
	Error string `json:"error,omitempty"`
}

// TablesResponse lists the live table names of one database.
type TablesResponse struct {
	Tables []string `json:"tables"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newMaterializeResponse(report core.MaterializeReport) MaterializeResponse {
	resp := MaterializeResponse{
		DatabaseID: report.DatabaseID,
		Tables:     make([]TableResult, 0, len(report.Tables)),
		Skipped:    report.Skipped,
	}
	for _, t := range report.Tables {
		result := TableResult{Table: t.Table, Rows: t.Rows}
		if t.Err != nil {
			result.Error = t.Err.Error()
		}
		resp.Tables = append(resp.Tables, result)
	}
	return resp
}
