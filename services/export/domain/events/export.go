package events

import "github.com/google/uuid"

// TopicGenerateExport carries one generation task per export.
const TopicGenerateExport = "exports.generate"

// GenerateExportTask asks a worker to build the file for an export.
type GenerateExportTask struct {
	ExportID uuid.UUID   `json:"export_id"`
	OrderIDs []uuid.UUID `json:"order_ids"`
}
