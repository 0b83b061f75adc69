package api

import (
	"github.com/halvard/ansuz/internal/imageservice"
)

// UploadResponse is the result of a single upload (aliased from the
// domain layer).
type UploadResponse = imageservice.UploadResult

// BatchResponse aggregates a batch run (aliased from the domain layer).
type BatchResponse = imageservice.BatchResult

// UploadLocalRequest is the request body for uploading a vault-local
// image already referenced by a note.
type UploadLocalRequest struct {
	Note   string `json:"note" example:"topics/cats.md" validate:"required"`
	Target string `json:"target" example:"attachments/cat.png" validate:"required"`
	Mode   string `json:"mode,omitempty" example:"template"`
}

// BatchRequest is the request body for a batch upload run.
type BatchRequest struct {
	Note string `json:"note" example:"topics/cats.md" validate:"required"`
	Mode string `json:"mode,omitempty" example:"ai"`
}

// CheckResponse reports a connectivity probe.
type CheckResponse struct {
	OK      bool   `json:"ok" validate:"required"`
	Message string `json:"message" example:"WebDAV connection successful"`
}

// Settings is the redacted configuration exposed by GET /api/settings.
// Credentials never appear here.
type Settings struct {
	WebDAVURL       string `json:"webdavUrl"`
	WebDAVPath      string `json:"webdavPath"`
	PublicPrefix    string `json:"publicPrefix"`
	RenameMode      string `json:"renameMode"`
	BatchRenameMode string `json:"batchRenameMode"`
	Template        string `json:"template"`
	AIEndpoint      string `json:"aiEndpoint"`
	AIModel         string `json:"aiModel"`
	AIConfigured    bool   `json:"aiConfigured"`
	Language        string `json:"language"`
}
