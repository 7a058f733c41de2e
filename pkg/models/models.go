package models

import (
	"time"
)

// Batch statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateUploadURLRequestBody is the body of an upload URL request
type CreateUploadURLRequestBody struct {
	FileName    string `json:"file_name" minLength:"4" maxLength:"200" required:"true" doc:"COSMOS file name, e.g. CI.PASC.HNZ.V2"`
	ContentType string `json:"content_type" enum:"text/plain,application/octet-stream,application/x-cosmos" required:"true" doc:"Upload content type"`
}

// CreateUploadURLRequest represents a request for a pre-signed upload URL
type CreateUploadURLRequest struct {
	Body CreateUploadURLRequestBody
}

// CreateUploadURLResponseBody is the body of the upload URL response
type CreateUploadURLResponseBody struct {
	Key       string   `json:"key" doc:"Storage key to reference the file by"`
	FileType  FileType `json:"file_type" doc:"File type inferred from the name"`
	UploadURL string   `json:"upload_url" doc:"Pre-signed URL for file upload"`
	ExpiresIn int      `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateUploadURLResponse represents the response from creating an upload URL
type CreateUploadURLResponse struct {
	Body CreateUploadURLResponseBody
}

// InspectFileRequest asks for the record metadata of a stored file
type InspectFileRequest struct {
	Body struct {
		Path string `json:"path" minLength:"1" required:"true" doc:"Storage key of the file"`
	}
}

// RecordSummary describes a record without its samples
type RecordSummary struct {
	Channel  string    `json:"channel"`
	Station  string    `json:"station"`
	Network  string    `json:"network"`
	Quantity Quantity  `json:"quantity"`
	Units    int       `json:"units"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	DeltaT   float64   `json:"delta_t"`
	Samples  int       `json:"samples"`
}

// InspectFileResponseBody is the body of the inspect response
type InspectFileResponseBody struct {
	Path    string          `json:"path"`
	Type    FileType        `json:"type"`
	Station string          `json:"station"`
	Network string          `json:"network"`
	Records []RecordSummary `json:"records"`
}

// InspectFileResponse represents the parsed file metadata
type InspectFileResponse struct {
	Body InspectFileResponseBody
}

// ResolveWindowRequest asks for the common window of several files
type ResolveWindowRequest struct {
	Body struct {
		Paths []string `json:"paths" minItems:"1" maxItems:"500" required:"true" doc:"Storage keys of the files to compare"`
	}
}

// ResolveWindowResponse represents the resolved window
type ResolveWindowResponse struct {
	Body Window
}

// AlignRequestBody is the body of an alignment request
type AlignRequestBody struct {
	Path    string    `json:"path" minLength:"1" required:"true" doc:"Storage key of the file"`
	Channel string    `json:"channel,omitempty" doc:"Only align this channel"`
	Start   time.Time `json:"start" required:"true" doc:"Window start"`
	Stop    time.Time `json:"stop" required:"true" doc:"Window stop"`
	Padded  bool      `json:"padded" doc:"Hold edge values to fill the whole window"`
}

// AlignRequest represents a request to align a file's records to a window
type AlignRequest struct {
	Body AlignRequestBody
}

// SeriesResponse returns computed series
type SeriesResponse struct {
	Body struct {
		Series []Series `json:"series"`
	}
}

// SpectrumRequestBody is the body of a spectrum request
type SpectrumRequestBody struct {
	Path    string `json:"path" minLength:"1" required:"true" doc:"Storage key of the file"`
	Channel string `json:"channel,omitempty" doc:"Only transform this channel"`
	Full    bool   `json:"full" doc:"Return every bin instead of 1..Nyquist"`
}

// SpectrumRequest represents a request for magnitude spectra
type SpectrumRequest struct {
	Body SpectrumRequestBody
}

// CreateBatchRequestBody is the body of a batch request
type CreateBatchRequestBody struct {
	Paths   []string `json:"paths" minItems:"1" maxItems:"2000" required:"true" doc:"Storage keys of the files to chart"`
	Padded  bool     `json:"padded" doc:"Pad every series to the station window"`
	Spectra bool     `json:"spectra" doc:"Also derive magnitude spectra"`
}

// CreateBatchRequest represents a request to start batch chart generation
type CreateBatchRequest struct {
	Body CreateBatchRequestBody
}

// CreateBatchResponse represents the created batch
type CreateBatchResponse struct {
	Body struct {
		ID     string `json:"id" doc:"Batch identifier"`
		Status string `json:"status" doc:"Batch status"`
	}
}

// BatchIDRequest addresses a batch by ID
type BatchIDRequest struct {
	ID string `path:"id" doc:"Batch ID"`
}

// GetBatchStatusResponseBody is the body of the status response
type GetBatchStatusResponseBody struct {
	ID       string `json:"id" doc:"Batch ID"`
	Status   string `json:"status" enum:"pending,processing,completed,failed,cancelled" doc:"Batch status"`
	Progress int    `json:"progress" minimum:"0" maximum:"100" doc:"Progress percentage"`
	Message  string `json:"message,omitempty" doc:"Human-readable status message"`
	Error    string `json:"error,omitempty" doc:"Failure reason"`
}

// GetBatchStatusResponse represents the current status of a batch
type GetBatchStatusResponse struct {
	Body GetBatchStatusResponseBody
}

// GetBatchResultsResponse returns the chart groups of a batch
type GetBatchResultsResponse struct {
	Body struct {
		ID     string       `json:"id" doc:"Batch ID"`
		Status string       `json:"status" doc:"Batch status"`
		Groups []ChartGroup `json:"groups" doc:"One chart group per station"`
	}
}

// MessageResponse carries a confirmation message
type MessageResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// Batch represents a batch chart generation job (for internal use)
type Batch struct {
	ID          string     `json:"id"`
	Paths       []string   `json:"paths"`
	Padded      bool       `json:"padded"`
	Spectra     bool       `json:"spectra"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	ErrorMsg    *string    `json:"error_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
