package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/seisview/internal/api/handlers"
	"github.com/RMahshie/seisview/internal/processing"
	"github.com/RMahshie/seisview/internal/repository"
	"github.com/RMahshie/seisview/internal/storage"
	"github.com/RMahshie/seisview/pkg/waveform"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, store storage.Store, loader waveform.FileLoader, batchRepo repository.BatchRepository, batchSvc processing.BatchService) {
	waveformHandler := handlers.NewWaveformHandler(store, loader)
	batchHandler := handlers.NewBatchHandler(batchRepo, batchSvc)

	// File and waveform routes
	huma.Register(api, huma.Operation{
		OperationID: "createUploadURL",
		Method:      http.MethodPost,
		Path:        "/api/files/upload-url",
		Summary:     "Create an upload URL",
		Description: "Returns a pre-signed URL for uploading a COSMOS file",
		Tags:        []string{"Files"},
	}, waveformHandler.CreateUploadURL)

	huma.Register(api, huma.Operation{
		OperationID: "inspectFile",
		Method:      http.MethodPost,
		Path:        "/api/files/inspect",
		Summary:     "Inspect a file",
		Description: "Parses a stored file and returns its record metadata",
		Tags:        []string{"Files"},
	}, waveformHandler.InspectFile)

	huma.Register(api, huma.Operation{
		OperationID: "resolveWindow",
		Method:      http.MethodPost,
		Path:        "/api/window",
		Summary:     "Resolve a common window",
		Description: "Returns the earliest start, latest stop and finest sample interval across files",
		Tags:        []string{"Waveforms"},
	}, waveformHandler.ResolveWindow)

	huma.Register(api, huma.Operation{
		OperationID: "alignRecords",
		Method:      http.MethodPost,
		Path:        "/api/align",
		Summary:     "Align records",
		Description: "Aligns a file's records to a time window, padded or unpadded",
		Tags:        []string{"Waveforms"},
	}, waveformHandler.AlignRecords)

	huma.Register(api, huma.Operation{
		OperationID: "computeSpectrum",
		Method:      http.MethodPost,
		Path:        "/api/spectrum",
		Summary:     "Compute spectra",
		Description: "Returns FFT magnitude spectra of a file's records",
		Tags:        []string{"Waveforms"},
	}, waveformHandler.ComputeSpectrum)

	// Batch routes
	huma.Register(api, huma.Operation{
		OperationID:   "createBatch",
		Method:        http.MethodPost,
		Path:          "/api/batches",
		Summary:       "Start a batch",
		Description:   "Groups files by station and charts them on the background worker",
		Tags:          []string{"Batches"},
		DefaultStatus: http.StatusAccepted,
	}, batchHandler.CreateBatch)

	huma.Register(api, huma.Operation{
		OperationID: "getBatchStatus",
		Method:      http.MethodGet,
		Path:        "/api/batches/{id}/status",
		Summary:     "Get batch status",
		Description: "Returns the current status and progress of a batch",
		Tags:        []string{"Batches"},
	}, batchHandler.GetBatchStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getBatchResults",
		Method:      http.MethodGet,
		Path:        "/api/batches/{id}/results",
		Summary:     "Get batch results",
		Description: "Returns the chart groups produced so far",
		Tags:        []string{"Batches"},
	}, batchHandler.GetBatchResults)

	huma.Register(api, huma.Operation{
		OperationID: "cancelBatch",
		Method:      http.MethodPost,
		Path:        "/api/batches/{id}/cancel",
		Summary:     "Cancel a batch",
		Description: "Stops the running batch, keeping the groups finished so far",
		Tags:        []string{"Batches"},
	}, batchHandler.CancelBatch)
}
