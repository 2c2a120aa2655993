package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/clientbook-api/internal/application/service"
	"github.com/sangkips/clientbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sangkips/clientbook-api/pkg/tabular"
)

// MaxImportFileSize caps an uploaded import file.
const MaxImportFileSize = 10 << 20

// TransferHandler handles bulk client import and export
type TransferHandler struct {
	transferService *service.ClientTransferService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(transferService *service.ClientTransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Import reads a CSV or XLSX upload and imports its rows
func (h *TransferHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImportFileSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A file is required")
		return
	}

	name := fileHeader.Filename
	if f := c.PostForm("format"); f != "" {
		name = f
	}
	format, err := tabular.ParseFormat(name)
	if err != nil {
		response.BadRequest(c, "File must be CSV or XLSX")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Could not open uploaded file")
		return
	}
	defer file.Close()

	records, err := tabular.Read(file, format)
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("Could not read file: %v", err))
		return
	}
	if len(records) == 0 {
		response.BadRequest(c, "File has no data rows")
		return
	}

	result, err := h.transferService.Import(c.Request.Context(), GetBusinessID(c), service.ImportRowsFromRecords(records), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Import completed", result)
}

// Export streams every active client as CSV or XLSX
func (h *TransferHandler) Export(c *gin.Context) {
	format, err := tabular.ParseFormat(c.DefaultQuery("format", string(tabular.FormatCSV)))
	if err != nil {
		response.BadRequest(c, "Format must be csv or xlsx")
		return
	}

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="clients.%s"`, format))
	c.Status(http.StatusOK)

	w, err := tabular.NewWriter(c.Writer, format, service.ExportHeader)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	written, err := h.transferService.Export(c.Request.Context(), GetBusinessID(c), func(row service.ExportRow) error {
		return w.WriteRow(row.Values())
	})
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// headers are already sent; the client sees a truncated file
		logger.GetLogger("transfer").WithError(err).
			WithField("business_id", GetBusinessID(c)).
			WithField("written", written).
			Error("client export aborted")
		_ = c.Error(err)
	}
}
