package transport

import (
	"github.com/ds124wfegd/WB_L3/composite/internal/service"
)

type CompositeHandler struct {
	service   service.CompositeService
	maxUpload int64
}

// NewCompositeHandler limits a whole upload request to maxUploadMB megabytes.
func NewCompositeHandler(service service.CompositeService, maxUploadMB int64) *CompositeHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	return &CompositeHandler{service: service, maxUpload: maxUploadMB << 20}
}
