package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/ds124wfegd/WB_L3/composite/internal/entity"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/arranger"
	"github.com/ds124wfegd/WB_L3/composite/internal/pkg/codec"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func (h *CompositeHandler) CreateComposite(c *gin.Context) {
	sources, opts, err := h.readRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.Compose(c.Request.Context(), sources, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	format := codec.PNG
	if result.ContentType == codec.JPEG.ContentType() {
		format = codec.JPEG
	}

	c.Header("X-Composite-Strategy", result.Strategy)
	c.Header("X-Composite-Width", strconv.Itoa(result.Width))
	c.Header("X-Composite-Height", strconv.Itoa(result.Height))
	c.Header("X-Composite-Cache", cacheStatus(result.Cached))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="composite%s"`, format.Extension()))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *CompositeHandler) SubmitComposite(c *gin.Context) {
	sources, opts, err := h.readRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}

	// Генерация ID
	id := uuid.New().String()

	compositeID, err := h.service.Submit(c.Request.Context(), id, sources, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, entity.UploadResponse{
		ID:     compositeID,
		Status: entity.StatusProcessing,
	})
}

func (h *CompositeHandler) AnalyzeComposite(c *gin.Context) {
	sources, opts, err := h.readRequest(c)
	if err != nil {
		respondError(c, err)
		return
	}

	analysis, err := h.service.Analyze(sources, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

func (h *CompositeHandler) GetComposite(c *gin.Context) {
	id := c.Param("id")

	composite, err := h.service.GetComposite(id)
	if err != nil {
		respondError(c, err)
		return
	}

	response := entity.CompositeResponse{
		ID:      composite.ID,
		Status:  composite.Status,
		Sources: composite.Sources,
		Error:   composite.Error,
	}

	if composite.Status == entity.StatusCompleted {
		response.Strategy = composite.Strategy
		response.Width = composite.Width
		response.Height = composite.Height
		response.Score = composite.Score
		response.FileURL = "/api/v1/composites/jobs/" + composite.ID + "/file"
	}

	c.JSON(http.StatusOK, response)
}

func (h *CompositeHandler) DownloadComposite(c *gin.Context) {
	id := c.Param("id")

	reader, format, err := h.service.OpenCompositeFile(id)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="composite-%s%s"`, id, format.Extension()))
	c.DataFromReader(http.StatusOK, -1, format.ContentType(), reader, nil)
}

func (h *CompositeHandler) DeleteComposite(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.DeleteComposite(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Composite deleted successfully"})
}

// readRequest reads the "images" files and the "downscale" and "format" fields of a multipart form.
func (h *CompositeHandler) readRequest(c *gin.Context) ([]entity.SourceImage, entity.ComposeOptions, error) {
	var opts entity.ComposeOptions

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, opts, fmt.Errorf("%w: limit is %d bytes", entity.ErrFileTooLarge, tooLarge.Limit)
		}
		return nil, opts, fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
	}

	if raw := c.PostForm("downscale"); raw != "" {
		factor, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, opts, fmt.Errorf("%w: downscale %q is not a number", entity.ErrInvalidInput, raw)
		}
		opts.DownscaleFactor = &factor
	}
	opts.Format = c.PostForm("format")

	files := form.File["images"]
	if len(files) != arranger.ImageCount {
		return nil, opts, fmt.Errorf("%w: got %d", arranger.ErrInvalidImageCount, len(files))
	}

	sources := make([]entity.SourceImage, 0, len(files))
	for _, file := range files {
		// Проверка типа файла
		if !codec.IsSupportedExtension(filepath.Ext(file.Filename)) {
			return nil, opts, fmt.Errorf("%w: %s", codec.ErrUnsupportedFormat, file.Filename)
		}

		src, err := file.Open()
		if err != nil {
			return nil, opts, err
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return nil, opts, err
		}

		sources = append(sources, entity.SourceImage{Name: file.Filename, Data: data})
	}

	return sources, opts, nil
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, arranger.ErrInvalidImageCount),
		errors.Is(err, arranger.ErrInvalidDownscaleFactor),
		errors.Is(err, arranger.ErrInvalidImage),
		errors.Is(err, entity.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, codec.ErrUnsupportedFormat):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, entity.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrCompositeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrCompositeNotReady):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logrus.WithError(err).Error("Request failed")
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
