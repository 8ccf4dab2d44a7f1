package files

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	"github.com/user/serverkit-go/apperror"
	"github.com/user/serverkit-go/auth"
	"github.com/user/serverkit-go/httpx"
)

const (
	// multipartMemory is how much of a multipart body is kept in memory;
	// the rest is spooled to temporary files by net/http.
	multipartMemory = 8 << 20
	// multipartOverhead allows for boundaries and part headers on top of the file bytes.
	multipartOverhead = 1 << 20
)

// Handlers serves the /files routes.
type Handlers struct {
	service *Service
	gate    func(http.Handler) http.Handler
}

// NewHandlers creates the file handlers. gate guards everything but downloads.
func NewHandlers(service *Service, gate func(http.Handler) http.Handler) *Handlers {
	return &Handlers{service: service, gate: gate}
}

// RegisterRoutes registers the file routes on a router mounted at /files.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/download/{filename}", h.HandleDownload())

	r.Group(func(r chi.Router) {
		r.Use(h.gate)
		r.Post("/upload", h.HandleUpload())
		r.Post("/upload/multiple", h.HandleUploadMultiple())
		r.Get("/", h.HandleList())
		r.Delete("/{id}", h.HandleDelete())
	})
}

// HandleUpload godoc
// @Summary Upload a file
// @Description Stores one file sent in the multipart field "file".
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 200 {object} files.UploadResponse
// @Failure 400 {object} apperror.ErrorResponse "Missing file, unsupported type or too large"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /files/upload [post]
func (h *Handlers) HandleUpload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireIdentity(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		headers, err := h.parseMultipart(w, r, "file", 1)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		if len(headers) == 0 {
			httpx.WriteError(w, r, apperror.NewBadRequestError("no file uploaded", nil))
			return
		}
		if len(headers) > 1 {
			httpx.WriteError(w, r, apperror.NewTooManyFiles(`only one file may be sent in field "file"`))
			return
		}

		f, err := h.service.Upload(r.Context(), actor, incomingFrom(headers[0]))
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, UploadResponse{Success: true, Message: "file uploaded", File: f})
	}
}

// HandleUploadMultiple godoc
// @Summary Upload several files
// @Description Stores every file sent in the multipart field "files". If any file is rejected nothing is stored.
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files to upload"
// @Success 200 {object} files.BatchUploadResponse
// @Failure 400 {object} apperror.ErrorResponse "Batch rejected"
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /files/upload/multiple [post]
func (h *Handlers) HandleUploadMultiple() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireIdentity(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		headers, err := h.parseMultipart(w, r, "files", h.service.Policy().MaxFiles)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		defer r.MultipartForm.RemoveAll()

		ins := make([]Incoming, len(headers))
		for i, fh := range headers {
			ins[i] = incomingFrom(fh)
		}
		stored, err := h.service.UploadBatch(r.Context(), actor, ins)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, BatchUploadResponse{
			Success: true,
			Message: fmt.Sprintf("%d files uploaded", len(stored)),
			Files:   stored,
		})
	}
}

// HandleList godoc
// @Summary List files
// @Description Lists the caller's files; admins see every file.
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Success 200 {object} files.ListResponse
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Router /files [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireIdentity(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		list, err := h.service.List(r.Context(), actor)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, ListResponse{Success: true, Files: list, Count: len(list)})
	}
}

// HandleDelete godoc
// @Summary Delete a file
// @Description Deletes a file. Only its owner or an admin may do so.
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param id path string true "File ID"
// @Success 200 {object} files.MessageResponse
// @Failure 401 {object} apperror.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} apperror.ErrorResponse "Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "File not found"
// @Router /files/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireIdentity(r.Context())
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "file deleted"})
	}
}

// HandleDownload godoc
// @Summary Download a file
// @Description Streams a stored file by its stored name.
// @Tags Files
// @Produce octet-stream
// @Param filename path string true "Stored file name"
// @Success 200 {file} binary
// @Failure 404 {object} apperror.ErrorResponse "File not found"
// @Router /files/download/{filename} [get]
func (h *Handlers) HandleDownload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "filename")
		dl, err := h.service.Open(r.Context(), name)
		if err != nil {
			httpx.WriteError(w, r, err)
			return
		}
		defer dl.Body.Close()

		downloadName := name
		contentType := ""
		if dl.Meta != nil {
			downloadName = dl.Meta.OriginalName
			contentType = dl.Meta.MimeType
		}
		if contentType == "" {
			contentType, err = sniff(dl.Body)
			if err != nil {
				httpx.WriteError(w, r, apperror.NewStorageError("failed to read blob", err))
				return
			}
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadName}))
		http.ServeContent(w, r, downloadName, dl.Info.ModTime, dl.Body)
	}
}

// parseMultipart reads the multipart body and returns the parts under field.
// The body is capped at maxFiles times the size ceiling plus framing overhead.
func (h *Handlers) parseMultipart(w http.ResponseWriter, r *http.Request, field string, maxFiles int) ([]*multipart.FileHeader, error) {
	if maxFiles < 1 {
		maxFiles = 1
	}
	limit := h.service.Policy().MaxSize*int64(maxFiles) + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig), strings.Contains(err.Error(), "request body too large"):
			return nil, apperror.NewTooLarge("request body exceeds the upload size limit")
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, apperror.NewBadRequestError("expected a multipart/form-data body", err)
		default:
			return nil, apperror.NewBadRequestError("malformed multipart body", err)
		}
	}
	return r.MultipartForm.File[field], nil
}

func incomingFrom(fh *multipart.FileHeader) Incoming {
	return Incoming{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Size:     fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// sniff detects the content type of a blob without metadata and rewinds it.
func sniff(body io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(body)
	if err != nil {
		return "", err
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mt.String(), nil
}
