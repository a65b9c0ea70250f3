package httpapi

import (
	"mime/multipart"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"coastal-guardian-backend-go/internal/models"
	"coastal-guardian-backend-go/internal/services"
)

const maxUploadFiles = 5

type UploadDTO struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size"`
}

func buildUploadDTO(asset models.MediaAsset) UploadDTO {
	dto := UploadDTO{
		ID:   asset.ID,
		URL:  services.BuildAssetURL(asset.ID),
		Type: asset.Type,
		Size: asset.SizeBytes,
	}
	if asset.Filename != nil {
		dto.Filename = *asset.Filename
	}
	return dto
}

func (s *Server) saveUpload(r *http.Request, header *multipart.FileHeader) (models.MediaAsset, error) {
	contentType := header.Header.Get("Content-Type")
	mediaType, ok := services.AllowedUploadType(contentType)
	if !ok {
		return models.MediaAsset{}, services.ErrBadRequest("Only image, video and PDF uploads are allowed")
	}
	file, err := header.Open()
	if err != nil {
		return models.MediaAsset{}, err
	}
	defer file.Close()

	var ownerID *string
	if user, ok := CurrentUser(r); ok {
		ownerID = &user.ID
	}
	return services.SaveMediaAsset(s.DB, s.Config.MediaStoragePath, contentType, header.Filename, mediaType, ownerID, file)
}

func (s *Server) UploadSingle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.Config.MaxUploadBytes); err != nil {
		WriteError(w, http.StatusBadRequest, "File too large or malformed upload")
		return
	}
	_, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	asset, err := s.saveUpload(r, header)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteCreated(w, "File uploaded successfully", buildUploadDTO(asset))
}

func (s *Server) UploadMultiple(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.Config.MaxUploadBytes*maxUploadFiles)
	if err := r.ParseMultipartForm(s.Config.MaxUploadBytes * maxUploadFiles); err != nil {
		WriteError(w, http.StatusBadRequest, "Files too large or malformed upload")
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		WriteError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(headers) > maxUploadFiles {
		WriteError(w, http.StatusBadRequest, "A maximum of 5 files can be uploaded at once")
		return
	}
	uploads := make([]UploadDTO, 0, len(headers))
	for _, header := range headers {
		asset, err := s.saveUpload(r, header)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		uploads = append(uploads, buildUploadDTO(asset))
	}
	WriteCreated(w, "Files uploaded successfully", uploads)
}

// ServeAsset streams a stored asset back with its original content type.
func (s *Server) ServeAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := services.FetchAsset(s.DB, chi.URLParam(r, "assetId"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	path := services.AssetPath(s.Config.MediaStoragePath, asset)
	file, err := os.Open(path)
	if err != nil {
		WriteError(w, http.StatusNotFound, "File not found")
		return
	}
	defer file.Close()
	w.Header().Set("Content-Type", asset.ContentType)
	http.ServeContent(w, r, asset.StorageKey, asset.CreatedAt, file)
}
