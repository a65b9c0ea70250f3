package services

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coastal-guardian-backend-go/internal/models"
)

const BucketUploads = "uploads"

// AllowedUploadType maps an incoming content type to the media kind stored
// with the asset; only images, videos and PDFs are accepted.
func AllowedUploadType(contentType string) (string, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image", true
	case strings.HasPrefix(contentType, "video/"):
		return "video", true
	case contentType == "application/pdf":
		return "document", true
	}
	return "", false
}

func EnsureStoragePath(base, bucket string) (string, error) {
	path := filepath.Join(base, bucket)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", err
	}
	return path, nil
}

// SaveMediaAsset streams the body to disk, records the asset row and
// returns the stored asset. The file is removed again if the insert fails.
func SaveMediaAsset(db *sqlx.DB, basePath, contentType, filename, mediaType string, ownerID *string, body io.Reader) (models.MediaAsset, error) {
	asset := models.MediaAsset{
		ID:          uuid.NewString(),
		OwnerUserID: ownerID,
		Bucket:      BucketUploads,
		Type:        mediaType,
		ContentType: contentType,
		CreatedAt:   time.Now().UTC(),
	}
	asset.StorageKey = asset.ID
	if filename != "" {
		asset.Filename = &filename
	}
	bucketPath, err := EnsureStoragePath(basePath, asset.Bucket)
	if err != nil {
		return models.MediaAsset{}, err
	}
	targetPath := filepath.Join(bucketPath, asset.StorageKey)

	file, err := os.Create(targetPath)
	if err != nil {
		return models.MediaAsset{}, err
	}
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(file, hasher), body)
	_ = file.Close()
	if err != nil {
		_ = os.Remove(targetPath)
		return models.MediaAsset{}, err
	}
	if size == 0 {
		_ = os.Remove(targetPath)
		return models.MediaAsset{}, ErrBadRequest("Uploaded file is empty")
	}
	asset.SizeBytes = size
	sha := hex.EncodeToString(hasher.Sum(nil))
	asset.Sha256 = &sha

	_, err = db.Exec(`
INSERT INTO media_assets (id, owner_user_id, bucket, storage_key, filename, type, content_type, size_bytes, sha256, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`, asset.ID, asset.OwnerUserID, asset.Bucket, asset.StorageKey, asset.Filename, asset.Type,
		asset.ContentType, asset.SizeBytes, asset.Sha256, asset.CreatedAt)
	if err != nil {
		_ = os.Remove(targetPath)
		return models.MediaAsset{}, err
	}
	return asset, nil
}

func BuildAssetURL(assetID string) string {
	return "/api/upload/assets/" + assetID + "/content"
}

func FetchAsset(db *sqlx.DB, assetID string) (models.MediaAsset, error) {
	var asset models.MediaAsset
	if err := db.Get(&asset, `SELECT * FROM media_assets WHERE id = $1`, assetID); err != nil {
		return models.MediaAsset{}, ErrNotFound("File not found")
	}
	return asset, nil
}

func AssetPath(basePath string, asset models.MediaAsset) string {
	return filepath.Join(basePath, asset.Bucket, asset.StorageKey)
}
