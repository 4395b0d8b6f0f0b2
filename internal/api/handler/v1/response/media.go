package response

import "github.com/moitinho/rifa-api/internal/domain"

type UploadResponse struct {
	Message string         `json:"message"`
	Files   []domain.Media `json:"arquivos"`
}
