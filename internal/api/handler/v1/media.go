package v1

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moitinho/rifa-api/internal/api/handler/v1/response"
	"github.com/moitinho/rifa-api/internal/api/middleware"
	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/service"
)

type MediaService interface {
	StoreUploads(ctx context.Context, raffleID, userID uint, photos, videos []*multipart.FileHeader) ([]domain.Media, error)
}

type MediaHandler struct {
	svc MediaService
}

func NewMediaHandler(svc MediaService) *MediaHandler {
	return &MediaHandler{
		svc: svc,
	}
}

// HandleUpload godoc
// @Summary      Upload photos and videos for an owned raffle
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Param        raffleID  path      int true "raffle id"
// @Param        fotos     formData  file false "photo files"
// @Param        videos    formData  file false "video files"
// @Success      201       {object}  response.UploadResponse
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /media/raffle/{raffleID} [post]
// @Security BearerAuth
func (h *MediaHandler) HandleUpload(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)

	raffleID, ok := parseIDParam(ctx, "raffleID")
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	media, err := h.svc.StoreUploads(ctx.Request.Context(), raffleID, identity.UserID, form.File["fotos"], form.File["videos"])
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRaffleNotFound):
			response.RenderErr(ctx, response.ErrNotFound("raffle", "id", raffleID))
		case errors.Is(err, service.ErrNotRaffleOwner):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrNoFiles),
			errors.Is(err, service.ErrTooManyPhotos),
			errors.Is(err, service.ErrTooManyVideos),
			errors.Is(err, service.ErrDisallowedFile),
			errors.Is(err, service.ErrFileTooLarge):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUpload -> h.svc.StoreUploads -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, response.UploadResponse{
		Message: fmt.Sprintf("%v arquivo(s) enviado(s)", len(media)),
		Files:   media,
	})
}
