package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/moitinho/rifa-api/internal/api/handler/v1/request"
	"github.com/moitinho/rifa-api/internal/api/handler/v1/response"
	"github.com/moitinho/rifa-api/internal/api/middleware"
	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/service"
)

type RaffleService interface {
	CreateRaffle(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error)
	ListOwnedRaffles(ctx context.Context, userID uint) ([]domain.Raffle, error)
	GetRaffle(ctx context.Context, id uint, caller domain.Identity) (domain.RaffleDetail, error)
	ListPublicRaffles(ctx context.Context) ([]domain.RaffleListing, error)
	UpdateRaffle(ctx context.Context, id, userID uint, update domain.RaffleUpdate) error
	DeleteRaffle(ctx context.Context, id, userID uint) error
	ListTickets(ctx context.Context, raffleID, userID uint) ([]domain.Ticket, error)
}

type RaffleHandler struct {
	svc RaffleService
}

func NewRaffleHandler(svc RaffleService) *RaffleHandler {
	return &RaffleHandler{
		svc: svc,
	}
}

// HandleCreateRaffle godoc
// @Summary      Create a raffle
// @Tags         raffles
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateRaffleRequest true "request body"
// @Success      201      {object}  domain.Raffle
// @Failure      400      {object}  response.Err
// @Failure      401      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /raffles [post]
// @Security BearerAuth
func (h *RaffleHandler) HandleCreateRaffle(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)

	var req request.CreateRaffleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	raffle, err := h.svc.CreateRaffle(ctx.Request.Context(), domain.Raffle{
		UserID:      identity.UserID,
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		TicketPrice: *req.TicketPrice,
		DrawDate:    req.DrawDate,
		MaxNumber:   req.MaxNumber,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateRaffle -> h.svc.CreateRaffle -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, raffle)
}

// HandleListOwnedRaffles godoc
// @Summary      List the caller's raffles
// @Tags         raffles
// @Produce      json
// @Success      200  {array}   domain.Raffle
// @Failure      401  {object}  response.Err
// @Failure      500  {object}  response.Err
// @Router       /raffles [get]
// @Security BearerAuth
func (h *RaffleHandler) HandleListOwnedRaffles(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)

	raffles, err := h.svc.ListOwnedRaffles(ctx.Request.Context(), identity.UserID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListOwnedRaffles -> h.svc.ListOwnedRaffles -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, raffles)
}

// HandleListPublicRaffles godoc
// @Summary      List all raffles for anonymous browsing
// @Tags         raffles
// @Produce      json
// @Success      200  {array}   domain.RaffleListing
// @Failure      500  {object}  response.Err
// @Router       /raffles/public [get]
func (h *RaffleHandler) HandleListPublicRaffles(ctx *gin.Context) {
	listings, err := h.svc.ListPublicRaffles(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListPublicRaffles -> h.svc.ListPublicRaffles -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, listings)
}

// HandleGetRaffle godoc
// @Summary      Get one raffle with its number availability and media
// @Tags         raffles
// @Produce      json
// @Param        raffleID  path      int true "raffle id"
// @Success      200       {object}  domain.RaffleDetail
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /raffles/{raffleID} [get]
func (h *RaffleHandler) HandleGetRaffle(ctx *gin.Context) {
	raffleID, ok := parseIDParam(ctx, "raffleID")
	if !ok {
		return
	}

	detail, err := h.svc.GetRaffle(ctx.Request.Context(), raffleID, middleware.GetIdentity(ctx))
	if err != nil {
		if errors.Is(err, service.ErrRaffleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("raffle", "id", raffleID))
			return
		}

		err = fmt.Errorf("v1.HandleGetRaffle -> h.svc.GetRaffle -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, detail)
}

// HandleUpdateRaffle godoc
// @Summary      Partially update an owned raffle
// @Tags         raffles
// @Accept       json
// @Produce      json
// @Param        raffleID  path      int true "raffle id"
// @Param        request   body      request.UpdateRaffleRequest true "request body"
// @Success      200       {object}  map[string]string
// @Failure      400       {object}  response.Err
// @Failure      401       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /raffles/{raffleID} [put]
// @Security BearerAuth
func (h *RaffleHandler) HandleUpdateRaffle(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)

	raffleID, ok := parseIDParam(ctx, "raffleID")
	if !ok {
		return
	}

	var req request.UpdateRaffleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.UpdateRaffle(ctx.Request.Context(), raffleID, identity.UserID, domain.RaffleUpdate{
		Title:       req.Title,
		Description: req.Description,
		CoverURL:    req.CoverURL,
		TicketPrice: req.TicketPrice,
		DrawDate:    req.DrawDate,
		MaxNumber:   req.MaxNumber,
	})
	if err != nil {
		if errors.Is(err, service.ErrRaffleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("raffle", "id", raffleID))
			return
		}

		err = fmt.Errorf("v1.HandleUpdateRaffle -> h.svc.UpdateRaffle -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "raffle updated"})
}

// HandleDeleteRaffle godoc
// @Summary      Delete an owned raffle with its tickets and media
// @Tags         raffles
// @Produce      json
// @Param        raffleID  path      int true "raffle id"
// @Success      200       {object}  map[string]string
// @Failure      401       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /raffles/{raffleID} [delete]
// @Security BearerAuth
func (h *RaffleHandler) HandleDeleteRaffle(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)

	raffleID, ok := parseIDParam(ctx, "raffleID")
	if !ok {
		return
	}

	if err := h.svc.DeleteRaffle(ctx.Request.Context(), raffleID, identity.UserID); err != nil {
		if errors.Is(err, service.ErrRaffleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("raffle", "id", raffleID))
			return
		}

		err = fmt.Errorf("v1.HandleDeleteRaffle -> h.svc.DeleteRaffle -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "raffle deleted"})
}

// HandleListTickets godoc
// @Summary      List the tickets of an owned raffle
// @Tags         tickets
// @Produce      json
// @Param        raffleID  path      int true "raffle id"
// @Success      200       {array}   domain.Ticket
// @Failure      401       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /tickets/raffle/{raffleID} [get]
// @Security BearerAuth
func (h *RaffleHandler) HandleListTickets(ctx *gin.Context) {
	identity := middleware.GetIdentity(ctx)

	raffleID, ok := parseIDParam(ctx, "raffleID")
	if !ok {
		return
	}

	tickets, err := h.svc.ListTickets(ctx.Request.Context(), raffleID, identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrRaffleNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("raffle", "id", raffleID))
			return
		}
		if errors.Is(err, service.ErrNotRaffleOwner) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}

		err = fmt.Errorf("v1.HandleListTickets -> h.svc.ListTickets -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("invalid %v: %v", name, raw)))
		return 0, false
	}

	return uint(id), true
}
