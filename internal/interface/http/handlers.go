package httpservice

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ark-network/raffle/internal/core/application"
	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	svc    application.Service
	broker *broker
}

func (h *handler) enterRaffle(c *gin.Context) {
	var req EnterRaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request: %s", err))
		return
	}

	if err := h.svc.EnterRaffle(c.Request.Context(), req.Player, req.Amount); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) getRaffle(c *gin.Context) {
	info, err := h.svc.GetRaffle(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRaffleResponse(info))
}

func (h *handler) getEntranceFee(c *gin.Context) {
	c.JSON(http.StatusOK, EntranceFeeResponse{h.svc.GetEntranceFee(c.Request.Context())})
}

func (h *handler) getPlayer(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid player index"))
		return
	}

	player, err := h.svc.GetPlayer(c.Request.Context(), index)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, PlayerResponse{index, player})
}

func (h *handler) checkUpkeep(c *gin.Context) {
	status, err := h.svc.CheckUpkeep(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUpkeepResponse(status))
}

func (h *handler) performUpkeep(c *gin.Context) {
	requestId, err := h.svc.PerformUpkeep(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, PerformUpkeepResponse{requestId})
}

func (h *handler) fulfillRandomWords(c *gin.Context) {
	var req FulfillRandomWordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request: %s", err))
		return
	}

	words := make([]*big.Int, 0, len(req.RandomWords))
	for _, w := range req.RandomWords {
		word, ok := new(big.Int).SetString(w, 10)
		if !ok {
			abortWithError(
				c, http.StatusBadRequest, fmt.Errorf("invalid random word %q", w),
			)
			return
		}
		words = append(words, word)
	}

	fulfillment := ports.RandomWordsFulfillment{
		RequestId:   req.RequestId,
		RandomWords: words,
		Proof:       req.Proof,
	}
	if err := h.svc.SubmitFulfillment(c.Request.Context(), fulfillment); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handler) getDraws(c *gin.Context) {
	draws, err := h.svc.GetDraws(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toDrawsResponse(draws))
}

func (h *handler) getBalance(c *gin.Context) {
	account := c.Param("account")
	balance, err := h.svc.GetPayoutBalance(c.Request.Context(), account)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{account, balance})
}

func (h *handler) streamEvents(c *gin.Context) {
	id, events := h.broker.subscribe()
	defer h.broker.unsubscribe(id)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(event.eventType, event.data)
			return true
		}
	})
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleError(c *gin.Context, err error) {
	var upkeepErr *domain.UpkeepNotNeededError
	if errors.As(err, &upkeepErr) {
		c.AbortWithStatusJSON(http.StatusConflict, ErrorResponse{
			Error: err.Error(),
			Upkeep: &UpkeepResponse{
				UpkeepNeeded: false,
				Pot:          upkeepErr.Pot,
				NumPlayers:   upkeepErr.NumPlayers,
				State:        upkeepErr.State.String(),
			},
		})
		return
	}

	abortWithError(c, statusFromError(err), err)
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInsufficientFee),
		errors.Is(err, domain.ErrInvalidPlayer),
		errors.Is(err, domain.ErrPotOverflow),
		errors.Is(err, domain.ErrMissingRandomWords):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidProof):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrRaffleNotOpen),
		errors.Is(err, domain.ErrUpkeepNotNeeded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnknownRequest),
		errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPayoutTransferFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.WithError(err).Errorf("%s %s failed", c.Request.Method, c.FullPath())
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}
