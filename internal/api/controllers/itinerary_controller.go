package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tabiplan/internal/models/request_models"
	"tabiplan/internal/services"
	"tabiplan/pkg/utils"
)

type ItineraryController struct {
	itineraryService services.ItineraryServiceInterface
}

func NewItineraryController(itineraryService services.ItineraryServiceInterface) *ItineraryController {
	return &ItineraryController{
		itineraryService: itineraryService,
	}
}

// CreateItinerary godoc
// @Summary Create an itinerary
// @Description Generate a full day-by-day itinerary for the given destination, dates and budget
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param request body request_models.CreateItineraryRequest true "Itinerary creation payload"
// @Success 200 {object} utils.APIResponse
// @Failure 400 {object} utils.APIResponse
// @Security BearerAuth
// @Router /itineraries/create [post]
func (i *ItineraryController) CreateItinerary(c *gin.Context) {
	var req request_models.CreateItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	accountId := c.GetString("account_id")

	itinerary, err := i.itineraryService.CreateItinerary(c.Request.Context(), accountId, req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, itinerary, "Itinerary created successfully")
}

// GetItineraryById godoc
// @Summary Get itinerary by ID
// @Description Fetch a materialized itinerary with its days and schedule items
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param itineraryId path string true "Itinerary ID"
// @Success 200 {object} utils.APIResponse
// @Failure 404 {object} utils.APIResponse
// @Security BearerAuth
// @Router /itineraries/get-itinerary-by-id/{itineraryId} [get]
func (i *ItineraryController) GetItineraryById(c *gin.Context) {
	itineraryId := c.Param("itineraryId")
	if itineraryId == "" {
		utils.RespondError(c, http.StatusBadRequest, "Itinerary ID is required")
		return
	}

	itinerary, err := i.itineraryService.GetItineraryById(c.Request.Context(), itineraryId)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, itinerary, "Itinerary fetched successfully")
}

// GetItinerariesByAccount godoc
// @Summary Get itineraries for the authenticated account
// @Description Fetch a paginated list of the account's itineraries
// @Tags Itineraries
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(5) minimum(1) maximum(100)
// @Success 200 {object} utils.APIResponse
// @Security BearerAuth
// @Router /itineraries/get-itineraries-by-account [get]
func (i *ItineraryController) GetItinerariesByAccount(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	pageSizeStr := c.DefaultQuery("pageSize", "5")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page number")
		return
	}

	pageSize, err := strconv.Atoi(pageSizeStr)
	if err != nil || pageSize < 1 || pageSize > 100 {
		utils.RespondError(c, http.StatusBadRequest, "Invalid page size (must be 1-100)")
		return
	}

	accountId := c.GetString("account_id")

	itineraries, err := i.itineraryService.GetItinerariesByAccount(c.Request.Context(), accountId, page, pageSize)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, itineraries, "Itineraries fetched successfully")
}
