package ginserver

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"iasrentals/internal/app/commands"
	"iasrentals/internal/app/dto"
	propertiesapp "iasrentals/internal/app/handlers/properties"
	"iasrentals/internal/app/queries"
)

const maxPropertyImageSizeBytes int64 = 10 * 1024 * 1024

type PropertyHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createPropertyRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	Address       string  `json:"address" binding:"required"`
	Location      string  `json:"location" binding:"required"`
	Price         float64 `json:"price" binding:"gte=0"`
	PriceCurrency string  `json:"price_currency"`
	PricePeriod   string  `json:"price_period"`
	Type          string  `json:"type" binding:"required,oneof=rent sale"`
	PropertyType  string  `json:"property_type"`
	Rooms         int     `json:"rooms" binding:"gte=1"`
	Bathrooms     int     `json:"bathrooms" binding:"gte=0"`
	Surface       float64 `json:"surface" binding:"gte=0"`
	Floor         *int    `json:"floor"`
	YearBuilt     *int    `json:"year_built"`
	HasParking    bool    `json:"has_parking"`
	HasElevator   bool    `json:"has_elevator"`
	HasBalcony    bool    `json:"has_balcony"`
	IsFurnished   bool    `json:"is_furnished"`
}

func (h PropertyHandler) Get(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "property handler unavailable"})
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	result, err := queries.Ask[propertiesapp.GetPropertyQuery, dto.PropertyDetails](c.Request.Context(), h.Queries, propertiesapp.GetPropertyQuery{ID: id})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) ByOwner(c *gin.Context) {
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "property handler unavailable"})
		return
	}
	ownerID := strings.TrimSpace(c.Param("owner_id"))
	result, err := queries.Ask[propertiesapp.ListOwnerPropertiesQuery, dto.ListingCollection](c.Request.Context(), h.Queries, propertiesapp.ListOwnerPropertiesQuery{OwnerID: ownerID})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: "+err.Error())
		return
	}
	cmd := propertiesapp.CreatePropertyCommand{
		OwnerID:      p.ID,
		ActorRole:    p.Role,
		Title:        req.Title,
		Description:  req.Description,
		Address:      req.Address,
		City:         req.Location,
		Price:        req.Price,
		Currency:     req.PriceCurrency,
		Period:       req.PricePeriod,
		Transaction:  req.Type,
		PropertyType: req.PropertyType,
		Rooms:        req.Rooms,
		Bathrooms:    req.Bathrooms,
		AreaSqM:      req.Surface,
		Floor:        req.Floor,
		YearBuilt:    req.YearBuilt,
		HasParking:   req.HasParking,
		HasElevator:  req.HasElevator,
		HasBalcony:   req.HasBalcony,
		IsFurnished:  req.IsFurnished,
	}
	result, err := commands.Dispatch[propertiesapp.CreatePropertyCommand, *dto.PropertyDetails](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// UploadImage reads a multipart "file" field, sniffs its content type and
// hands the bytes to the attach command.
func (h PropertyHandler) UploadImage(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands bus unavailable"})
		return
	}
	propertyID := strings.TrimSpace(c.Param("id"))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, fmt.Sprintf("file is required: %v", err))
		return
	}
	if fileHeader.Size > maxPropertyImageSizeBytes {
		badRequest(c, fmt.Sprintf("file too large (max %d MB)", maxPropertyImageSizeBytes/1024/1024))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPropertyImageSizeBytes+1))
	if err != nil {
		respondError(c, h.Logger, fmt.Errorf("read upload: %w", err))
		return
	}
	if len(data) == 0 {
		badRequest(c, "file is empty")
		return
	}
	if int64(len(data)) > maxPropertyImageSizeBytes {
		badRequest(c, fmt.Sprintf("file too large (max %d MB)", maxPropertyImageSizeBytes/1024/1024))
		return
	}
	contentType := http.DetectContentType(data)
	if !isAllowedImageType(contentType) {
		badRequest(c, "unsupported content type: "+contentType)
		return
	}

	cmd := propertiesapp.AttachPropertyImageCommand{
		ActorID:     p.ID,
		PropertyID:  propertyID,
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Reader:      bytes.NewReader(data),
	}
	result, err := commands.Dispatch[propertiesapp.AttachPropertyImageCommand, *dto.PropertyImage](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func isAllowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/jpeg", "image/png", "image/webp":
		return true
	default:
		return false
	}
}

var _ PropertyHTTP = (*PropertyHandler)(nil)
