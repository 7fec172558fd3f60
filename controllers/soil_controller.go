package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soilq/soilq-api/config"
	"github.com/soilq/soilq-api/services"
	"github.com/soilq/soilq-api/soil"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MeasurementRequest is the five soil-test values. Pointers so that a
// legitimate zero is told apart from a missing field.
type MeasurementRequest struct {
	Nitrogen   *float64 `json:"nitrogen" binding:"required"`
	Phosphorus *float64 `json:"phosphorus" binding:"required"`
	Potassium  *float64 `json:"potassium" binding:"required"`
	PH         *float64 `json:"ph" binding:"required"`
	Moisture   *float64 `json:"moisture" binding:"required"`
}

func (r MeasurementRequest) measurement() soil.Measurement {
	return soil.Measurement{
		Nitrogen:   *r.Nitrogen,
		Phosphorus: *r.Phosphorus,
		Potassium:  *r.Potassium,
		PH:         *r.PH,
		Moisture:   *r.Moisture,
	}
}

// CreateSoilAnalysisRequest represents the request body for saving an analysis
type CreateSoilAnalysisRequest struct {
	MeasurementRequest
	Location string `json:"location"`
	Notes    string `json:"notes"`
}

// UpdateSoilAnalysisRequest carries only the fields being changed
type UpdateSoilAnalysisRequest struct {
	Nitrogen   *float64 `json:"nitrogen"`
	Phosphorus *float64 `json:"phosphorus"`
	Potassium  *float64 `json:"potassium"`
	PH         *float64 `json:"ph"`
	Moisture   *float64 `json:"moisture"`
	Location   *string  `json:"location"`
	Notes      *string  `json:"notes"`
}

// AssessSoil handles POST /api/v1/soil-analyses/assess - runs the engine without saving
func AssessSoil(c *gin.Context) {
	var req MeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	m := req.measurement()
	if err := services.ValidateMeasurement(m); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, soil.Assess(m))
}

// CreateSoilAnalysis handles POST /api/v1/soil-analyses - assesses and saves a measurement
func CreateSoilAnalysis(c *gin.Context) {
	var req CreateSoilAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, ok := currentUser(c)
	if !ok {
		return
	}

	analysis, err := services.NewSoilService(config.GetDB()).Create(c.Request.Context(), user.ID, services.AnalysisInput{
		Measurement: req.measurement(),
		Location:    req.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, analysis)
}

// GetSoilAnalyses handles GET /api/v1/soil-analyses - the user's history, newest first
func GetSoilAnalyses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	analyses, err := services.NewSoilService(config.GetDB()).List(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    analyses,
		"count":   len(analyses),
	})
}

// GetSoilAnalysis handles GET /api/v1/soil-analyses/:id
func GetSoilAnalysis(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	analysis, err := services.NewSoilService(config.GetDB()).Get(c.Request.Context(), id, user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, analysis)
}

// UpdateSoilAnalysis handles PUT /api/v1/soil-analyses/:id - edits and re-assesses
func UpdateSoilAnalysis(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req UpdateSoilAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	analysis, err := services.NewSoilService(config.GetDB()).Update(c.Request.Context(), id, user.ID, services.AnalysisUpdate(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, analysis)
}

// DeleteSoilAnalysis handles DELETE /api/v1/soil-analyses/:id
func DeleteSoilAnalysis(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := services.NewSoilService(config.GetDB()).Delete(c.Request.Context(), id, user.ID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Soil analysis deleted",
	})
}

// ExportSoilAnalyses handles GET /api/v1/soil-analyses/export - history as a spreadsheet
func ExportSoilAnalyses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	analyses, err := services.NewSoilService(config.GetDB()).List(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := services.ExportAnalyses(&buf, analyses); err != nil {
		zap.L().Error("failed to export soil analyses", zap.Uint("user_id", user.ID), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build spreadsheet")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="soil-analyses.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
