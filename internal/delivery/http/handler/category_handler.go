package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mapahead-service/internal/pkg/utils"
	"github.com/mapahead-service/internal/usecase/dto"
)

type CategoryHandler struct{}

func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// ListCategories godoc
// @Summary List POI categories
// @Tags POI
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]dto.CategoryResponse}
// @Router /api/v1/categories [get]
func (h *CategoryHandler) ListCategories(c *fiber.Ctx) error {
	categories := dto.NewCategoryResponses()
	return utils.SendSuccess(c, categories, &utils.Meta{
		Total: len(categories),
	})
}
