package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/workshop-api/internal/dto"
	"github.com/atelier-ops/workshop-api/internal/models"
	"github.com/atelier-ops/workshop-api/pkg/response"
)

type employeeService interface {
	Register(ctx context.Context, req dto.RegisterEmployeeRequest) (*models.Employee, error)
	Review(ctx context.Context, tgID int64, approve bool) (*models.Employee, error)
	Get(ctx context.Context, tgID int64) (*models.Employee, error)
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error)
}

// EmployeeHandler exposes the employee registry endpoints.
type EmployeeHandler struct {
	employees employeeService
}

// NewEmployeeHandler constructs EmployeeHandler.
func NewEmployeeHandler(employees employeeService) *EmployeeHandler {
	return &EmployeeHandler{employees: employees}
}

// Register godoc
// @Summary Submit a registration application
// @Tags Employees
// @Accept json
// @Produce json
// @Param payload body dto.RegisterEmployeeRequest true "Application"
// @Success 201 {object} response.Envelope
// @Router /employees [post]
func (h *EmployeeHandler) Register(c *gin.Context) {
	var req dto.RegisterEmployeeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	employee, err := h.employees.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, employee)
}

// Review godoc
// @Summary Approve or reject a registration
// @Tags Employees
// @Accept json
// @Produce json
// @Param id path int true "Employee chat ID"
// @Param payload body dto.ReviewEmployeeRequest true "Verdict"
// @Success 200 {object} response.Envelope
// @Router /employees/{id}/review [post]
func (h *EmployeeHandler) Review(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReviewEmployeeRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	employee, err := h.employees.Review(c.Request.Context(), id, req.Approve)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// Get godoc
// @Summary Get an employee
// @Tags Employees
// @Produce json
// @Param id path int true "Employee chat ID"
// @Success 200 {object} response.Envelope
// @Router /employees/{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	employee, err := h.employees.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employee, nil)
}

// List godoc
// @Summary List employees
// @Tags Employees
// @Produce json
// @Param job query string false "Filter by role"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /employees [get]
func (h *EmployeeHandler) List(c *gin.Context) {
	var filter models.EmployeeFilter
	if raw := c.Query("job"); raw != "" {
		job := models.Role(strings.ToUpper(raw))
		filter.Job = &job
	}
	if raw := c.Query("status"); raw != "" {
		if status, ok := models.NormalizeEmployeeStatus(raw); ok {
			filter.Status = &status
		} else {
			status := models.EmployeeStatus(strings.ToUpper(raw))
			filter.Status = &status
		}
	}
	employees, err := h.employees.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, employees, nil)
}
