package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/marcosbb310/napoleonshopify3-sub002/internal/apierror"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/repository"
	"github.com/marcosbb310/napoleonshopify3-sub002/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps domain errors to HTTP statuses. Unknown errors
// become a generic 500 so internals never leak to clients.
func respondServiceError(c *gin.Context, err error) {
	var valErr *service.ValidationError
	var extErr *service.ExternalAPIError
	var persErr *service.PersistenceError

	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, apierror.New(valErr.Error()))
	case errors.Is(err, service.ErrConfigNotFound), errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("Resource not found"))
	case errors.Is(err, repository.ErrConcurrentModification):
		c.JSON(http.StatusConflict, apierror.New("Resource was modified concurrently, retry the request"))
	case errors.As(err, &extErr):
		c.JSON(http.StatusBadGateway, apierror.New("Upstream commerce platform rejected the price update"))
	case errors.As(err, &persErr):
		c.Error(err)
	default:
		c.Error(err)
	}
}
