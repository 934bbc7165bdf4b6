package handler

import (
	"errors"
	"net/http"

	"github.com/fekuna/omnipos-structured-data/internal/jsonld"
	"github.com/fekuna/omnipos-structured-data/internal/structureddata"
	"github.com/fekuna/omnipos-structured-data/internal/validator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var errMissingMerchant = errors.New("missing merchant")

type errorClass struct {
	grpcCode   codes.Code
	httpStatus int
	code       string
	message    string
	fields     map[string]string
}

func classify(err error) errorClass {
	var ve *validator.ValidationError
	switch {
	case errors.Is(err, errMissingMerchant):
		return errorClass{codes.Unauthenticated, http.StatusUnauthorized, "UNAUTHORIZED", err.Error(), nil}
	case errors.As(err, &ve):
		return errorClass{codes.InvalidArgument, http.StatusBadRequest, "INVALID_INPUT", ve.Error(), ve.Fields()}
	case errors.Is(err, structureddata.ErrProductNotFound), errors.Is(err, structureddata.ErrCategoryNotFound):
		return errorClass{codes.NotFound, http.StatusNotFound, "NOT_FOUND", err.Error(), nil}
	case errors.Is(err, jsonld.ErrMissingRendition):
		return errorClass{codes.FailedPrecondition, http.StatusUnprocessableEntity, "MISSING_RENDITION", err.Error(), nil}
	default:
		return errorClass{codes.Internal, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred", nil}
	}
}

func grpcError(err error) error {
	c := classify(err)
	return status.Error(c.grpcCode, c.message)
}
