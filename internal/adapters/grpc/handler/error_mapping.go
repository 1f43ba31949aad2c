package handler

import (
	"errors"

	"github.com/ogurasousui/headcount-dashboard/internal/core/employee"
	"github.com/ogurasousui/headcount-dashboard/internal/core/livestate"
	"github.com/ogurasousui/headcount-dashboard/internal/core/mutation"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mutation.ErrConfirmationRequired):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, employee.ErrValidationFailed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, employee.ErrStoreUnavailable), errors.Is(err, livestate.ErrTornDown):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
