package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/osvaldoandrade/wikisync/internal/app/gitsync"
	"github.com/osvaldoandrade/wikisync/internal/app/paths"
	"github.com/osvaldoandrade/wikisync/internal/domain"
	"github.com/osvaldoandrade/wikisync/internal/infra/schema"
)

var errBadRequest = errors.New("bad request")

// StatusFor maps an engine error to the HTTP status reported to the caller.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, domain.ErrVolumeNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrNoIdentity):
		return http.StatusInternalServerError
	case errors.Is(err, errBadRequest),
		errors.Is(err, schema.ErrInvalidDocument),
		errors.Is(err, paths.ErrPathRequired),
		errors.Is(err, paths.ErrPathOutsideVolume),
		errors.Is(err, gitsync.ErrCommitMessageRequired),
		errors.Is(err, gitsync.ErrNoFilesToCommit),
		errors.Is(err, domain.ErrSignature),
		errors.Is(err, domain.ErrPathNotFound):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrMergeConflict),
		errors.Is(err, domain.ErrNonFastForward),
		errors.Is(err, domain.ErrDetachedHead),
		errors.Is(err, domain.ErrUnsupportedMerge),
		errors.Is(err, domain.ErrNoUpstream),
		errors.Is(err, domain.ErrNoHead):
		return http.StatusConflict
	case errors.Is(err, domain.ErrAuthRejected),
		errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), StatusFor(err))
}
