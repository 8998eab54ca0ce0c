package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/osvaldoandrade/wikisync/internal/app/gitsync"
	maintenanceapp "github.com/osvaldoandrade/wikisync/internal/app/maintenance"
	"github.com/osvaldoandrade/wikisync/internal/app/paths"
	repoapp "github.com/osvaldoandrade/wikisync/internal/app/repo"
	"github.com/osvaldoandrade/wikisync/internal/app/volume"
	"github.com/osvaldoandrade/wikisync/internal/bootstrap"
	"github.com/osvaldoandrade/wikisync/internal/config"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

type ErrorKind string

const (
	KindInternal      ErrorKind = "internal"
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindConfiguration ErrorKind = "configuration"
	KindTransport     ErrorKind = "transport"
)

const (
	ExitInternal      = 1
	ExitInvalid       = 2
	ExitNotFound      = 3
	ExitConflict      = 4
	ExitConfiguration = 5
	ExitTransport     = 6
)

type ExitError struct {
	Code    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e ExitError) Error() string {
	return errorMessage(e)
}

func (e ExitError) Unwrap() error {
	return e.Err
}

func NormalizeError(err error) ExitError {
	if err == nil {
		return ExitError{Code: 0}
	}
	var exitErr ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Code == 0 {
			exitErr.Code = ExitInternal
		}
		return exitErr
	}

	switch {
	case errors.Is(err, domain.ErrVolumeNotFound):
		return ExitError{Code: ExitNotFound, Kind: KindNotFound, Err: err}
	case errors.Is(err, domain.ErrNoIdentity),
		errors.Is(err, domain.ErrNoCredentials),
		errors.Is(err, domain.ErrRemoteNotFound),
		errors.Is(err, domain.ErrVolumeUnavailable),
		errors.Is(err, domain.ErrNotARepository),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, bootstrap.ErrUnavailableVolumes),
		errors.Is(err, volume.ErrDuplicateVolume),
		errors.Is(err, volume.ErrVolumeNameRequired),
		errors.Is(err, volume.ErrVolumeRootRequired):
		return ExitError{Code: ExitConfiguration, Kind: KindConfiguration, Err: err}
	case errors.Is(err, domain.ErrMergeConflict),
		errors.Is(err, domain.ErrNonFastForward),
		errors.Is(err, domain.ErrDetachedHead),
		errors.Is(err, domain.ErrUnsupportedMerge),
		errors.Is(err, domain.ErrNoUpstream),
		errors.Is(err, domain.ErrNoHead),
		errors.Is(err, repoapp.ErrCloneTargetExists):
		return ExitError{Code: ExitConflict, Kind: KindConflict, Err: err}
	case errors.Is(err, domain.ErrAuthRejected),
		errors.Is(err, domain.ErrTransport),
		errors.Is(err, context.DeadlineExceeded):
		return ExitError{Code: ExitTransport, Kind: KindTransport, Err: err}
	case errors.Is(err, paths.ErrRepoPathRequired),
		errors.Is(err, paths.ErrPathRequired),
		errors.Is(err, paths.ErrPathOutsideVolume),
		errors.Is(err, repoapp.ErrRepoURLRequired),
		errors.Is(err, repoapp.ErrClonePathRequired),
		errors.Is(err, repoapp.ErrInvalidBranch),
		errors.Is(err, gitsync.ErrCommitMessageRequired),
		errors.Is(err, gitsync.ErrNoFilesToCommit),
		errors.Is(err, maintenanceapp.ErrInvalidPrune),
		errors.Is(err, domain.ErrSignature),
		errors.Is(err, domain.ErrPathNotFound):
		return ExitError{Code: ExitInvalid, Kind: KindValidation, Err: err}
	default:
		return ExitError{Code: ExitInternal, Kind: KindInternal, Err: err}
	}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return NormalizeError(err).Code
}

func writeCLIError(w io.Writer, exitErr ExitError, asJSON bool) error {
	if exitErr.Code == 0 {
		return nil
	}
	message := errorMessage(exitErr)
	if asJSON {
		payload := struct {
			Code    int    `json:"code"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		}{
			Code:    exitErr.Code,
			Kind:    string(exitErr.Kind),
			Message: message,
		}
		return encodeJSON(w, payload)
	}

	ui := newRenderer(w, false)
	prefix := "Error"
	if exitErr.Kind != "" {
		prefix = fmt.Sprintf("Error (%s)", exitErr.Kind)
	}
	prefix = ui.err(prefix)
	_, err := fmt.Fprintf(w, "%s: %s\n", prefix, message)
	return err
}

func encodeJSON(w io.Writer, value any) error {
	if err := json.MarshalWrite(w, value, jsontext.WithIndent("  ")); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func errorMessage(exitErr ExitError) string {
	if exitErr.Message != "" {
		return exitErr.Message
	}
	if exitErr.Err != nil {
		return exitErr.Err.Error()
	}
	return "unknown error"
}
