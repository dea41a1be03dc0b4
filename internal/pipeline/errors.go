package pipeline

import (
	"errors"

	"github.com/Faultbox/arframe/internal/capability"
	"github.com/Faultbox/arframe/internal/export"
	"github.com/Faultbox/arframe/internal/geometry"
	"github.com/Faultbox/arframe/internal/texture"
	"github.com/Faultbox/arframe/internal/verify"
)

// ErrInvalidRequest means the invocation itself is malformed.
var ErrInvalidRequest = errors.New("invalid request")

// Kind classifies a run outcome or diagnostic.
type Kind string

// Fatal kinds.
const (
	KindOK                 Kind = "OK"
	KindInvalidRequest     Kind = "InvalidRequest"
	KindInvalidDimension   Kind = "InvalidDimension"
	KindBackendUnavailable Kind = "BackendUnavailable"
	KindCopyFailure        Kind = "CopyFailure"
	KindExportVerification Kind = "ExportVerificationError"
	KindExportFailed       Kind = "ExportFailed"
	KindInternal           Kind = "InternalError"
)

// Non-fatal kinds, reported as diagnostics.
const (
	KindUnsupportedOptionDropped  Kind = "UnsupportedOptionDropped"
	KindUVOrNormalHeuristicFailed Kind = "UVOrNormalHeuristicFailed"
	KindFormatMismatch            Kind = "FormatMismatch"
)

// Diagnostic is a non-fatal shortfall recorded during a run.
type Diagnostic struct {
	Kind    Kind
	Message string
}

// Classify maps an error returned by Run to its kind. A nil error is KindOK.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, geometry.ErrInvalidDimension):
		return KindInvalidDimension
	case errors.Is(err, export.ErrBackendUnavailable), errors.Is(err, capability.ErrNoFormat):
		return KindBackendUnavailable
	case errors.Is(err, texture.ErrCopyFailure):
		return KindCopyFailure
	case errors.Is(err, verify.ErrExportVerification):
		return KindExportVerification
	case errors.Is(err, export.ErrExportFailed):
		return KindExportFailed
	case errors.Is(err, geometry.ErrHeuristicFailed):
		return KindUVOrNormalHeuristicFailed
	default:
		return KindInternal
	}
}

// ExitCode returns the process exit status for kind.
func ExitCode(kind Kind) int {
	switch kind {
	case KindOK:
		return 0
	case KindInvalidRequest:
		return 2
	case KindInvalidDimension:
		return 3
	case KindBackendUnavailable:
		return 4
	case KindCopyFailure:
		return 5
	case KindExportVerification:
		return 6
	default:
		return 1
	}
}
