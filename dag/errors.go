package dag

import apperrors "github.com/kbukum/framegraph/errors"

// Sentinels for errors.Is. Any error carrying the same code matches.
var (
	ErrUnknownNode       = apperrors.Sentinel(apperrors.ErrCodeUnknownNode)
	ErrUnknownPort       = apperrors.Sentinel(apperrors.ErrCodeUnknownPort)
	ErrTypeMismatch      = apperrors.Sentinel(apperrors.ErrCodeTypeMismatch)
	ErrCyclicDependency  = apperrors.Sentinel(apperrors.ErrCodeCyclicDependency)
	ErrConfig            = apperrors.Sentinel(apperrors.ErrCodeConfig)
	ErrInitialization    = apperrors.Sentinel(apperrors.ErrCodeInitialization)
	ErrInvalidPipeline   = apperrors.Sentinel(apperrors.ErrCodeInvalidPipeline)
	ErrComponentNotFound = apperrors.Sentinel(apperrors.ErrCodeComponentNotFound)
)
