package services

import (
	"errors"
	"fmt"

	"sds/internal/models"
)

// ErrUnsupportedCombination signals a metric requested against an item
// category that does not support it. A programmer/config error, not
// retryable and not user-facing.
var ErrUnsupportedCombination = errors.New("metric not supported for item category")

// FeatureGatedError surfaces a backend plan restriction for one item
// category. Callers show a distinct upgrade prompt instead of a generic
// failure.
type FeatureGatedError struct {
	Item    models.TopListItemType
	Message string
}

func (e *FeatureGatedError) Error() string {
	return fmt.Sprintf("feature not available on this plan: %s (%s)", e.Message, e.Item)
}
