package leave

import (
	"fmt"

	"staffleave/internal/domain/apperr"
)

const maxTextLength = 500

func invalidState(s Submission) error {
	return fmt.Errorf("submission %s is %s: %w", s.ID, s.Status, apperr.ErrInvalidState)
}
