package playlist

import (
	"errors"

	"github.com/stwalsh4118/setlist/internal/db"
	"github.com/stwalsh4118/setlist/internal/source"
)

// Custom playlist service errors
var (
	// ErrPlaylistNotFound indicates the playlist does not exist or is not owned by the caller
	ErrPlaylistNotFound = errors.New("playlist not found")

	// ErrPlaylistItemNotFound indicates no item has the requested id or index
	ErrPlaylistItemNotFound = errors.New("playlist item not found")

	// ErrMediaNotFound indicates a referenced media record could not be found or resolved
	ErrMediaNotFound = errors.New("media not found")

	// ErrValidationFailed indicates invalid input such as a descriptor without source fields
	ErrValidationFailed = errors.New("validation failed")

	// ErrPersistenceFailed indicates newly resolved media could not be stored; retry later
	ErrPersistenceFailed = errors.New("could not save media, please try again later")
)

// IsPlaylistNotFound checks if the error is a playlist not found error
func IsPlaylistNotFound(err error) bool {
	return errors.Is(err, ErrPlaylistNotFound)
}

// IsPlaylistItemNotFound checks if the error is a playlist item not found error
func IsPlaylistItemNotFound(err error) bool {
	return errors.Is(err, ErrPlaylistItemNotFound)
}

// IsMediaNotFound checks if the error is a media not found error
func IsMediaNotFound(err error) bool {
	return errors.Is(err, ErrMediaNotFound)
}

// IsValidationFailed checks if the error is a validation error
func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}

// IsRetryable reports whether the caller may retry the whole operation:
// media persistence failures, lost optimistic save races and unavailable sources.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistenceFailed) || db.IsConflict(err) || source.IsUnavailable(err)
}
