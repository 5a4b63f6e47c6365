package modules

import (
	"fmt"

	"cropadvisor/internal/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// MaxImageSize is the upload ceiling for leaf images.
const MaxImageSize = 16 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png"}

var validate = validator.New()

// selectionRule constrains crop, market and location values.
const selectionRule = "required,max=64,printascii"

func validateSelection(field, value string) error {
	if err := validate.Var(value, selectionRule); err != nil {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidSelect,
			fmt.Sprintf("invalid %s %q", field, value),
			err,
			map[string]any{"field": field},
		)
	}
	return nil
}

// validateImage checks the sniffed media type first, then the size, and
// returns the detected type.
func validateImage(data []byte, size int64) (string, error) {
	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", types.NewAppErrorWithDetails(
			types.ErrCodeValidationMediaType,
			fmt.Sprintf("unsupported image type %s", mtype.String()),
			nil,
			map[string]any{"media_type": mtype.String()},
		)
	}
	if size > MaxImageSize {
		return "", types.NewAppErrorWithDetails(
			types.ErrCodeValidationFileTooLarge,
			fmt.Sprintf("image is %d bytes, limit is %d", size, MaxImageSize),
			nil,
			map[string]any{"size": size, "limit": MaxImageSize},
		)
	}
	return mtype.String(), nil
}
