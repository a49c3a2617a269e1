package utils

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID produces an opaque, practically-unique identifier: the current
// unix-millisecond timestamp in base36 followed by a random component.
// Uniqueness is probabilistic; collisions are not detected.
func NewID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + random[:12]
}
