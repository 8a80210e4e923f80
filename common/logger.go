package common

import (
	"samse/status"
)

// MT: Constant after initialization; thread-safe
var Log status.Logger = status.Default()
