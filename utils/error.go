package utils

import "errors"

// ErrorUnknownSite is returned when a chantier folder or workbook is missing.
var ErrorUnknownSite = errors.New("chantier not found")
