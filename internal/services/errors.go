package services

import "errors"

// Configuration errors
var (
	ErrNoTableSource    = errors.New("no dataset source configured")
	ErrNoArtifactSource = errors.New("no forecast artifact source configured")
)
