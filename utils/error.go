package utils

import "errors"

var ErrorNoArtifacts = errors.New("no artifacts to upload")
