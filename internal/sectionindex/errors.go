package sectionindex

import "errors"

var (
	// ErrDirectoryRead is returned when the section directory cannot be listed.
	ErrDirectoryRead = errors.New("section directory cannot be read")
	// ErrFileRead is returned when a section source file cannot be read.
	ErrFileRead = errors.New("section file cannot be read")
)
