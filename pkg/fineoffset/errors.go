package fineoffset

import "errors"

var (
	// ErrMalformedBlock is returned when a settings block is shorter than SettingsBlockSize.
	ErrMalformedBlock = errors.New("malformed settings block")

	// ErrMalformedChunk is returned when a history chunk is shorter than ChunkSize.
	ErrMalformedChunk = errors.New("malformed history chunk")

	// ErrShortWindow is returned when a raw window holds fewer bytes than the field type needs.
	ErrShortWindow = errors.New("raw window shorter than field width")

	// ErrUnknownFieldType is returned for a FieldType outside the known set.
	ErrUnknownFieldType = errors.New("unknown field type")

	// ErrInvalidSettings wraps every cross-field violation found in a settings block.
	ErrInvalidSettings = errors.New("settings block failed validation")

	// ErrAddressOutOfRange is returned for a ring address outside the history area
	// or not aligned to a record boundary.
	ErrAddressOutOfRange = errors.New("history address out of range")

	// ErrNoStationTime is returned when history timestamps are requested but the
	// station clock could not be decoded.
	ErrNoStationTime = errors.New("station clock is not valid")
)
