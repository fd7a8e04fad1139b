package rowwin

import "errors"

var (
	// ErrOutOfSpace is returned when an allocation could not be
	// satisfied, with or without attempted growth.
	ErrOutOfSpace = errors.New("rowwin: out of space")

	// ErrSchemaFrozen is returned when the column count is changed
	// after rows exist.
	ErrSchemaFrozen = errors.New("rowwin: column count is frozen once rows exist")

	// ErrIndexOutOfRange is returned when a row or column index is
	// outside the window's current counts.
	ErrIndexOutOfRange = errors.New("rowwin: row or column out of range")

	// ErrCorruptSlot is returned when a stored offset or length fails
	// validation against the current capacity. It covers both genuine
	// corruption and cross-process races.
	ErrCorruptSlot = errors.New("rowwin: corrupt slot")

	// ErrOutOfBounds is returned when a raw byte copy would reach past
	// the current capacity.
	ErrOutOfBounds = errors.New("rowwin: byte range out of bounds")

	// ErrTypeMismatch is returned when a typed get is called against a
	// slot holding a different type.
	ErrTypeMismatch = errors.New("rowwin: cell type mismatch")

	// ErrReadOnly is returned when a mutating operation is called on a
	// window bound with Open.
	ErrReadOnly = errors.New("rowwin: window is read-only")
)
