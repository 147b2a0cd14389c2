package board

import "errors"

var (
	// ErrStaleResult marks a load whose token no longer matches the store's selection.
	// Callers drop the result; it is never shown to the user.
	ErrStaleResult = errors.New("stale board result")

	ErrNotLoaded       = errors.New("board not loaded for selected date")
	ErrUnknownAxis     = errors.New("unknown axis")
	ErrUnknownResource = errors.New("unknown resource")
	ErrUnknownSlot     = errors.New("unknown slot")
	ErrUnknownBooking  = errors.New("unknown or hidden booking")
	ErrSlotUnavailable = errors.New("slot is not free")
)
