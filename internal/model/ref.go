package model

import (
	"strings"

	"github.com/google/uuid"
)

// OrderRef addresses an order either by its native id or by its external order code.
type OrderRef struct {
	id   uuid.UUID
	code string
	byID bool
}

// RefByID addresses an order by native id.
func RefByID(id uuid.UUID) OrderRef {
	return OrderRef{id: id, byID: true}
}

// RefByCode addresses an order by external order code.
func RefByCode(code string) OrderRef {
	return OrderRef{code: code}
}

// ParseOrderRef resolves a raw identifier. A syntactically valid UUID is
// always a native id; anything else is an order code.
func ParseOrderRef(raw string) (OrderRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return OrderRef{}, NewDomainError(KindInvalidInput, ErrCodeInvalidID, "Order identifier is required")
	}
	if id, err := uuid.Parse(raw); err == nil {
		return RefByID(id), nil
	}
	return RefByCode(raw), nil
}

// ID returns the native id when the ref addresses one.
func (r OrderRef) ID() (uuid.UUID, bool) {
	return r.id, r.byID
}

// Code returns the order code when the ref addresses one.
func (r OrderRef) Code() (string, bool) {
	return r.code, !r.byID
}

func (r OrderRef) String() string {
	if r.byID {
		return r.id.String()
	}
	return r.code
}
